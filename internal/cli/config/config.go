// Package config loads and validates the attrsweep configuration from
// defaults, config file, profile, environment, and flags, in ascending
// precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

const (
	// EnvPrefix is the prefix for environment variable bindings
	// (ATTRSWEEP_DIR, ATTRSWEEP_SAMPLE_SIZE, ...).
	EnvPrefix = "ATTRSWEEP"
	// DefaultConfigName is the base name of the config file searched in
	// standard locations.
	DefaultConfigName = "attrsweep"
	// EnvWorkersOverride names the environment variable that overrides the
	// derived worker count.
	EnvWorkersOverride = "ATTRSWEEP_WORKERS"
	// workerFraction is the share of hardware parallelism granted to the
	// pool when nothing else decides.
	workerFraction = 0.75
)

// LoadAndValidate loads configuration from all sources, validates the
// merged result, resolves the worker count, and constructs the logger.
func LoadAndValidate(cfgFile, profileName, appVersion string, verbose bool, flags *pflag.FlagSet) (sweeper.Options, *slog.Logger, error) {
	var opts sweeper.Options
	v := viper.New()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return opts, logger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			logger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			return opts, logger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		logger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			return opts, logger, fmt.Errorf("profile '%s' not found in config file '%s'", profileName, v.ConfigFileUsed())
		}
		profile := v.Sub(profileKey)
		if profile == nil {
			return opts, logger, fmt.Errorf("failed to load profile '%s' from config file '%s'", profileName, v.ConfigFileUsed())
		}
		if err := v.MergeConfigMap(profile.AllSettings()); err != nil {
			return opts, logger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		logger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range flagKeys() {
			if flag := flags.Lookup(key); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return opts, logger, fmt.Errorf("error binding flag '--%s': %w", key, err)
				}
			}
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		return opts, logger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	opts.Verbose = opts.Verbose || verbose
	opts.Logger = handler

	if err := validate(&opts); err != nil {
		return opts, logger, err
	}
	opts.Concurrency = ResolveConcurrency(opts.Concurrency)
	logger.Debug("Configuration resolved",
		slog.String("dir", opts.RootDir),
		slog.Any("categories", opts.Categories),
		slog.Int("concurrency", opts.Concurrency),
		slog.Bool("dryRun", opts.DryRun))
	return opts, logger, nil
}

// flagKeys lists the flags bound to viper keys. Flag names double as
// config keys via the Options mapstructure tags.
func flagKeys() []string {
	return []string{
		"dir", "ext", "attribute", "dry-run", "yes", "concurrency",
		"sample-size", "min-sample", "max-files", "no-sample",
		"output-format", "no-progress", "onError",
	}
}

func setDefaults(v *viper.Viper) {
	// dir and ext need explicit defaults so AutomaticEnv can surface
	// ATTRSWEEP_DIR and ATTRSWEEP_EXT through Unmarshal.
	v.SetDefault("dir", "")
	v.SetDefault("ext", []string{})
	v.SetDefault("attribute", "")
	v.SetDefault("dry-run", sweeper.DefaultDryRun)
	v.SetDefault("yes", false)
	v.SetDefault("concurrency", sweeper.DefaultConcurrency)
	v.SetDefault("sample-size", sweeper.DefaultSampleSize)
	v.SetDefault("min-sample", sweeper.DefaultMinSample)
	v.SetDefault("max-files", sweeper.DefaultMaxFiles)
	v.SetDefault("no-sample", false)
	v.SetDefault("output-format", string(sweeper.DefaultOutputFormat))
	v.SetDefault("no-progress", false)
	v.SetDefault("onError", string(sweeper.DefaultOnErrorMode))
}

// validate rejects configurations the engine would refuse anyway, plus the
// CLI-only fields the engine never sees.
func validate(opts *sweeper.Options) error {
	if opts.RootDir == "" {
		return fmt.Errorf("%w: target directory is required (--dir)", sweeper.ErrConfigValidation)
	}
	abs, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve directory %q: %v", sweeper.ErrConfigValidation, opts.RootDir, err)
	}
	opts.RootDir = abs
	if len(opts.Categories) == 0 {
		return fmt.Errorf("%w: at least one suffix category is required (--ext)", sweeper.ErrConfigValidation)
	}
	switch opts.OutputFormat {
	case sweeper.OutputFormatText, sweeper.OutputFormatJSON:
	default:
		return fmt.Errorf("%w: invalid output format %q", sweeper.ErrConfigValidation, opts.OutputFormat)
	}
	switch opts.OnErrorMode {
	case sweeper.OnErrorContinue, sweeper.OnErrorStop:
	default:
		return fmt.Errorf("%w: invalid onError mode %q", sweeper.ErrConfigValidation, opts.OnErrorMode)
	}
	return nil
}

// ResolveConcurrency turns the configured hint into a final worker count.
// An explicit hint wins; otherwise the ATTRSWEEP_WORKERS environment
// variable; otherwise 75% of the host's hardware parallelism, at least 1.
func ResolveConcurrency(hint int) int {
	if hint > 0 {
		return hint
	}
	if raw := os.Getenv(EnvWorkersOverride); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	n := int(float64(runtime.NumCPU()) * workerFraction)
	if n < 1 {
		n = 1
	}
	return n
}
