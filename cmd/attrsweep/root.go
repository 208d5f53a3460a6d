package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/attrsweep/attrsweep/internal/cli"
	"github.com/attrsweep/attrsweep/internal/cli/config"
	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

var (
	// Set at build time via -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile     string
	profileName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "attrsweep --dir <directory> --ext <suffix> [--ext <suffix> ...]",
	Short: "Resets per-file \"open with\" overrides back to the system default.",
	Long: `attrsweep scans a directory tree for files whose metadata carries a
per-file "open with" override and clears it, forcing those files back onto
the system-wide default handler.

A cheap random sampling pass estimates how many files are affected before
anything is touched: a clean sample skips the full pass entirely, and a
large estimate asks for confirmation first. The full pass runs on a bounded
worker pool and reports per-suffix statistics.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		opts, logger, err := config.LoadAndValidate(cfgFile, profileName, version, verbose, cmd.Flags())
		if err != nil {
			return err
		}
		return cli.Run(ctx, opts, logger)
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default: search ./ and ~/.config/attrsweep/)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Name of configuration profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output")

	rootCmd.Flags().StringP("dir", "d", "", "Required. Target directory to sweep.")
	rootCmd.Flags().StringArrayP("ext", "e", nil, "Required. File-name suffix to include (repeatable, e.g. -e pdf -e docx)")
	_ = rootCmd.MarkFlagRequired("dir")
	_ = rootCmd.MarkFlagRequired("ext")

	rootCmd.Flags().String("attribute", "", "Override attribute name (default: platform convention)")
	rootCmd.Flags().BoolP("dry-run", "n", false, "Report what would be cleared without touching any file")
	rootCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.Flags().Int("concurrency", sweeper.DefaultConcurrency, "Number of parallel workers (0 = 75% of CPU cores, ATTRSWEEP_WORKERS overrides)")
	rootCmd.Flags().Int("sample-size", sweeper.DefaultSampleSize, "Total files probed during the estimation pass")
	rootCmd.Flags().Int("min-sample", sweeper.DefaultMinSample, "Smallest sample on which a zero hit count skips the full pass")
	rootCmd.Flags().Int("max-files", sweeper.DefaultMaxFiles, "Estimated-hit ceiling above which confirmation is required")
	rootCmd.Flags().Bool("no-sample", false, "Skip the estimation pass and run the full sweep directly")
	rootCmd.Flags().String("output-format", string(sweeper.DefaultOutputFormat), `Final summary format ("text", "json")`)
	rootCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	rootCmd.Flags().String("onError", string(sweeper.DefaultOnErrorMode), `Behavior on per-file failure ("continue", "stop")`)
}
