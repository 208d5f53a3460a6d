// Package cli orchestrates a sweep run: sampling pass, decision gate,
// operator confirmation, full pass, and summary rendering. All user-visible
// output lives here; the core only streams structured data.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/attrsweep/attrsweep/internal/cli/hooks"
	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// ErrConfirmationRequired is returned when the run needs operator consent
// but none can be obtained (non-interactive session without --yes).
var ErrConfirmationRequired = errors.New("confirmation required but session is not interactive (use --yes)")

// Run executes the full pipeline against validated options.
func Run(ctx context.Context, opts sweeper.Options, logger *slog.Logger) error {
	cliHooks := hooks.NewCLIHooks(opts.Logger)
	opts.EventHooks = cliHooks

	engine, err := sweeper.NewEngine(opts)
	if err != nil {
		return err
	}

	population := -1 // unknown until a sampling pass counts it
	if !opts.NoSample {
		result, sampleErr := engine.Sample(ctx, opts.SampleSize)
		if sampleErr != nil {
			return sampleErr
		}
		population = result.Population

		if result.Population == 0 {
			fmt.Fprintln(os.Stdout, dimStyle.Render("No candidate files found; nothing to do."))
			return nil
		}
		logger.Info("Sampling pass complete",
			slog.Int("sampled", result.SampledCount),
			slog.Int("hits", result.HitCount),
			slog.String("confidence", string(result.Confidence)))

		if sweeper.ShouldSkipFullPass(result, opts.MinSample) {
			printSampleSummary(os.Stdout, result)
			fmt.Fprintln(os.Stdout, dimStyle.Render("Sample observed zero overrides; skipping full pass."))
			return nil
		}
		if err := confirmIfNeeded(result, &opts); err != nil {
			return err
		}
	}

	if !opts.NoProgress && isInteractive() {
		cliHooks.AttachProgress(hooks.NewTerminalProgress(population, os.Stderr, "sweeping"))
	}

	records, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	for range records {
		// Counters live in the engine's aggregator; progress advances via
		// hooks. Draining finalizes the report.
	}

	report := engine.Report()
	switch opts.OutputFormat {
	case sweeper.OutputFormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		printReport(os.Stdout, report)
	}

	if report.Summary.Cancelled {
		logger.Info("Run cancelled; report reflects partial progress")
	}
	return ctx.Err()
}

// confirmIfNeeded prompts the operator when the estimate exceeds the
// configured ceiling, or when the sample was inconclusive but still
// observed hits.
func confirmIfNeeded(result sweeper.SampleResult, opts *sweeper.Options) error {
	needsConsent := sweeper.RequiresConfirmation(result, opts.MaxFiles)
	inconclusive := result.SampledCount < opts.MinSample && result.EstimatedPopulationHits > 0
	if !needsConsent && !inconclusive {
		return nil
	}
	if opts.AssumeYes {
		return nil
	}
	if !isInteractive() {
		return ErrConfirmationRequired
	}

	warn := color.New(color.FgYellow, color.Bold)
	if needsConsent {
		warn.Fprintf(os.Stderr, "Estimated %d files to reset exceeds the configured ceiling of %d.\n",
			result.EstimatedPopulationHits, opts.MaxFiles)
	} else {
		warn.Fprintf(os.Stderr, "Sample of %d files is too small to be conclusive (estimated %d overrides).\n",
			result.SampledCount, result.EstimatedPopulationHits)
	}
	fmt.Fprint(os.Stderr, "Proceed with the full pass? [y/N]: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return fmt.Errorf("aborted by operator")
	}
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stderr.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

func printSampleSummary(w io.Writer, result sweeper.SampleResult) {
	fmt.Fprintln(w, headerStyle.Render("Sample"))
	fmt.Fprintf(w, "  population %d, sampled %d, hits %d (%.2f%%), estimated %d, confidence %s\n",
		result.Population, result.SampledCount, result.HitCount,
		result.HitRatePercent, result.EstimatedPopulationHits, result.Confidence)
}

func printReport(w io.Writer, report sweeper.Report) {
	mode := ""
	if report.Summary.DryRun {
		mode = dimStyle.Render("  (dry run)")
	}
	fmt.Fprintln(w, headerStyle.Render("Sweep summary")+mode)
	fmt.Fprintf(w, "  %-10s %10s %14s %10s %8s %10s\n",
		"category", "seen", "with override", "cleared", "errors", "files/s")
	for _, m := range report.Categories {
		fmt.Fprintf(w, "  %-10s %10d %14d %10d %8d %10.1f\n",
			m.Category, m.FilesSeen, m.FilesWithOverride, m.FilesCleared, m.Errors, m.FilesPerSecond)
	}
	t := report.Total
	fmt.Fprintln(w, totalStyle.Render(fmt.Sprintf("  %-10s %10d %14d %10d %8d %10.1f",
		"total", t.FilesSeen, t.FilesWithOverride, t.FilesCleared, t.Errors, t.FilesPerSecond)))
	fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf("run %s, %.2fs, concurrency %d",
		report.Summary.RunID, report.Summary.DurationSeconds, report.Summary.Concurrency)))
	if report.Summary.Cancelled {
		fmt.Fprintln(w, dimStyle.Render("  cancelled before completion; counts are partial"))
	}
}
