package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/config"
	"github.com/bundledoc/bundledoc/internal/export"
	"github.com/bundledoc/bundledoc/internal/output"
	"github.com/bundledoc/bundledoc/internal/pool"
)

var (
	// ErrStaleOutput is returned by generate --check when files on disk differ.
	ErrStaleOutput = errors.Base("output is stale")
	// ErrDefinitionsFailed is returned in strict mode when any root was skipped.
	ErrDefinitionsFailed = errors.Base("definitions failed to encode")
)

func RunGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := commandContext(cmd)
	cfg := config.FromContext(ctx)

	opts, err := ResolveOutputOptions(cmd, cfg)
	if err != nil {
		return err
	}
	workers, err := intSetting(cmd, "workers", cfg.Workers)
	if err != nil {
		return err
	}
	check, err := boolSetting(cmd, "check", false)
	if err != nil {
		return err
	}
	keepGoing, err := boolSetting(cmd, "keep-going", false)
	if err != nil {
		return err
	}
	asJSON, err := boolSetting(cmd, "json", false)
	if err != nil {
		return err
	}

	poolPath := args[0]
	ctx = slogctx.With(ctx, "pool", poolPath)
	p, err := pool.Load(poolPath)
	if err != nil {
		return err
	}

	progress := newEncodeProgressReporter(cmd.ErrOrStderr(), "encode", asJSON)
	result, err := export.Run(ctx, p, export.Options{Workers: workers, Progress: progress.Update})
	if err != nil {
		return err
	}
	progress.Done(result.Roots)

	writer := output.NewWriter(opts)
	files, err := writer.Render(result.Documents, result.Index)
	if err != nil {
		return errors.Errorf("failed to render output: %w", err)
	}

	summary := RunSummary{
		Mode:         "generate",
		Pool:         poolPath,
		Format:       string(opts.Format),
		Layout:       string(opts.Layout),
		OutputDir:    opts.Dir,
		Roots:        result.Roots,
		Documents:    len(result.Documents),
		Failed:       len(result.Failures),
		IndexEntries: len(result.Index),
		Failures:     result.Failures,
	}

	var diffs []output.Diff
	if check {
		summary.Mode = "check"
		diffs, err = writer.Check(files)
		if err != nil {
			return err
		}
		summary.Files = len(files)
		summary.Stale = len(diffs)
		for _, diff := range diffs {
			summary.StaleFiles = append(summary.StaleFiles, diff.Path)
		}
	} else {
		stats, err := writer.Write(files)
		if err != nil {
			return errors.Errorf("failed to write output files: %w", err)
		}
		summary.Files = stats.Files
		summary.Rewritten = stats.Rewritten
		summary.Bytes = stats.Bytes
		summary.ChangedFiles = stats.Paths
		summary.Removed = len(stats.Removed)
		summary.RemovedFiles = stats.Removed
		slogctx.Debug(ctx, "output written", "dir", opts.Dir, "files", stats.Files, "rewritten", stats.Rewritten, "removed", len(stats.Removed))
	}
	summary.DurationMS = time.Since(start).Milliseconds()

	out := cmd.OutOrStdout()
	if !asJSON {
		for _, diff := range diffs {
			fmt.Fprint(out, diff.Unified)
		}
	}
	if err := PrintRunSummary(out, summary, asJSON); err != nil {
		return err
	}

	if len(diffs) > 0 {
		return errors.Errorf("%w: %d of %d files differ in %s (run generate without --check)", ErrStaleOutput, len(diffs), len(files), opts.Dir)
	}
	if len(result.Failures) > 0 && cfg.Strict && !keepGoing {
		return errors.Errorf("%w: %d of %d (use --keep-going to accept partial output)", ErrDefinitionsFailed, len(result.Failures), result.Roots)
	}
	return nil
}
