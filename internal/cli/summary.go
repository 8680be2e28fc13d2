package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bundledoc/bundledoc/internal/export"
	"github.com/bundledoc/bundledoc/internal/fileutil"
)

type RunSummary struct {
	Mode         string           `json:"mode"`
	Pool         string           `json:"pool"`
	Format       string           `json:"format"`
	Layout       string           `json:"layout"`
	OutputDir    string           `json:"output_dir"`
	Roots        int              `json:"roots"`
	Documents    int              `json:"documents"`
	Failed       int              `json:"failed"`
	IndexEntries int              `json:"index_entries"`
	Files        int              `json:"files"`
	Rewritten    int              `json:"rewritten"`
	Bytes        int64            `json:"bytes"`
	Removed      int              `json:"removed"`
	Stale        int              `json:"stale"`
	DurationMS   int64            `json:"duration_ms"`
	Failures     []export.Failure `json:"failures,omitempty"`
	ChangedFiles []string         `json:"changed_files,omitempty"`
	RemovedFiles []string         `json:"removed_files,omitempty"`
	StaleFiles   []string         `json:"stale_files,omitempty"`
}

func PrintRunSummary(out io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(out, summary)
	}

	fmt.Fprintf(out, "%s complete in %dms\n", summary.Mode, summary.DurationMS)
	fmt.Fprintf(out, "pool: %s\n", summary.Pool)
	fmt.Fprintf(out, "output: %s (%s, %s)\n", summary.OutputDir, summary.Format, summary.Layout)
	fmt.Fprintf(out, "definitions: roots=%s encoded=%s failed=%s index=%s\n",
		humanize.Comma(int64(summary.Roots)),
		humanize.Comma(int64(summary.Documents)),
		humanize.Comma(int64(summary.Failed)),
		humanize.Comma(int64(summary.IndexEntries)),
	)

	if summary.Mode == "check" {
		if summary.Stale == 0 {
			fmt.Fprintln(out, "output is up to date")
		} else {
			fmt.Fprintf(out, "stale files (%d): %s\n", summary.Stale, SummarizePaths(summary.StaleFiles, 8))
		}
	} else {
		fmt.Fprintf(out, "files: written=%d rewritten=%d removed=%d size=%s\n", summary.Files, summary.Rewritten, summary.Removed, humanize.Bytes(uint64(summary.Bytes)))
		if len(summary.ChangedFiles) > 0 {
			fmt.Fprintf(out, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
		}
		if len(summary.RemovedFiles) > 0 {
			fmt.Fprintf(out, "removed files (%d): %s\n", len(summary.RemovedFiles), SummarizePaths(summary.RemovedFiles, 8))
		}
	}

	if len(summary.Failures) > 0 {
		fmt.Fprintf(out, "failed definitions (%d):\n", len(summary.Failures))
		for _, failure := range summary.Failures {
			fmt.Fprintf(out, "  %s [%d] %s: %s\n", failure.Name, failure.Index, strings.ToLower(failure.Kind), failure.Reason)
		}
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
