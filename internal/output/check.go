package output

import (
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/fileutil"
)

// Diff describes one file whose content on disk differs from what would be written.
type Diff struct {
	Path    string `json:"path"`
	Missing bool   `json:"missing,omitempty"`
	Removed bool   `json:"removed,omitempty"`
	Unified string `json:"diff"`
}

// Check compares rendered files with the output directory without writing.
// Generated files that Write would remove are reported as removals.
func (w *Writer) Check(files []File) ([]Diff, error) {
	diffs := make([]Diff, 0)
	for _, file := range files {
		existing, err := fileutil.ReadIfExists(filepath.Join(w.opts.Dir, file.Path))
		if err != nil {
			return nil, errors.Errorf("check %s: %w", file.Path, err)
		}
		if existing != nil && string(existing) == string(file.Data) {
			continue
		}
		unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(existing)),
			B:        difflib.SplitLines(string(file.Data)),
			FromFile: "a/" + file.Path,
			ToFile:   "b/" + file.Path,
			Context:  3,
		})
		if err != nil {
			return nil, errors.Errorf("diff %s: %w", file.Path, err)
		}
		diffs = append(diffs, Diff{Path: file.Path, Missing: existing == nil, Unified: unified})
	}

	stale, err := w.Stale(files)
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		existing, err := fileutil.ReadIfExists(filepath.Join(w.opts.Dir, path))
		if err != nil {
			return nil, errors.Errorf("check %s: %w", path, err)
		}
		unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(existing)),
			FromFile: "a/" + path,
			ToFile:   "/dev/null",
			Context:  3,
		})
		if err != nil {
			return nil, errors.Errorf("diff %s: %w", path, err)
		}
		diffs = append(diffs, Diff{Path: path, Removed: true, Unified: unified})
	}
	return diffs, nil
}
