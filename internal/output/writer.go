package output

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/fileutil"
)

// Document is one encoded root definition.
type Document struct {
	Index uint32
	Value any
}

type Options struct {
	Dir    string
	Format Format
	Layout Layout
	Indent bool
}

// File is a rendered artifact, Path is relative to Options.Dir.
type File struct {
	Path string
	Data []byte
}

type Bundle struct {
	Definitions []BundleEntry      `json:"definitions" yaml:"definitions"`
	Index       []encode.Reference `json:"index" yaml:"index"`
}

type BundleEntry struct {
	Index    uint32 `json:"index" yaml:"index"`
	Document any    `json:"document" yaml:"document"`
}

type WriteStats struct {
	Files     int      `json:"files"`
	Rewritten int      `json:"rewritten"`
	Bytes     int64    `json:"bytes"`
	Paths     []string `json:"paths,omitempty"`
	Removed   []string `json:"removed,omitempty"`
}

type Writer struct {
	opts Options
}

func NewWriter(opts Options) *Writer {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Layout == "" {
		opts.Layout = LayoutSplit
	}
	return &Writer{opts: opts}
}

func (w *Writer) Options() Options {
	return w.opts
}

// Render produces every file for the run in memory, in a stable order:
// documents by position, then the index.
func (w *Writer) Render(docs []Document, index []encode.Reference) ([]File, error) {
	if index == nil {
		index = []encode.Reference{}
	}
	switch w.opts.Layout {
	case LayoutSplit:
		files := make([]File, 0, len(docs)+1)
		for _, doc := range docs {
			data, err := Marshal(w.opts.Format, doc.Value, w.opts.Indent)
			if err != nil {
				return nil, errors.Errorf("document %d: %w", doc.Index, err)
			}
			files = append(files, File{Path: DocumentFile(doc.Index, w.opts.Format), Data: data})
		}
		data, err := Marshal(w.opts.Format, index, w.opts.Indent)
		if err != nil {
			return nil, errors.Errorf("index: %w", err)
		}
		return append(files, File{Path: IndexFile(w.opts.Format), Data: data}), nil
	case LayoutCombined:
		bundle := Bundle{Definitions: make([]BundleEntry, 0, len(docs)), Index: index}
		for _, doc := range docs {
			bundle.Definitions = append(bundle.Definitions, BundleEntry{Index: doc.Index, Document: doc.Value})
		}
		data, err := Marshal(w.opts.Format, bundle, w.opts.Indent)
		if err != nil {
			return nil, errors.Errorf("bundle: %w", err)
		}
		return []File{{Path: BundleFile(w.opts.Format), Data: data}}, nil
	default:
		return nil, errors.Errorf("%w: layout %q", ErrUnknownOption, w.opts.Layout)
	}
}

// Write stores files under the output directory, leaving unchanged files
// untouched, and removes generated files that are no longer rendered.
func (w *Writer) Write(files []File) (WriteStats, error) {
	stats := WriteStats{}
	for _, file := range files {
		wrote, err := fileutil.WriteIfChangedTracked(filepath.Join(w.opts.Dir, file.Path), file.Data)
		if err != nil {
			return stats, errors.Errorf("write %s: %w", file.Path, err)
		}
		stats.Files++
		stats.Bytes += int64(len(file.Data))
		if wrote {
			stats.Rewritten++
			stats.Paths = append(stats.Paths, file.Path)
		}
	}

	stale, err := w.Stale(files)
	if err != nil {
		return stats, err
	}
	for _, path := range stale {
		if err := fileutil.RemoveIfExists(filepath.Join(w.opts.Dir, path)); err != nil {
			return stats, errors.Errorf("remove %s: %w", path, err)
		}
		stats.Removed = append(stats.Removed, path)
	}
	return stats, nil
}

// Stale lists files in the output directory that look generated (a root
// document, the index, or the bundle in any format) but are not part of files.
// A root that stopped encoding leaves such a file behind.
func (w *Writer) Stale(files []File) ([]string, error) {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("list %s: %w", w.opts.Dir, err)
	}
	rendered := make(map[string]struct{}, len(files))
	for _, file := range files {
		rendered[file.Path] = struct{}{}
	}
	var stale []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !isGeneratedName(name) {
			continue
		}
		if _, ok := rendered[name]; !ok {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

func isGeneratedName(name string) bool {
	stem, ext, ok := strings.Cut(name, ".")
	if !ok || (ext != FormatJSON.Ext() && ext != FormatYAML.Ext()) {
		return false
	}
	if stem == IndexName || stem == BundleName {
		return true
	}
	n, err := strconv.ParseUint(stem, 10, 32)
	return err == nil && n > 0 && strconv.FormatUint(n, 10) == stem
}

func DocumentFile(index uint32, f Format) string {
	return strconv.FormatUint(uint64(index), 10) + "." + f.Ext()
}

func IndexFile(f Format) string {
	return IndexName + "." + f.Ext()
}

func BundleFile(f Format) string {
	return BundleName + "." + f.Ext()
}
