// Package export encodes every root definition of a pool and builds the flat
// index that goes with the documents.
package export

import (
	"context"
	"runtime"
	"sync/atomic"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/nav"
	"github.com/bundledoc/bundledoc/internal/output"
	"github.com/bundledoc/bundledoc/internal/pool"
)

type Options struct {
	// Workers bounds concurrent encoders; values <= 0 use GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each root with the number of roots
	// finished so far. It may be called from several goroutines.
	Progress func(done, total int, name string)
}

// Failure records a root that produced no document.
type Failure struct {
	Index  uint32 `json:"index"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

type Result struct {
	Roots     int
	Documents []output.Document
	Failures  []Failure
	Index     []encode.Reference
}

type root struct {
	idx pool.Index[pool.Definition]
	def *pool.Definition
}

// Run encodes the exported roots of p in parallel. Documents and failures are
// returned in pool order. A root that fails to encode is logged and skipped;
// the run itself fails only when the index cannot be built or ctx ends.
func Run(ctx context.Context, p pool.ConstantPool, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	roots := make([]root, 0)
	for idx, def := range p.Roots() {
		if pool.IsExported(def.Kind()) {
			roots = append(roots, root{idx: idx, def: def})
		}
	}

	enc := encode.New(p)
	docs := make([]*output.Document, len(roots))
	failures := make([]*Failure, len(roots))

	var done atomic.Int64
	report := func(def *pool.Definition) {
		if opts.Progress == nil {
			return
		}
		name, _ := p.Name(def.Name)
		opts.Progress(int(done.Add(1)), len(roots), name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range roots {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer report(r.def)
			value, err := enc.Encode(r.def)
			if err != nil {
				name, _ := p.Name(r.def.Name)
				slogctx.Warn(ctx, "skipping definition",
					"index", uint32(r.idx),
					"name", name,
					"kind", r.def.Kind().String(),
					"error", err,
				)
				failures[i] = &Failure{
					Index:  uint32(r.idx),
					Name:   name,
					Kind:   r.def.Kind().String(),
					Reason: err.Error(),
					Err:    err,
				}
				return nil
			}
			docs[i] = &output.Document{Index: uint32(r.idx), Value: value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("export interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("export interrupted: %w", err)
	}

	index, err := nav.BuildIndex(p)
	if err != nil {
		return nil, errors.Errorf("build index: %w", err)
	}

	result := &Result{
		Roots:     len(roots),
		Documents: make([]output.Document, 0, len(roots)),
		Failures:  make([]Failure, 0),
		Index:     index,
	}
	for i := range roots {
		if docs[i] != nil {
			result.Documents = append(result.Documents, *docs[i])
		}
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}

	slogctx.Debug(ctx, "export finished",
		"roots", result.Roots,
		"documents", len(result.Documents),
		"failed", len(result.Failures),
		"workers", workers,
	)
	return result, nil
}
