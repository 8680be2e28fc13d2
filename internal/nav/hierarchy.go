package nav

import (
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/pool"
)

// BaseChain follows direct base links through the index, nearest first.
func BaseChain(l *Lookup, entry *encode.Reference) ([]encode.Reference, error) {
	chain := make([]encode.Reference, 0)
	visited := map[uint32]bool{entry.Index: true}

	for base := entry.Base; base != nil; {
		if visited[*base] {
			return nil, errors.Errorf("%w: class %d reached twice from %s", encode.ErrCyclicBaseChain, *base, entry.Name)
		}
		visited[*base] = true

		next, ok := l.ByIndex[*base]
		if !ok {
			return nil, errors.Errorf("%w: base %d is not in the index", pool.ErrResolution, *base)
		}
		chain = append(chain, *next)
		base = next.Base
	}
	return chain, nil
}

// Subclasses lists entries whose direct base is entry, in index order.
func Subclasses(l *Lookup, entry *encode.Reference) []encode.Reference {
	out := make([]encode.Reference, 0)
	for _, candidate := range l.Entries {
		if candidate.Base != nil && *candidate.Base == entry.Index {
			out = append(out, candidate)
		}
	}
	return out
}
