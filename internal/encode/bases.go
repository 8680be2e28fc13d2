package encode

import (
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/pool"
)

// Bases walks the inheritance chain starting at base and returns every
// ancestor, nearest first. An undefined base yields an empty, non-nil slice.
func (e *Encoder) Bases(base pool.Index[pool.Class]) ([]Reference, error) {
	bases := make([]Reference, 0)
	visited := make(map[pool.Index[pool.Class]]bool)

	for idx := base; !idx.IsUndefined(); {
		if visited[idx] {
			return nil, errors.Errorf("%w: class %d reached twice", ErrCyclicBaseChain, idx)
		}
		visited[idx] = true

		name, err := pool.DefinitionName(e.pool, idx)
		if err != nil {
			return nil, err
		}
		_, class, err := pool.Resolve(e.pool, idx)
		if err != nil {
			return nil, err
		}
		bases = append(bases, Reference{Name: name, Index: uint32(idx)})
		idx = class.Base
	}
	return bases, nil
}
