package nav

import (
	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/pool"
)

// BuildIndex returns one entry per root class, function and enum, in pool
// order. Entries carry pretty names; class entries also carry their direct
// base. A single unresolvable name fails the whole index.
func BuildIndex(p pool.ConstantPool) ([]encode.Reference, error) {
	refs := make([]encode.Reference, 0)
	for idx, def := range p.Roots() {
		if !pool.IsExported(def.Kind()) {
			continue
		}
		name, err := p.Name(def.Name)
		if err != nil {
			return nil, errors.Errorf("index entry %d: %w", idx, err)
		}
		ref := encode.Reference{Name: pool.PrettyName(name), Index: uint32(idx)}
		if class, ok := def.Value.(*pool.Class); ok && !class.Base.IsUndefined() {
			base := uint32(class.Base)
			ref.Base = &base
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
