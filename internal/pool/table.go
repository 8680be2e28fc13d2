package pool

import (
	"iter"

	"gitlab.com/tozd/go/errors"
)

// Table is an in-memory ConstantPool. Slot 0 of the definition table is the
// undefined sentinel and never holds a definition; other empty slots are gaps
// left by the producer and fail to resolve like out-of-range indices.
type Table struct {
	names       []string
	definitions []*Definition
}

var _ ConstantPool = (*Table)(nil)

// NewTable creates an empty table with the sentinel slot reserved.
func NewTable() *Table {
	return &Table{definitions: make([]*Definition, 1)}
}

// AddName interns name and returns its index. Names are not deduplicated.
func (t *Table) AddName(name string) Index[CName] {
	t.names = append(t.names, name)
	return Index[CName](len(t.names) - 1)
}

// Add appends a definition and returns its index.
func (t *Table) Add(def Definition) Index[Definition] {
	t.definitions = append(t.definitions, &def)
	return Index[Definition](len(t.definitions) - 1)
}

// Put stores a definition at a fixed index, growing the table as needed.
func (t *Table) Put(idx Index[Definition], def Definition) error {
	if idx.IsUndefined() {
		return errors.New("index 0 is reserved")
	}
	for int(idx) >= len(t.definitions) {
		t.definitions = append(t.definitions, nil)
	}
	if t.definitions[idx] != nil {
		return errors.Errorf("duplicate definition at index %d", idx)
	}
	t.definitions[idx] = &def
	return nil
}

func (t *Table) Len() int {
	return len(t.definitions) - 1
}

func (t *Table) Definition(idx Index[Definition]) (*Definition, error) {
	if idx.IsUndefined() || int(idx) >= len(t.definitions) || t.definitions[idx] == nil {
		return nil, errors.Errorf("%w: definition %d", ErrResolution, idx)
	}
	return t.definitions[idx], nil
}

func (t *Table) Name(idx Index[CName]) (string, error) {
	if int(idx) >= len(t.names) {
		return "", errors.Errorf("%w: name %d", ErrResolution, idx)
	}
	return t.names[idx], nil
}

func (t *Table) Definitions() iter.Seq2[Index[Definition], *Definition] {
	return func(yield func(Index[Definition], *Definition) bool) {
		for i := 1; i < len(t.definitions); i++ {
			def := t.definitions[i]
			if def == nil {
				continue
			}
			if !yield(Index[Definition](i), def) {
				return
			}
		}
	}
}

func (t *Table) Roots() iter.Seq2[Index[Definition], *Definition] {
	return func(yield func(Index[Definition], *Definition) bool) {
		for idx, def := range t.Definitions() {
			if !def.Parent.IsUndefined() {
				continue
			}
			if !yield(idx, def) {
				return
			}
		}
	}
}
