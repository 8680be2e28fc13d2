// Package pool models the constant pool of a compiled script bundle: an
// append-only arena of definitions addressed by integer index plus a table of
// interned names. Cross references between definitions are indices, never
// pointers.
package pool

import (
	"iter"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrResolution reports an index that does not resolve in the pool.
	ErrResolution = errors.Base("unresolved pool reference")
	// ErrKindMismatch reports an index that resolved to the wrong kind of definition.
	ErrKindMismatch = errors.Base("definition kind mismatch")
)

// ConstantPool is the read-only view of a loaded bundle that encoding needs.
// Implementations must be safe for concurrent readers.
type ConstantPool interface {
	Definition(idx Index[Definition]) (*Definition, error)
	Name(idx Index[CName]) (string, error)
	// Roots yields definitions that are not nested in another definition.
	Roots() iter.Seq2[Index[Definition], *Definition]
	Definitions() iter.Seq2[Index[Definition], *Definition]
}

// DefinitionName resolves the stored (mangled) name of the definition at idx.
func DefinitionName[T any](p ConstantPool, idx Index[T]) (string, error) {
	def, err := p.Definition(Cast[Definition](idx))
	if err != nil {
		return "", err
	}
	return p.Name(def.Name)
}

// Resolve looks up idx and asserts that it holds a value of type *T.
func Resolve[T any](p ConstantPool, idx Index[T]) (*Definition, *T, error) {
	def, err := p.Definition(Cast[Definition](idx))
	if err != nil {
		return nil, nil, err
	}
	value, ok := any(def.Value).(*T)
	if !ok {
		var want T
		return nil, nil, errors.Errorf("%w: index %d is a %s, expected %s", ErrKindMismatch, idx, def.Kind(), kindOf(&want))
	}
	return def, value, nil
}

func kindOf(value any) string {
	if v, ok := value.(AnyDefinition); ok {
		return v.Kind().String()
	}
	return "unknown"
}

// PrettyName strips the signature suffix from a mangled name: everything from
// the first ';' on.
func PrettyName(name string) string {
	simple, _, _ := strings.Cut(name, ";")
	return simple
}
