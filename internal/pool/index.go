package pool

import "strconv"

// Index is a reference into a ConstantPool. The type parameter names the kind of
// value the index is expected to resolve to; at runtime every index is a uint32.
type Index[T any] uint32

// CName marks indices into the name table.
type CName struct{}

// IsUndefined reports whether the index is the "no reference" sentinel.
func (i Index[T]) IsUndefined() bool {
	return i == 0
}

func (i Index[T]) String() string {
	return strconv.FormatUint(uint64(i), 10)
}

// Cast reinterprets an index as pointing at a different kind.
func Cast[U, T any](i Index[T]) Index[U] {
	return Index[U](i)
}
