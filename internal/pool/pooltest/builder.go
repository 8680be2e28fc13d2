// Package pooltest builds constant pools in code for tests.
package pooltest

import (
	"strconv"
	"strings"

	"github.com/bundledoc/bundledoc/internal/pool"
)

type Builder struct {
	table *pool.Table
	names map[string]pool.Index[pool.CName]
}

func New() *Builder {
	return &Builder{
		table: pool.NewTable(),
		names: make(map[string]pool.Index[pool.CName]),
	}
}

func (b *Builder) Table() *pool.Table {
	return b.table
}

// Name interns name so that equal strings share one name index.
func (b *Builder) Name(name string) pool.Index[pool.CName] {
	if idx, ok := b.names[name]; ok {
		return idx
	}
	idx := b.table.AddName(name)
	b.names[name] = idx
	return idx
}

func (b *Builder) Def(name string, parent pool.Index[pool.Definition], value pool.AnyDefinition) pool.Index[pool.Definition] {
	return b.table.Add(pool.Definition{Name: b.Name(name), Parent: parent, Value: value})
}

func (b *Builder) Prim(name string) pool.Index[pool.Type] {
	return pool.Cast[pool.Type](b.Def(name, 0, &pool.Type{Shape: pool.TypePrim}))
}

// ClassType adds the type wrapper for a class or enum with the same name.
func (b *Builder) ClassType(name string) pool.Index[pool.Type] {
	return pool.Cast[pool.Type](b.Def(name, 0, &pool.Type{Shape: pool.TypeClass}))
}

func (b *Builder) Wrap(kind pool.TypeKind, inner pool.Index[pool.Type], size uint32) pool.Index[pool.Type] {
	innerName, _ := pool.DefinitionName(b.table, inner)
	name := strings.ToLower(kind.String()) + ":" + innerName
	if kind == pool.TypeStaticArray {
		name += ";" + strconv.FormatUint(uint64(size), 10)
	}
	return pool.Cast[pool.Type](b.Def(name, 0, &pool.Type{Shape: kind, Inner: inner, Size: size}))
}

func (b *Builder) Class(name string, base pool.Index[pool.Class]) pool.Index[pool.Class] {
	return pool.Cast[pool.Class](b.Def(name, 0, &pool.Class{Base: base}))
}

// ClassValue returns the stored class for in-place adjustments.
func (b *Builder) ClassValue(idx pool.Index[pool.Class]) *pool.Class {
	def, _ := b.table.Definition(pool.Cast[pool.Definition](idx))
	return def.Value.(*pool.Class)
}

func (b *Builder) Field(owner pool.Index[pool.Class], name string, typ pool.Index[pool.Type], flags pool.FieldFlags) pool.Index[pool.Field] {
	idx := pool.Cast[pool.Field](b.Def(name, pool.Cast[pool.Definition](owner), &pool.Field{Type: typ, Flags: flags}))
	class := b.ClassValue(owner)
	class.Fields = append(class.Fields, idx)
	return idx
}

func (b *Builder) Function(name string, fn pool.Function) pool.Index[pool.Function] {
	return pool.Cast[pool.Function](b.Def(name, 0, &fn))
}

func (b *Builder) Method(owner pool.Index[pool.Class], name string, fn pool.Function) pool.Index[pool.Function] {
	idx := pool.Cast[pool.Function](b.Def(name, pool.Cast[pool.Definition](owner), &fn))
	class := b.ClassValue(owner)
	class.Functions = append(class.Functions, idx)
	return idx
}

func (b *Builder) FunctionValue(idx pool.Index[pool.Function]) *pool.Function {
	def, _ := b.table.Definition(pool.Cast[pool.Definition](idx))
	return def.Value.(*pool.Function)
}

func (b *Builder) Param(fn pool.Index[pool.Function], name string, typ pool.Index[pool.Type], flags pool.ParameterFlags) pool.Index[pool.Parameter] {
	idx := pool.Cast[pool.Parameter](b.Def(name, pool.Cast[pool.Definition](fn), &pool.Parameter{Type: typ, Flags: flags}))
	value := b.FunctionValue(fn)
	value.Parameters = append(value.Parameters, idx)
	return idx
}

func (b *Builder) Enum(name string) pool.Index[pool.Enum] {
	return pool.Cast[pool.Enum](b.Def(name, 0, &pool.Enum{}))
}

func (b *Builder) Member(enum pool.Index[pool.Enum], name string, value int64) pool.Index[pool.EnumValue] {
	idx := pool.Cast[pool.EnumValue](b.Def(name, pool.Cast[pool.Definition](enum), &pool.EnumValue{Value: value}))
	def, _ := b.table.Definition(pool.Cast[pool.Definition](enum))
	e := def.Value.(*pool.Enum)
	e.Members = append(e.Members, idx)
	return idx
}

func (b *Builder) SourceFile(path string) pool.Index[pool.SourceFile] {
	return pool.Cast[pool.SourceFile](b.Def(path, 0, &pool.SourceFile{Path: path}))
}

func (b *Builder) Local(parent pool.Index[pool.Function], name string, typ pool.Index[pool.Type]) pool.Index[pool.Local] {
	return pool.Cast[pool.Local](b.Def(name, pool.Cast[pool.Definition](parent), &pool.Local{Type: typ}))
}
