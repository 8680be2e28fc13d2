package pool

import "strings"

// Kind identifies the variant held by a Definition.
type Kind int

const (
	KindType Kind = iota
	KindClass
	KindFunction
	KindField
	KindParameter
	KindEnum
	KindEnumValue
	KindSourceFile
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindField:
		return "field"
	case KindParameter:
		return "parameter"
	case KindEnum:
		return "enum"
	case KindEnumValue:
		return "enum value"
	case KindSourceFile:
		return "source file"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Definition is one named node of the pool.
type Definition struct {
	Name   Index[CName]
	Parent Index[Definition]
	Value  AnyDefinition
}

// Kind returns the kind of the definition's value.
func (d *Definition) Kind() Kind {
	return d.Value.Kind()
}

// AnyDefinition is the closed set of definition variants.
type AnyDefinition interface {
	Kind() Kind
	sealed()
}

// Visibility is ordered from most to least visible.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// ParseVisibility accepts the lower-case names produced by String.
func ParseVisibility(value string) (Visibility, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "public":
		return Public, true
	case "protected":
		return Protected, true
	case "private":
		return Private, true
	default:
		return 0, false
	}
}

// TypeKind enumerates the shapes a Type definition can take.
type TypeKind int

const (
	TypePrim TypeKind = iota
	TypeClass
	TypeRef
	TypeWeakRef
	TypeScriptRef
	TypeArray
	TypeStaticArray
)

func (k TypeKind) String() string {
	switch k {
	case TypePrim:
		return "Prim"
	case TypeClass:
		return "Class"
	case TypeRef:
		return "Ref"
	case TypeWeakRef:
		return "WeakRef"
	case TypeScriptRef:
		return "ScriptRef"
	case TypeArray:
		return "Array"
	case TypeStaticArray:
		return "StaticArray"
	default:
		return "Unknown"
	}
}

// Wraps reports whether the kind carries an inner type.
func (k TypeKind) Wraps() bool {
	switch k {
	case TypeRef, TypeWeakRef, TypeScriptRef, TypeArray, TypeStaticArray:
		return true
	}
	return false
}

type Type struct {
	Shape TypeKind
	Inner Index[Type] // set for wrapper kinds only
	Size  uint32      // StaticArray length
}

type Class struct {
	Visibility Visibility
	Base       Index[Class]
	Fields     []Index[Field]
	Functions  []Index[Function]
	Flags      ClassFlags
}

// SourceReference points at the file a function was declared in.
type SourceReference struct {
	File Index[SourceFile]
	Line uint32
}

type Function struct {
	Visibility Visibility
	Flags      FunctionFlags
	Parameters []Index[Parameter]
	ReturnType Index[Type] // undefined for void
	Source     *SourceReference
}

type Field struct {
	Type  Index[Type]
	Flags FieldFlags
}

type Parameter struct {
	Type  Index[Type]
	Flags ParameterFlags
}

type Enum struct {
	Members []Index[EnumValue]
}

type EnumValue struct {
	Value int64
}

type SourceFile struct {
	Path string
}

type Local struct {
	Type Index[Type]
}

func (*Type) Kind() Kind       { return KindType }
func (*Class) Kind() Kind      { return KindClass }
func (*Function) Kind() Kind   { return KindFunction }
func (*Field) Kind() Kind      { return KindField }
func (*Parameter) Kind() Kind  { return KindParameter }
func (*Enum) Kind() Kind       { return KindEnum }
func (*EnumValue) Kind() Kind  { return KindEnumValue }
func (*SourceFile) Kind() Kind { return KindSourceFile }
func (*Local) Kind() Kind      { return KindLocal }

func (*Type) sealed()       {}
func (*Class) sealed()      {}
func (*Function) sealed()   {}
func (*Field) sealed()      {}
func (*Parameter) sealed()  {}
func (*Enum) sealed()       {}
func (*EnumValue) sealed()  {}
func (*SourceFile) sealed() {}
func (*Local) sealed()      {}

// IsExported reports whether the kind appears as a standalone document.
func IsExported(k Kind) bool {
	return k == KindClass || k == KindFunction || k == KindEnum
}
