// Package encode turns pool definitions into self-describing document trees.
//
// Every cross reference in a definition is resolved through the pool and
// expanded in place, except base classes, which are listed as references
// (name and index) so that shared ancestors are not repeated in full.
package encode

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/pool"
)

// MaxTypeDepth bounds wrapper nesting such as ref:array:weakref:Foo.
const MaxTypeDepth = 64

var (
	ErrUnsupportedKind = errors.Base("unsupported definition kind")
	ErrCyclicBaseChain = errors.Base("cyclic base chain")
	ErrTypeTooDeep     = errors.Base("type nesting too deep")
)

// Encoder encodes definitions of a single pool. It is safe for concurrent use
// once created, provided the pool is not modified.
type Encoder struct {
	pool pool.ConstantPool
	// class and enum definitions by name, used to resolve class-typed types
	types map[pool.Index[pool.CName]]pool.Index[pool.Definition]
}

func New(p pool.ConstantPool) *Encoder {
	types := make(map[pool.Index[pool.CName]]pool.Index[pool.Definition])
	for idx, def := range p.Definitions() {
		switch def.Value.(type) {
		case *pool.Class, *pool.Enum:
			if _, exists := types[def.Name]; !exists {
				types[def.Name] = idx
			}
		}
	}
	return &Encoder{pool: p, types: types}
}

// EncodeIndex resolves idx and encodes the definition found there.
func (e *Encoder) EncodeIndex(idx pool.Index[pool.Definition]) (any, error) {
	def, err := e.pool.Definition(idx)
	if err != nil {
		return nil, err
	}
	return e.Encode(def)
}

// Encode returns the document node for def. Source files encode to their
// path string; every other kind encodes to one of the *Node structs.
func (e *Encoder) Encode(def *pool.Definition) (any, error) {
	switch value := def.Value.(type) {
	case *pool.Type:
		node, err := e.encodeType(def, value, 0)
		if err != nil {
			return nil, err
		}
		return *node, nil
	case *pool.Class:
		return nodeOrNil(e.encodeClass(def, value))
	case *pool.Function:
		return nodeOrNil(e.encodeFunction(def, value))
	case *pool.Field:
		return nodeOrNil(e.encodeField(def, value))
	case *pool.Parameter:
		return nodeOrNil(e.encodeParameter(def, value))
	case *pool.Enum:
		return nodeOrNil(e.encodeEnum(def, value))
	case *pool.EnumValue:
		return nodeOrNil(e.encodeEnumValue(def, value))
	case *pool.SourceFile:
		return value.Path, nil
	case *pool.Local:
		return nil, errors.Errorf("%w: local variables have no document form", ErrUnsupportedKind)
	default:
		return nil, errors.Errorf("%w: %T", ErrUnsupportedKind, value)
	}
}

// nodeOrNil drops the zero node that accompanies an error, so a failed
// encode never yields a document.
func nodeOrNil[N any](node N, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (e *Encoder) name(def *pool.Definition) (string, error) {
	return e.pool.Name(def.Name)
}

func (e *Encoder) typeAt(idx pool.Index[pool.Type], depth int) (*TypeNode, error) {
	def, value, err := pool.Resolve(e.pool, idx)
	if err != nil {
		return nil, err
	}
	return e.encodeType(def, value, depth)
}

func (e *Encoder) encodeType(def *pool.Definition, value *pool.Type, depth int) (*TypeNode, error) {
	if depth > MaxTypeDepth {
		return nil, errors.Errorf("%w: more than %d wrappers", ErrTypeTooDeep, MaxTypeDepth)
	}

	node := &TypeNode{Tag: TagType, Kind: value.Shape.String()}
	switch value.Shape {
	case pool.TypePrim:
		name, err := e.name(def)
		if err != nil {
			return nil, err
		}
		node.Name = &name
	case pool.TypeClass:
		name, err := e.name(def)
		if err != nil {
			return nil, err
		}
		target, ok := e.types[def.Name]
		if !ok {
			return nil, errors.Errorf("%w: no class or enum named %q", pool.ErrResolution, name)
		}
		index := uint32(target)
		node.Name = &name
		node.Index = &index
	case pool.TypeRef, pool.TypeWeakRef, pool.TypeScriptRef, pool.TypeArray, pool.TypeStaticArray:
		inner, err := e.typeAt(value.Inner, depth+1)
		if err != nil {
			return nil, err
		}
		node.Inner = inner
		if value.Shape == pool.TypeStaticArray {
			size := value.Size
			node.Size = &size
		}
	default:
		return nil, errors.Errorf("%w: type kind %d", ErrUnsupportedKind, value.Shape)
	}
	return node, nil
}

func (e *Encoder) encodeClass(def *pool.Definition, value *pool.Class) (ClassNode, error) {
	name, err := e.name(def)
	if err != nil {
		return ClassNode{}, err
	}
	bases, err := e.Bases(value.Base)
	if err != nil {
		return ClassNode{}, errors.Errorf("bases of %s: %w", name, err)
	}

	fields := make([]FieldNode, 0, len(value.Fields))
	for _, idx := range value.Fields {
		fieldDef, field, err := pool.Resolve(e.pool, idx)
		if err != nil {
			return ClassNode{}, errors.Errorf("field %d of %s: %w", idx, name, err)
		}
		node, err := e.encodeField(fieldDef, field)
		if err != nil {
			return ClassNode{}, errors.Errorf("field %d of %s: %w", idx, name, err)
		}
		fields = append(fields, node)
	}

	methods := make([]FunctionNode, 0, len(value.Functions))
	for _, idx := range value.Functions {
		fnDef, fn, err := pool.Resolve(e.pool, idx)
		if err != nil {
			return ClassNode{}, errors.Errorf("method %d of %s: %w", idx, name, err)
		}
		node, err := e.encodeFunction(fnDef, fn)
		if err != nil {
			return ClassNode{}, errors.Errorf("method %d of %s: %w", idx, name, err)
		}
		methods = append(methods, node)
	}

	return ClassNode{
		Tag:        TagClass,
		Name:       name,
		Visibility: visibility(value.Visibility),
		Bases:      bases,
		Fields:     fields,
		Methods:    methods,
		IsNative:   value.Flags.IsNative(),
		IsAbstract: value.Flags.IsAbstract(),
		IsFinal:    value.Flags.IsFinal(),
		IsStruct:   value.Flags.IsStruct(),
	}, nil
}

func (e *Encoder) encodeFunction(def *pool.Definition, value *pool.Function) (FunctionNode, error) {
	name, err := e.name(def)
	if err != nil {
		return FunctionNode{}, err
	}

	params := make([]ParameterNode, 0, len(value.Parameters))
	for _, idx := range value.Parameters {
		paramDef, param, err := pool.Resolve(e.pool, idx)
		if err != nil {
			return FunctionNode{}, errors.Errorf("parameter %d of %s: %w", idx, name, err)
		}
		node, err := e.encodeParameter(paramDef, param)
		if err != nil {
			return FunctionNode{}, errors.Errorf("parameter %d of %s: %w", idx, name, err)
		}
		params = append(params, node)
	}

	node := FunctionNode{
		Tag:        TagFunction,
		Name:       name,
		Parameters: params,
		Visibility: visibility(value.Visibility),
		IsStatic:   value.Flags.IsStatic(),
		IsFinal:    value.Flags.IsFinal(),
		IsExec:     value.Flags.IsExec(),
		IsCallback: value.Flags.IsCallback(),
		IsNative:   value.Flags.IsNative(),
	}
	if !value.ReturnType.IsUndefined() {
		returnType, err := e.typeAt(value.ReturnType, 0)
		if err != nil {
			return FunctionNode{}, errors.Errorf("return type of %s: %w", name, err)
		}
		node.ReturnType = returnType
	}
	if value.Source != nil {
		_, file, err := pool.Resolve(e.pool, value.Source.File)
		if err != nil {
			return FunctionNode{}, errors.Errorf("source of %s: %w", name, err)
		}
		path := file.Path
		node.Source = &path
	}
	return node, nil
}

func (e *Encoder) encodeParameter(def *pool.Definition, value *pool.Parameter) (ParameterNode, error) {
	name, err := e.name(def)
	if err != nil {
		return ParameterNode{}, err
	}
	typ, err := e.typeAt(value.Type, 0)
	if err != nil {
		return ParameterNode{}, errors.Errorf("type of %s: %w", name, err)
	}
	return ParameterNode{
		Tag:        TagParameter,
		Name:       name,
		Type:       *typ,
		IsOut:      value.Flags.IsOut(),
		IsOptional: value.Flags.IsOptional(),
	}, nil
}

func (e *Encoder) encodeField(def *pool.Definition, value *pool.Field) (FieldNode, error) {
	name, err := e.name(def)
	if err != nil {
		return FieldNode{}, err
	}
	typ, err := e.typeAt(value.Type, 0)
	if err != nil {
		return FieldNode{}, errors.Errorf("type of %s: %w", name, err)
	}
	// field names are written without their signature suffix
	return FieldNode{
		Tag:          TagField,
		Name:         pool.PrettyName(name),
		Type:         *typ,
		IsNative:     value.Flags.IsNative(),
		IsEdit:       value.Flags.IsEditable(),
		IsInline:     value.Flags.IsInline(),
		IsConst:      value.Flags.IsConst(),
		IsRep:        value.Flags.IsReplicated(),
		IsPersistent: value.Flags.IsPersistent(),
	}, nil
}

func (e *Encoder) encodeEnum(def *pool.Definition, value *pool.Enum) (EnumNode, error) {
	name, err := e.name(def)
	if err != nil {
		return EnumNode{}, err
	}
	members := make([]EnumValueNode, 0, len(value.Members))
	for _, idx := range value.Members {
		memberDef, member, err := pool.Resolve(e.pool, idx)
		if err != nil {
			return EnumNode{}, errors.Errorf("member %d of %s: %w", idx, name, err)
		}
		node, err := e.encodeEnumValue(memberDef, member)
		if err != nil {
			return EnumNode{}, errors.Errorf("member %d of %s: %w", idx, name, err)
		}
		members = append(members, node)
	}
	return EnumNode{Tag: TagEnum, Name: name, Members: members}, nil
}

func (e *Encoder) encodeEnumValue(def *pool.Definition, value *pool.EnumValue) (EnumValueNode, error) {
	name, err := e.name(def)
	if err != nil {
		return EnumValueNode{}, err
	}
	return EnumValueNode{Tag: TagEnumValue, Name: name, Value: value.Value}, nil
}

func visibility(v pool.Visibility) string {
	return strings.ToLower(v.String())
}
