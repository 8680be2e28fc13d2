package pool

import (
	"io"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// A pool dump is the textual form of a decoded bundle:
//
//	names: ["Vehicle", "speed;Float", "Float"]
//	definitions:
//	  - index: 1
//	    name: 0
//	    class: {visibility: public, fields: [2]}
//	  - index: 2
//	    name: 1
//	    parent: 1
//	    field: {type: 3}
//	  - index: 3
//	    name: 2
//	    type: {kind: prim}
//
// Name indices are positions in names. JSON dumps decode the same way.
type dumpFile struct {
	Names       []string         `yaml:"names"`
	Definitions []dumpDefinition `yaml:"definitions"`
}

type dumpDefinition struct {
	Index  uint32 `yaml:"index"`
	Name   uint32 `yaml:"name"`
	Parent uint32 `yaml:"parent"`

	Type       *dumpType      `yaml:"type"`
	Class      *dumpClass     `yaml:"class"`
	Function   *dumpFunction  `yaml:"function"`
	Field      *dumpField     `yaml:"field"`
	Parameter  *dumpField     `yaml:"parameter"`
	Enum       *dumpEnum      `yaml:"enum"`
	EnumValue  *dumpEnumValue `yaml:"enumValue"`
	SourceFile *dumpSource    `yaml:"sourceFile"`
	Local      *dumpField     `yaml:"local"`
}

type dumpType struct {
	Kind  string `yaml:"kind"`
	Inner uint32 `yaml:"inner"`
	Size  uint32 `yaml:"size"`
}

type dumpClass struct {
	Visibility string   `yaml:"visibility"`
	Base       uint32   `yaml:"base"`
	Fields     []uint32 `yaml:"fields"`
	Functions  []uint32 `yaml:"functions"`
	Flags      []string `yaml:"flags"`
}

type dumpFunction struct {
	Visibility string   `yaml:"visibility"`
	Flags      []string `yaml:"flags"`
	Parameters []uint32 `yaml:"parameters"`
	ReturnType uint32   `yaml:"returnType"`
	Source     *struct {
		File uint32 `yaml:"file"`
		Line uint32 `yaml:"line"`
	} `yaml:"source"`
}

type dumpField struct {
	Type  uint32   `yaml:"type"`
	Flags []string `yaml:"flags"`
}

type dumpEnum struct {
	Members []uint32 `yaml:"members"`
}

type dumpEnumValue struct {
	Value int64 `yaml:"value"`
}

type dumpSource struct {
	Path string `yaml:"path"`
}

// Load reads a pool dump from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("failed to open pool %s: %w", path, err)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return nil, errors.Errorf("failed to load pool %s: %w", path, err)
	}
	return table, nil
}

// Decode parses a pool dump. It checks the dump's structure but not the
// references between definitions; dangling indices surface during encoding.
func Decode(r io.Reader) (*Table, error) {
	var dump dumpFile
	if err := yaml.NewDecoder(r).Decode(&dump); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("failed to decode pool dump: %w", err)
	}

	table := NewTable()
	for _, name := range dump.Names {
		table.AddName(name)
	}
	for i, raw := range dump.Definitions {
		value, err := raw.value()
		if err != nil {
			return nil, errors.Errorf("definitions[%d] (index %d): %w", i, raw.Index, err)
		}
		def := Definition{
			Name:   Index[CName](raw.Name),
			Parent: Index[Definition](raw.Parent),
			Value:  value,
		}
		if err := table.Put(Index[Definition](raw.Index), def); err != nil {
			return nil, errors.Errorf("definitions[%d]: %w", i, err)
		}
	}
	return table, nil
}

func (d dumpDefinition) value() (AnyDefinition, error) {
	var values []AnyDefinition
	var err error

	if d.Type != nil {
		kind, ok := parseTypeKind(d.Type.Kind)
		if !ok {
			return nil, errors.Errorf("unknown type kind %q", d.Type.Kind)
		}
		values = append(values, &Type{Shape: kind, Inner: Index[Type](d.Type.Inner), Size: d.Type.Size})
	}
	if d.Class != nil {
		class := &Class{
			Base:      Index[Class](d.Class.Base),
			Fields:    toIndices[Field](d.Class.Fields),
			Functions: toIndices[Function](d.Class.Functions),
		}
		if class.Visibility, err = parseVisibility(d.Class.Visibility); err != nil {
			return nil, err
		}
		if class.Flags, err = parseFlags(d.Class.Flags, classFlagNames); err != nil {
			return nil, err
		}
		values = append(values, class)
	}
	if d.Function != nil {
		fn := &Function{
			Parameters: toIndices[Parameter](d.Function.Parameters),
			ReturnType: Index[Type](d.Function.ReturnType),
		}
		if fn.Visibility, err = parseVisibility(d.Function.Visibility); err != nil {
			return nil, err
		}
		if fn.Flags, err = parseFlags(d.Function.Flags, functionFlagNames); err != nil {
			return nil, err
		}
		if d.Function.Source != nil {
			fn.Source = &SourceReference{File: Index[SourceFile](d.Function.Source.File), Line: d.Function.Source.Line}
		}
		values = append(values, fn)
	}
	if d.Field != nil {
		flags, err := parseFlags(d.Field.Flags, fieldFlagNames)
		if err != nil {
			return nil, err
		}
		values = append(values, &Field{Type: Index[Type](d.Field.Type), Flags: flags})
	}
	if d.Parameter != nil {
		flags, err := parseFlags(d.Parameter.Flags, parameterFlagNames)
		if err != nil {
			return nil, err
		}
		values = append(values, &Parameter{Type: Index[Type](d.Parameter.Type), Flags: flags})
	}
	if d.Enum != nil {
		values = append(values, &Enum{Members: toIndices[EnumValue](d.Enum.Members)})
	}
	if d.EnumValue != nil {
		values = append(values, &EnumValue{Value: d.EnumValue.Value})
	}
	if d.SourceFile != nil {
		values = append(values, &SourceFile{Path: d.SourceFile.Path})
	}
	if d.Local != nil {
		values = append(values, &Local{Type: Index[Type](d.Local.Type)})
	}

	switch len(values) {
	case 0:
		return nil, errors.New("definition has no kind")
	case 1:
		return values[0], nil
	default:
		return nil, errors.Errorf("definition has %d kinds, expected one", len(values))
	}
}

func parseVisibility(value string) (Visibility, error) {
	v, ok := ParseVisibility(value)
	if !ok {
		return 0, errors.Errorf("unknown visibility %q", value)
	}
	return v, nil
}

func parseTypeKind(value string) (TypeKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "prim":
		return TypePrim, true
	case "class":
		return TypeClass, true
	case "ref":
		return TypeRef, true
	case "weakref":
		return TypeWeakRef, true
	case "scriptref":
		return TypeScriptRef, true
	case "array":
		return TypeArray, true
	case "staticarray":
		return TypeStaticArray, true
	default:
		return 0, false
	}
}

func toIndices[T any](values []uint32) []Index[T] {
	if len(values) == 0 {
		return nil
	}
	out := make([]Index[T], len(values))
	for i, v := range values {
		out[i] = Index[T](v)
	}
	return out
}
