package pool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

const vehicleDump = `
names: ["Vehicle", "speed;Float", "Float", "Drive;Float", "target", "Mode", "Fast", "vehicle.script"]
definitions:
  - index: 1
    name: 0
    class: {visibility: public, fields: [2], functions: [4], flags: [abstract]}
  - index: 2
    name: 1
    parent: 1
    field: {type: 3, flags: [editable, persistent]}
  - index: 3
    name: 2
    type: {kind: prim}
  - index: 4
    name: 3
    parent: 1
    function:
      visibility: protected
      flags: [final, callback]
      parameters: [5]
      source: {file: 9, line: 12}
  - index: 5
    name: 4
    parent: 4
    parameter: {type: 3, flags: [optional]}
  - index: 7
    name: 5
    enum: {members: [8]}
  - index: 8
    name: 6
    parent: 7
    enumValue: {value: -3}
  - index: 9
    name: 7
    sourceFile: {path: scripts/vehicle.script}
`

func TestDecodeBuildsTable(t *testing.T) {
	table, err := Decode(strings.NewReader(vehicleDump))
	require.NoError(t, err)

	def, class, err := Resolve(table, Index[Class](1))
	require.NoError(t, err)
	assert.Equal(t, KindClass, def.Kind())
	assert.Equal(t, Public, class.Visibility)
	assert.True(t, class.Flags.IsAbstract())
	assert.False(t, class.Flags.IsNative())
	assert.True(t, class.Base.IsUndefined())
	assert.Equal(t, []Index[Field]{2}, class.Fields)

	_, field, err := Resolve(table, Index[Field](2))
	require.NoError(t, err)
	assert.True(t, field.Flags.IsEditable())
	assert.True(t, field.Flags.IsPersistent())
	assert.False(t, field.Flags.IsConst())

	_, fn, err := Resolve(table, Index[Function](4))
	require.NoError(t, err)
	assert.Equal(t, Protected, fn.Visibility)
	assert.True(t, fn.Flags.IsFinal())
	assert.True(t, fn.Flags.IsCallback())
	assert.True(t, fn.ReturnType.IsUndefined())
	require.NotNil(t, fn.Source)
	assert.Equal(t, Index[SourceFile](9), fn.Source.File)

	_, value, err := Resolve(table, Index[EnumValue](8))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), value.Value)

	name, err := DefinitionName(table, Index[Field](2))
	require.NoError(t, err)
	assert.Equal(t, "speed;Float", name)
}

func TestTableRootsSkipNestedDefinitionsAndGaps(t *testing.T) {
	table, err := Decode(strings.NewReader(vehicleDump))
	require.NoError(t, err)

	var roots []Index[Definition]
	for idx := range table.Roots() {
		roots = append(roots, idx)
	}
	assert.Equal(t, []Index[Definition]{1, 3, 7, 9}, roots)

	count := 0
	for range table.Definitions() {
		count++
	}
	assert.Equal(t, 8, count)
}

func TestTableResolutionErrors(t *testing.T) {
	table, err := Decode(strings.NewReader(vehicleDump))
	require.NoError(t, err)

	_, err = table.Definition(0)
	assert.True(t, errors.Is(err, ErrResolution))

	_, err = table.Definition(6)
	assert.True(t, errors.Is(err, ErrResolution), "gap in the table must not resolve")

	_, err = table.Definition(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "definition 42")

	_, err = table.Name(100)
	assert.ErrorIs(t, err, ErrResolution)

	_, _, err = Resolve(table, Index[Class](2))
	assert.ErrorIs(t, err, ErrKindMismatch)
	assert.Contains(t, err.Error(), "is a field, expected class")
}

func TestDecodeRejectsMalformedDefinitions(t *testing.T) {
	cases := map[string]string{
		"no kind":         "definitions: [{index: 1, name: 0}]",
		"two kinds":       "definitions: [{index: 1, enum: {}, sourceFile: {path: a}}]",
		"reserved index":  "definitions: [{index: 0, enum: {}}]",
		"duplicate index": "definitions: [{index: 1, enum: {}}, {index: 1, enum: {}}]",
		"unknown flag":    "definitions: [{index: 1, class: {flags: [sealed]}}]",
		"unknown type":    "definitions: [{index: 1, type: {kind: pointer}}]",
		"visibility":      "definitions: [{index: 1, function: {visibility: internal}}]",
	}
	for name, dump := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(dump))
			require.Error(t, err)
		})
	}
}

func TestDecodeEmptyDump(t *testing.T) {
	table, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestCastKeepsValue(t *testing.T) {
	idx := Index[Class](12)
	assert.Equal(t, Index[Definition](12), Cast[Definition](idx))
	assert.Equal(t, "12", idx.String())
	assert.True(t, Index[Type](0).IsUndefined())
}

func TestResolveTypeKeepsShapeAndKind(t *testing.T) {
	dump := `names: ["Int32", "array:Int32"]
definitions:
  - {index: 1, name: 0, type: {kind: prim}}
  - {index: 2, name: 1, type: {kind: staticarray, inner: 1, size: 8}}
`
	table, err := Decode(strings.NewReader(dump))
	require.NoError(t, err)

	def, typ, err := Resolve(table, Index[Type](2))
	require.NoError(t, err)
	assert.Equal(t, KindType, def.Kind())
	assert.Equal(t, KindType, typ.Kind())
	assert.Equal(t, TypeStaticArray, typ.Shape)
	assert.Equal(t, Index[Type](1), typ.Inner)
	assert.Equal(t, uint32(8), typ.Size)

	_, inner, err := Resolve(table, typ.Inner)
	require.NoError(t, err)
	assert.Equal(t, TypePrim, inner.Shape)

	_, _, err = Resolve(table, Index[Class](2))
	assert.ErrorIs(t, err, ErrKindMismatch)
}
