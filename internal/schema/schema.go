// Package schema publishes the shape of generated documents as OpenAPI 3
// component schemas.
package schema

import (
	"math"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/pool"
)

// Version changes whenever a document key, tag or kind string changes.
const Version = "bundledoc-schema-v1"

// Component names under #/components/schemas.
const (
	NameType       = encode.TagType
	NameClass      = encode.TagClass
	NameFunction   = encode.TagFunction
	NameField      = encode.TagField
	NameParameter  = encode.TagParameter
	NameEnum       = encode.TagEnum
	NameEnumValue  = encode.TagEnumValue
	NameSourceFile = "SourceFile"
	NameReference  = "Reference"
	NameIndex      = "Index"
	NameDocument   = "Document"
)

// Document builds the schema document. Each call returns a fresh value.
func Document() *openapi3.T {
	schemas := Schemas()
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "bundledoc output",
			Description: "Documents generated from a definition pool and the flat index that lists them.",
			Version:     Version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}
}

// Schemas returns the component schemas keyed by name, with references
// between them already resolved.
func Schemas() openapi3.Schemas {
	schemas := make(openapi3.Schemas)
	ref := func(name string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, schemas[name].Value)
	}
	add := func(name string, schema *openapi3.Schema) {
		schemas[name] = openapi3.NewSchemaRef("", schema)
	}

	typeSchema := closedObject("tag", "kind")
	add(NameType, typeSchema)
	typeSchema.
		WithProperty("tag", tagSchema(encode.TagType)).
		WithProperty("kind", kindSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("index", indexSchema()).
		WithProperty("size", indexSchema()).
		WithPropertyRef("inner", ref(NameType))

	add(NameReference, closedObject("name", "index").
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("index", indexSchema()).
		WithProperty("base", indexSchema()))

	schemas[NameIndex] = arrayOf(ref(NameReference))

	add(NameSourceFile, openapi3.NewStringSchema())

	add(NameParameter, closedObject("tag", "name", "type", "isOut", "isOptional").
		WithProperty("tag", tagSchema(encode.TagParameter)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithPropertyRef("type", ref(NameType)).
		WithProperty("isOut", openapi3.NewBoolSchema()).
		WithProperty("isOptional", openapi3.NewBoolSchema()))

	add(NameField, closedObject("tag", "name", "type", "isNative", "isEdit", "isInline", "isConst", "isRep", "isPersistent").
		WithProperty("tag", tagSchema(encode.TagField)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithPropertyRef("type", ref(NameType)).
		WithProperty("isNative", openapi3.NewBoolSchema()).
		WithProperty("isEdit", openapi3.NewBoolSchema()).
		WithProperty("isInline", openapi3.NewBoolSchema()).
		WithProperty("isConst", openapi3.NewBoolSchema()).
		WithProperty("isRep", openapi3.NewBoolSchema()).
		WithProperty("isPersistent", openapi3.NewBoolSchema()))

	add(NameFunction, closedObject("tag", "name", "parameters", "visibility", "isStatic", "isFinal", "isExec", "isCallback", "isNative").
		WithProperty("tag", tagSchema(encode.TagFunction)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithPropertyRef("parameters", arrayOf(ref(NameParameter))).
		WithPropertyRef("returnType", ref(NameType)).
		WithProperty("visibility", visibilitySchema()).
		WithProperty("isStatic", openapi3.NewBoolSchema()).
		WithProperty("isFinal", openapi3.NewBoolSchema()).
		WithProperty("isExec", openapi3.NewBoolSchema()).
		WithProperty("isCallback", openapi3.NewBoolSchema()).
		WithProperty("isNative", openapi3.NewBoolSchema()).
		WithPropertyRef("source", ref(NameSourceFile)))

	add(NameClass, closedObject("tag", "name", "visibility", "bases", "fields", "methods", "isNative", "isAbstract", "isFinal", "isStruct").
		WithProperty("tag", tagSchema(encode.TagClass)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("visibility", visibilitySchema()).
		WithPropertyRef("bases", arrayOf(ref(NameReference))).
		WithPropertyRef("fields", arrayOf(ref(NameField))).
		WithPropertyRef("methods", arrayOf(ref(NameFunction))).
		WithProperty("isNative", openapi3.NewBoolSchema()).
		WithProperty("isAbstract", openapi3.NewBoolSchema()).
		WithProperty("isFinal", openapi3.NewBoolSchema()).
		WithProperty("isStruct", openapi3.NewBoolSchema()))

	add(NameEnumValue, closedObject("tag", "name", "value").
		WithProperty("tag", tagSchema(encode.TagEnumValue)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("value", openapi3.NewInt64Schema()))

	add(NameEnum, closedObject("tag", "name", "members").
		WithProperty("tag", tagSchema(encode.TagEnum)).
		WithProperty("name", openapi3.NewStringSchema()).
		WithPropertyRef("members", arrayOf(ref(NameEnumValue))))

	document := &openapi3.Schema{
		Description: "One generated document per root class, function or enum.",
		OneOf:       openapi3.SchemaRefs{ref(NameClass), ref(NameFunction), ref(NameEnum)},
	}
	add(NameDocument, document)

	return schemas
}

func closedObject(required ...string) *openapi3.Schema {
	schema := openapi3.NewObjectSchema().WithoutAdditionalProperties()
	schema.Required = required
	return schema
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	schema := openapi3.NewArraySchema()
	schema.Items = items
	return openapi3.NewSchemaRef("", schema)
}

func tagSchema(tag string) *openapi3.Schema {
	return openapi3.NewStringSchema().WithEnum(tag)
}

func indexSchema() *openapi3.Schema {
	return openapi3.NewIntegerSchema().WithMin(0).WithMax(math.MaxUint32)
}

func kindSchema() *openapi3.Schema {
	values := make([]any, 0, 7)
	for kind := pool.TypePrim; kind <= pool.TypeStaticArray; kind++ {
		values = append(values, kind.String())
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

func visibilitySchema() *openapi3.Schema {
	return openapi3.NewStringSchema().WithEnum("public", "protected", "private")
}
