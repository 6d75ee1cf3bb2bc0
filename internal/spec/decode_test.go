package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `openapi: 3.1.0
info:
  title: Sample API
  version: "1.0.0"
paths:
  /zoo/{id}:
    parameters:
      - in: path
        name: id
        required: true
        schema: { type: string }
    summary: ignored path-level field
    post:
      operationId: feedZoo
      tags: [Zoo, Zoo, " Admin "]
      requestBody:
        $ref: '#/components/requestBodies/Food'
      responses:
        "201":
          $ref: '#/components/responses/Fed'
    get:
      operationId: getZoo
      parameters:
        - $ref: '#/components/parameters/Limit'
        - $ref: '#/components/parameters/Missing'
      responses:
        "200":
          description: ok
  /apes:
    get:
      operationId: listApes
      responses: {}
components:
  parameters:
    Limit:
      in: query
      name: limit
      schema: { type: integer }
  requestBodies:
    Food:
      required: true
      content:
        application/json:
          schema: { $ref: '#/components/schemas/Food' }
  responses:
    Fed:
      description: fed
      content:
        application/json:
          schema: { type: boolean }
  schemas:
    Zebra:
      type: object
      required: [id]
      properties:
        id: { type: string, description: "  identifier  " }
        stripes: { type: [integer, "null"] }
        extra: {}
        tags:
          type: object
          additionalProperties: { $ref: '#/components/schemas/Food' }
    Food:
      type: string
      enum: [hay, 3, true, null]
    Animal:
      oneOf:
        - $ref: '#/components/schemas/Zebra'
        - type: string
          format: binary
`

func decodeSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(strings.TrimSpace(sampleSpec)), "inline")
	require.NoError(t, err)
	return doc
}

func TestDecode_PreservesDocumentOrder(t *testing.T) {
	t.Parallel()
	doc := decodeSample(t)

	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, "Sample API", doc.Title)

	var names []string
	for _, s := range doc.Schemas {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Zebra", "Food", "Animal"}, names)

	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/zoo/{id}", doc.Paths[0].Template)
	assert.Equal(t, "/apes", doc.Paths[1].Template)

	ops := doc.Paths[0].Operations
	require.Len(t, ops, 2)
	assert.Equal(t, POST, ops[0].Method)
	assert.Equal(t, GET, ops[1].Method)

	zebra := doc.Schemas[0].Schema
	require.Equal(t, KindObject, zebra.Kind)
	var props []string
	for _, p := range zebra.Properties {
		props = append(props, p.Name)
	}
	assert.Equal(t, []string{"id", "stripes", "extra", "tags"}, props)
}

func TestDecode_ResolvesComponentIndirection(t *testing.T) {
	t.Parallel()
	doc := decodeSample(t)
	item := doc.Paths[0]

	require.Len(t, item.Parameters, 1)
	assert.Equal(t, "id", item.Parameters[0].Name)

	feed := item.Operations[0]
	assert.Equal(t, []string{"Zoo", "Admin"}, feed.Tags)
	require.NotNil(t, feed.RequestBody)
	assert.True(t, feed.RequestBody.Required)
	require.Len(t, feed.RequestBody.Content, 1)
	assert.Equal(t, "#/components/schemas/Food", feed.RequestBody.Content[0].Schema.Ref)
	require.Len(t, feed.Responses, 1)
	assert.Equal(t, "201", feed.Responses[0].Status)
	assert.Equal(t, "fed", feed.Responses[0].Description)

	get := item.Operations[1]
	require.Len(t, get.Parameters, 1, "unresolvable parameter refs are dropped")
	assert.Equal(t, "limit", get.Parameters[0].Name)
	assert.Equal(t, "query", get.Parameters[0].In)
}

func TestDecode_SchemaVariants(t *testing.T) {
	t.Parallel()
	doc := decodeSample(t)
	zebra, food, animal := doc.Schemas[0].Schema, doc.Schemas[1].Schema, doc.Schemas[2].Schema

	assert.True(t, zebra.IsRequired("id"))
	assert.False(t, zebra.IsRequired("stripes"))

	id := zebra.Properties[0].Schema
	assert.Equal(t, KindPrimitive, id.Kind)
	assert.Equal(t, "identifier", id.Description)

	stripes := zebra.Properties[1].Schema
	assert.Equal(t, KindPrimitive, stripes.Kind)
	assert.Equal(t, "integer", stripes.Type)
	assert.True(t, stripes.Nullable)

	extra := zebra.Properties[2].Schema
	assert.Equal(t, KindEmpty, extra.Kind)
	assert.True(t, extra.IsEmpty())

	tags := zebra.Properties[3].Schema
	assert.Equal(t, KindObject, tags.Kind)
	require.NotNil(t, tags.AdditionalProperties)
	assert.Equal(t, KindReference, tags.AdditionalProperties.Kind)
	assert.False(t, tags.IsEmpty())

	require.Equal(t, KindEnum, food.Kind)
	assert.Equal(t, []EnumValue{
		{Literal: "hay", Textual: true},
		{Literal: "3"},
		{Literal: "true"},
		{Literal: "null"},
	}, food.Enum)

	require.Equal(t, KindComposite, animal.Kind)
	assert.Equal(t, OneOf, animal.Composite)
	require.Len(t, animal.Members, 2)
	assert.Equal(t, "binary", animal.Members[1].Format)
}

func TestDecode_QuotedEnumNumbersStayTextual(t *testing.T) {
	t.Parallel()
	doc, err := Parse([]byte(`{"openapi":"3.0.0","components":{"schemas":{"Code":{"enum":["1", 2]}}}}`), "inline")
	require.NoError(t, err)
	assert.Equal(t, []EnumValue{{Literal: "1", Textual: true}, {Literal: "2"}}, doc.Schemas[0].Schema.Enum)
}

func TestDecode_ToleratesOddShapes(t *testing.T) {
	t.Parallel()
	raw := `{
  "openapi": "3.0.0",
  "info": "not an object",
  "paths": {
    "/a": "nope",
    "/b": {"get": ["also", "nope"], "x-extra": {}, "PUT": {"operationId": "putB", "tags": "not-a-list", "parameters": [{"in": "query"}]}}
  },
  "components": {"schemas": {"Weird": 42, "Any": true, "Typed": {"type": "file"}, "Empty": {"allOf": []}}}
}`
	doc, err := Parse([]byte(raw), "inline")
	require.NoError(t, err)
	assert.Empty(t, doc.Title)

	require.Len(t, doc.Paths, 2)
	assert.Empty(t, doc.Paths[0].Operations)
	ops := doc.Paths[1].Operations
	require.Len(t, ops, 2)
	assert.Equal(t, "", ops[0].OperationID)
	assert.Equal(t, PUT, ops[1].Method)
	assert.Empty(t, ops[1].Tags)
	assert.Empty(t, ops[1].Parameters, "parameters without a name are skipped")

	kinds := map[string]SchemaKind{}
	for _, s := range doc.Schemas {
		kinds[s.Name] = s.Schema.Kind
	}
	assert.Equal(t, map[string]SchemaKind{
		"Weird": KindUnknown,
		"Any":   KindEmpty,
		"Typed": KindUnknown,
		"Empty": KindEmpty,
	}, kinds)
	for _, s := range doc.Schemas {
		if s.Name == "Typed" {
			assert.False(t, s.Schema.IsEmpty(), "a declared but unsupported type is not empty")
		}
	}
}

func TestDecode_YAMLAnchorsAreFollowed(t *testing.T) {
	t.Parallel()
	raw := `openapi: 3.0.0
components:
  schemas:
    Base: &base
      type: object
      properties:
        id: { type: string }
    Copy: *base
`
	doc, err := Parse([]byte(raw), "inline")
	require.NoError(t, err)
	require.Len(t, doc.Schemas, 2)
	assert.Equal(t, KindObject, doc.Schemas[1].Schema.Kind)
	assert.Len(t, doc.Schemas[1].Schema.Properties, 1)
}
