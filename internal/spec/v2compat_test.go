package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestV2Compat_MultipleBodyMerged(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    post:
      parameters:
      - in: body
        name: a
        required: true
        schema: { type: string }
      - in: body
        name: b
        schema: { type: integer }
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	require.NoError(t, err)
	require.True(t, changed)
	s := string(out)
	assert.Contains(t, s, "in: body")
	assert.Contains(t, s, "name: body")
	assert.Equal(t, 1, strings.Count(s, "in: body"))
}

func TestV2Compat_BodyAndFormData_ToFormData(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /upload:
    post:
      parameters:
      - in: body
        name: desc
        schema: { type: string }
      - in: formData
        name: file
        type: file
        required: true
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	require.NoError(t, err)
	require.True(t, changed)
	s := string(out)
	assert.NotContains(t, s, "in: body")
	assert.Contains(t, s, "multipart/form-data")
}

func TestV2Compat_UntouchedWhenCompliant(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    get:
      parameters:
      - { in: query, name: q, type: string }
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, in, out)
}

func TestConvertV2_ProducesOpenAPI3(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
consumes: [application/json]
produces: [application/json]
paths:
  /items:
    post:
      operationId: createItem
      parameters:
      - in: body
        name: item
        schema: { $ref: '#/definitions/Item' }
      responses:
        201:
          description: created
          schema: { $ref: '#/definitions/Item' }
definitions:
  Item:
    type: object
    properties:
      name: { type: string }
`)
	out, err := convertV2(in)
	require.NoError(t, err)

	doc, err := Parse(out, "converted")
	require.NoError(t, err)
	require.Len(t, doc.Paths, 1)
	op := doc.Paths[0].Operations[0]
	assert.Equal(t, POST, op.Method)
	require.NotNil(t, op.RequestBody)
	require.NotEmpty(t, op.RequestBody.Content)
	assert.Equal(t, "application/json", op.RequestBody.Content[0].Mime)
	assert.Equal(t, "#/components/schemas/Item", op.RequestBody.Content[0].Schema.Ref)
}

func TestJSONCompatible_StringifiesKeys(t *testing.T) {
	t.Parallel()
	in := map[string]any{"responses": map[any]any{200: "ok", "default": []any{map[any]any{true: 1}}}}
	out := jsonCompatible(in).(map[string]any)
	responses := out["responses"].(map[string]any)
	assert.Equal(t, "ok", responses["200"])
	nested := responses["default"].([]any)[0].(map[string]any)
	assert.Equal(t, 1, nested["true"])
}
