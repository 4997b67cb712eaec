package spec

import (
	"context"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
servers:
  - url: https://petstore.example.com/v1
paths:
  /pets:
    parameters:
      - in: query
        name: limit
        required: false
        schema:
          type: integer
      - in: header
        name: X-Trace
        schema:
          type: string
    get:
      summary: List pets
      tags: [read, " animal "]
      parameters:
        - in: query
          name: status
          required: true
          schema:
            type: string
        - in: query
          name: limit
          required: true
          schema:
            type: integer
        - in: query
          name: ids
          schema:
            type: array
            items:
              type: integer
      responses:
        "200":
          description: ok
    post:
      operationId: createPet
      responses:
        "201":
          description: created
  /admin:
    get:
      tags: [admin]
      responses:
        "200": { description: ok }
`

func loadDoc(t *testing.T, spec string) (*openapi3.T, []byte) {
	t.Helper()
	raw := []byte(strings.TrimSpace(spec))
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	return doc, raw
}

func TestFromOpenAPI_Basic(t *testing.T) {
	t.Parallel()
	oas, raw := loadDoc(t, sampleSpec)

	doc, err := FromOpenAPI(oas, raw)
	require.NoError(t, err)
	assert.Equal(t, "Sample API", doc.Title)
	assert.Equal(t, "1.0.0", doc.Version)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "https://petstore.example.com/v1", doc.Servers[0].URL)
	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/pets", doc.Paths[0].Path)
	assert.Equal(t, "/admin", doc.Paths[1].Path)

	pets := doc.Paths[0]
	require.Len(t, pets.Operations, 2)
	assert.Equal(t, GET, pets.Operations[0].Method)
	assert.Equal(t, POST, pets.Operations[1].Method)

	get := pets.Operations[0]
	assert.Empty(t, get.OperationID)
	assert.Equal(t, []string{"read", "animal"}, get.Tags)
	assert.Equal(t, "List pets", get.Summary)
	assert.Equal(t, "createPet", pets.Operations[1].OperationID)
}

func TestFromOpenAPI_ParameterMerge(t *testing.T) {
	t.Parallel()
	oas, raw := loadDoc(t, sampleSpec)
	doc, err := FromOpenAPI(oas, raw)
	require.NoError(t, err)
	get, ok := doc.Paths[0].Operation(GET)
	require.True(t, ok, "get /pets missing")

	// Path-level limit is replaced in place by the operation-level one.
	var names []string
	for _, p := range get.Parameters {
		names = append(names, p.In+":"+p.Name)
	}
	assert.Equal(t, []string{"query:limit", "header:X-Trace", "query:status", "query:ids"}, names)

	limit := get.Parameters[0]
	assert.True(t, limit.Required)
	assert.Equal(t, "integer", limit.SchemaType)

	ids := get.Parameters[3]
	assert.Equal(t, "array", ids.SchemaType)
	assert.Equal(t, "integer", ids.ItemType)
	assert.False(t, ids.Required)

	// The post operation inherits only the path-level parameters.
	post, _ := doc.Paths[0].Operation(POST)
	require.Len(t, post.Parameters, 2)
	assert.False(t, post.Parameters[0].Required)
}

func TestFromOpenAPI_NoRawSortsPaths(t *testing.T) {
	t.Parallel()
	oas, _ := loadDoc(t, sampleSpec)
	doc, err := FromOpenAPI(oas, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin", doc.Paths[0].Path)
	assert.Equal(t, "/pets", doc.Paths[1].Path)
}

func TestFromOpenAPI_NilDocument(t *testing.T) {
	t.Parallel()
	_, err := FromOpenAPI(nil, nil)
	assert.Error(t, err)
}

func TestDocumentClone_Independent(t *testing.T) {
	t.Parallel()
	oas, raw := loadDoc(t, sampleSpec)
	doc, err := FromOpenAPI(oas, raw)
	require.NoError(t, err)

	cp := doc.Clone()
	cp.Paths[0].Operations[0].OperationID = "changed"
	cp.Paths[0].Operations[0].Tags[0] = "changed"
	assert.Empty(t, doc.Paths[0].Operations[0].OperationID)
	assert.Equal(t, "read", doc.Paths[0].Operations[0].Tags[0])
}
