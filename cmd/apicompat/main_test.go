package main

import (
	"testing"

	"feedsite/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
paths:
  /Content:
    get:
      responses:
        "200": {description: OK}
    post:
      responses:
        "201": {description: Created}
        "400": {description: Bad}
`

func TestParseDoc_EmbeddedDocumentCoversClientRoutes(t *testing.T) {
	doc, err := parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)
	assert.Empty(t, missingClientRoutes(doc))
	assert.Empty(t, compare(doc, doc))
}

func TestParseDoc_MissingPaths(t *testing.T) {
	_, err := parseDoc([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	base, err := parseDoc([]byte(baseYAML))
	require.NoError(t, err)

	revision, err := parseDoc([]byte(`
paths:
  /Content:
    get:
      responses:
        "200": {description: OK}
        "500": {description: Added}
    post:
      responses:
        "201": {description: Created}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"removed response code: POST /Content -> 400"}, compare(base, revision))

	revision, err = parseDoc([]byte(`{"paths": {"/Other": {"get": {"responses": {"200": {}}}}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"removed path: /Content"}, compare(base, revision))
	assert.Contains(t, missingClientRoutes(revision), "missing client route: GET /Content")
}
