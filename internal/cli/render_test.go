package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/docsql/pkg/query"
)

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("")
	require.NoError(t, err)
	assert.Empty(t, f)

	f, err = parseFilter(`{"age": {"$gte": 21}}`)
	require.NoError(t, err)
	assert.Contains(t, f, "age")

	_, err = parseFilter("{not json")
	require.Error(t, err)
}

func TestParseDoc(t *testing.T) {
	d, err := parseDoc(`{"username": "ann"}`)
	require.NoError(t, err)
	assert.Equal(t, query.Doc{"username": "ann"}, d)

	_, err = parseDoc(`{}`)
	require.Error(t, err)

	_, err = parseDoc(`nope`)
	require.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	docs := []query.Doc{{"id": int64(1), "username": "ann"}}

	require.NoError(t, renderDocs(&buf, nil, docs, "json"))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "ann", decoded[0]["username"])
}

func TestRenderJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderDocs(&buf, nil, nil, "json"))
	assert.JSONEq(t, "[]", buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	docs := []query.Doc{
		{"id": int64(1), "username": "ann"},
		{"id": int64(2), "username": nil},
	}

	require.NoError(t, renderDocs(&buf, []string{"id", "username"}, docs, "table"))
	out := buf.String()
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderTableNoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderDocs(&buf, nil, nil, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}
