package storage

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blindspotlabs/dublin-planning-rag/internal/document"
)

func TestBuildPoint(t *testing.T) {
	doc := document.IndexedDocument{
		Ref:  "2458/24",
		Text: "Planning Application Reference: 2458/24",
		Meta: map[string]any{
			"ref":        "2458/24",
			"decision":   "GRANT PERMISSION",
			"has_appeal": "false",
			"lat":        53.3244,
		},
	}
	vector := []float32{0.1, 0.2, 0.3}

	point := BuildPoint(doc, vector, 7)

	payload := point.Payload
	assert.Equal(t, "record", payload["type"].GetStringValue())
	assert.Equal(t, doc.Text, payload["text"].GetStringValue())
	assert.Equal(t, "2458/24", payload["ref"].GetStringValue())
	assert.Equal(t, 53.3244, payload["lat"].GetDoubleValue())

	vectors := point.Vectors.GetVectors().GetVectors()
	require.Contains(t, vectors, "content")
	assert.Equal(t, vector, vectors["content"].Data)
}

func TestRecordPointID_Deterministic(t *testing.T) {
	a := recordPointID("2458/24", 0)
	b := recordPointID("2458/24", 99)
	assert.Equal(t, a, b, "the id depends on the reference, not the position")

	c := recordPointID("3001/24", 0)
	assert.NotEqual(t, a, c)
}

func TestRecordPointID_FallbackForMissingRef(t *testing.T) {
	a := recordPointID("", 1)
	b := recordPointID("", 2)
	assert.NotEqual(t, a, b, "positional fallback ids must not collide")
	assert.NotEqual(t, a, metaPointID())
}

func TestSplitPayload(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"type":       "record",
		"text":       "the document body",
		"ref":        "2458/24",
		"lat":        53.3244,
		"has_appeal": "false",
	})

	text, meta := splitPayload(payload)

	assert.Equal(t, "the document body", text)
	assert.NotContains(t, meta, "type")
	assert.NotContains(t, meta, "text")
	assert.Equal(t, "2458/24", meta["ref"])
	assert.Equal(t, 53.3244, meta["lat"])
	assert.Equal(t, "false", meta["has_appeal"])
}
