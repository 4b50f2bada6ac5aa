package storage

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/blindspotlabs/dublin-planning-rag/internal/document"
)

// pointNamespace seeds deterministic point ids so rebuilding the index
// assigns every planning reference the same id each time.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blindspotlabs.ie/dublin-planning"))

// BuildPoint converts a synthesized document and its embedding into a
// Qdrant point. The id derives from the planning reference; pos is the
// document's position in the batch stream, used as a fallback id for
// documents that somehow lack a reference.
func BuildPoint(doc document.IndexedDocument, vector []float32, pos int) *qdrant.PointStruct {
	payload := make(map[string]any, len(doc.Meta)+2)
	for k, v := range doc.Meta {
		payload[k] = v
	}
	payload["type"] = typeRecord
	payload["text"] = doc.Text

	return &qdrant.PointStruct{
		Id: qdrant.NewIDUUID(recordPointID(doc.Ref, pos)),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			vectorName: qdrant.NewVector(vector...),
		}),
		Payload: qdrant.NewValueMap(payload),
	}
}

// recordPointID derives a stable UUID from the planning reference, falling
// back to a positional id when the reference is empty.
func recordPointID(ref string, pos int) string {
	name := "plan_" + ref
	if ref == "" {
		name = fmt.Sprintf("plan_unknown_%d", pos)
	}
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}

func metaPointID() string {
	return uuid.NewSHA1(pointNamespace, []byte("index_meta")).String()
}

// splitPayload separates the document text from the metadata fields of a
// retrieved point, converting Qdrant values back to plain Go types.
func splitPayload(payload map[string]*qdrant.Value) (string, map[string]any) {
	text := ""
	meta := make(map[string]any, len(payload))

	for key, value := range payload {
		switch key {
		case "text":
			text = value.GetStringValue()
		case "type":
			// Internal discriminator, not record metadata.
		default:
			if v := plainValue(value); v != nil {
				meta[key] = v
			}
		}
	}

	return text, meta
}

func plainValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
