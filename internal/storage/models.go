package storage

import "time"

// CollectionName is the single Qdrant collection holding planning records.
const CollectionName = "dublin_planning"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536

// vectorName is the named vector carrying the document embedding. Named
// vectors let the vector-less index metadata point share the collection.
const vectorName = "content"

// Payload values for the "type" discriminator.
const (
	typeRecord = "record"
	typeMeta   = "meta"
)

// SearchHit is one nearest-neighbour match: the synthesized document text,
// its metadata payload, and the cosine distance to the query. Hits arrive
// in ascending-distance order.
type SearchHit struct {
	Text     string
	Meta     map[string]any
	Distance float64
}

// IndexStatus describes the persisted index, read from its metadata point.
type IndexStatus struct {
	EmbeddingModel string
	BuiltAt        time.Time
	Records        uint64
}
