// Package storage wraps Qdrant as the persistent vector index for planning
// records. The collection is rebuilt wholesale: build deletes and recreates
// it, queries only read. Build and query are assumed not to run
// concurrently against the same store.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// Store wraps the Qdrant client with collection lifecycle management.
type Store struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewStore creates a Qdrant client and verifies connectivity. The health
// check retries with exponential backoff so a server racing a container
// start still comes up; after that, no operation retries internally.
func NewStore(host string, port int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{
		client: client,
		host:   host,
		port:   port,
	}

	if err := store.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// RecreateCollection drops any existing collection under the logical name
// and creates a fresh one pinned to cosine distance, then writes the index
// metadata point recording the embedding model. Cosine is load-bearing: the
// retriever's relevance = 1 - distance identity assumes it.
func (s *Store) RecreateCollection(ctx context.Context, embeddingModel string) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, CollectionName); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     VectorDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if err := s.createPayloadIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create payload indexes: %w", err)
	}

	return s.writeIndexMeta(ctx, embeddingModel)
}

// createPayloadIndexes indexes the filterable payload fields. Without these
// indexes filtered queries degrade badly on large collections.
func (s *Store) createPayloadIndexes(ctx context.Context) error {
	fields := []string{
		"type",         // Distinguish "record" vs "meta"
		"ref",          // Lookup by planning reference
		"decision",     // Filter by decision outcome
		"dev_category", // Filter by development category
		"land_type",    // Filter by land classification
		"dev_scale",    // Filter by development scale
	}

	for _, field := range fields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}

	return nil
}

// EnsureExists verifies the collection has been built. A missing index is a
// configuration error for the query path: the operator must run a build
// first, nothing here can recover it.
func (s *Store) EnsureExists(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: run `planning-sync build` first", ErrIndexNotFound)
	}
	return nil
}

// VerifyEmbeddingModel fails fast when the persisted index was built with a
// different embedding model than the one configured for queries. Without
// this check a mismatch is a silent correctness bug: searches run but
// return noise.
func (s *Store) VerifyEmbeddingModel(ctx context.Context, model string) error {
	status, err := s.readIndexMeta(ctx)
	if err != nil {
		return err
	}
	if status.EmbeddingModel != model {
		return fmt.Errorf("%w: index built with %q, configured for %q, rebuild the index",
			ErrModelMismatch, status.EmbeddingModel, model)
	}
	return nil
}

// UpsertBatch inserts one batch of documents with their embeddings. Calls
// are one-shot: the build pipeline skips and counts a failed batch rather
// than retrying, keeping total failures bounded by batch count.
func (s *Store) UpsertBatch(ctx context.Context, points []*qdrant.PointStruct) error {
	for i, point := range points {
		vectors := point.Vectors.GetVectors().GetVectors()
		if vec, ok := vectors[vectorName]; !ok || len(vec.Data) != VectorDimension {
			return fmt.Errorf("%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vec.GetData()), VectorDimension)
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert batch: %w", err)
	}
	return nil
}

// Search returns the k nearest records to the query vector in ascending
// cosine-distance order. An empty or unmatched index yields an empty slice,
// not an error.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error) {
	if len(vector) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), VectorDimension)
	}

	using := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Using:          &using,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("type", typeRecord),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, result := range results {
		text, meta := splitPayload(result.Payload)
		hits = append(hits, SearchHit{
			Text: text,
			Meta: meta,
			// Qdrant reports cosine similarity descending; convert to the
			// ascending distance the retriever's relevance formula expects.
			Distance: 1 - float64(result.Score),
		})
	}

	return hits, nil
}

// Status reads the index metadata point and the record count.
func (s *Store) Status(ctx context.Context) (*IndexStatus, error) {
	status, err := s.readIndexMeta(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("type", typeRecord),
			},
		},
		Exact: qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	status.Records = count
	return status, nil
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == CollectionName {
			return true, nil
		}
	}
	return false, nil
}

// writeIndexMeta stores the vector-less metadata point describing the build.
func (s *Store) writeIndexMeta(ctx context.Context, embeddingModel string) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(metaPointID()),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		Payload: qdrant.NewValueMap(map[string]any{
			"type":            typeMeta,
			"embedding_model": embeddingModel,
			"built_at":        time.Now().UTC().Format(time.RFC3339),
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}
	return nil
}

func (s *Store) readIndexMeta(ctx context.Context) (*IndexStatus, error) {
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("type", typeMeta),
			},
		},
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: index has no build metadata, rebuild with `planning-sync build`", ErrIndexNotFound)
	}

	payload := results[0].Payload
	builtAt, err := time.Parse(time.RFC3339, payload["built_at"].GetStringValue())
	if err != nil {
		builtAt = time.Time{}
	}

	return &IndexStatus{
		EmbeddingModel: payload["embedding_model"].GetStringValue(),
		BuiltAt:        builtAt,
	}, nil
}
