package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/AbnerMSaconi/UCDB-IA/internal/corpus"
)

// vectorName is the named vector each chunk point carries.
const vectorName = "content"

// Qdrant stores chunks in a Qdrant collection. Durability is the
// service's concern, so Persist is a no-op. Point IDs are deterministic
// (UUIDv5 of source/page/ordinal), which makes re-adding a file after a
// crashed run an idempotent upsert instead of a duplication.
type Qdrant struct {
	client     *qdrant.Client
	collection string
}

// NewQdrant connects to Qdrant and verifies health with exponential
// backoff, failing fast if the server stays unreachable.
func NewQdrant(host string, port int, collection string) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &Qdrant{client: client, collection: collection}

	if err := q.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrIndexUnreachable, err)
	}
	return q, nil
}

func (q *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return q.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against the server.
func (q *Qdrant) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ensureCollection creates the collection on first use. The vector size is
// only known once the first batch of embeddings arrives, so creation is
// deferred until Add. Idempotent.
func (q *Qdrant) ensureCollection(ctx context.Context, dimension int) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == q.collection {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     uint64(dimension),
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Filtered deletes by source need a keyword index.
	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collection,
		FieldName:      "source",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("create source index: %w", err)
	}
	return nil
}

func (q *Qdrant) Add(ctx context.Context, chunks []corpus.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := q.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	// Batch upserts in groups of 100.
	const batchSize = 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for j := i; j < end; j++ {
			chunk := chunks[j]
			points = append(points, &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(chunkPointID(chunk)),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					vectorName: qdrant.NewVector(vectors[j]...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"source":  chunk.Source,
					"page":    chunk.Page,
					"ordinal": chunk.Ordinal,
					"text":    chunk.Text,
				}),
			})
		}

		if err := q.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]ScoredChunk, error) {
	if limit <= 0 {
		limit = 1
	}

	using := vectorName
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Using:          &using,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		hits = append(hits, ScoredChunk{
			Chunk: corpus.Chunk{
				Source:  payload["source"].GetStringValue(),
				Page:    int(payload["page"].GetIntegerValue()),
				Ordinal: int(payload["ordinal"].GetIntegerValue()),
				Text:    payload["text"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}
	return hits, nil
}

func (q *Qdrant) RemoveSource(ctx context.Context, source string) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	exists := false
	for _, name := range collections {
		if name == q.collection {
			exists = true
			break
		}
	}
	if !exists {
		return nil
	}

	_, err = q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source", source),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("delete chunks of %s: %w", source, err)
	}
	return nil
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return int(count), nil
}

// Persist is a no-op: Qdrant is durable per upsert.
func (q *Qdrant) Persist(ctx context.Context) error { return nil }

func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// chunkPointID derives a stable UUID for a chunk from its provenance.
func chunkPointID(chunk corpus.Chunk) string {
	key := fmt.Sprintf("%s#%d#%d", chunk.Source, chunk.Page, chunk.Ordinal)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
