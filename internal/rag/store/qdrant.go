package store

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	ragerrors "clausebase/internal/rag/errors"
)

// originalIDField stores the caller-supplied chunk ID in the payload:
// Qdrant point IDs must be UUIDs or positive integers, so non-UUID chunk
// IDs are mapped to a deterministic UUID and the original ID is carried in
// the payload for round-tripping on search.
const originalIDField = "_original_id"

type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
	metric     string
}

// NewQdrantStore connects to a Qdrant instance over gRPC (default port
// 6334) and ensures the target collection exists with the requested vector
// size and distance metric.
func NewQdrantStore(dsn, collection string, dimensions int, metric string) (*QdrantStore, error) {
	if collection == "" {
		return nil, ragerrors.Configf("qdrant store: collection name is required")
	}
	if dimensions <= 0 {
		return nil, ragerrors.Configf("qdrant store: dimensions must be positive")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Config, "parse qdrant dsn", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "6334"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, ragerrors.Configf("qdrant store: invalid port in dsn")
	}
	cfg := &qdrant.Config{Host: host, Port: portNum}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Connection, "create qdrant client", err)
	}

	qs := &QdrantStore{
		client:     client,
		collection: collection,
		dimension:  dimensions,
		metric:     strings.ToLower(strings.TrimSpace(metric)),
	}
	if err := qs.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return qs, nil
}

func (q *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return ragerrors.Wrap(ragerrors.Connection, "check qdrant collection exists", err)
	}
	if exists {
		return nil
	}
	var distance qdrant.Distance
	switch q.metric {
	case "l2", "euclidean":
		distance = qdrant.Distance_Euclid
	case "ip", "dot":
		distance = qdrant.Distance_Dot
	case "manhattan":
		distance = qdrant.Distance_Manhattan
	default:
		distance = qdrant.Distance_Cosine
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: distance,
		}),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Connection, "create qdrant collection", err)
	}
	return nil
}

func pointIDFor(id string) (string, bool) {
	if _, err := uuid.Parse(id); err == nil {
		return id, false
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String(), true
}

func (q *QdrantStore) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	if len(vector) != q.dimension {
		return ragerrors.InvalidInputf("qdrant store: vector has dimension %d, want %d", len(vector), q.dimension)
	}
	uuidStr, remapped := pointIDFor(id)
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	if remapped {
		payload[originalIDField] = id
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	points := []*qdrant.PointStruct{{
		Id:      qdrant.NewIDUUID(uuidStr),
		Vectors: qdrant.NewVectorsDense(vec),
		Payload: qdrant.NewValueMap(payload),
	}}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: q.collection, Points: points})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Connection, "qdrant upsert", err)
	}
	return nil
}

func (q *QdrantStore) Delete(ctx context.Context, id string) error {
	uuidStr, _ := pointIDFor(id)
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(uuidStr)),
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Connection, "qdrant delete", err)
	}
	return nil
}

func (q *QdrantStore) SimilaritySearch(ctx context.Context, vector []float32, k int, filter Filter) ([]Result, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	var queryFilter *qdrant.Filter
	if len(filter) > 0 {
		must := make([]*qdrant.Condition, 0, len(filter))
		for field, fv := range filter {
			if len(fv.In) > 0 {
				must = append(must, qdrant.NewMatchKeywords(field, fv.In...))
			} else {
				must = append(must, qdrant.NewMatch(field, fv.Eq))
			}
		}
		queryFilter = &qdrant.Filter{Must: must}
	}
	limit := uint64(k)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         queryFilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Connection, "qdrant query", err)
	}

	out := make([]Result, 0, len(hits))
	for _, hit := range hits {
		uuidStr := hit.Id.GetUuid()
		if uuidStr == "" {
			uuidStr = hit.Id.String()
		}
		metadata := make(map[string]string)
		var originalID string
		if hit.Payload != nil {
			for k, v := range hit.Payload {
				if k == originalIDField {
					originalID = v.GetStringValue()
					continue
				}
				metadata[k] = v.GetStringValue()
			}
		}
		id := originalID
		if id == "" {
			id = uuidStr
		}
		out = append(out, Result{ID: id, Score: float64(hit.Score), Metadata: metadata})
	}
	return out, nil
}

func (q *QdrantStore) Dimension() int { return q.dimension }

func (q *QdrantStore) Close() error { return q.client.Close() }
