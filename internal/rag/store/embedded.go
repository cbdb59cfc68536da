package store

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	ragerrors "clausebase/internal/rag/errors"
)

var vectorsBucket = []byte("vectors")

// EmbeddedStore is the embedded fallback vector store (§4.6): a bbolt-backed
// brute-force cosine-similarity index, substituting for the original
// implementation's embedded ChromaDB fallback — no ChromaDB Go client
// exists in this module's dependency surface, and bbolt is already the
// corpus's preferred embedded-persistence library (used here and by the
// embedding cache).
type EmbeddedStore struct {
	mu        sync.RWMutex
	db        *bbolt.DB
	dimension int
}

type storedVector struct {
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata"`
}

func OpenEmbeddedStore(path string, dimensions int) (*EmbeddedStore, error) {
	if dimensions <= 0 {
		return nil, ragerrors.Configf("embedded store: dimensions must be positive")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Internal, "open embedded vector store", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(vectorsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, ragerrors.Wrap(ragerrors.Internal, "initialize embedded vector store", err)
	}
	return &EmbeddedStore{db: db, dimension: dimensions}, nil
}

func (e *EmbeddedStore) Upsert(_ context.Context, id string, vector []float32, metadata map[string]string) error {
	if len(vector) != e.dimension {
		return ragerrors.InvalidInputf("embedded store: vector has dimension %d, want %d", len(vector), e.dimension)
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	buf, err := json.Marshal(storedVector{Vector: vec, Metadata: md})
	if err != nil {
		return ragerrors.Internalf("encode vector: %v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	err = e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(vectorsBucket).Put([]byte(id), buf)
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "embedded store upsert", err)
	}
	return nil
}

func (e *EmbeddedStore) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(vectorsBucket).Delete([]byte(id))
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "embedded store delete", err)
	}
	return nil
}

func (e *EmbeddedStore) SimilaritySearch(_ context.Context, vector []float32, k int, filter Filter) ([]Result, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}
	qnorm := vecNorm(vector)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []Result
	err := e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(vectorsBucket)
		return b.ForEach(func(k, v []byte) error {
			var sv storedVector
			if err := json.Unmarshal(v, &sv); err != nil {
				return nil
			}
			if !matchesFilter(sv.Metadata, filter) {
				return nil
			}
			score := cosineSimilarity(vector, sv.Vector, qnorm)
			results = append(results, Result{ID: string(k), Score: score, Metadata: sv.Metadata})
			return nil
		})
	})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Internal, "embedded store search", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (e *EmbeddedStore) Dimension() int { return e.dimension }

func (e *EmbeddedStore) Close() error { return e.db.Close() }

func matchesFilter(md map[string]string, filter Filter) bool {
	for k, fv := range filter {
		if !fv.Matches(md[k]) {
			return false
		}
	}
	return true
}

func vecNorm(a []float32) float64 {
	var s float64
	for _, x := range a {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func cosineSimilarity(a, b []float32, anorm float64) float64 {
	if anorm == 0 {
		anorm = vecNorm(a)
	}
	bnorm := vecNorm(b)
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
