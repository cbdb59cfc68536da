// Package registry persists the chunk metadata the retrieval engine needs
// for citations (§4.9 MetadataLookup) and the document content hashes
// ingestion needs for dedupe (§4.2 HashLookup). It exists alongside the
// vector store rather than inside it because the vector store's metadata
// payload is restricted to the §4.6 filter whitelist, while citations need
// richer fields (full text, title, document type, page numbers) that must
// never be mistaken for filterable attributes. Backed by bbolt, the same
// embedded-persistence library already used by the embedding cache and the
// embedded vector store fallback.
package registry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	ragerrors "clausebase/internal/rag/errors"
	"clausebase/internal/rag/retrieve"
)

var (
	chunksBucket    = []byte("chunks")
	docHashesBucket = []byte("doc_hashes")
)

// Registry is the bbolt-backed chunk metadata and document-hash store.
type Registry struct {
	mu sync.RWMutex
	db *bbolt.DB
}

func Open(path string) (*Registry, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Internal, "open chunk registry", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(chunksBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(docHashesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, ragerrors.Wrap(ragerrors.Internal, "initialize chunk registry", err)
	}
	return &Registry{db: db}, nil
}

func (r *Registry) Close() error { return r.db.Close() }

// PutChunk records a chunk's citation metadata, keyed by chunk ID.
func (r *Registry) PutChunk(_ context.Context, chunkID string, md retrieve.ChunkMetadata) error {
	buf, err := json.Marshal(md)
	if err != nil {
		return ragerrors.Internalf("encode chunk metadata: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(chunksBucket).Put([]byte(chunkID), buf)
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "registry: put chunk", err)
	}
	return nil
}

// Lookup implements retrieve.MetadataLookup.
func (r *Registry) Lookup(_ context.Context, chunkID string) (retrieve.ChunkMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var md retrieve.ChunkMetadata
	found := false
	_ = r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(chunksBucket).Get([]byte(chunkID))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &md); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return md, found
}

// PutDocumentHash records the content hash for a fully-ingested document.
func (r *Registry) PutDocumentHash(_ context.Context, hash, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(docHashesBucket).Put([]byte(hash), []byte(documentID))
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "registry: put document hash", err)
	}
	return nil
}

// LookupByHash implements ingest.HashLookup.
func (r *Registry) LookupByHash(_ context.Context, hash string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var documentID string
	ok := false
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(docHashesBucket).Get([]byte(hash))
		if v == nil {
			return nil
		}
		documentID = string(v)
		ok = true
		return nil
	})
	if err != nil {
		return "", false, ragerrors.Wrap(ragerrors.Internal, "registry: lookup by hash", err)
	}
	return documentID, ok, nil
}

// All iterates every stored chunk, in bbolt's byte-ordered key order. Used
// to rebuild the in-memory BM25 lexical index at process startup, since
// lexical.Index itself keeps no persistent state.
func (r *Registry) All(_ context.Context, fn func(chunkID string, md retrieve.ChunkMetadata) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(chunksBucket).ForEach(func(k, v []byte) error {
			var md retrieve.ChunkMetadata
			if err := json.Unmarshal(v, &md); err != nil {
				return nil
			}
			return fn(string(k), md)
		})
	})
}

// Stats reports collection-level counts for the §6 stats operation.
func (r *Registry) Stats(context.Context) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var chunkCount, docCount int
	err := r.db.View(func(tx *bbolt.Tx) error {
		chunkCount = tx.Bucket(chunksBucket).Stats().KeyN
		docCount = tx.Bucket(docHashesBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Internal, "registry: stats", err)
	}
	return map[string]any{
		"total_chunks":    chunkCount,
		"total_documents": docCount,
	}, nil
}
