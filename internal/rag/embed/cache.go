package embed

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	ragerrors "clausebase/internal/rag/errors"
	"clausebase/internal/rag/hashing"
)

// Cache is the content-addressed, persistent embedding cache of §4.5: keyed
// by CacheKey(text) and partitioned by model name (one bbolt bucket per
// model, named after ModelPathSafe), with byte-budget LRU eviction. Grounded
// on the corpus's in-memory LRU token cache, extended here with bbolt-backed
// persistence so the cache survives process restarts the way the original
// diskcache-backed embedding cache does.
type Cache struct {
	mu        sync.Mutex
	db        *bbolt.DB
	maxBytes  int64
	usedBytes int64

	hits   int64
	misses int64
}

type cacheEntry struct {
	Vector     []float32 `json:"vector"`
	LastAccess int64     `json:"last_access"`
	Bytes      int64     `json:"bytes"`
}

// CacheConfig configures the persistent embedding cache.
type CacheConfig struct {
	// Path is the bbolt database file path.
	Path string
	// MaxBytes bounds the total size of cached vectors (not counting key
	// and bookkeeping overhead). Zero means unbounded.
	MaxBytes int64
}

func OpenCache(cfg CacheConfig) (*Cache, error) {
	if cfg.Path == "" {
		return nil, ragerrors.Configf("embedding cache: path is required")
	}
	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, ragerrors.Wrap(ragerrors.Internal, "open embedding cache", err)
	}
	c := &Cache{db: db, maxBytes: cfg.MaxBytes}
	if err := c.computeUsedBytes(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) computeUsedBytes() error {
	return c.db.View(func(tx *bbolt.Tx) error {
		var total int64
		err := tx.ForEach(func(_ []byte, b *bbolt.Bucket) error {
			return b.ForEach(func(_, v []byte) error {
				var e cacheEntry
				if err := json.Unmarshal(v, &e); err == nil {
					total += e.Bytes
				}
				return nil
			})
		})
		c.usedBytes = total
		return err
	})
}

// Get returns the cached vector for (model, text), if present.
func (c *Cache) Get(model, text string) ([]float32, bool) {
	bucket := hashing.ModelPathSafe(model)
	key := []byte(hashing.CacheKey(text))

	c.mu.Lock()
	defer c.mu.Unlock()

	var found *cacheEntry
	_ = c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		var e cacheEntry
		if err := json.Unmarshal(v, &e); err == nil {
			found = &e
		}
		return nil
	})

	if found == nil {
		c.misses++
		return nil, false
	}
	c.hits++
	c.touch(bucket, key, *found)
	return found.Vector, true
}

func (c *Cache) touch(bucket string, key []byte, e cacheEntry) {
	e.LastAccess = time.Now().UnixNano()
	buf, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put(key, buf)
	})
}

// Set stores a vector in the cache, evicting the least-recently-used entries
// across all model partitions until the byte budget is respected.
func (c *Cache) Set(model, text string, vector []float32) error {
	bucket := hashing.ModelPathSafe(model)
	key := []byte(hashing.CacheKey(text))
	entry := cacheEntry{
		Vector:     vector,
		LastAccess: time.Now().UnixNano(),
		Bytes:      int64(len(vector) * 4),
	}
	buf, err := json.Marshal(entry)
	if err != nil {
		return ragerrors.Internalf("encode cache entry: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		if old := b.Get(key); old != nil {
			var oe cacheEntry
			if err := json.Unmarshal(old, &oe); err == nil {
				c.usedBytes -= oe.Bytes
			}
		}
		return b.Put(key, buf)
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "write embedding cache entry", err)
	}
	c.usedBytes += entry.Bytes

	if c.maxBytes > 0 {
		if err := c.evictLocked(); err != nil {
			return err
		}
	}
	return nil
}

type evictCandidate struct {
	bucket     string
	key        []byte
	lastAccess int64
	bytes      int64
}

// evictLocked removes least-recently-used entries, across every model
// partition, until usedBytes is within the budget. Caller holds c.mu.
func (c *Cache) evictLocked() error {
	if c.usedBytes <= c.maxBytes {
		return nil
	}
	var candidates []evictCandidate
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			return b.ForEach(func(k, v []byte) error {
				var e cacheEntry
				if err := json.Unmarshal(v, &e); err != nil {
					return nil
				}
				candidates = append(candidates, evictCandidate{
					bucket:     string(name),
					key:        append([]byte(nil), k...),
					lastAccess: e.LastAccess,
					bytes:      e.Bytes,
				})
				return nil
			})
		})
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "scan embedding cache for eviction", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].lastAccess < candidates[j].lastAccess })

	return c.db.Update(func(tx *bbolt.Tx) error {
		for _, cand := range candidates {
			if c.usedBytes <= c.maxBytes {
				break
			}
			b := tx.Bucket([]byte(cand.bucket))
			if b == nil {
				continue
			}
			if err := b.Delete(cand.key); err != nil {
				return err
			}
			c.usedBytes -= cand.bytes
		}
		return nil
	})
}

// Stats reports cache hit/miss counters and current byte usage.
func (c *Cache) Stats() (hits, misses, usedBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.usedBytes
}

// Clear removes every cached entry for model, or every entry in the cache
// when model is empty.
func (c *Cache) Clear(model string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if model == "" {
		err := c.db.Update(func(tx *bbolt.Tx) error {
			var names [][]byte
			_ = tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
				names = append(names, append([]byte(nil), name...))
				return nil
			})
			for _, n := range names {
				if err := tx.DeleteBucket(n); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return ragerrors.Wrap(ragerrors.Internal, "clear embedding cache", err)
		}
		c.usedBytes = 0
		return nil
	}

	bucket := hashing.ModelPathSafe(model)
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		var freed int64
		_ = b.ForEach(func(_, v []byte) error {
			var e cacheEntry
			if err := json.Unmarshal(v, &e); err == nil {
				freed += e.Bytes
			}
			return nil
		})
		c.usedBytes -= freed
		return tx.DeleteBucket([]byte(bucket))
	})
	if err != nil {
		return ragerrors.Wrap(ragerrors.Internal, "clear embedding cache partition", err)
	}
	return nil
}
