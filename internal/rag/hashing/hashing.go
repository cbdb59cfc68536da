// Package hashing implements the two deliberately different content
// normalizations used by the pipeline: the dedupe hash (§4.2) and the
// embedding cache key (§4.5). They share the same primitive (SHA-256) but
// not the same normalization strictness — see SPEC_FULL.md §9 open
// questions.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash computes the deduplication hash of text: strip leading and
// trailing whitespace, normalize CRLF to LF, hash the UTF-8 bytes. Internal
// whitespace is preserved, so "a b" and "a  b" hash differently.
func ContentHash(text string) string {
	normalized := strings.TrimSpace(text)
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CacheKey computes the embedding cache key for text: collapse all runs of
// whitespace (not just leading/trailing) before hashing. This is strictly
// more aggressive than ContentHash, so two chunks with different
// content hashes can still share a cache entry.
func CacheKey(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ModelPathSafe encodes an embedding model identifier into a filesystem-safe
// path component, so the cache directory layout of §6 ("<cache_dir>/<model-
// id-safe>/…") never breaks on slashes or colons in model names.
func ModelPathSafe(model string) string {
	r := strings.NewReplacer("/", "_", ":", "_", "\\", "_")
	return r.Replace(model)
}
