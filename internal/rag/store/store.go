// Package store implements the Vector Store layer (§4.6): a dual-backend
// design with a networked Qdrant primary and a bbolt-backed embedded
// fallback, selected and health-checked by Open.
package store

import (
	"context"

	ragerrors "clausebase/internal/rag/errors"
)

// Result is a single similarity search hit.
type Result struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// FilterValue is a single metadata filter term (§4.6: "Match is either
// exact equality or set membership"). Exactly one of Eq or In is set: In
// takes precedence when non-empty, mirroring the original implementation's
// qdrant MatchAny condition alongside its plain field-equality match.
type FilterValue struct {
	Eq string
	In []string
}

// Exact builds a FilterValue matching a single value.
func Exact(v string) FilterValue { return FilterValue{Eq: v} }

// AnyOf builds a FilterValue matching any of the given values (set
// membership), equivalent to the original's qdrant MatchAny.
func AnyOf(values ...string) FilterValue { return FilterValue{In: values} }

// Matches reports whether v satisfies this filter term.
func (f FilterValue) Matches(v string) bool {
	if len(f.In) > 0 {
		for _, want := range f.In {
			if want == v {
				return true
			}
		}
		return false
	}
	return f.Eq == v
}

// Filter is a §4.6 metadata filter: every key present must match its
// FilterValue for a candidate to survive.
type Filter map[string]FilterValue

// VectorStore is the storage contract every backend implements (§4.6).
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	Delete(ctx context.Context, id string) error
	SimilaritySearch(ctx context.Context, vector []float32, k int, filter Filter) ([]Result, error)
	Dimension() int
	Close() error
}

// AllowedFilterKeys is the whitelist of metadata fields a caller may filter
// on (§4.6); anything else is rejected rather than silently ignored.
var AllowedFilterKeys = map[string]bool{
	"document_id":   true,
	"chunk_type":    true,
	"normative":     true,
	"section_title": true,
	"clause_number": true,
}

// ValidateFilter rejects any filter key outside AllowedFilterKeys.
func ValidateFilter(filter Filter) error {
	for k := range filter {
		if !AllowedFilterKeys[k] {
			return ragerrors.InvalidInputf("unsupported filter field %q", k)
		}
	}
	return nil
}
