package ingest

import "context"

// HashLookup checks whether a document with the given content hash has
// already been ingested (§4.2 dedupe).
type HashLookup interface {
	LookupByHash(ctx context.Context, hash string) (documentID string, ok bool, err error)
}

// Decision is the outcome of applying ReingestPolicy to a hash lookup.
type Decision struct {
	Skip       bool
	DocumentID string
}

// ResolveIdempotency decides whether Ingest should skip re-indexing an
// already-present document, per §4.2/§4.3.
func ResolveIdempotency(ctx context.Context, lookup HashLookup, req Request, pre Preprocessed) (Decision, error) {
	if lookup == nil {
		return Decision{DocumentID: req.DocumentID}, nil
	}
	existingID, ok, err := lookup.LookupByHash(ctx, pre.Hash)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{DocumentID: req.DocumentID}, nil
	}
	if req.ReingestPolicy == ReingestOverwrite {
		return Decision{DocumentID: existingID}, nil
	}
	// Default policy (including empty): skip unchanged content.
	return Decision{Skip: true, DocumentID: existingID}, nil
}
