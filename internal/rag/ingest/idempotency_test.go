package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHashLookup struct {
	byHash map[string]string
	err    error
}

func (f *fakeHashLookup) LookupByHash(_ context.Context, hash string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.byHash[hash]
	return id, ok, nil
}

func TestResolveIdempotency_NoLookupAlwaysProceeds(t *testing.T) {
	dec, err := ResolveIdempotency(context.Background(), nil, Request{DocumentID: "doc-1"}, Preprocessed{Hash: "h"})
	require.NoError(t, err)
	assert.False(t, dec.Skip)
	assert.Equal(t, "doc-1", dec.DocumentID)
}

func TestResolveIdempotency_UnseenHashProceeds(t *testing.T) {
	lookup := &fakeHashLookup{byHash: map[string]string{}}
	dec, err := ResolveIdempotency(context.Background(), lookup, Request{DocumentID: "doc-1"}, Preprocessed{Hash: "h"})
	require.NoError(t, err)
	assert.False(t, dec.Skip)
	assert.Equal(t, "doc-1", dec.DocumentID)
}

func TestResolveIdempotency_SeenHashSkipsByDefault(t *testing.T) {
	lookup := &fakeHashLookup{byHash: map[string]string{"h": "doc-existing"}}
	dec, err := ResolveIdempotency(context.Background(), lookup, Request{DocumentID: "doc-1"}, Preprocessed{Hash: "h"})
	require.NoError(t, err)
	assert.True(t, dec.Skip)
	assert.Equal(t, "doc-existing", dec.DocumentID)
}

func TestResolveIdempotency_OverwritePolicyReingestsUnderExistingID(t *testing.T) {
	lookup := &fakeHashLookup{byHash: map[string]string{"h": "doc-existing"}}
	dec, err := ResolveIdempotency(context.Background(), lookup, Request{
		DocumentID: "doc-1", ReingestPolicy: ReingestOverwrite,
	}, Preprocessed{Hash: "h"})
	require.NoError(t, err)
	assert.False(t, dec.Skip)
	assert.Equal(t, "doc-existing", dec.DocumentID)
}

func TestResolveIdempotency_PropagatesLookupError(t *testing.T) {
	lookup := &fakeHashLookup{err: assert.AnError}
	_, err := ResolveIdempotency(context.Background(), lookup, Request{DocumentID: "doc-1"}, Preprocessed{Hash: "h"})
	assert.Error(t, err)
}
