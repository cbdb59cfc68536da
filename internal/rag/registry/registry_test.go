package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausebase/internal/rag/retrieve"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRegistry_PutAndLookupChunk(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	md := retrieve.ChunkMetadata{Text: "shall comply", DocumentID: "doc-1", DocumentTitle: "ISO 9001", ChunkType: "paragraph"}
	require.NoError(t, reg.PutChunk(ctx, "chunk-1", md))

	got, ok := reg.Lookup(ctx, "chunk-1")
	require.True(t, ok)
	assert.Equal(t, md, got)
}

func TestRegistry_LookupMissingChunk(t *testing.T) {
	reg := openTestRegistry(t)
	_, ok := reg.Lookup(context.Background(), "does-not-exist")
	assert.False(t, ok)
}

func TestRegistry_PutAndLookupDocumentHash(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.PutDocumentHash(ctx, "hash-abc", "doc-1"))
	id, ok, err := reg.LookupByHash(ctx, "hash-abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "doc-1", id)
}

func TestRegistry_Stats(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, reg.PutChunk(ctx, "c1", retrieve.ChunkMetadata{}))
	require.NoError(t, reg.PutChunk(ctx, "c2", retrieve.ChunkMetadata{}))
	require.NoError(t, reg.PutDocumentHash(ctx, "h1", "doc-1"))

	stats, err := reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["total_chunks"])
	assert.Equal(t, 1, stats["total_documents"])
}

func TestRegistry_AllIteratesEveryChunk(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, reg.PutChunk(ctx, "c1", retrieve.ChunkMetadata{Text: "one"}))
	require.NoError(t, reg.PutChunk(ctx, "c2", retrieve.ChunkMetadata{Text: "two"}))

	seen := map[string]string{}
	require.NoError(t, reg.All(ctx, func(chunkID string, md retrieve.ChunkMetadata) error {
		seen[chunkID] = md.Text
		return nil
	}))
	assert.Equal(t, map[string]string{"c1": "one", "c2": "two"}, seen)
}
