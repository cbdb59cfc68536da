package ingest

import (
	"context"

	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/embed"
	"clausebase/internal/rag/store"
)

// UpsertChunkVectors embeds each chunk's text and upserts the resulting
// vector into the store, with metadata restricted to the §4.6 filter
// whitelist. It returns the number of upserts performed.
func UpsertChunkVectors(ctx context.Context, provider embed.Provider, vectors store.VectorStore, chunks []chunk.Chunk) (int, error) {
	if provider == nil || vectors == nil || len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := provider.EmbedBatch(ctx, texts, len(texts))
	if err != nil {
		return 0, err
	}

	for i, c := range chunks {
		md := chunkFilterMetadata(c)
		if err := vectors.Upsert(ctx, c.ID, embeddings[i], md); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}

// chunkFilterMetadata builds the metadata payload attached to a chunk's
// vector, restricted to store.AllowedFilterKeys (§4.6) so every backend
// enforces the same whitelist.
func chunkFilterMetadata(c chunk.Chunk) map[string]string {
	md := map[string]string{
		"document_id": c.DocumentID,
		"chunk_type":  string(c.ChunkType),
		"normative":   string(c.Normative),
	}
	if c.SectionTitle != "" {
		md["section_title"] = c.SectionTitle
	}
	if c.ClauseNumber != "" {
		md["clause_number"] = c.ClauseNumber
	}
	return md
}
