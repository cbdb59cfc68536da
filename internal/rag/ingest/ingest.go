package ingest

import (
	"context"
	"time"

	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/embed"
	ragerrors "clausebase/internal/rag/errors"
	"clausebase/internal/rag/lexical"
	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/store"
)

// MetadataWriter persists the citation metadata and document hash a chunk
// needs at retrieval time (§4.9), alongside the vector store and lexical
// index. Implemented by the registry package.
type MetadataWriter interface {
	PutChunk(ctx context.Context, chunkID string, md retrieve.ChunkMetadata) error
	PutDocumentHash(ctx context.Context, hash, documentID string) error
}

// Pipeline wires the collaborators an ingestion call needs: preprocessing,
// chunking, embedding, and the two indexes (§4.3/§7). Every collaborator is
// injected so the pipeline never reaches for a package-level global.
type Pipeline struct {
	Chunker  *chunk.Chunker
	Embedder embed.Provider
	Vectors  store.VectorStore
	Lexicon  *lexical.Index
	Hashes   HashLookup
	Meta     MetadataWriter
}

// Ingest runs the full ingestion pipeline for one document: preprocess,
// resolve idempotency, chunk, embed+upsert into the vector store, add to the
// BM25 lexical index, and record citation metadata (§4.3).
func (p *Pipeline) Ingest(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	if len(req.Elements) == 0 {
		return Response{}, ragerrors.InvalidInputf("ingest: document has no parsed elements")
	}
	if req.DocumentID == "" {
		return Response{}, ragerrors.InvalidInputf("ingest: document_id must not be empty")
	}

	pre := Preprocess(req)

	decision, err := ResolveIdempotency(ctx, p.Hashes, req, pre)
	if err != nil {
		return Response{}, err
	}
	if decision.Skip {
		return Response{DocumentID: decision.DocumentID, Skipped: true}, nil
	}

	meta := chunk.DocumentMetadata{DocumentID: decision.DocumentID, Title: req.Title, DocumentType: req.DocumentType}
	chunks, warnings, err := p.Chunker.Chunk(pre.Elements, meta)
	if err != nil {
		return Response{}, ragerrors.Wrap(ragerrors.Ingestion, "ingest: chunking failed", err)
	}

	vectorUpserts, err := UpsertChunkVectors(ctx, p.Embedder, p.Vectors, chunks)
	if err != nil {
		return Response{}, ragerrors.Wrap(ragerrors.Ingestion, "ingest: vector upsert failed", err)
	}
	lexicalAdds := AddChunksToLexicon(p.Lexicon, chunks)

	ids := make([]string, len(chunks))
	totalTokens := 0
	for i, c := range chunks {
		ids[i] = c.ID
		totalTokens += c.TokenCount

		if p.Meta == nil {
			continue
		}
		md := retrieve.ChunkMetadata{
			Text:          c.Text,
			DocumentID:    c.DocumentID,
			DocumentTitle: req.Title,
			DocumentType:  req.DocumentType,
			ClauseNumber:  c.ClauseNumber,
			SectionTitle:  c.SectionTitle,
			PageNumbers:   c.PageNumbers,
			ChunkType:     string(c.ChunkType),
			Normative:     string(c.Normative),
		}
		if err := p.Meta.PutChunk(ctx, c.ID, md); err != nil {
			return Response{}, ragerrors.Wrap(ragerrors.Ingestion, "ingest: metadata write failed", err)
		}
	}
	if p.Meta != nil {
		if err := p.Meta.PutDocumentHash(ctx, pre.Hash, decision.DocumentID); err != nil {
			return Response{}, ragerrors.Wrap(ragerrors.Ingestion, "ingest: document hash write failed", err)
		}
	}

	return Response{
		DocumentID: decision.DocumentID,
		ChunkIDs:   ids,
		Stats: Stats{
			NumChunks:     len(chunks),
			TotalTokens:   totalTokens,
			VectorUpserts: vectorUpserts,
			LexicalAdds:   lexicalAdds,
			Duration:      time.Since(start),
		},
		Warnings: warnings,
	}, nil
}
