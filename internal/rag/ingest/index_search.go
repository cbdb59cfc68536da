package ingest

import (
	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/lexical"
)

// AddChunksToLexicon adds every chunk's text to the BM25 lexical index
// (§4.7), keyed by chunk ID so fused results (§4.9 FuseRRF) line up with the
// vector store's IDs.
func AddChunksToLexicon(lexicon *lexical.Index, chunks []chunk.Chunk) int {
	if lexicon == nil {
		return 0
	}
	for _, c := range chunks {
		lexicon.Add(c.ID, c.Text)
	}
	return len(chunks)
}
