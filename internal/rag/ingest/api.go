package ingest

import (
	"time"

	"clausebase/internal/rag/chunk"
)

// Request describes a single document ingestion operation (§4.3/§7): the
// service chunks the document, embeds every chunk, and indexes it into both
// the vector store and the BM25 lexical index. Elements are pre-parsed
// structural fragments (headings/paragraphs/tables/lists/figures) — parsing
// the source format itself is out of scope (§4.4 doc comment).
type Request struct {
	// DocumentID is the caller-assigned identifier for the source document.
	DocumentID string
	// Title is the document's display title, used to build citations
	// (§4.9 FormatCitation).
	Title string
	// DocumentType classifies the source (standard|handbook|guide|spec),
	// consulted by the plan workflow strategy's document_type boost (§4.10).
	DocumentType string
	// Elements are the parsed structural fragments to chunk.
	Elements []chunk.ParsedElement
	// Source describes where the document came from (e.g. "upload", "crawl").
	Source string
	// ReingestPolicy determines behavior when the document already exists
	// (by content hash).
	ReingestPolicy ReingestPolicy
}

// ReingestPolicy determines how to handle a document whose content hash
// already exists in the index (§4.2 dedupe semantics).
type ReingestPolicy string

const (
	// ReingestSkipIfUnchanged skips re-indexing an unchanged document.
	ReingestSkipIfUnchanged ReingestPolicy = "skip_if_unchanged"
	// ReingestOverwrite re-chunks and re-indexes in place.
	ReingestOverwrite ReingestPolicy = "overwrite"
)

// Response summarizes the mutation performed by Ingest.
type Response struct {
	DocumentID string
	ChunkIDs   []string
	Skipped    bool
	Stats      Stats
	Warnings   []string
}

// Stats captures ingestion-time statistics for observability (§7).
type Stats struct {
	NumChunks     int
	TotalTokens   int
	VectorUpserts int
	LexicalAdds   int
	Duration      time.Duration
}
