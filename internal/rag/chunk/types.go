// Package chunk implements the hierarchical chunker (§4.4): it converts an
// ordered sequence of parsed structural elements into retrieval units that
// respect heading hierarchy and token bounds, grounded on the chunker shape
// of intelligencedev-manifold's internal/rag/chunker package but driven by
// real token counts and clause/overlap/merge semantics instead of a
// character-count heuristic.
package chunk

import (
	"time"

	"github.com/google/uuid"

	"clausebase/internal/rag/normative"
)

// ElementKind is the structural kind of a parsed document fragment.
type ElementKind string

const (
	KindHeading   ElementKind = "heading"
	KindParagraph ElementKind = "paragraph"
	KindTable     ElementKind = "table"
	KindList      ElementKind = "list"
	KindFigure    ElementKind = "figure"
)

// ParsedElement is one structural fragment from a document, produced by the
// (out-of-scope) parser collaborator and consumed by the chunker. Immutable
// once created.
type ParsedElement struct {
	Kind             ElementKind
	Text             string
	PageNumber       int // 0 means unknown
	SectionHierarchy []string
	HeadingLevel     int
	Caption          string
	ListItems        []string
}

// DocumentMetadata is document-level provenance, immutable for a given
// ingestion. Chunks reference it by DocumentID only — no back-pointer
// exists from metadata to chunks (§9 redesign note).
type DocumentMetadata struct {
	DocumentID    string
	Title         string
	DocumentType  string // standard|handbook|guide|spec
	SourcePath    string
	Version       string
	Date          string
	StandardID    string
}

// ChunkType classifies the content a Chunk carries.
type ChunkType string

const (
	ChunkText        ChunkType = "text"
	ChunkTable       ChunkType = "table"
	ChunkList        ChunkType = "list"
	ChunkFigure      ChunkType = "figure"
	ChunkDefinition  ChunkType = "definition"
	ChunkRequirement ChunkType = "requirement"
	ChunkGuidance    ChunkType = "guidance"
	ChunkExample     ChunkType = "example"
)

// Chunk is the core retrieval unit (§3).
type Chunk struct {
	ID         string
	DocumentID string
	ContentHash string
	TokenCount int

	Text      string
	ChunkType ChunkType

	SectionHierarchy []string
	SectionTitle     string
	ClauseNumber     string // optional, empty if none
	PageNumbers      []int
	HasOverlap       bool

	Normative normative.Indicator

	Embedding      []float32
	EmbeddingModel string

	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newChunkID() string { return uuid.NewString() }

// Config is the chunker configuration (§4.4).
type Config struct {
	TargetTokens     int
	MaxTokens        int
	OverlapTokens    int
	MergeSmallChunks bool
	MergeThreshold   int
	Model            string
}

// DefaultConfig mirrors the defaults quoted directly from the distilled
// source (target 500 / max 1000 / overlap 100 / merge threshold 100).
func DefaultConfig() Config {
	return Config{
		TargetTokens:     500,
		MaxTokens:        1000,
		OverlapTokens:    100,
		MergeSmallChunks: true,
		MergeThreshold:   100,
		Model:            "text-embedding-3-small",
	}
}
