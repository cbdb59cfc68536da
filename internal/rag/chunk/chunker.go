package chunk

import (
	"regexp"
	"strings"

	ragerrors "clausebase/internal/rag/errors"
	"clausebase/internal/rag/hashing"
	"clausebase/internal/rag/normative"
	"clausebase/internal/rag/tokenizer"
)

func contentHash(text string) string { return hashing.ContentHash(text) }

// Chunker converts parsed elements into retrieval-ready chunks (§4.4). It
// holds only its Config; warnings (oversized single elements are never
// silently dropped) are returned by each Chunk call, not stored here.
type Chunker struct {
	cfg Config
}

func New(cfg Config) *Chunker { return &Chunker{cfg: cfg} }

// rawChunk is a pre-overlap, pre-merge grouping of elements destined to
// become a single Chunk.
type rawChunk struct {
	elements     []ParsedElement
	hierarchy    []string
	sectionTitle string
	oversized    bool
}

var clausePrefix = regexp.MustCompile(`^((?:Clause|Section)\s+)?(\d+(?:\.\d+)*)\b`)

// Chunk runs the hierarchical chunking algorithm described in §4.4 over an
// ordered list of ParsedElement, returning chunks in document order plus any
// warnings (e.g. an oversized single element that could not be split).
func (c *Chunker) Chunk(elements []ParsedElement, meta DocumentMetadata) ([]Chunk, []string, error) {
	if len(elements) == 0 {
		return nil, nil, ragerrors.InvalidInputf("chunker: elements must not be empty")
	}

	var (
		raws         []rawChunk
		buffer       []ParsedElement
		bufferTokens int
		hierarchy    []string
		sectionTitle string
		warnings     []string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		raws = append(raws, rawChunk{
			elements:     append([]ParsedElement(nil), buffer...),
			hierarchy:    append([]string(nil), hierarchy...),
			sectionTitle: sectionTitle,
		})
		buffer = nil
		bufferTokens = 0
	}

	for _, el := range elements {
		switch el.Kind {
		case KindHeading:
			// Headings attach to the following chunk rather than forming
			// their own; flush whatever section is in progress and start
			// the next one under the new heading.
			flush()
			hierarchy = el.SectionHierarchy
			sectionTitle = el.Text

		case KindTable, KindFigure:
			flush()
			tokens, err := tokenizer.CountTokens(el.Text, c.cfg.Model)
			if err != nil {
				return nil, nil, err
			}
			if tokens > c.cfg.MaxTokens {
				warnings = append(warnings, "element exceeds max_tokens and was emitted unsplit: "+truncateForWarning(el.Text))
			}
			raws = append(raws, rawChunk{
				elements:     []ParsedElement{el},
				hierarchy:    append([]string(nil), hierarchy...),
				sectionTitle: sectionTitle,
				oversized:    tokens > c.cfg.MaxTokens,
			})

		case KindList:
			items := el.ListItems
			if len(items) == 0 {
				items = []string{el.Text}
			}
			for _, item := range items {
				itemEl := el
				itemEl.Text = item
				itemEl.ListItems = nil
				tokens, err := tokenizer.CountTokens(item, c.cfg.Model)
				if err != nil {
					return nil, nil, err
				}
				if err := c.accumulate(&buffer, &bufferTokens, &raws, &flush, itemEl, tokens, hierarchy, sectionTitle, &warnings); err != nil {
					return nil, nil, err
				}
			}

		default: // paragraph
			tokens, err := tokenizer.CountTokens(el.Text, c.cfg.Model)
			if err != nil {
				return nil, nil, err
			}
			if err := c.accumulate(&buffer, &bufferTokens, &raws, &flush, el, tokens, hierarchy, sectionTitle, &warnings); err != nil {
				return nil, nil, err
			}
		}
	}
	flush()

	chunks, err := c.materialize(raws, meta)
	if err != nil {
		return nil, nil, err
	}

	chunks = c.applyOverlap(chunks)
	if c.cfg.MergeSmallChunks {
		chunks = c.mergeSmall(chunks)
	}

	return chunks, warnings, nil
}

// accumulate implements step 2 of §4.4: buffer elements of the same section
// until the running token count reaches target_tokens (soft flush), and
// hard-flush before a single addition would exceed max_tokens.
func (c *Chunker) accumulate(
	buffer *[]ParsedElement,
	bufferTokens *int,
	raws *[]rawChunk,
	flush *func(),
	el ParsedElement,
	tokens int,
	hierarchy []string,
	sectionTitle string,
	warnings *[]string,
) error {
	if tokens > c.cfg.MaxTokens {
		// A single oversized element: whatever is buffered is flushed first,
		// then the element is emitted as-is, unsplit, with a warning.
		(*flush)()
		*raws = append(*raws, rawChunk{
			elements:     []ParsedElement{el},
			hierarchy:    append([]string(nil), hierarchy...),
			sectionTitle: sectionTitle,
			oversized:    true,
		})
		*warnings = append(*warnings, "element exceeds max_tokens and was emitted unsplit: "+truncateForWarning(el.Text))
		return nil
	}

	if *bufferTokens+tokens > c.cfg.MaxTokens && len(*buffer) > 0 {
		(*flush)()
	}

	*buffer = append(*buffer, el)
	*bufferTokens += tokens

	if *bufferTokens >= c.cfg.TargetTokens {
		(*flush)()
	}
	return nil
}

func truncateForWarning(s string) string {
	const n = 60
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// materialize turns rawChunks into fully-populated Chunks (step 7 of §4.4).
func (c *Chunker) materialize(raws []rawChunk, meta DocumentMetadata) ([]Chunk, error) {
	out := make([]Chunk, 0, len(raws))
	for _, rc := range raws {
		var texts []string
		var pages []int
		seenPage := map[int]bool{}
		metaFields := map[string]string{}
		kind := KindParagraph
		if len(rc.elements) > 0 {
			kind = rc.elements[0].Kind
		}
		for _, el := range rc.elements {
			texts = append(texts, el.Text)
			if el.PageNumber != 0 && !seenPage[el.PageNumber] {
				seenPage[el.PageNumber] = true
				pages = append(pages, el.PageNumber)
			}
			if el.Caption != "" {
				metaFields["caption"] = el.Caption
			}
		}
		text := strings.Join(texts, "\n\n")
		tokens, err := tokenizer.CountTokens(text, c.cfg.Model)
		if err != nil {
			return nil, err
		}

		ind := normative.Detect(text, rc.sectionTitle)

		ch := Chunk{
			ID:               newChunkID(),
			DocumentID:       meta.DocumentID,
			ContentHash:      contentHash(text),
			TokenCount:       tokens,
			Text:             text,
			ChunkType:        classifyChunkType(kind, text, ind),
			SectionHierarchy: rc.hierarchy,
			SectionTitle:     rc.sectionTitle,
			ClauseNumber:     extractClauseNumber(rc.sectionTitle),
			PageNumbers:      pages,
			Normative:        ind,
			Metadata:         metaFields,
		}
		out = append(out, ch)
	}
	return out, nil
}

// applyOverlap implements step 4 of §4.4: prepend the trailing overlap to
// the next chunk when both share the same section, never across a section
// boundary.
func (c *Chunker) applyOverlap(chunks []Chunk) []Chunk {
	if c.cfg.OverlapTokens <= 0 {
		return chunks
	}
	for i := 0; i < len(chunks)-1; i++ {
		if !sameSection(chunks[i].SectionHierarchy, chunks[i+1].SectionHierarchy) {
			continue
		}
		tail, err := tokenizer.TailTokens(chunks[i].Text, c.cfg.OverlapTokens, c.cfg.Model)
		if err != nil || tail == "" {
			continue
		}
		chunks[i+1].Text = tail + "\n\n" + chunks[i+1].Text
		if n, err := tokenizer.CountTokens(chunks[i+1].Text, c.cfg.Model); err == nil {
			chunks[i+1].TokenCount = n
		}
		chunks[i+1].HasOverlap = true
		chunks[i+1].ContentHash = contentHash(chunks[i+1].Text)
	}
	return chunks
}

// mergeSmall implements step 5 of §4.4: chunks under the merge threshold are
// merged with their nearest same-section peer, forward preferred, never
// across a section boundary.
func (c *Chunker) mergeSmall(chunks []Chunk) []Chunk {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(chunks); i++ {
			if chunks[i].TokenCount >= c.cfg.MergeThreshold {
				continue
			}
			if i+1 < len(chunks) && sameSection(chunks[i].SectionHierarchy, chunks[i+1].SectionHierarchy) {
				chunks[i+1] = c.mergeTwo(chunks[i], chunks[i+1])
				chunks = append(chunks[:i], chunks[i+1:]...)
				changed = true
				break
			}
			if i-1 >= 0 && sameSection(chunks[i-1].SectionHierarchy, chunks[i].SectionHierarchy) {
				chunks[i-1] = c.mergeTwo(chunks[i-1], chunks[i])
				chunks = append(chunks[:i], chunks[i+1:]...)
				changed = true
				break
			}
		}
	}
	return chunks
}

func (c *Chunker) mergeTwo(a, b Chunk) Chunk {
	merged := b
	merged.Text = a.Text + "\n\n" + b.Text
	if n, err := tokenizer.CountTokens(merged.Text, c.cfg.Model); err == nil {
		merged.TokenCount = n
	} else {
		merged.TokenCount = a.TokenCount + b.TokenCount
	}
	merged.ContentHash = contentHash(merged.Text)
	merged.HasOverlap = a.HasOverlap || b.HasOverlap
	merged.PageNumbers = unionInts(a.PageNumbers, b.PageNumbers)
	return merged
}

func sameSection(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func unionInts(a, b []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range append(append([]int(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func extractClauseNumber(sectionTitle string) string {
	m := clausePrefix.FindStringSubmatch(strings.TrimSpace(sectionTitle))
	if m == nil {
		return ""
	}
	return m[2]
}

// classifyChunkType assigns the richer chunk_type enum (§3) beyond the raw
// element kind: definition/example/guidance/requirement are inferred from
// simple lexical cues layered on top of the structural kind, since the
// corpus's document parser (out of scope here) is what would normally carry
// this signal forward from format-specific markup.
func classifyChunkType(kind ElementKind, text string, ind normative.Indicator) ChunkType {
	switch kind {
	case KindTable:
		return ChunkTable
	case KindList:
		return ChunkList
	case KindFigure:
		return ChunkFigure
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "is defined as") || strings.HasPrefix(lower, "definition:"):
		return ChunkDefinition
	case strings.HasPrefix(lower, "example") || strings.HasPrefix(lower, "e.g."):
		return ChunkExample
	case ind == normative.Normative:
		return ChunkRequirement
	case ind == normative.Informative:
		return ChunkGuidance
	default:
		return ChunkText
	}
}
