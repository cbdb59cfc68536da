// Package lexical implements the BM25 keyword index (§4.7) that the
// retrieval engine fuses with semantic search via reciprocal rank fusion.
// No BM25 library appears anywhere in this module's dependency corpus, so
// Okapi BM25 is hand-rolled here against the exact tokenization (lowercase,
// whitespace split, no stopword removal) the original lexical searcher used.
package lexical

import (
	"math"
	"sort"
	"strings"
	"sync"

	ragerrors "clausebase/internal/rag/errors"
)

const (
	k1 = 1.5
	b  = 0.75
)

// Result is a single lexical search hit.
type Result struct {
	ID    string
	Score float64
}

type document struct {
	id        string
	tokens    []string
	termFreqs map[string]int
	length    int
}

// Index is an in-memory BM25 index over a document corpus. Safe for
// concurrent reads; Build replaces the whole index atomically.
type Index struct {
	mu         sync.RWMutex
	docs       []document
	avgDocLen  float64
	docFreq    map[string]int
	totalDocs  int
}

func New() *Index { return &Index{docFreq: map[string]int{}} }

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Build replaces the index contents with the given (id, content) corpus.
func (idx *Index) Build(ids, contents []string) error {
	if len(ids) != len(contents) {
		return ragerrors.InvalidInputf("bm25: ids and contents must be the same length")
	}
	if len(ids) == 0 {
		return ragerrors.InvalidInputf("bm25: cannot build index from empty corpus")
	}

	docs := make([]document, 0, len(ids))
	docFreq := map[string]int{}
	var totalLen int

	for i, id := range ids {
		tokens := tokenize(contents[i])
		tf := map[string]int{}
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			docFreq[t]++
		}
		docs = append(docs, document{id: id, tokens: tokens, termFreqs: tf, length: len(tokens)})
		totalLen += len(tokens)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs = docs
	idx.docFreq = docFreq
	idx.totalDocs = len(docs)
	if len(docs) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(docs))
	}
	return nil
}

// Add incrementally inserts a single document: document frequencies are
// updated for the new document's terms only, avgDocLen is recomputed here
// from the stored document lengths, and idf is computed per query in Search.
func (idx *Index) Add(id, content string) {
	tokens := tokenize(content)
	tf := map[string]int{}
	for _, t := range tokens {
		tf[t]++
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for t := range tf {
		idx.docFreq[t]++
	}
	idx.docs = append(idx.docs, document{id: id, tokens: tokens, termFreqs: tf, length: len(tokens)})
	idx.totalDocs = len(idx.docs)
	var totalLen int
	for _, d := range idx.docs {
		totalLen += d.length
	}
	if idx.totalDocs > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.totalDocs)
	}
}

// Search returns the top-k documents scored by Okapi BM25 (k1=1.5, b=0.75),
// descending by score, dropping zero-score (no keyword overlap) documents.
// An empty or whitespace-only query returns no results.
func (idx *Index) Search(query string, k int) []Result {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.totalDocs == 0 {
		return nil
	}
	if k <= 0 {
		k = 10
	}

	termSet := map[string]bool{}
	for _, t := range queryTokens {
		termSet[t] = true
	}
	idf := make(map[string]float64, len(termSet))
	for t := range termSet {
		n := float64(idx.docFreq[t])
		idf[t] = math.Log(1 + (float64(idx.totalDocs)-n+0.5)/(n+0.5))
	}

	results := make([]Result, 0, idx.totalDocs)
	for _, d := range idx.docs {
		var score float64
		for t := range termSet {
			f := float64(d.termFreqs[t])
			if f == 0 {
				continue
			}
			norm := 1 - b + b*float64(d.length)/idx.avgDocLen
			score += idf[t] * (f * (k1 + 1)) / (f + k1*norm)
		}
		if score == 0 {
			continue
		}
		results = append(results, Result{ID: d.id, Score: score})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (idx *Index) DocumentCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.totalDocs
}
