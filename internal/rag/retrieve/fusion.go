package retrieve

import (
	"sort"

	"clausebase/internal/rag/lexical"
	"clausebase/internal/rag/store"
)

// fusedCandidate is an internal accumulator used during RRF fusion,
// adapted from the teacher's hybrid FTS/vector fusion to this module's
// BM25/vector pairing (§4.7).
type fusedCandidate struct {
	ID       string
	VecRank  int // 1-based; 0 if absent
	LexRank  int // 1-based; 0 if absent
	VecScore float64
	LexScore float64
	Fused    float64
	Metadata map[string]string
}

// FuseRRF performs reciprocal rank fusion over vector-store and BM25
// candidate rankings (§4.7): score(id) = 1/(k+vecRank) + 1/(k+lexRank),
// contributed only by the lists a candidate actually appears in. k<=0
// defaults to 60.
func FuseRRF(vec []store.Result, lex []lexical.Result, k int) []fusedCandidate {
	if k <= 0 {
		k = 60
	}

	vecPos := make(map[string]int, len(vec))
	vecByID := make(map[string]store.Result, len(vec))
	for i, r := range vec {
		vecPos[r.ID] = i + 1
		vecByID[r.ID] = r
	}
	lexPos := make(map[string]int, len(lex))
	for i, r := range lex {
		lexPos[r.ID] = i + 1
	}

	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range vec {
		add(r.ID)
	}
	for _, r := range lex {
		add(r.ID)
	}

	out := make([]fusedCandidate, 0, len(ids))
	for _, id := range ids {
		vr := vecPos[id]
		lr := lexPos[id]
		var vContrib, lContrib float64
		if vr > 0 {
			vContrib = 1.0 / float64(k+vr)
		}
		if lr > 0 {
			lContrib = 1.0 / float64(k+lr)
		}
		out = append(out, fusedCandidate{
			ID: id, VecRank: vr, LexRank: lr,
			VecScore: vContrib, LexScore: lContrib,
			Fused:    vContrib + lContrib,
			Metadata: vecByID[id].Metadata,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Fused != out[j].Fused {
			return out[i].Fused > out[j].Fused
		}
		return out[i].ID < out[j].ID
	})
	return out
}
