package strategy

import (
	"sort"
	"strings"

	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/store"
)

// sortByScoreDesc re-sorts in place by descending score, as every strategy's
// AdjustRanking does after applying its boosts (§4.10).
func sortByScoreDesc(results []retrieve.RetrievedItem) []retrieve.RetrievedItem {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// boost multiplies a score by factor, clamped at 1.0 (§4.10: "all boosts are
// multiplicative on score and clamped at 1.0").
func boost(score float64, factor float64) float64 {
	v := score * factor
	if v > 1.0 {
		return 1.0
	}
	return v
}

// containsAny reports whether content contains any of keywords, case-insensitively.
func containsAny(content string, keywords []string) bool {
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// countMatches counts how many distinct keywords appear in content.
func countMatches(content string, keywords []string) int {
	lower := strings.ToLower(content)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// allowedFilters restricts a candidate filter map to the store's whitelist
// (§4.6), silently dropping unsupported keys rather than erroring — used by
// strategies that carry caller-supplied filter-like parameters (e.g. rcca's
// project_id) which may not be part of the whitelist.
func allowedFilters(candidate store.Filter) store.Filter {
	if len(candidate) == 0 {
		return nil
	}
	out := store.Filter{}
	for k, v := range candidate {
		if _, ok := store.AllowedFilterKeys[k]; ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringSliceParam(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
