package strategy

import (
	"regexp"
	"strings"

	"clausebase/internal/rag/retrieve"
)

// Trade implements the trade-study workflow strategy (§4.10). A fresh value
// is expected per request: PreprocessQuery records the caller's criteria so
// AdjustRanking can apply the "or containing any of criteria" boost rule.
type Trade struct {
	criteria []string
}

var quantitativeToken = regexp.MustCompile(`\d+(\.\d+)?\s*[a-zA-Z]{1,6}\b`)

func (t *Trade) Name() string { return "trade" }

func (t *Trade) PreprocessQuery(query string, params map[string]any) SearchQuery {
	alternatives := stringSliceParam(params, "alternatives")
	criteria := stringSliceParam(params, "criteria")
	t.criteria = criteria

	expanded := append(append([]string{}, alternatives...), criteria...)
	original := query
	if len(expanded) > 0 {
		original = query + " " + strings.Join(expanded, " ")
	}

	return SearchQuery{
		Original:      original,
		ExpandedTerms: expanded,
	}
}

func (t *Trade) AdjustRanking(results []retrieve.RetrievedItem) []retrieve.RetrievedItem {
	for i := range results {
		if quantitativeToken.MatchString(results[i].Text) || containsAny(results[i].Text, t.criteria) {
			results[i].Score = boost(results[i].Score, 1.10)
		}
	}
	return sortByScoreDesc(results)
}

func (t *Trade) FormatOutput(results []retrieve.RetrievedItem, params map[string]any) map[string]any {
	alternatives := stringSliceParam(params, "alternatives")
	criteria := stringSliceParam(params, "criteria")

	resultsByAlternative := map[string][]retrieve.RetrievedItem{}
	for _, alt := range alternatives {
		resultsByAlternative[alt] = []retrieve.RetrievedItem{}
	}
	var unmatched []retrieve.RetrievedItem

	for _, r := range results {
		matched := false
		lower := strings.ToLower(r.Text)
		for _, alt := range alternatives {
			if strings.Contains(lower, strings.ToLower(alt)) {
				resultsByAlternative[alt] = append(resultsByAlternative[alt], r)
				matched = true
				break
			}
		}
		if !matched {
			unmatched = append(unmatched, r)
		}
	}

	return map[string]any{
		"result_type":            "trade_analysis",
		"results_by_alternative": resultsByAlternative,
		"unmatched":              unmatched,
		"criteria_considered":    criteria,
		"total_results":          len(results),
	}
}
