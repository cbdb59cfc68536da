package strategy

import (
	"strings"

	"clausebase/internal/rag/retrieve"
	"clausebase/internal/rag/store"
)

// RCCA implements the failure-analysis workflow strategy (§4.10).
type RCCA struct{}

var rccaExpansionKeywords = []string{
	"failure", "root cause", "corrective action", "defect", "anomaly", "fault", "malfunction",
}

var rccaSymptomKeywords = []string{"symptom", "observed", "indication"}
var rccaCauseKeywords = []string{"root cause", "cause", "due to"}
var rccaActionKeywords = []string{"corrective action", "remediation", "mitigation", "fix"}

func (RCCA) Name() string { return "rcca" }

func (RCCA) PreprocessQuery(query string, params map[string]any) SearchQuery {
	original := query + " " + strings.Join(rccaExpansionKeywords, " ")

	var filters store.Filter
	if projectID := stringParam(params, "project_id"); projectID != "" {
		filters = allowedFilters(store.Filter{"project_id": store.Exact(projectID)})
	}

	return SearchQuery{
		Original:      original,
		ExpandedTerms: rccaExpansionKeywords,
		Filters:       filters,
	}
}

func (RCCA) AdjustRanking(results []retrieve.RetrievedItem) []retrieve.RetrievedItem {
	for i := range results {
		switch {
		case containsAny(results[i].Text, rccaSymptomKeywords):
			results[i].Score = boost(results[i].Score, 1.15)
		case containsAny(results[i].Text, rccaCauseKeywords):
			results[i].Score = boost(results[i].Score, 1.20)
		case containsAny(results[i].Text, rccaActionKeywords):
			results[i].Score = boost(results[i].Score, 1.10)
		}
	}
	return sortByScoreDesc(results)
}

func (RCCA) FormatOutput(results []retrieve.RetrievedItem, _ map[string]any) map[string]any {
	symptoms := []retrieve.RetrievedItem{}
	rootCauses := []retrieve.RetrievedItem{}
	correctiveActions := []retrieve.RetrievedItem{}

	for _, r := range results {
		switch {
		case containsAny(r.Text, rccaSymptomKeywords):
			symptoms = append(symptoms, r)
		case containsAny(r.Text, rccaCauseKeywords):
			rootCauses = append(rootCauses, r)
		case containsAny(r.Text, rccaActionKeywords):
			correctiveActions = append(correctiveActions, r)
		default:
			rootCauses = append(rootCauses, r)
		}
	}

	return map[string]any{
		"result_type":        "rcca_analysis",
		"symptoms":           symptoms,
		"root_causes":        rootCauses,
		"corrective_actions":  correctiveActions,
		"total_results":      len(results),
	}
}
