package strategy

import (
	"strings"

	"clausebase/internal/rag/retrieve"
)

// Plan implements the planning workflow strategy (§4.10), a direct port of
// knowledge-mcp's search/strategies/plan.py.
type Plan struct {
	category string
}

var planPlanningKeywords = []string{
	"planning", "template", "framework", "methodology", "approach", "strategy", "roadmap", "schedule", "timeline",
}

var planCategoryKeywords = map[string][]string{
	"templates":       {"template", "framework", "methodology", "pattern", "structure"},
	"risks":           {"risk", "hazard", "threat", "mitigation", "contingency", "failure"},
	"lessons_learned": {"lesson", "retrospective", "post-mortem", "learned", "experience"},
	"precedents":      {"precedent", "case study", "example", "similar", "previous", "past project"},
}

var planCategoryOrder = []string{"templates", "risks", "lessons_learned", "precedents"}

func (p *Plan) Name() string { return "plan" }

func (p *Plan) PreprocessQuery(query string, params map[string]any) SearchQuery {
	category := stringParam(params, "category")
	p.category = category

	var expanded []string
	var facets []string
	if kws, ok := planCategoryKeywords[category]; ok {
		expanded = append(expanded, kws...)
		facets = append(facets, category)
	} else {
		expanded = append(expanded, planPlanningKeywords...)
		facets = append(facets, planCategoryOrder...)
	}

	return SearchQuery{
		Original:      query + " " + strings.Join(expanded, " "),
		ExpandedTerms: expanded,
		Facets:        facets,
	}
}

func (p *Plan) AdjustRanking(results []retrieve.RetrievedItem) []retrieve.RetrievedItem {
	for i := range results {
		matches := countMatches(results[i].Text, planPlanningKeywords)
		if matches > 0 {
			b := float64(matches) * 0.02
			if b > 0.1 {
				b = 0.1
			}
			results[i].Score = boost(results[i].Score, 1.0+b)
		}
		docType := strings.ToLower(results[i].DocumentType)
		if strings.Contains(docType, "template") || strings.Contains(docType, "framework") {
			results[i].Score = boost(results[i].Score, 1.05)
		}
	}
	return sortByScoreDesc(results)
}

func (p *Plan) FormatOutput(results []retrieve.RetrievedItem, params map[string]any) map[string]any {
	category := stringParam(params, "category")

	if category != "" {
		return map[string]any{
			"result_type": "plan_analysis",
			"category":    category,
			"results":     results,
			"count":       len(results),
		}
	}

	categorized := map[string][]retrieve.RetrievedItem{
		"templates": {}, "risks": {}, "lessons_learned": {}, "precedents": {},
	}
	for _, r := range results {
		placed := false
		for _, cat := range planCategoryOrder {
			if containsAny(r.Text, planCategoryKeywords[cat]) {
				categorized[cat] = append(categorized[cat], r)
				placed = true
				break
			}
		}
		if !placed {
			categorized["templates"] = append(categorized["templates"], r)
		}
	}

	return map[string]any{
		"result_type": "plan_analysis",
		"categories":  categorized,
		"total_results": len(results),
	}
}
