package strategy

import (
	"clausebase/internal/rag/retrieve"
)

// Explore implements the multi-facet exploration workflow strategy (§4.10),
// a direct port of knowledge-mcp's search/strategies/explore.py.
type Explore struct{}

var exploreDefaultFacets = []string{"definitions", "examples", "standards", "best_practices"}

func (Explore) Name() string { return "explore" }

func (Explore) PreprocessQuery(query string, params map[string]any) SearchQuery {
	facets := stringSliceParam(params, "facets")
	if len(facets) == 0 {
		facets = exploreDefaultFacets
	}
	return SearchQuery{
		Original: query,
		Facets:   facets,
	}
}

func (Explore) AdjustRanking(results []retrieve.RetrievedItem) []retrieve.RetrievedItem {
	for i := range results {
		switch {
		case string(results[i].ChunkType) == "definition":
			results[i].Score = boost(results[i].Score, 1.20)
		case string(results[i].ChunkType) == "example":
			results[i].Score = boost(results[i].Score, 1.15)
		case results[i].Normative == "normative":
			results[i].Score = boost(results[i].Score, 1.10)
		case string(results[i].ChunkType) == "guidance":
			results[i].Score = boost(results[i].Score, 1.10)
		}
	}
	return sortByScoreDesc(results)
}

func (Explore) FormatOutput(results []retrieve.RetrievedItem, params map[string]any) map[string]any {
	facets := stringSliceParam(params, "facets")
	if len(facets) == 0 {
		facets = exploreDefaultFacets
	}

	resultsByFacet := map[string][]retrieve.RetrievedItem{}
	for _, f := range facets {
		resultsByFacet[f] = []retrieve.RetrievedItem{}
	}

	for _, r := range results {
		var facet string
		switch {
		case string(r.ChunkType) == "definition":
			facet = "definitions"
		case string(r.ChunkType) == "example":
			facet = "examples"
		case r.Normative == "normative":
			facet = "standards"
		case string(r.ChunkType) == "guidance":
			facet = "best_practices"
		default:
			facet = "best_practices"
		}
		if _, ok := resultsByFacet[facet]; ok {
			resultsByFacet[facet] = append(resultsByFacet[facet], r)
		}
	}

	facetCoverage := map[string]int{}
	for _, f := range facets {
		facetCoverage[f] = len(resultsByFacet[f])
	}

	return map[string]any{
		"result_type":     "explore_analysis",
		"results_by_facet": resultsByFacet,
		"facet_coverage":  facetCoverage,
		"facets_explored": facets,
		"total_results":   len(results),
	}
}
