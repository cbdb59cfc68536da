// Command queryctl is a thin CLI front end over the six named retrieval
// operations of §6: search, stats, rcca, trade, explore, plan.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"clausebase/internal/rag/config"
	"clausebase/internal/rag/store"
	"clausebase/internal/rag/wire"
)

func main() {
	log.SetFlags(0)

	var (
		op             = flag.String("op", "search", "operation: search, stats, rcca, trade, explore, plan")
		query          = flag.String("query", "", "query text")
		n              = flag.Int("n", 10, "number of results")
		filterRaw      = flag.String("filter", "", "comma-separated key=value metadata filters; pipe-separate values for set membership, e.g. chunk_type=requirement|definition")
		scoreThreshold = flag.Float64("score-threshold", 0, "drop results scoring below this after fusion/rerank")
		projectID      = flag.String("project-id", "", "rcca: project_id filter (always dropped, not whitelisted)")
		alternatives   = flag.String("alternatives", "", "trade: comma-separated alternative names")
		criteria       = flag.String("criteria", "", "trade: comma-separated evaluation criteria")
		facets         = flag.String("facets", "", "explore: comma-separated facets")
		category       = flag.String("category", "", "plan: category hint")
	)
	flag.Parse()

	cfg := config.Load()
	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("config problem: %s", p)
		}
		log.Fatal("queryctl: invalid configuration")
	}

	ctx := context.Background()
	collab, err := wire.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("queryctl: %v", err)
	}
	defer collab.Close()

	var out any
	switch *op {
	case "search":
		resp, err := collab.Service.Search(ctx, *query, *n, parseFilter(*filterRaw), *scoreThreshold)
		if err != nil {
			log.Fatalf("queryctl: search failed: %v", err)
		}
		out = resp
	case "stats":
		stats, err := collab.Service.Stats(ctx)
		if err != nil {
			log.Fatalf("queryctl: stats failed: %v", err)
		}
		out = stats
	case "rcca":
		out = collab.Service.RCCA(ctx, *query, *n, *projectID)
	case "trade":
		out = collab.Service.Trade(ctx, *query, splitCSV(*alternatives), splitCSV(*criteria), *n)
	case "explore":
		out = collab.Service.Explore(ctx, *query, splitCSV(*facets), *n)
	case "plan":
		out = collab.Service.Plan(ctx, *query, *category, *n)
	default:
		log.Fatalf("queryctl: unknown -op %q", *op)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("queryctl: encode output: %v", err)
	}
}

func parseFilter(raw string) store.Filter {
	if raw == "" {
		return nil
	}
	out := store.Filter{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if values := strings.Split(v, "|"); len(values) > 1 {
			for i := range values {
				values[i] = strings.TrimSpace(values[i])
			}
			out[k] = store.AnyOf(values...)
		} else {
			out[k] = store.Exact(strings.TrimSpace(v))
		}
	}
	return out
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
