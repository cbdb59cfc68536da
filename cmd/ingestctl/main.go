// Command ingestctl ingests a single parsed document into the retrieval
// corpus (§4.3/§7), wiring its collaborators from environment configuration
// the same way the teacher's CLI drivers load internal/config.Load.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/config"
	"clausebase/internal/rag/ingest"
	"clausebase/internal/rag/wire"
)

// parsedDocument is the on-disk shape ingestctl reads: a document's parsed
// elements as produced by an upstream PDF/HTML extraction step (§4.1, out of
// this module's scope — it consumes already-parsed elements).
type parsedDocument struct {
	DocumentID     string                `json:"document_id"`
	Title          string                `json:"title"`
	DocumentType   string                `json:"document_type"`
	Source         string                `json:"source"`
	ReingestPolicy string                `json:"reingest_policy"`
	Elements       []chunk.ParsedElement `json:"elements"`
}

func main() {
	log.SetFlags(0)
	var inputPath string
	flag.StringVar(&inputPath, "input", "", "path to a parsed-document JSON file (required)")
	flag.Parse()

	if inputPath == "" {
		log.Fatal("ingestctl: -input is required")
	}

	cfg := config.Load()
	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("config problem: %s", p)
		}
		log.Fatal("ingestctl: invalid configuration")
	}

	ctx := context.Background()
	collab, err := wire.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("ingestctl: %v", err)
	}
	defer collab.Close()

	b, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("ingestctl: read %s: %v", inputPath, err)
	}
	var doc parsedDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		log.Fatalf("ingestctl: decode %s: %v", inputPath, err)
	}

	policy := ingest.ReingestSkipIfUnchanged
	if doc.ReingestPolicy == string(ingest.ReingestOverwrite) {
		policy = ingest.ReingestOverwrite
	}

	resp, err := collab.Service.Ingest(ctx, ingest.Request{
		DocumentID:     doc.DocumentID,
		Title:          doc.Title,
		DocumentType:   doc.DocumentType,
		Elements:       doc.Elements,
		Source:         doc.Source,
		ReingestPolicy: policy,
	})
	if err != nil {
		log.Fatalf("ingestctl: ingest failed: %v", err)
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
