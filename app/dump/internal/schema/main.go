package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/umputun/jobkeep/app/dump"
)

// writes snapshot schema embedded by the dump package, run by go generate in app/dump
func main() {
	schema := dump.GenerateSchema()
	schema.Title = "Jobkeep Snapshot Schema"
	schema.Description = "Schema for jobkeep export/import YAML file"
	schema.Version = "1.0.0"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("can't marshal snapshot schema: %v", err)
	}

	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o600); err != nil { //nolint:gosec // schema file is public
		log.Fatalf("can't write %s: %v", out, err)
	}
	fmt.Printf("snapshot schema written to %s\n", out)
}
