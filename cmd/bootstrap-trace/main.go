package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/discipline-gates/internal/session"
	"github.com/danielpatrickdp/discipline-gates/internal/trace"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// #region seed-file

// seedFile is the YAML shape for a trace map seed.
type seedFile struct {
	Units []seedUnit `yaml:"units"`
}

type seedUnit struct {
	Unit  string   `yaml:"unit"`
	Tests []string `yaml:"tests"`
}

// #endregion seed-file

// #region main
func main() {
	dbPath := flag.String("db", envOr("GATES_DB", "gates.db"), "path to gates.db")
	seedPath := flag.String("seed", "", "path to trace seed YAML")
	flag.Parse()

	if *seedPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bootstrap-trace --seed path/to/trace.yaml [--db path/to/gates.db]")
		os.Exit(2)
	}

	fmt.Println("=== Trace Bootstrap Tool ===")
	fmt.Printf("  DB: %s | Seed: %s\n", *dbPath, *seedPath)

	store, err := session.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	traceStore, err := trace.NewTraceStore(store.DB())
	if err != nil {
		log.Fatalf("failed to init trace store: %v", err)
	}

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatalf("read seed: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("parse seed: %v", err)
	}

	edges := 0
	for _, u := range seed.Units {
		if u.Unit == "" {
			continue
		}
		for _, test := range u.Tests {
			if test == "" {
				continue
			}
			if err := traceStore.AddRequirement(u.Unit, test); err != nil {
				log.Fatalf("add requirement %s ← %s: %v", u.Unit, test, err)
			}
			edges++
		}
	}

	total, err := traceStore.Count()
	if err != nil {
		log.Fatalf("count edges: %v", err)
	}
	fmt.Printf("seeded %d edge(s) from %d unit(s); %d edge(s) total\n", edges, len(seed.Units), total)
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
