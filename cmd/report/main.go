package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/discipline-gates/internal/report"
)

// #region main

func main() {
	pairsPath := flag.String("pairs", "", "path to variant pairs YAML")
	baseDir := flag.String("base", "", "directory the pair paths are relative to")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *pairsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: report --pairs path/to/pairs.yaml [--base dir] [--json]")
		os.Exit(2)
	}

	r, err := report.LoadReport(*pairsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	// Pairs carrying precomputed counts render without the source files.
	if !r.HasCounts() {
		if err := r.CountFiles(*baseDir); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *jsonOut {
		if err := r.RenderJSON(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	r.RenderTable(os.Stdout)
}

// #endregion main
