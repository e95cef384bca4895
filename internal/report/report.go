package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region types

// VariantPair compares a gated implementation of one utility against its
// ungated counterpart.
type VariantPair struct {
	Name         string `yaml:"name" json:"name"`
	GatedPath    string `yaml:"gated_path" json:"gated_path"`
	UngatedPath  string `yaml:"ungated_path" json:"ungated_path"`
	GatedLines   int    `yaml:"gated_lines,omitempty" json:"gated_lines"`
	UngatedLines int    `yaml:"ungated_lines,omitempty" json:"ungated_lines"`
}

// Report is a set of variant pairs, usually loaded from YAML.
type Report struct {
	Title string        `yaml:"title" json:"title"`
	Pairs []VariantPair `yaml:"pairs" json:"pairs"`
}

// #endregion types

// #region loader

// LoadReport reads a YAML report definition.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}

// HasCounts reports whether every pair already carries line counts, as when
// the YAML records precomputed numbers instead of file paths.
func (r *Report) HasCounts() bool {
	for _, p := range r.Pairs {
		if p.GatedLines == 0 && p.UngatedLines == 0 {
			return false
		}
	}
	return len(r.Pairs) > 0
}

// CountFiles fills in line counts for every pair by reading the referenced
// files relative to baseDir.
func (r *Report) CountFiles(baseDir string) error {
	for i := range r.Pairs {
		p := &r.Pairs[i]
		gated, err := countFileLines(baseDir, p.GatedPath)
		if err != nil {
			return err
		}
		ungated, err := countFileLines(baseDir, p.UngatedPath)
		if err != nil {
			return err
		}
		p.GatedLines = gated
		p.UngatedLines = ungated
	}
	return nil
}

func countFileLines(baseDir, path string) (int, error) {
	full := path
	if baseDir != "" {
		full = filepath.Join(baseDir, path)
	}
	f, err := os.Open(full)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", full, err)
	}
	defer f.Close()
	return CountLines(f), nil
}

// CountLines counts non-blank lines.
func CountLines(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n
}

// #endregion loader

// #region reduction

// Reduction returns the fraction of lines removed by gating one pair,
// in [0,1]. Zero ungated lines yields zero.
func (p VariantPair) Reduction() float64 {
	if p.UngatedLines == 0 {
		return 0
	}
	return float64(p.UngatedLines-p.GatedLines) / float64(p.UngatedLines)
}

// TotalReduction returns the overall line reduction across all pairs.
func (r *Report) TotalReduction() float64 {
	gated, ungated := 0, 0
	for _, p := range r.Pairs {
		gated += p.GatedLines
		ungated += p.UngatedLines
	}
	if ungated == 0 {
		return 0
	}
	return float64(ungated-gated) / float64(ungated)
}

// #endregion reduction

// #region render

// RenderTable writes the report as an aligned text table.
func (r *Report) RenderTable(w io.Writer) {
	if r.Title != "" {
		fmt.Fprintf(w, "%s\n\n", r.Title)
	}
	fmt.Fprintf(w, "%-20s  %8s  %8s  %9s\n", "Pair", "Gated", "Ungated", "Reduction")
	fmt.Fprintf(w, "%-20s  %8s  %8s  %9s\n", "--------------------", "--------", "--------", "---------")
	for _, p := range r.Pairs {
		fmt.Fprintf(w, "%-20s  %8d  %8d  %8.1f%%\n",
			p.Name, p.GatedLines, p.UngatedLines, p.Reduction()*100)
	}
	fmt.Fprintf(w, "\nTotal reduction: %.1f%%\n", r.TotalReduction()*100)
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// #endregion render
