package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/discipline-gates/internal/audit"
	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
	"github.com/danielpatrickdp/discipline-gates/internal/replay"
	"github.com/danielpatrickdp/discipline-gates/internal/session"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to gates.db")
	last := flag.Int("last", 20, "show N most recent increments")
	increment := flag.String("increment", "", "show single increment detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	auditRun := flag.Bool("audit", false, "audit an increment's verdict log against the policy laws")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/gates.db [--last N] [--increment id] [--json] [--audit]")
		os.Exit(2)
	}

	store, err := session.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *auditRun:
		if *increment == "" {
			fmt.Fprintln(os.Stderr, "--audit requires --increment")
			os.Exit(2)
		}
		err = runAuditMode(store, *increment, *jsonOut)
	case *increment != "":
		err = runDetailMode(store, *increment, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	IncrementID string `json:"increment_id"`
	Feature     string `json:"feature"`
	Approach    string `json:"approach,omitempty"`
	Status      string `json:"status"`
	Verdicts    int    `json:"verdicts"`
	Blocks      int    `json:"blocks"`
	LastGate    string `json:"last_gate"`
	CreatedAt   string `json:"created_at"`
}

func runListMode(store *session.Store, last int, jsonOut bool) error {
	history, err := store.History(last)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(os.Stderr, "no increments found")
		return nil
	}

	rows := make([]listRow, len(history))
	for i, h := range history {
		row := listRow{
			IncrementID: shortID(h.IncrementID),
			Feature:     h.Feature,
			Approach:    h.Approach,
			Status:      h.Status,
			Verdicts:    len(h.Verdicts),
			CreatedAt:   h.CreatedAt.Format("2006-01-02T15:04:05Z"),
			LastGate:    "-",
		}
		for _, v := range h.Verdicts {
			if v.Action == gate.ActionBlocked {
				row.Blocks++
			}
		}
		if n := len(h.Verdicts); n > 0 {
			row.LastGate = h.Verdicts[n-1].Gate.String()
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-28s  %-10s  %8s  %6s  %-12s  %s\n",
		"Increment", "Feature", "Status", "Verdicts", "Blocks", "Last Gate", "Time")
	for _, r := range rows {
		fmt.Printf("%-10s  %-28s  %-10s  %8d  %6d  %-12s  %s\n",
			r.IncrementID, clip(r.Feature, 28), r.Status, r.Verdicts, r.Blocks, r.LastGate, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *session.Store, id string, jsonOut bool) error {
	rec, err := store.GetIncrement(id)
	if err != nil {
		return err
	}
	verdicts, err := store.ListVerdicts(id)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(session.IncrementWithVerdicts{IncrementRecord: rec, Verdicts: verdicts})
	}

	fmt.Printf("Increment: %s\n", rec.IncrementID)
	fmt.Printf("Feature:   %s\n", rec.Feature)
	if rec.Approach != "" {
		fmt.Printf("Approach:  %s\n", rec.Approach)
	}
	fmt.Printf("Status:    %s\n", rec.Status)
	if rec.ParentID != "" {
		fmt.Printf("Parent:    %s\n", rec.ParentID)
	}
	fmt.Println()

	ctxJSON, _ := json.MarshalIndent(rec.Context, "", "  ")
	fmt.Printf("Context:\n%s\n\n", ctxJSON)

	fmt.Printf("%-4s  %-12s  %-8s  %s\n", "#", "Gate", "Action", "Reason")
	for i, v := range verdicts {
		fmt.Printf("%-4d  %-12s  %-8s  %s\n", i+1, v.Gate, v.Action, v.Reason)
	}
	return nil
}

// #endregion detail-mode

// #region audit-mode

func runAuditMode(store *session.Store, id string, jsonOut bool) error {
	rec, err := store.GetIncrement(id)
	if err != nil {
		return err
	}
	verdicts, err := store.ListVerdicts(id)
	if err != nil {
		return err
	}

	start := gate.WorkContext{
		IncrementID: rec.IncrementID,
		Feature:     rec.Feature,
		Approach:    rec.Approach,
	}

	var results []replay.Result
	for i, v := range verdicts {
		record := logging.DecodeRecord(v.EvidenceJSON)
		if record == nil {
			// Start-of-increment verdicts carry no evidence record.
			continue
		}
		results = append(results, replay.Result{
			StepID:        fmt.Sprintf("verdict-%d", i+1),
			Event:         record.Event,
			ApplyDecision: evidence.Decision{Action: record.ApplyAction, Reason: record.ApplyReason},
			Action:        record.Action,
			Gate:          record.Gate,
			Reason:        record.Reason,
			Context:       record.Context,
		})
	}
	if len(results) == 0 {
		return fmt.Errorf("increment %s has no replayable verdict records", id)
	}

	result := audit.NewAuditor().Run(start, results)

	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("Audit of %s (%d verdicts)\n\n", shortID(id), len(results))
	fmt.Printf("%-14s  %-10s  %s\n", "Law", "Violations", "Pass")
	for _, c := range result.Checks {
		fmt.Printf("%-14s  %-10d  %v\n", c.Name, c.Violations, c.Pass)
	}
	fmt.Printf("\n%s\n", result.Reason)
	if !result.Passed {
		os.Exit(1)
	}
	return nil
}

// #endregion audit-mode

// #region helpers

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion helpers
