package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
	"github.com/danielpatrickdp/discipline-gates/internal/replay"
	"github.com/danielpatrickdp/discipline-gates/internal/session"
	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to gates.db (DB mode)")
	increment := flag.String("increment", "", "increment to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/gates.db --increment id")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		if *increment == "" {
			fmt.Fprintln(os.Stderr, "--db mode requires --increment")
			os.Exit(2)
		}
		exitCode = runDBMode(*dbPath, *increment)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	steps, err := f.ToSteps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert steps: %v\n", err)
		return 2
	}

	results := replay.Replay(f.StartContext, steps)

	expected := make([]expectation, len(f.ExpectedVerdicts))
	for i, e := range f.ExpectedVerdicts {
		expected[i] = expectation{StepID: e.StepID, Action: e.Action, Gate: e.Gate}
	}

	return printComparison(results, expected)
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, incrementID string) int {
	store, err := session.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	rec, err := store.GetIncrement(incrementID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get increment: %v\n", err)
		return 2
	}
	verdicts, err := store.ListVerdicts(incrementID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list verdicts: %v\n", err)
		return 2
	}

	start := gate.WorkContext{
		IncrementID: rec.IncrementID,
		Feature:     rec.Feature,
		Approach:    rec.Approach,
	}

	var steps []replay.Step
	var expected []expectation
	var recorded []*logging.VerdictRecord
	for i, v := range verdicts {
		record := logging.DecodeRecord(v.EvidenceJSON)
		if record == nil {
			// Start-of-increment verdicts carry no evidence record.
			continue
		}
		stepID := fmt.Sprintf("verdict-%d", i+1)
		steps = append(steps, replay.Step{StepID: stepID, Statement: record.Statement, Event: record.Event})
		expected = append(expected, expectation{StepID: stepID, Action: record.Action, Gate: record.Gate.String()})
		recorded = append(recorded, record)
	}
	if len(steps) == 0 {
		fmt.Fprintf(os.Stderr, "increment %s has no replayable verdict records\n", incrementID)
		return 2
	}

	results := replay.Replay(start, steps)
	code := printComparison(results, expected)

	// On divergence, show where the reconstructed context left the recorded one.
	if code != 0 {
		for i := range results {
			if i >= len(recorded) {
				break
			}
			if diff := cmp.Diff(recorded[i].Context, results[i].Context); diff != "" {
				fmt.Printf("\ncontext divergence at %s (-recorded +replayed):\n%s", results[i].StepID, diff)
				break
			}
		}
	}
	return code
}

// #endregion db-mode

// #region output

type expectation struct {
	StepID string
	Action string
	Gate   string
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.Result, expected []expectation) int {
	if len(results) == 0 {
		fmt.Println("Summary: 0 steps, nothing to replay")
		return 0
	}

	fmt.Printf("%-12s| %-22s| %-22s| %s\n", "Step", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-23s+%-23s+%s\n",
		"------------", "-----------------------", "-----------------------", "------")

	matches := 0
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	for i := 0; i < total; i++ {
		exp := fmt.Sprintf("%s@%s", expected[i].Action, expected[i].Gate)
		got := fmt.Sprintf("%s@%s", results[i].Action, results[i].Gate)
		match := "DIFF"
		if exp == got {
			match = "OK"
			matches++
		}
		fmt.Printf("%-12s| %-22s| %-22s| %s\n", expected[i].StepID, exp, got, match)
	}

	summary := replay.Summarize(results, results[len(results)-1].Context)
	diverge := total - matches
	fmt.Printf("\nSummary: %d steps, %d match, %d diverge, %d proceed, %d no-op\n",
		total, matches, diverge, summary.Proceeds, summary.NoOps)

	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output
