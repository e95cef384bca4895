package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

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
	increment := flag.String("increment", "", "increment to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *increment == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/gates.db --increment id --out path/to/fixture.json")
		os.Exit(2)
	}

	if err := run(*dbPath, *increment, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, incrementID, outPath string) error {
	store, err := session.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	rec, err := store.GetIncrement(incrementID)
	if err != nil {
		return fmt.Errorf("get increment: %w", err)
	}
	verdicts, err := store.ListVerdicts(incrementID)
	if err != nil {
		return fmt.Errorf("list verdicts: %w", err)
	}

	fixture := replay.Fixture{
		Description: fmt.Sprintf("exported session for %q (%s)", rec.Feature, rec.Status),
		StartContext: gate.WorkContext{
			IncrementID: rec.IncrementID,
			Feature:     rec.Feature,
			Approach:    rec.Approach,
		},
	}

	for _, v := range verdicts {
		record := logging.DecodeRecord(v.EvidenceJSON)
		if record == nil {
			// Start-of-increment verdicts carry no evidence record.
			continue
		}
		stepID := fmt.Sprintf("step-%d", len(fixture.Steps)+1)

		fixture.Steps = append(fixture.Steps, replay.FixtureStep{
			StepID:    stepID,
			Statement: record.Statement,
			Event:     toFixtureEvent(record.Event),
		})
		fixture.ExpectedVerdicts = append(fixture.ExpectedVerdicts, replay.FixtureExpectedVerdict{
			StepID: stepID,
			Action: record.Action,
			Gate:   record.Gate.String(),
		})
	}
	if len(fixture.Steps) == 0 {
		return fmt.Errorf("increment %s has no exportable verdict records", incrementID)
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("exported %d steps to %s\n", len(fixture.Steps), outPath)
	return nil
}

// toFixtureEvent strips the generated ID and timestamp for stable fixtures.
func toFixtureEvent(ev evidence.Event) *replay.FixtureEvent {
	return &replay.FixtureEvent{
		Kind:            string(ev.Kind),
		Approach:        ev.Approach,
		Learning:        ev.Learning,
		TestDescription: ev.TestDescription,
		Failing:         ev.Failing,
		Traced:          ev.Traced,
		UntracedUnits:   ev.UntracedUnits,
		RuledOut:        ev.RuledOut,
		Alternative:     ev.Alternative,
	}
}

// #endregion export
