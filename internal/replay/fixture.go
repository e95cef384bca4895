package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/signals"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description      string                  `json:"description"`
	StartContext     gate.WorkContext        `json:"start_context"`
	Steps            []FixtureStep           `json:"steps"`
	ExpectedVerdicts []FixtureExpectedVerdict `json:"expected_verdicts"`
}

// FixtureStep is one recorded step. It carries either a raw evidence event
// or a free-form statement to be run through the keyword parser.
type FixtureStep struct {
	StepID    string        `json:"step_id"`
	Statement string        `json:"statement,omitempty"`
	Event     *FixtureEvent `json:"event,omitempty"`
}

// FixtureEvent mirrors evidence.Event with JSON tags, minus the generated
// EventID and timestamp.
type FixtureEvent struct {
	Kind            string   `json:"kind"`
	Approach        string   `json:"approach,omitempty"`
	Learning        string   `json:"learning,omitempty"`
	TestDescription string   `json:"test_description,omitempty"`
	Failing         bool     `json:"failing,omitempty"`
	Traced          bool     `json:"traced,omitempty"`
	UntracedUnits   []string `json:"untraced_units,omitempty"`
	RuledOut        bool     `json:"ruled_out,omitempty"`
	Alternative     string   `json:"alternative,omitempty"`
}

// FixtureExpectedVerdict captures the expected verdict per step. Gate is the
// stable gate name ("spike", "tdd", "yagni", "simple_design", "none").
type FixtureExpectedVerdict struct {
	StepID string `json:"step_id"`
	Action string `json:"action"`
	Gate   string `json:"gate"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToEvent converts a FixtureEvent to a domain evidence event.
func (fe *FixtureEvent) ToEvent() evidence.Event {
	ev := evidence.NewEvent(evidence.Kind(fe.Kind))
	ev.Approach = fe.Approach
	ev.Learning = fe.Learning
	ev.TestDescription = fe.TestDescription
	ev.Failing = fe.Failing
	ev.Traced = fe.Traced
	ev.UntracedUnits = fe.UntracedUnits
	ev.RuledOut = fe.RuledOut
	ev.Alternative = fe.Alternative
	return ev
}

// ToStep converts a FixtureStep to a domain Step. Raw events take precedence;
// otherwise the statement is mapped through the keyword parser.
func (fs *FixtureStep) ToStep() (Step, error) {
	step := Step{StepID: fs.StepID, Statement: fs.Statement}
	if fs.Event != nil {
		step.Event = fs.Event.ToEvent()
		return step, nil
	}
	ev, ok := signals.Parse(fs.Statement)
	if !ok {
		return Step{}, fmt.Errorf("step %s: no evidence recognized in %q", fs.StepID, fs.Statement)
	}
	step.Event = ev
	return step, nil
}

// ToSteps converts every fixture step, failing on the first unparseable one.
func (f *Fixture) ToSteps() ([]Step, error) {
	steps := make([]Step, 0, len(f.Steps))
	for i := range f.Steps {
		step, err := f.Steps[i].ToStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// #endregion fixture-loader
