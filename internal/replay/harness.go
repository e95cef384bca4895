package replay

import (
	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
)

// #region types
// Step is a single recorded evidence event for replay.
type Step struct {
	StepID    string
	Statement string // original operator statement, informational
	Event     evidence.Event
}

// Result captures the outcome of replaying one step through the pipeline.
type Result struct {
	StepID string
	Event  evidence.Event

	// Apply stage
	ApplyDecision evidence.Decision

	// Verdict stage
	Action string
	Gate   gate.GateID
	Reason string

	// Context after this step
	Context gate.WorkContext
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps         int
	Proceeds           int
	SpikeBlocks        int
	TDDBlocks          int
	YAGNIBlocks        int
	SimpleDesignBlocks int
	NoOps              int // steps whose event changed nothing
	FinalContext       gate.WorkContext
}

// #endregion types

// #region replay
// Replay iterates through steps, applying each event and evaluating the
// policy per step: apply → evaluate. Operates entirely in-memory.
func Replay(start gate.WorkContext, steps []Step) []Result {
	current := start
	results := make([]Result, 0, len(steps))

	engine := gate.NewEngine()

	for _, step := range steps {
		applied := evidence.Apply(current, step.Event)
		current = applied.NewContext

		verdict := engine.Evaluate(current)

		results = append(results, Result{
			StepID:        step.StepID,
			Event:         step.Event,
			ApplyDecision: applied.Decision,
			Action:        verdict.Action,
			Gate:          verdict.Gate,
			Reason:        verdict.Reason,
			Context:       current,
		})
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, finalContext gate.WorkContext) Summary {
	s := Summary{
		TotalSteps:   len(results),
		FinalContext: finalContext,
	}
	for _, r := range results {
		if r.ApplyDecision.Action == "no_op" {
			s.NoOps++
		}
		switch r.Action {
		case gate.ActionProceed:
			s.Proceeds++
		case gate.ActionBlocked:
			switch r.Gate {
			case gate.GateSpike:
				s.SpikeBlocks++
			case gate.GateTDD:
				s.TDDBlocks++
			case gate.GateYAGNI:
				s.YAGNIBlocks++
			case gate.GateSimpleDesign:
				s.SimpleDesignBlocks++
			}
		}
	}
	return s
}

// #endregion replay
