package gate

import "fmt"

// #region messages
// Fixed textual responses, one per gate, plus the proceed acknowledgement.
const (
	MsgSpikeBlock        = "Before building, let me validate the approach with a minimal spike."
	MsgTDDBlock          = "Before implementing, I need a test that defines expected behavior."
	MsgYAGNIBlock        = "This isn't required by any test. Skipping."
	MsgSimpleDesignBlock = "A simpler solution passes all tests. Using that instead."
	MsgProceed           = "All gates passed. Implementing this increment."
)

// #endregion messages

// #region gates
// gates holds the four fixed gates in evaluation order. The order is part of
// the policy and is not configurable.
var gates = [4]Gate{
	{
		ID:           GateSpike,
		Name:         "Spike",
		Question:     "Has the approach been validated with a minimal experiment?",
		Reason:       "Spike required before implementation",
		BlockMessage: MsgSpikeBlock,
		predicate: func(ctx WorkContext) (bool, string) {
			if ctx.SpikeDone || ctx.ApproachValidated {
				return true, ""
			}
			if ctx.Approach != "" {
				return false, fmt.Sprintf("no spike recorded for approach %q", ctx.Approach)
			}
			return false, "no spike recorded"
		},
	},
	{
		ID:           GateTDD,
		Name:         "TDD",
		Question:     "Is there a failing test that defines the expected behavior?",
		Reason:       "Failing test required before code",
		BlockMessage: MsgTDDBlock,
		predicate: func(ctx WorkContext) (bool, string) {
			if ctx.FailingTest {
				return true, ""
			}
			if ctx.TestDescription != "" {
				return false, fmt.Sprintf("test %q does not currently fail", ctx.TestDescription)
			}
			return false, "no test describes the target behavior"
		},
	},
	{
		ID:           GateYAGNI,
		Name:         "YAGNI",
		Question:     "Does a currently-failing test require every unit of this code?",
		Reason:       "No test requires this",
		BlockMessage: MsgYAGNIBlock,
		predicate: func(ctx WorkContext) (bool, string) {
			if !ctx.TraceChecked {
				return false, "proposed code has not been traced to a failing test"
			}
			if len(ctx.UntracedUnits) > 0 {
				return false, fmt.Sprintf("%d unit(s) not required by any failing test: %v",
					len(ctx.UntracedUnits), ctx.UntracedUnits)
			}
			return true, ""
		},
	},
	{
		ID:           GateSimpleDesign,
		Name:         "SimpleDesign",
		Question:     "Is this the simplest implementation that passes all current tests?",
		Reason:       "Simpler alternative exists",
		BlockMessage: MsgSimpleDesignBlock,
		predicate: func(ctx WorkContext) (bool, string) {
			if !ctx.SimplerSearched {
				return false, "no search for a simpler passing alternative recorded"
			}
			if ctx.SimplerAlternative != "" {
				return false, fmt.Sprintf("simpler alternative found: %s", ctx.SimplerAlternative)
			}
			return true, ""
		},
	},
}

// Gates returns the four fixed gates in evaluation order.
func Gates() [4]Gate {
	return gates
}

// Satisfied reports whether the gate's predicate holds for the context,
// with a context-specific detail when it does not.
func (g Gate) Satisfied(ctx WorkContext) (bool, string) {
	return g.predicate(ctx)
}

// Lookup returns the gate with the given ID.
func Lookup(id GateID) (Gate, bool) {
	for _, g := range gates {
		if g.ID == id {
			return g, true
		}
	}
	return Gate{}, false
}

// #endregion gates

// #region engine
// Engine evaluates the four-gate sequential policy over a WorkContext.
// Evaluation is pure: the engine holds no session state and never mutates
// the context it is given.
type Engine struct{}

// NewEngine returns a policy engine. The gate sequence is fixed, so the
// engine carries no configuration.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate walks gates 1→4 in strict order and halts at the first unmet
// gate. A proceed verdict is returned only when all four predicates hold.
func (e *Engine) Evaluate(ctx WorkContext) Verdict {
	for _, g := range gates {
		holds, detail := g.predicate(ctx)
		if !holds {
			return Verdict{
				Action:  ActionBlocked,
				Gate:    g.ID,
				Reason:  g.Reason,
				Detail:  detail,
				Message: g.BlockMessage,
			}
		}
	}
	return Verdict{
		Action:  ActionProceed,
		Gate:    GateNone,
		Reason:  "all gates hold",
		Message: MsgProceed,
	}
}

// #endregion engine
