package gate

// #region gate-id
// GateID identifies one of the four fixed gates by ordinal.
type GateID int

const (
	GateNone         GateID = 0 // carried by proceed verdicts
	GateSpike        GateID = 1
	GateTDD          GateID = 2
	GateYAGNI        GateID = 3
	GateSimpleDesign GateID = 4
)

// String returns the stable name used in logs and fixtures.
func (g GateID) String() string {
	switch g {
	case GateSpike:
		return "spike"
	case GateTDD:
		return "tdd"
	case GateYAGNI:
		return "yagni"
	case GateSimpleDesign:
		return "simple_design"
	default:
		return "none"
	}
}

// #endregion gate-id

// #region gate
// Gate is one fixed, ordered blocking precondition. Gates are defined once
// at package init and never created, reordered, or removed at runtime.
type Gate struct {
	ID           GateID
	Name         string
	Question     string // the blocking question the gate asks
	Reason       string // fixed block reason
	BlockMessage string // fixed textual response emitted on block

	predicate func(WorkContext) (bool, string)
}

// #endregion gate

// #region work-context
// WorkContext is the evidence state for one feature/behavior increment.
// Every field is supplied by the caller; the engine never fetches evidence.
type WorkContext struct {
	IncrementID string `json:"increment_id"`
	Feature     string `json:"feature"`
	Approach    string `json:"approach"`

	// Gate 1 evidence
	SpikeDone         bool   `json:"spike_done"`
	SpikeLearning     string `json:"spike_learning,omitempty"`
	ApproachValidated bool   `json:"approach_validated"` // feasibility carried over from a prior increment

	// Gate 2 evidence
	FailingTest     bool   `json:"failing_test"`
	TestDescription string `json:"test_description,omitempty"`

	// Gate 3 evidence
	TraceChecked  bool     `json:"trace_checked"`
	UntracedUnits []string `json:"untraced_units,omitempty"`

	// Gate 4 evidence
	SimplerSearched    bool   `json:"simpler_searched"`
	SimplerAlternative string `json:"simpler_alternative,omitempty"`
}

// #endregion work-context

// #region verdict
// Verdict is the engine's output: proceed, or blocked at the lowest unmet gate.
type Verdict struct {
	Action  string `json:"action"` // "proceed" | "blocked"
	Gate    GateID `json:"gate"`   // GateNone when proceeding
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"` // context-specific explanation
	Message string `json:"message"`          // fixed textual response
}

const (
	ActionProceed = "proceed"
	ActionBlocked = "blocked"
)

// #endregion verdict
