package evidence

import (
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
)

// #region kind
// Kind tags an evidence event with the kind of proof it carries.
type Kind string

const (
	KindSpikeCompleted   Kind = "spike_completed"
	KindApproachChanged  Kind = "approach_changed"
	KindTestWritten      Kind = "test_written"
	KindTestOutcome      Kind = "test_outcome"
	KindTraceReport      Kind = "trace_report"
	KindSimplicityReport Kind = "simplicity_report"
)

// #endregion kind

// #region event
// Event is a single piece of evidence supplied by the caller. Only the
// fields relevant to its Kind are populated.
type Event struct {
	EventID   string    `json:"event_id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	// spike_completed / approach_changed
	Approach string `json:"approach,omitempty"`
	Learning string `json:"learning,omitempty"`

	// test_written / test_outcome
	TestDescription string `json:"test_description,omitempty"`
	Failing         bool   `json:"failing,omitempty"`

	// trace_report
	Traced        bool     `json:"traced,omitempty"`
	UntracedUnits []string `json:"untraced_units,omitempty"`

	// simplicity_report
	RuledOut    bool   `json:"ruled_out,omitempty"`
	Alternative string `json:"alternative,omitempty"`
}

// #endregion event

// #region decision
// Decision records what Apply decided about an event.
type Decision struct {
	Action string // "applied" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from one Apply call.
type Metrics struct {
	FieldsChanged []string
	ApplyTimeMs   int64
}

// #endregion metrics

// #region apply-result
// ApplyResult bundles everything returned by Apply().
type ApplyResult struct {
	NewContext gate.WorkContext
	Decision   Decision
	Metrics    Metrics
}

// #endregion apply-result
