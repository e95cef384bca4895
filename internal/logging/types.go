package logging

import (
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
)

// #region verdict-entry
// VerdictEntry is a single row in the verdict_log table.
type VerdictEntry struct {
	IncrementID  string
	Gate         gate.GateID
	Action       string // "proceed" | "blocked"
	Reason       string
	EvidenceJSON string
	CreatedAt    time.Time
}

// #endregion verdict-entry

// #region verdict-record
// VerdictRecord captures one complete evaluation: the statement, the parsed
// evidence event, the resulting context, and the verdict. Serialized as JSON
// into verdict_log.evidence_json for deterministic replay.
type VerdictRecord struct {
	IncrementID string `json:"increment_id"`
	Feature     string `json:"feature,omitempty"`
	Statement   string `json:"statement,omitempty"`

	// Evidence event exactly as applied
	Event evidence.Event `json:"event"`

	// Context after the event was applied
	Context gate.WorkContext `json:"context"`

	// Apply decision
	ApplyAction string `json:"apply_action"`
	ApplyReason string `json:"apply_reason,omitempty"`

	// Verdict output
	Action  string      `json:"action"`
	Gate    gate.GateID `json:"gate"`
	Reason  string      `json:"reason"`
	Detail  string      `json:"detail,omitempty"`
	Message string      `json:"message,omitempty"`
}

// #endregion verdict-record
