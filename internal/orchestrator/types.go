package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/session"
)

// #endregion

// #region start-result

// StartResult bundles the new increment and its first verdict.
type StartResult struct {
	Increment session.IncrementRecord
	Verdict   gate.Verdict
	CarryOver bool   // gate 1 satisfied by a prior spike on the same approach
	Learning  string // the carried-over spike learning, when CarryOver is set
}

// #endregion

// #region submit-result

// SubmitResult tells the caller what one evidence statement did.
type SubmitResult struct {
	Statement  string
	Recognized bool // false when no evidence could be parsed from the statement
	Event      evidence.Event
	Decision   evidence.Decision
	Verdict    gate.Verdict
	Context    gate.WorkContext
}

// #endregion
