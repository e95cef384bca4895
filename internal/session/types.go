package session

import (
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
)

// #region status
// Increment status values.
const (
	StatusOpen      = "open"
	StatusAccepted  = "accepted"
	StatusAbandoned = "abandoned"
)

// #endregion status

// #region increment-record
// IncrementRecord is one persisted behavior increment with its evidence
// context. ParentID links to the increment that preceded it within the
// same feature.
type IncrementRecord struct {
	IncrementID string
	ParentID    string
	Feature     string
	Approach    string
	Context     gate.WorkContext
	Status      string
	CreatedAt   time.Time
}

// #endregion increment-record

// #region increment-with-verdicts
// IncrementWithVerdicts pairs an increment with its logged verdicts. The row
// type is logging.VerdictEntry, the same shape LogVerdict writes.
type IncrementWithVerdicts struct {
	IncrementRecord
	Verdicts []logging.VerdictEntry
}

// #endregion increment-with-verdicts
