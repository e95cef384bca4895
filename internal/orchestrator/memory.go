package orchestrator

// #region imports
import (
	"database/sql"
	"math"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
)

// #endregion

// #region schema

const gateOutcomesSchema = `
CREATE TABLE IF NOT EXISTS gate_outcomes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    increment_id  TEXT NOT NULL,
    feature       TEXT NOT NULL,
    gate          INTEGER NOT NULL,
    action        TEXT NOT NULL,
    created_at    TEXT NOT NULL
);
`

const gateOutcomesIndex = `
CREATE INDEX IF NOT EXISTS idx_gate_outcomes_lookup
ON gate_outcomes(gate, action);
`

// #endregion

// #region outcome-record

// GateOutcome is a single row for gate_outcomes.
type GateOutcome struct {
	IncrementID string
	Feature     string
	Gate        gate.GateID
	Action      string
	CreatedAt   time.Time
}

// #endregion

// #region memory-struct

// OutcomeMemory persists per-verdict gate outcomes in SQLite and queries
// decay-weighted block rates. It powers "which gate blocks me most" hints.
type OutcomeMemory struct {
	db *sql.DB
}

// NewOutcomeMemory initializes the gate_outcomes table and returns an OutcomeMemory.
func NewOutcomeMemory(db *sql.DB) (*OutcomeMemory, error) {
	if _, err := db.Exec(gateOutcomesSchema); err != nil {
		return nil, err
	}
	if _, err := db.Exec(gateOutcomesIndex); err != nil {
		return nil, err
	}
	return &OutcomeMemory{db: db}, nil
}

// #endregion

// #region record-outcome

// RecordOutcome persists a single gate outcome row.
func (m *OutcomeMemory) RecordOutcome(rec GateOutcome) error {
	_, err := m.db.Exec(`
		INSERT INTO gate_outcomes (increment_id, feature, gate, action, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.IncrementID,
		rec.Feature,
		int(rec.Gate),
		rec.Action,
		rec.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// #endregion

// #region most-blocking-gate

// MostBlockingGate returns the gate with the highest decay-weighted block
// count. Returns (GateNone, 0, nil) if fewer than 3 blocks are on record.
func (m *OutcomeMemory) MostBlockingGate() (gate.GateID, float32, error) {
	rows, err := m.db.Query(`
		SELECT gate, created_at FROM gate_outcomes WHERE action = ?`,
		gate.ActionBlocked,
	)
	if err != nil {
		return gate.GateNone, 0, err
	}
	defer rows.Close()

	type gateAccum struct {
		weight float64
		count  int
	}

	now := time.Now()
	halfLife := 7.0 * 24.0 // 7 days in hours
	accum := make(map[gate.GateID]*gateAccum)
	total := 0

	for rows.Next() {
		var gateInt int
		var createdAtStr string
		if err := rows.Scan(&gateInt, &createdAtStr); err != nil {
			return gate.GateNone, 0, err
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		ageHours := now.Sub(createdAt).Hours()
		weight := math.Exp(-ageHours / halfLife)

		id := gate.GateID(gateInt)
		if _, ok := accum[id]; !ok {
			accum[id] = &gateAccum{}
		}
		accum[id].weight += weight
		accum[id].count++
		total++
	}
	if err := rows.Err(); err != nil {
		return gate.GateNone, 0, err
	}

	if total < 3 {
		return gate.GateNone, 0, nil
	}

	bestID := gate.GateNone
	var bestWeight float64 = -1
	for id, a := range accum {
		if a.weight > bestWeight {
			bestWeight = a.weight
			bestID = id
		}
	}

	return bestID, float32(bestWeight), nil
}

// BlockCounts returns the raw per-gate block counts, unweighted.
func (m *OutcomeMemory) BlockCounts() (map[gate.GateID]int, error) {
	rows, err := m.db.Query(`
		SELECT gate, COUNT(*) FROM gate_outcomes
		WHERE action = ? GROUP BY gate`,
		gate.ActionBlocked,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[gate.GateID]int)
	for rows.Next() {
		var gateInt, n int
		if err := rows.Scan(&gateInt, &n); err != nil {
			return nil, err
		}
		counts[gate.GateID(gateInt)] = n
	}
	return counts, rows.Err()
}

// #endregion
