package trace

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS trace_edges (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    unit_id     TEXT NOT NULL,
    test_id     TEXT NOT NULL,
    edge_type   TEXT NOT NULL DEFAULT 'required_by',
    created_at  TEXT NOT NULL,
    UNIQUE(unit_id, test_id, edge_type)
);
CREATE INDEX IF NOT EXISTS idx_trace_unit ON trace_edges(unit_id);
CREATE INDEX IF NOT EXISTS idx_trace_test ON trace_edges(test_id);
`

// #endregion schema

// #region types
// Edge links a code unit to a test that requires it.
type Edge struct {
	ID        int64
	UnitID    string
	TestID    string
	EdgeType  string
	CreatedAt time.Time
}

// TraceStore manages the trace_edges table.
type TraceStore struct {
	db *sql.DB
}

// #endregion types

// #region constructor
// NewTraceStore creates tables and returns a TraceStore.
func NewTraceStore(db *sql.DB) (*TraceStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("trace schema: %w", err)
	}
	return &TraceStore{db: db}, nil
}

// #endregion constructor

// #region add-requirement
// AddRequirement records that testID requires unitID. Duplicate edges are ignored.
func (t *TraceStore) AddRequirement(unitID, testID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := t.db.Exec(
		`INSERT OR IGNORE INTO trace_edges (unit_id, test_id, edge_type, created_at)
		 VALUES (?, ?, 'required_by', ?)`,
		unitID, testID, now,
	)
	return err
}

// #endregion add-requirement

// #region remove
// Remove deletes the requirement edge between unitID and testID.
func (t *TraceStore) Remove(unitID, testID string) error {
	_, err := t.db.Exec(
		`DELETE FROM trace_edges WHERE unit_id = ? AND test_id = ?`,
		unitID, testID,
	)
	return err
}

// SeverUnit deletes all edges touching unitID.
func (t *TraceStore) SeverUnit(unitID string) error {
	_, err := t.db.Exec(`DELETE FROM trace_edges WHERE unit_id = ?`, unitID)
	return err
}

// #endregion remove

// #region requiring-tests
// RequiringTests returns the tests that require unitID.
func (t *TraceStore) RequiringTests(unitID string) ([]string, error) {
	rows, err := t.db.Query(
		`SELECT test_id FROM trace_edges WHERE unit_id = ? ORDER BY test_id`,
		unitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tests = append(tests, id)
	}
	return tests, rows.Err()
}

// #endregion requiring-tests

// #region untraced-units
// UntracedUnits returns the units from the proposed set that no currently
// failing test requires. failingTests maps test ID → currently failing.
func (t *TraceStore) UntracedUnits(units []string, failingTests map[string]bool) ([]string, error) {
	var untraced []string
	for _, unit := range units {
		tests, err := t.RequiringTests(unit)
		if err != nil {
			return nil, fmt.Errorf("requiring tests for %s: %w", unit, err)
		}
		traced := false
		for _, test := range tests {
			if failingTests[test] {
				traced = true
				break
			}
		}
		if !traced {
			untraced = append(untraced, unit)
		}
	}
	return untraced, nil
}

// #endregion untraced-units

// #region units
// Units returns all distinct unit IDs in the map.
func (t *TraceStore) Units() ([]string, error) {
	rows, err := t.db.Query(`SELECT DISTINCT unit_id FROM trace_edges ORDER BY unit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		units = append(units, id)
	}
	return units, rows.Err()
}

// Count returns the total edge count.
func (t *TraceStore) Count() (int, error) {
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM trace_edges`).Scan(&n)
	return n, err
}

// #endregion units
