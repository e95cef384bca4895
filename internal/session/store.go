package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS increments (
	increment_id  TEXT PRIMARY KEY,
	parent_id     TEXT,
	feature       TEXT NOT NULL,
	approach      TEXT,
	context_json  TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'open',
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES increments(increment_id)
);

CREATE TABLE IF NOT EXISTS verdict_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	increment_id  TEXT NOT NULL,
	gate          INTEGER NOT NULL,
	action        TEXT NOT NULL,
	reason        TEXT,
	evidence_json TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (increment_id) REFERENCES increments(increment_id)
);

CREATE TABLE IF NOT EXISTS active_increment (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	increment_id  TEXT NOT NULL,
	FOREIGN KEY (increment_id) REFERENCES increments(increment_id)
);
`

// #endregion schema

// #region store-struct
// Store manages session increments and the verdict log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging,
// trace, orchestrator memory).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region begin-increment
// BeginIncrement creates a new increment with the given starting context and
// makes it active.
func (s *Store) BeginIncrement(feature, approach string, ctx gate.WorkContext, parentID string) (IncrementRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	ctx.IncrementID = id
	ctx.Feature = feature
	if approach != "" {
		ctx.Approach = approach
	}

	rec := IncrementRecord{
		IncrementID: id,
		ParentID:    parentID,
		Feature:     feature,
		Approach:    ctx.Approach,
		Context:     ctx,
		Status:      StatusOpen,
		CreatedAt:   now,
	}

	ctxJSON, err := json.Marshal(ctx)
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("marshal context: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if parentID != "" {
		parentPtr = parentID
	}

	_, err = tx.Exec(
		`INSERT INTO increments (increment_id, parent_id, feature, approach, context_json, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, parentPtr, feature, nullIfEmpty(ctx.Approach), string(ctxJSON), StatusOpen, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("insert increment: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_increment (id, increment_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET increment_id = excluded.increment_id`,
		id,
	)
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return IncrementRecord{}, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}

// #endregion begin-increment

// #region get-active
// GetActive reads the active increment. Returns sql.ErrNoRows if no
// increment has been started yet.
func (s *Store) GetActive() (IncrementRecord, error) {
	var incrementID string
	err := s.db.QueryRow(`SELECT increment_id FROM active_increment WHERE id = 1`).Scan(&incrementID)
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetIncrement(incrementID)
}

// #endregion get-active

// #region get-increment
// GetIncrement retrieves a specific increment by ID.
func (s *Store) GetIncrement(id string) (IncrementRecord, error) {
	var rec IncrementRecord
	var parentID, approach sql.NullString
	var ctxJSON, createdStr string

	err := s.db.QueryRow(
		`SELECT increment_id, parent_id, feature, approach, context_json, status, created_at
		 FROM increments WHERE increment_id = ?`, id,
	).Scan(&rec.IncrementID, &parentID, &rec.Feature, &approach, &ctxJSON, &rec.Status, &createdStr)
	if err != nil {
		return IncrementRecord{}, fmt.Errorf("get increment %s: %w", id, err)
	}

	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if approach.Valid {
		rec.Approach = approach.String
	}
	if err := json.Unmarshal([]byte(ctxJSON), &rec.Context); err != nil {
		return IncrementRecord{}, fmt.Errorf("unmarshal context: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	return rec, nil
}

// #endregion get-increment

// #region save-context
// SaveContext persists the evidence context of an increment.
func (s *Store) SaveContext(id string, ctx gate.WorkContext) error {
	ctxJSON, err := json.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE increments SET context_json = ?, approach = ? WHERE increment_id = ?`,
		string(ctxJSON), nullIfEmpty(ctx.Approach), id,
	)
	if err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("increment %s not found", id)
	}
	return nil
}

// #endregion save-context

// #region set-status
// SetStatus marks an increment accepted or abandoned.
func (s *Store) SetStatus(id, status string) error {
	res, err := s.db.Exec(`UPDATE increments SET status = ? WHERE increment_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("increment %s not found", id)
	}
	return nil
}

// #endregion set-status

// #region reopen
// Reopen sets the active pointer back to a previous increment.
func (s *Store) Reopen(id string) error {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM increments WHERE increment_id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check increment: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("increment %s not found", id)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE increments SET status = ? WHERE increment_id = ?`, StatusOpen, id); err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	if _, err := tx.Exec(`UPDATE active_increment SET increment_id = ? WHERE id = 1`, id); err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	return tx.Commit()
}

// #endregion reopen

// #region list-increments
// ListIncrements returns the most recent increments.
func (s *Store) ListIncrements(limit int) ([]IncrementRecord, error) {
	rows, err := s.db.Query(
		`SELECT increment_id, parent_id, feature, approach, context_json, status, created_at
		 FROM increments ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list increments: %w", err)
	}
	defer rows.Close()

	var records []IncrementRecord
	for rows.Next() {
		var rec IncrementRecord
		var parentID, approach sql.NullString
		var ctxJSON, createdStr string

		if err := rows.Scan(&rec.IncrementID, &parentID, &rec.Feature, &approach, &ctxJSON, &rec.Status, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parentID.Valid {
			rec.ParentID = parentID.String
		}
		if approach.Valid {
			rec.Approach = approach.String
		}
		if err := json.Unmarshal([]byte(ctxJSON), &rec.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-increments

// #region list-verdicts
// ListVerdicts returns the verdict log for one increment in insertion order.
func (s *Store) ListVerdicts(incrementID string) ([]logging.VerdictEntry, error) {
	rows, err := s.db.Query(
		`SELECT increment_id, gate, action, reason, evidence_json, created_at
		 FROM verdict_log WHERE increment_id = ? ORDER BY id ASC`, incrementID,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()
	return scanVerdicts(rows)
}

// ListAllVerdicts returns the full verdict log in insertion order.
func (s *Store) ListAllVerdicts() ([]logging.VerdictEntry, error) {
	rows, err := s.db.Query(
		`SELECT increment_id, gate, action, reason, evidence_json, created_at
		 FROM verdict_log ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()
	return scanVerdicts(rows)
}

func scanVerdicts(rows *sql.Rows) ([]logging.VerdictEntry, error) {
	var entries []logging.VerdictEntry
	for rows.Next() {
		var e logging.VerdictEntry
		var gateInt int
		var reason, evidenceJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&e.IncrementID, &gateInt, &e.Action, &reason, &evidenceJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		e.Gate = gate.GateID(gateInt)
		if reason.Valid {
			e.Reason = reason.String
		}
		if evidenceJSON.Valid {
			e.EvidenceJSON = evidenceJSON.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-verdicts

// #region history
// History returns recent increments joined with their verdicts.
func (s *Store) History(limit int) ([]IncrementWithVerdicts, error) {
	incs, err := s.ListIncrements(limit)
	if err != nil {
		return nil, err
	}
	history := make([]IncrementWithVerdicts, len(incs))
	for i, inc := range incs {
		verdicts, err := s.ListVerdicts(inc.IncrementID)
		if err != nil {
			return nil, err
		}
		history[i] = IncrementWithVerdicts{IncrementRecord: inc, Verdicts: verdicts}
	}
	return history, nil
}

// #endregion history

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
