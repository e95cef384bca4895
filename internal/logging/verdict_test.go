package logging

import (
	"database/sql"
	"testing"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE verdict_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		increment_id  TEXT NOT NULL,
		gate          INTEGER NOT NULL,
		action        TEXT NOT NULL,
		reason        TEXT,
		evidence_json TEXT,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// #endregion helpers

func TestLogVerdictSuccess(t *testing.T) {
	db := setupDB(t)

	entry := VerdictEntry{
		IncrementID:  "inc-1",
		Gate:         gate.GateTDD,
		Action:       gate.ActionBlocked,
		Reason:       "Failing test required before code",
		EvidenceJSON: `{"kind":"spike_completed"}`,
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogVerdict(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM verdict_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var incrementID, action string
	var gateInt int
	db.QueryRow("SELECT increment_id, gate, action FROM verdict_log").Scan(&incrementID, &gateInt, &action)
	if incrementID != "inc-1" {
		t.Errorf("expected increment_id 'inc-1', got %q", incrementID)
	}
	if gateInt != 2 {
		t.Errorf("expected gate 2, got %d", gateInt)
	}
	if action != gate.ActionBlocked {
		t.Errorf("expected blocked, got %q", action)
	}
}

func TestLogVerdictZeroCreatedAt(t *testing.T) {
	db := setupDB(t)

	before := time.Now().UTC()
	err := LogVerdict(db, VerdictEntry{
		IncrementID: "inc-2",
		Gate:        gate.GateNone,
		Action:      gate.ActionProceed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM verdict_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogVerdictEmptyOptionalFields(t *testing.T) {
	db := setupDB(t)

	err := LogVerdict(db, VerdictEntry{
		IncrementID: "inc-3",
		Gate:        gate.GateSpike,
		Action:      gate.ActionBlocked,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reason, evidenceJSON sql.NullString
	db.QueryRow("SELECT reason, evidence_json FROM verdict_log").Scan(&reason, &evidenceJSON)
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
	if evidenceJSON.Valid {
		t.Error("expected NULL evidence_json for empty string")
	}
}

func TestLogVerdictError(t *testing.T) {
	db := setupDB(t)
	db.Close()

	err := LogVerdict(db, VerdictEntry{IncrementID: "inc-4", Action: gate.ActionProceed})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	ev := evidence.NewEvent(evidence.KindTestWritten)
	ev.TestDescription = "exports a single row"
	ev.Failing = true

	rec := VerdictRecord{
		IncrementID: "inc-5",
		Feature:     "csv export",
		Statement:   "wrote a failing test: exports a single row",
		Event:       ev,
		Context:     gate.WorkContext{SpikeDone: true, FailingTest: true},
		ApplyAction: "applied",
		Action:      gate.ActionBlocked,
		Gate:        gate.GateYAGNI,
		Reason:      "No test requires this",
	}

	encoded, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := DecodeRecord(encoded)
	if decoded == nil {
		t.Fatal("expected decoded record")
	}
	if decoded.Event.Kind != evidence.KindTestWritten {
		t.Errorf("unexpected event kind: %s", decoded.Event.Kind)
	}
	if decoded.Gate != gate.GateYAGNI {
		t.Errorf("unexpected gate: %d", decoded.Gate)
	}
	if !decoded.Context.SpikeDone {
		t.Error("context not round-tripped")
	}
}

func TestDecodeRecordBadInput(t *testing.T) {
	if DecodeRecord("") != nil {
		t.Error("expected nil for empty input")
	}
	if DecodeRecord("{not json") != nil {
		t.Error("expected nil for malformed input")
	}
}
