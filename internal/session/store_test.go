package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "gates.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBeginIncrementSetsActive(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.BeginIncrement("csv export", "stream rows", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin increment: %v", err)
	}
	if rec.IncrementID == "" {
		t.Fatal("expected increment ID")
	}
	if rec.Status != StatusOpen {
		t.Errorf("expected open status, got %s", rec.Status)
	}

	active, err := store.GetActive()
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.IncrementID != rec.IncrementID {
		t.Errorf("active %s != begun %s", active.IncrementID, rec.IncrementID)
	}
	if active.Feature != "csv export" {
		t.Errorf("unexpected feature: %q", active.Feature)
	}
	if active.Context.Approach != "stream rows" {
		t.Errorf("context approach not set: %q", active.Context.Approach)
	}
}

func TestGetActiveEmptyStore(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetActive(); err == nil {
		t.Fatal("expected error when no increment exists")
	}
}

func TestSaveAndReloadContext(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin increment: %v", err)
	}

	ctx := rec.Context
	ctx.SpikeDone = true
	ctx.SpikeLearning = "encoding/csv handles quoting"
	ctx.FailingTest = true
	ctx.TestDescription = "exports a single row"
	ctx.UntracedUnits = []string{"helper"}

	if err := store.SaveContext(rec.IncrementID, ctx); err != nil {
		t.Fatalf("save context: %v", err)
	}

	got, err := store.GetIncrement(rec.IncrementID)
	if err != nil {
		t.Fatalf("get increment: %v", err)
	}
	if !got.Context.SpikeDone || !got.Context.FailingTest {
		t.Error("context booleans not round-tripped")
	}
	if got.Context.SpikeLearning != "encoding/csv handles quoting" {
		t.Errorf("unexpected learning: %q", got.Context.SpikeLearning)
	}
	if len(got.Context.UntracedUnits) != 1 || got.Context.UntracedUnits[0] != "helper" {
		t.Errorf("unexpected untraced units: %v", got.Context.UntracedUnits)
	}
}

func TestSaveContextUnknownIncrement(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveContext("missing", gate.WorkContext{}); err == nil {
		t.Fatal("expected error for unknown increment")
	}
}

func TestSetStatusAndChain(t *testing.T) {
	store := newTestStore(t)
	first, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin first: %v", err)
	}

	if err := store.SetStatus(first.IncrementID, StatusAccepted); err != nil {
		t.Fatalf("set status: %v", err)
	}

	second, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, first.IncrementID)
	if err != nil {
		t.Fatalf("begin second: %v", err)
	}
	if second.ParentID != first.IncrementID {
		t.Errorf("expected parent %s, got %s", first.IncrementID, second.ParentID)
	}

	active, err := store.GetActive()
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.IncrementID != second.IncrementID {
		t.Error("second increment should be active")
	}

	got, err := store.GetIncrement(first.IncrementID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Errorf("expected accepted, got %s", got.Status)
	}
}

func TestReopen(t *testing.T) {
	store := newTestStore(t)
	first, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin first: %v", err)
	}
	if err := store.SetStatus(first.IncrementID, StatusAbandoned); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, first.IncrementID); err != nil {
		t.Fatalf("begin second: %v", err)
	}

	if err := store.Reopen(first.IncrementID); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	active, err := store.GetActive()
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.IncrementID != first.IncrementID {
		t.Error("reopened increment should be active")
	}
	if active.Status != StatusOpen {
		t.Errorf("expected open after reopen, got %s", active.Status)
	}
}

func TestReopenUnknown(t *testing.T) {
	store := newTestStore(t)
	if err := store.Reopen("missing"); err == nil {
		t.Fatal("expected error for unknown increment")
	}
}

func TestListIncrementsOrder(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := store.BeginIncrement("f", "", gate.WorkContext{}, ""); err != nil {
			t.Fatalf("begin: %v", err)
		}
		time.Sleep(2 * time.Millisecond) // created_at ordering
	}

	incs, err := store.ListIncrements(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(incs) != 2 {
		t.Fatalf("expected 2, got %d", len(incs))
	}
	if !incs[0].CreatedAt.After(incs[1].CreatedAt) {
		t.Error("expected most recent first")
	}
}

func TestVerdictLogRoundTrip(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	_, err = store.DB().Exec(
		`INSERT INTO verdict_log (increment_id, gate, action, reason, evidence_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.IncrementID, int(gate.GateTDD), gate.ActionBlocked,
		"Failing test required before code", `{"kind":"spike_completed"}`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("insert verdict: %v", err)
	}

	verdicts, err := store.ListVerdicts(rec.IncrementID)
	if err != nil {
		t.Fatalf("list verdicts: %v", err)
	}
	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}
	if verdicts[0].Gate != gate.GateTDD {
		t.Errorf("expected gate 2, got %d", verdicts[0].Gate)
	}
	if verdicts[0].Action != gate.ActionBlocked {
		t.Errorf("unexpected action: %s", verdicts[0].Action)
	}

	history, err := store.History(5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || len(history[0].Verdicts) != 1 {
		t.Fatalf("unexpected history shape: %d increments", len(history))
	}
}

// A row written through logging.LogVerdict reads back through ListVerdicts
// with no field-by-field conversion in between.
func TestListVerdictsSharesLoggingRowType(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.BeginIncrement("csv export", "", gate.WorkContext{}, "")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	written := logging.VerdictEntry{
		IncrementID:  rec.IncrementID,
		Gate:         gate.GateYAGNI,
		Action:       gate.ActionBlocked,
		Reason:       "No test requires this",
		EvidenceJSON: `{"increment_id":"` + rec.IncrementID + `"}`,
	}
	if err := logging.LogVerdict(store.DB(), written); err != nil {
		t.Fatalf("log verdict: %v", err)
	}

	verdicts, err := store.ListVerdicts(rec.IncrementID)
	if err != nil {
		t.Fatalf("list verdicts: %v", err)
	}
	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}

	var got logging.VerdictEntry = verdicts[0]
	if got.Gate != written.Gate || got.Action != written.Action {
		t.Errorf("verdict not round-tripped: %+v", got)
	}
	if got.Reason != written.Reason || got.EvidenceJSON != written.EvidenceJSON {
		t.Errorf("optional fields not round-tripped: %+v", got)
	}
}
