package orchestrator

import (
	"database/sql"
	"testing"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	_ "modernc.org/sqlite"
)

func newTestMemory(t *testing.T) *OutcomeMemory {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mem, err := NewOutcomeMemory(db)
	if err != nil {
		t.Fatalf("new outcome memory: %v", err)
	}
	return mem
}

func outcome(g gate.GateID, action string, age time.Duration) GateOutcome {
	return GateOutcome{
		IncrementID: "inc-1",
		Feature:     "csv export",
		Gate:        g,
		Action:      action,
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestRecordAndBlockCounts(t *testing.T) {
	mem := newTestMemory(t)

	mem.RecordOutcome(outcome(gate.GateTDD, gate.ActionBlocked, 0))
	mem.RecordOutcome(outcome(gate.GateTDD, gate.ActionBlocked, 0))
	mem.RecordOutcome(outcome(gate.GateSpike, gate.ActionBlocked, 0))
	mem.RecordOutcome(outcome(gate.GateNone, gate.ActionProceed, 0))

	counts, err := mem.BlockCounts()
	if err != nil {
		t.Fatalf("block counts: %v", err)
	}
	if counts[gate.GateTDD] != 2 {
		t.Errorf("expected 2 tdd blocks, got %d", counts[gate.GateTDD])
	}
	if counts[gate.GateSpike] != 1 {
		t.Errorf("expected 1 spike block, got %d", counts[gate.GateSpike])
	}
	if counts[gate.GateNone] != 0 {
		t.Errorf("proceeds must not count as blocks, got %d", counts[gate.GateNone])
	}
}

func TestMostBlockingGateMinSamples(t *testing.T) {
	mem := newTestMemory(t)

	mem.RecordOutcome(outcome(gate.GateTDD, gate.ActionBlocked, 0))
	mem.RecordOutcome(outcome(gate.GateTDD, gate.ActionBlocked, 0))

	id, _, err := mem.MostBlockingGate()
	if err != nil {
		t.Fatalf("most blocking gate: %v", err)
	}
	if id != gate.GateNone {
		t.Errorf("expected GateNone below 3 samples, got %s", id)
	}
}

func TestMostBlockingGatePrefersRecent(t *testing.T) {
	mem := newTestMemory(t)

	// Four stale tdd blocks from a month ago vs three fresh spike blocks.
	for i := 0; i < 4; i++ {
		mem.RecordOutcome(outcome(gate.GateTDD, gate.ActionBlocked, 30*24*time.Hour))
	}
	for i := 0; i < 3; i++ {
		mem.RecordOutcome(outcome(gate.GateSpike, gate.ActionBlocked, time.Hour))
	}

	id, weight, err := mem.MostBlockingGate()
	if err != nil {
		t.Fatalf("most blocking gate: %v", err)
	}
	if id != gate.GateSpike {
		t.Errorf("expected recent spike blocks to outweigh stale tdd blocks, got %s", id)
	}
	if weight <= 0 {
		t.Errorf("expected positive weight, got %f", weight)
	}
}
