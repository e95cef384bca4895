package audit

import (
	"testing"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/replay"
)

// helper: blank starting context.
func startContext() gate.WorkContext {
	return gate.WorkContext{IncrementID: "inc-1", Feature: "csv export", Approach: "stream rows"}
}

// helper: the canonical four-step session from empty to proceed.
func cleanSteps() []replay.Step {
	spike := evidence.NewEvent(evidence.KindSpikeCompleted)
	spike.Learning = "streaming works"
	test := evidence.NewEvent(evidence.KindTestWritten)
	test.Failing = true
	trace := evidence.NewEvent(evidence.KindTraceReport)
	trace.Traced = true
	simpler := evidence.NewEvent(evidence.KindSimplicityReport)
	simpler.RuledOut = true

	return []replay.Step{
		{StepID: "s1", Event: spike},
		{StepID: "s2", Event: test},
		{StepID: "s3", Event: trace},
		{StepID: "s4", Event: simpler},
	}
}

// 1. A well-formed session passes every law.
func TestAudit_CleanSessionPasses(t *testing.T) {
	start := startContext()
	results := replay.Replay(start, cleanSteps())

	audit := NewAuditor().Run(start, results)

	if !audit.Passed {
		t.Fatalf("expected audit to pass, got: %s", audit.Reason)
	}
	if len(audit.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(audit.Checks))
	}
	for _, c := range audit.Checks {
		if !c.Pass {
			t.Errorf("check %s failed with %d violations", c.Name, c.Violations)
		}
	}
	if audit.Reason != "all laws hold" {
		t.Errorf("unexpected reason: %q", audit.Reason)
	}
}

// 2. A forged proceed on an evidence-free context violates conjunction.
func TestAudit_ForgedProceed(t *testing.T) {
	start := startContext()
	forged := []replay.Result{{
		StepID:  "s1",
		Event:   evidence.NewEvent(evidence.KindSpikeCompleted),
		Action:  gate.ActionProceed,
		Gate:    gate.GateNone,
		Context: start, // no evidence at all
	}}

	audit := NewAuditor().Run(start, forged)

	if audit.Passed {
		t.Fatal("expected audit failure for forged proceed")
	}
	if !hasViolation(audit, "conjunction") {
		t.Error("expected conjunction violations")
	}
	if !hasViolation(audit, "idempotence") {
		t.Error("expected idempotence violations: re-evaluation blocks")
	}
}

// 3. A block naming a later gate while an earlier one is unmet violates
// the lowest-gate law.
func TestAudit_WrongBlockGate(t *testing.T) {
	start := startContext()
	forged := []replay.Result{{
		StepID:  "s1",
		Event:   evidence.NewEvent(evidence.KindTraceReport),
		Action:  gate.ActionBlocked,
		Gate:    gate.GateYAGNI,
		Context: start, // gate 1 is the real blocker
	}}

	audit := NewAuditor().Run(start, forged)

	if audit.Passed {
		t.Fatal("expected audit failure for misattributed block")
	}
	if !hasViolation(audit, "lowest_gate") {
		t.Error("expected lowest_gate violations")
	}
}

// 4. Approach changes may unsatisfy gate 1 without tripping monotonicity.
func TestAudit_ApproachChangeExempt(t *testing.T) {
	start := startContext()

	spike := evidence.NewEvent(evidence.KindSpikeCompleted)
	change := evidence.NewEvent(evidence.KindApproachChanged)
	change.Approach = "websockets instead"

	results := replay.Replay(start, []replay.Step{
		{StepID: "s1", Event: spike},
		{StepID: "s2", Event: change},
	})

	audit := NewAuditor().Run(start, results)
	if !audit.Passed {
		t.Fatalf("expected approach change to be exempt, got: %s", audit.Reason)
	}
}

// 5. Evidence for a later gate silently clearing an earlier one is caught.
func TestAudit_MonotonicityViolation(t *testing.T) {
	start := startContext()
	start.SpikeDone = true

	trace := evidence.NewEvent(evidence.KindTraceReport)
	trace.Traced = true

	broken := start
	broken.SpikeDone = false // forged: trace evidence must not clear spike
	broken.TraceChecked = true

	forged := []replay.Result{{
		StepID:  "s1",
		Event:   trace,
		Action:  gate.ActionBlocked,
		Gate:    gate.GateSpike,
		Context: broken,
	}}

	audit := NewAuditor().Run(start, forged)

	if audit.Passed {
		t.Fatal("expected monotonicity violation")
	}
	if !hasViolation(audit, "monotonicity") {
		t.Error("expected monotonicity violations")
	}
}

// helper: true when the named check failed.
func hasViolation(result AuditResult, name string) bool {
	for _, c := range result.Checks {
		if c.Name == name {
			return !c.Pass
		}
	}
	return false
}
