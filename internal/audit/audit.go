package audit

import (
	"fmt"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/replay"
)

// #region auditor
// Auditor checks a replayed session against the policy laws: proceed means
// every predicate holds, blocks name the lowest unmet gate, evaluation is
// idempotent, and evidence for a later gate never unsatisfies an earlier one.
type Auditor struct {
	engine *gate.Engine
}

// NewAuditor creates an auditor.
func NewAuditor() *Auditor {
	return &Auditor{engine: gate.NewEngine()}
}

// Run audits the results of a replay run starting from start.
func (a *Auditor) Run(start gate.WorkContext, results []replay.Result) AuditResult {
	var checks []AuditCheck
	passed := true
	var failReasons []string

	record := func(name string, violations int) {
		pass := violations == 0
		checks = append(checks, AuditCheck{Name: name, Violations: violations, Pass: pass})
		if !pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s: %d violation(s)", name, violations))
		}
	}

	record("conjunction", a.checkConjunction(results))
	record("lowest_gate", a.checkLowestGate(results))
	record("idempotence", a.checkIdempotence(results))
	record("monotonicity", a.checkMonotonicity(start, results))

	reason := "all laws hold"
	if !passed {
		reason = fmt.Sprintf("audit failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("audit failed: %d laws: %s", len(failReasons), failReasons[0])
		}
	}

	return AuditResult{Passed: passed, Checks: checks, Reason: reason}
}

// #endregion auditor

// #region laws

// checkConjunction: every proceed verdict must have all four predicates
// holding on its context.
func (a *Auditor) checkConjunction(results []replay.Result) int {
	violations := 0
	for _, r := range results {
		if r.Action != gate.ActionProceed {
			continue
		}
		for _, g := range gate.Gates() {
			if holds, _ := g.Satisfied(r.Context); !holds {
				violations++
			}
		}
	}
	return violations
}

// checkLowestGate: a block must name an unmet gate with every earlier gate
// holding.
func (a *Auditor) checkLowestGate(results []replay.Result) int {
	violations := 0
	for _, r := range results {
		if r.Action != gate.ActionBlocked {
			continue
		}
		for _, g := range gate.Gates() {
			holds, _ := g.Satisfied(r.Context)
			if g.ID < r.Gate && !holds {
				violations++
			}
			if g.ID == r.Gate && holds {
				violations++
			}
		}
	}
	return violations
}

// checkIdempotence: re-evaluating a recorded context must reproduce the
// recorded verdict.
func (a *Auditor) checkIdempotence(results []replay.Result) int {
	violations := 0
	for _, r := range results {
		verdict := a.engine.Evaluate(r.Context)
		if verdict.Action != r.Action || verdict.Gate != r.Gate {
			violations++
		}
	}
	return violations
}

// checkMonotonicity: evidence aimed at gate k must not unsatisfy any gate
// below k. Approach changes are exempt; re-arming gate 1 is their purpose.
func (a *Auditor) checkMonotonicity(start gate.WorkContext, results []replay.Result) int {
	violations := 0
	prev := start
	for _, r := range results {
		target, resets := targetGate(r.Event.Kind)
		if !resets {
			for _, g := range gate.Gates() {
				if g.ID >= target {
					break
				}
				heldBefore, _ := g.Satisfied(prev)
				holdsNow, _ := g.Satisfied(r.Context)
				if heldBefore && !holdsNow {
					violations++
				}
			}
		}
		prev = r.Context
	}
	return violations
}

// targetGate maps an evidence kind to the gate it supplies evidence for.
// The second return flags reset events, which are allowed to unsatisfy gates.
func targetGate(kind evidence.Kind) (gate.GateID, bool) {
	switch kind {
	case evidence.KindSpikeCompleted:
		return gate.GateSpike, false
	case evidence.KindApproachChanged:
		return gate.GateSpike, true
	case evidence.KindTestWritten:
		return gate.GateTDD, false
	case evidence.KindTestOutcome:
		// A green outcome legitimately clears gate 2 for the next increment.
		return gate.GateTDD, true
	case evidence.KindTraceReport:
		return gate.GateYAGNI, false
	case evidence.KindSimplicityReport:
		return gate.GateSimpleDesign, false
	default:
		return gate.GateNone, true
	}
}

// #endregion laws
