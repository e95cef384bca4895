package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/approach"
	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/danielpatrickdp/discipline-gates/internal/logging"
	"github.com/danielpatrickdp/discipline-gates/internal/session"
	"github.com/danielpatrickdp/discipline-gates/internal/signals"
)

// #endregion

// #region orchestrator-struct

// Orchestrator is the top-level coordinator for the increment lifecycle:
// starting increments, applying evidence, evaluating the gates, and logging
// every verdict.
type Orchestrator struct {
	store   *session.Store
	engine  *gate.Engine
	matcher *approach.Matcher
	memory  *OutcomeMemory
	enabled bool
}

// #endregion

// #region constructor

// NewOrchestrator creates a fully wired orchestrator on top of a session store.
// Kill switch: set GATES_ENFORCE=false to stop enforcement; verdicts are still
// computed and logged, but never returned as blocking.
func NewOrchestrator(store *session.Store) (*Orchestrator, error) {
	enabled := true
	if v := os.Getenv("GATES_ENFORCE"); v == "false" {
		enabled = false
	}

	mem, err := NewOutcomeMemory(store.DB())
	if err != nil {
		return nil, fmt.Errorf("outcome memory: %w", err)
	}

	o := &Orchestrator{
		store:   store,
		engine:  gate.NewEngine(),
		matcher: approach.NewMatcher(approach.DefaultMatcherConfig()),
		memory:  mem,
		enabled: enabled,
	}
	if err := o.seedMatcher(); err != nil {
		return nil, err
	}
	return o, nil
}

// seedMatcher replays recorded spike learnings from prior increments so
// approach carryover survives restarts.
func (o *Orchestrator) seedMatcher() error {
	incs, err := o.store.ListIncrements(100)
	if err != nil {
		return fmt.Errorf("seed matcher: %w", err)
	}
	for _, inc := range incs {
		if inc.Context.SpikeDone {
			o.matcher.Record(inc.Context.Approach, inc.Context.SpikeLearning)
		}
	}
	return nil
}

// #endregion

// #region enabled

// Enabled returns whether gate enforcement is active.
func (o *Orchestrator) Enabled() bool {
	return o.enabled
}

// #endregion

// #region start-increment

// StartIncrement opens a new increment. Gates 2 through 4 always start unmet;
// gate 1 carries over when a recorded spike already validated the approach.
func (o *Orchestrator) StartIncrement(feature, approachText string) (StartResult, error) {
	ctx := gate.WorkContext{}

	carryOver := false
	learning := ""
	if known, l := o.matcher.Known(approachText); known {
		ctx.ApproachValidated = true
		carryOver = true
		learning = l
	}

	parentID := ""
	if prev, err := o.store.GetActive(); err == nil {
		parentID = prev.IncrementID
	}

	rec, err := o.store.BeginIncrement(feature, approachText, ctx, parentID)
	if err != nil {
		return StartResult{}, fmt.Errorf("begin increment: %w", err)
	}

	verdict := o.evaluate(rec.Context)
	o.logVerdict(rec.IncrementID, rec.Feature, verdict, "")

	log.Printf("[ORCH] start: increment=%s feature=%q carryover=%v → %s",
		rec.IncrementID, feature, carryOver, verdict.Action)

	return StartResult{
		Increment: rec,
		Verdict:   verdict,
		CarryOver: carryOver,
		Learning:  learning,
	}, nil
}

// #endregion

// #region submit

// Submit parses one evidence statement, applies it to the active increment,
// re-evaluates the gates, and logs the verdict.
func (o *Orchestrator) Submit(statement string) (SubmitResult, error) {
	rec, err := o.store.GetActive()
	if err != nil {
		return SubmitResult{}, fmt.Errorf("no active increment: %w", err)
	}

	ev, ok := signals.Parse(statement)
	if !ok {
		// Nothing recognized; re-evaluate so the caller still sees where it stands.
		verdict := o.evaluate(rec.Context)
		return SubmitResult{
			Statement:  statement,
			Recognized: false,
			Verdict:    verdict,
			Context:    rec.Context,
		}, nil
	}

	return o.ApplyEvent(rec, statement, ev)
}

// ApplyEvent applies an already-built evidence event to an increment.
func (o *Orchestrator) ApplyEvent(rec session.IncrementRecord, statement string, ev evidence.Event) (SubmitResult, error) {
	applied := evidence.Apply(rec.Context, ev)

	if applied.Decision.Action == "applied" {
		if err := o.store.SaveContext(rec.IncrementID, applied.NewContext); err != nil {
			return SubmitResult{}, fmt.Errorf("save context: %w", err)
		}
	}

	if ev.Kind == evidence.KindSpikeCompleted {
		o.matcher.Record(applied.NewContext.Approach, ev.Learning)
	}

	verdict := o.evaluate(applied.NewContext)

	evJSON, err := logging.EncodeRecord(logging.VerdictRecord{
		IncrementID: rec.IncrementID,
		Feature:     rec.Feature,
		Statement:   statement,
		Event:       ev,
		Context:     applied.NewContext,
		ApplyAction: applied.Decision.Action,
		ApplyReason: applied.Decision.Reason,
		Action:      verdict.Action,
		Gate:        verdict.Gate,
		Reason:      verdict.Reason,
		Detail:      verdict.Detail,
		Message:     verdict.Message,
	})
	if err != nil {
		log.Printf("[ORCH] failed to encode verdict record: %v", err)
	}
	o.logVerdict(rec.IncrementID, rec.Feature, verdict, evJSON)

	log.Printf("[ORCH] submit: increment=%s kind=%s apply=%s → %s",
		rec.IncrementID, ev.Kind, applied.Decision.Action, verdict.Action)

	return SubmitResult{
		Statement:  statement,
		Recognized: true,
		Event:      ev,
		Decision:   applied.Decision,
		Verdict:    verdict,
		Context:    applied.NewContext,
	}, nil
}

// #endregion

// #region complete

// Complete marks the active increment accepted. Only a context that passes
// all four gates may be accepted while enforcement is on.
func (o *Orchestrator) Complete() (session.IncrementRecord, error) {
	rec, err := o.store.GetActive()
	if err != nil {
		return session.IncrementRecord{}, fmt.Errorf("no active increment: %w", err)
	}

	verdict := o.engine.Evaluate(rec.Context)
	if o.enabled && verdict.Action != gate.ActionProceed {
		return session.IncrementRecord{}, fmt.Errorf(
			"increment %s blocked at gate %s: %s", rec.IncrementID, verdict.Gate, verdict.Reason)
	}

	if err := o.store.SetStatus(rec.IncrementID, session.StatusAccepted); err != nil {
		return session.IncrementRecord{}, err
	}
	rec.Status = session.StatusAccepted

	log.Printf("[ORCH] complete: increment=%s feature=%q", rec.IncrementID, rec.Feature)
	return rec, nil
}

// Abandon marks the active increment abandoned.
func (o *Orchestrator) Abandon() error {
	rec, err := o.store.GetActive()
	if err != nil {
		return fmt.Errorf("no active increment: %w", err)
	}
	return o.store.SetStatus(rec.IncrementID, session.StatusAbandoned)
}

// #endregion

// #region status

// Status re-evaluates the active increment without applying any evidence.
func (o *Orchestrator) Status() (session.IncrementRecord, gate.Verdict, error) {
	rec, err := o.store.GetActive()
	if err != nil {
		return session.IncrementRecord{}, gate.Verdict{}, fmt.Errorf("no active increment: %w", err)
	}
	return rec, o.evaluate(rec.Context), nil
}

// MostBlockingGate surfaces the decay-weighted worst offender from memory.
func (o *Orchestrator) MostBlockingGate() (gate.GateID, float32, error) {
	return o.memory.MostBlockingGate()
}

// #endregion

// #region helpers

// evaluate runs the engine and downgrades blocks to proceed when enforcement
// is off. The raw verdict is always what gets logged.
func (o *Orchestrator) evaluate(ctx gate.WorkContext) gate.Verdict {
	verdict := o.engine.Evaluate(ctx)
	if !o.enabled && verdict.Action == gate.ActionBlocked {
		log.Printf("[ORCH] enforcement off: would block at gate %s", verdict.Gate)
		return gate.Verdict{
			Action:  gate.ActionProceed,
			Gate:    gate.GateNone,
			Reason:  fmt.Sprintf("enforcement off (would block at %s)", verdict.Gate),
			Message: gate.MsgProceed,
		}
	}
	return verdict
}

// logVerdict writes the verdict log row and the outcome memory row.
func (o *Orchestrator) logVerdict(incrementID, feature string, verdict gate.Verdict, evidenceJSON string) {
	entry := logging.VerdictEntry{
		IncrementID:  incrementID,
		Gate:         verdict.Gate,
		Action:       verdict.Action,
		Reason:       verdict.Reason,
		EvidenceJSON: evidenceJSON,
	}
	if err := logging.LogVerdict(o.store.DB(), entry); err != nil {
		log.Printf("[ORCH] failed to log verdict: %v", err)
	}

	outcome := GateOutcome{
		IncrementID: incrementID,
		Feature:     feature,
		Gate:        verdict.Gate,
		Action:      verdict.Action,
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.memory.RecordOutcome(outcome); err != nil {
		log.Printf("[ORCH] failed to record outcome: %v", err)
	}
}

// #endregion
