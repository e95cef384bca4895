package evidence

import (
	"fmt"
	"reflect"
	"time"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
	"github.com/google/uuid"
)

// #region constructor
// NewEvent creates an event of the given kind with a fresh ID and timestamp.
func NewEvent(kind Kind) Event {
	return Event{
		EventID:   uuid.New().String(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// #endregion constructor

// #region apply
// Apply is a pure function that computes the next WorkContext from the
// current context and one evidence event. It never touches storage and has
// no side effects; re-evaluation is entirely the caller's concern.
func Apply(old gate.WorkContext, ev Event) ApplyResult {
	start := time.Now()
	next := old

	switch ev.Kind {
	case KindSpikeCompleted:
		next.SpikeDone = true
		if ev.Learning != "" {
			next.SpikeLearning = ev.Learning
		}
		if ev.Approach != "" {
			next.Approach = ev.Approach
		}

	case KindApproachChanged:
		// A new, previously unvalidated approach re-arms gate 1.
		next.Approach = ev.Approach
		next.SpikeDone = false
		next.SpikeLearning = ""
		next.ApproachValidated = false

	case KindTestWritten:
		next.TestDescription = ev.TestDescription
		next.FailingTest = ev.Failing

	case KindTestOutcome:
		// The driving test flipping to green clears gate 2 evidence; the
		// increment is complete and the next one needs its own failing test.
		next.FailingTest = ev.Failing
		if ev.TestDescription != "" {
			next.TestDescription = ev.TestDescription
		}

	case KindTraceReport:
		next.TraceChecked = true
		if ev.Traced {
			next.UntracedUnits = nil
		} else {
			next.UntracedUnits = append([]string(nil), ev.UntracedUnits...)
		}

	case KindSimplicityReport:
		next.SimplerSearched = true
		if ev.RuledOut {
			next.SimplerAlternative = ""
		} else {
			next.SimplerAlternative = ev.Alternative
		}

	default:
		return ApplyResult{
			NewContext: old,
			Decision:   Decision{Action: "no_op", Reason: fmt.Sprintf("unknown evidence kind %q", ev.Kind)},
			Metrics:    Metrics{ApplyTimeMs: time.Since(start).Milliseconds()},
		}
	}

	changed := changedFields(old, next)
	decision := Decision{Action: "no_op", Reason: "no context change"}
	if len(changed) > 0 {
		decision = Decision{
			Action: "applied",
			Reason: fmt.Sprintf("%s: fields changed: %v", ev.Kind, changed),
		}
	}

	return ApplyResult{
		NewContext: next,
		Decision:   decision,
		Metrics: Metrics{
			FieldsChanged: changed,
			ApplyTimeMs:   time.Since(start).Milliseconds(),
		},
	}
}

// #endregion apply

// #region helpers
// changedFields lists the WorkContext fields whose values differ.
func changedFields(old, next gate.WorkContext) []string {
	var changed []string
	ov := reflect.ValueOf(old)
	nv := reflect.ValueOf(next)
	t := ov.Type()
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(ov.Field(i).Interface(), nv.Field(i).Interface()) {
			changed = append(changed, t.Field(i).Name)
		}
	}
	return changed
}

// #endregion helpers
