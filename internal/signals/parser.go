package signals

import (
	"strings"

	"github.com/danielpatrickdp/discipline-gates/internal/evidence"
)

// #region keywords

var spikeKeywords = []string{
	"ran a spike", "spike complete", "spiked", "prototype works",
	"proof of concept", "validated the approach", "experiment shows",
	"spike:",
}

var approachChangeKeywords = []string{
	"switching approach", "new approach", "different approach",
	"changing approach", "trying another approach", "approach:",
}

var failingTestKeywords = []string{
	"failing test", "test fails", "red test", "wrote a test that fails",
	"test is red", "failing spec",
}

var passingTestKeywords = []string{
	"test passes", "tests pass", "test is green", "went green",
	"all tests pass", "now passing",
}

var untracedKeywords = []string{
	"not referenced by any test", "no test requires", "no test needs",
	"not required by any test", "untraced",
}

var tracedKeywords = []string{
	"traces to", "every unit is required", "all code traces",
	"required by a failing test", "trace check passed",
}

var simplerFoundKeywords = []string{
	"simpler alternative", "simpler solution", "simpler implementation",
	"could be simpler", "simpler version passes",
}

var simplerRuledOutKeywords = []string{
	"no simpler", "nothing simpler", "simplest that passes",
	"cannot be simplified", "can't be simplified",
}

// #endregion keywords

// #region parse

// Parse maps a free-form operator statement onto an evidence event via
// keyword heuristics. No model call. The second return value is false when
// no evidence could be recognized.
func Parse(statement string) (evidence.Event, bool) {
	lower := strings.ToLower(strings.TrimSpace(statement))
	if lower == "" {
		return evidence.Event{}, false
	}

	// Order matters: "no simpler" would otherwise match "simpler alternative".
	if matchAny(lower, simplerRuledOutKeywords) {
		ev := evidence.NewEvent(evidence.KindSimplicityReport)
		ev.RuledOut = true
		return ev, true
	}
	if matchAny(lower, simplerFoundKeywords) {
		ev := evidence.NewEvent(evidence.KindSimplicityReport)
		ev.Alternative = detail(statement)
		return ev, true
	}

	if matchAny(lower, untracedKeywords) {
		ev := evidence.NewEvent(evidence.KindTraceReport)
		ev.Traced = false
		if units := detail(statement); units != "" {
			ev.UntracedUnits = splitUnits(units)
		}
		return ev, true
	}
	if matchAny(lower, tracedKeywords) {
		ev := evidence.NewEvent(evidence.KindTraceReport)
		ev.Traced = true
		return ev, true
	}

	// Passing before failing: "wrote a failing test ... now passing" reads as
	// an outcome, not a new red test.
	if matchAny(lower, passingTestKeywords) {
		ev := evidence.NewEvent(evidence.KindTestOutcome)
		ev.Failing = false
		return ev, true
	}
	if matchAny(lower, failingTestKeywords) {
		ev := evidence.NewEvent(evidence.KindTestWritten)
		ev.Failing = true
		ev.TestDescription = detail(statement)
		return ev, true
	}

	if matchAny(lower, approachChangeKeywords) {
		ev := evidence.NewEvent(evidence.KindApproachChanged)
		ev.Approach = detail(statement)
		return ev, true
	}
	if matchAny(lower, spikeKeywords) {
		ev := evidence.NewEvent(evidence.KindSpikeCompleted)
		ev.Learning = detail(statement)
		return ev, true
	}

	return evidence.Event{}, false
}

// #endregion parse

// #region helpers

func matchAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// detail returns the text after the first ':' or, failing that, the whole
// trimmed statement. Callers store it as learning/description/alternative.
func detail(statement string) string {
	s := strings.TrimSpace(statement)
	if idx := strings.Index(s, ":"); idx >= 0 && idx+1 < len(s) {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}

// splitUnits splits a comma-separated unit list.
func splitUnits(s string) []string {
	parts := strings.Split(s, ",")
	var units []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			units = append(units, t)
		}
	}
	return units
}

// #endregion helpers
