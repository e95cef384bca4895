package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/discipline-gates/internal/gate"
)

// #region instruction-document

// InstructionDocument renders the four-gate policy as a markdown document
// suitable for pasting into a coding agent's system instructions.
func InstructionDocument() string {
	var b strings.Builder

	b.WriteString("# Implementation Gates\n\n")
	b.WriteString("Before writing any implementation code, walk these four gates in order.\n")
	b.WriteString("Stop at the first gate that fails and respond with its message.\n\n")

	for _, g := range gate.Gates() {
		b.WriteString(renderGate(g))
		b.WriteString("\n")
	}

	b.WriteString("If all four gates pass:\n\n")
	b.WriteString(fmt.Sprintf("> %s\n", gate.MsgProceed))

	return b.String()
}

// GateSection renders a single gate's section of the instruction document.
func GateSection(id gate.GateID) (string, bool) {
	g, ok := gate.Lookup(id)
	if !ok {
		return "", false
	}
	return renderGate(g), true
}

func renderGate(g gate.Gate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## Gate %d: %s\n\n", int(g.ID), g.Name))
	b.WriteString(fmt.Sprintf("Ask: %s\n\n", g.Question))
	b.WriteString("If not:\n\n")
	b.WriteString(fmt.Sprintf("> %s\n", g.BlockMessage))
	return b.String()
}

// #endregion instruction-document

// #region responses

// Response renders the textual response for a verdict. Blocked verdicts get
// the gate's fixed message plus the context-specific detail when present.
func Response(v gate.Verdict) string {
	if v.Action == gate.ActionProceed {
		return v.Message
	}
	if v.Detail == "" {
		return v.Message
	}
	return fmt.Sprintf("%s (%s)", v.Message, v.Detail)
}

// #endregion responses

// #region status-block

// StatusBlock renders the gate checklist for the current increment.
func StatusBlock(feature string, ctx gate.WorkContext, v gate.Verdict) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Increment: %s\n", feature))
	if ctx.Approach != "" {
		b.WriteString(fmt.Sprintf("Approach:  %s\n", ctx.Approach))
	}
	b.WriteString("\n")

	for _, g := range gate.Gates() {
		mark := " "
		if holds, _ := g.Satisfied(ctx); holds {
			mark = "x"
		}
		b.WriteString(fmt.Sprintf("  [%s] %d. %s\n", mark, int(g.ID), g.Name))
	}

	b.WriteString("\n")
	if v.Action == gate.ActionProceed {
		b.WriteString(fmt.Sprintf("Verdict: proceed. %s\n", v.Message))
	} else {
		b.WriteString(fmt.Sprintf("Verdict: blocked at gate %d (%s). %s\n", int(v.Gate), v.Gate, v.Reason))
	}

	return b.String()
}

// #endregion status-block
