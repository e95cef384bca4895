package audit

// #region audit-check
// AuditCheck captures a single law check over a replayed session.
type AuditCheck struct {
	Name       string
	Violations int
	Pass       bool
}

// #endregion audit-check

// #region audit-result
// AuditResult is the output of auditing a replayed session against the
// policy laws.
type AuditResult struct {
	Passed bool
	Checks []AuditCheck
	Reason string
}

// #endregion audit-result
