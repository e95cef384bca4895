package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-verdict
// LogVerdict writes a verdict entry to the verdict_log table.
func LogVerdict(db *sql.DB, entry VerdictEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO verdict_log (increment_id, gate, action, reason, evidence_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.IncrementID,
		int(entry.Gate),
		entry.Action,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.EvidenceJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log verdict: %w", err)
	}
	return nil
}

// #endregion log-verdict

// #region record-codec
// EncodeRecord serializes a VerdictRecord for storage in evidence_json.
func EncodeRecord(rec VerdictRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode verdict record: %w", err)
	}
	return string(data), nil
}

// DecodeRecord parses a stored VerdictRecord. Returns nil on empty input or
// parse failure; old rows may predate the record format.
func DecodeRecord(s string) *VerdictRecord {
	if s == "" {
		return nil
	}
	var rec VerdictRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil
	}
	return &rec
}

// #endregion record-codec

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
