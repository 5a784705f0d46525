package logging

import (
	"database/sql"
	"fmt"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region log-check
// LogCheck writes an entry to the check_log table.
func LogCheck(db *sql.DB, entry CheckEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO check_log (run_id, operation, path, task, decision, error_kind, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.RunID),
		entry.Operation,
		entry.Path,
		nullIfEmpty(entry.Task),
		entry.Decision,
		nullIfEmpty(entry.ErrorKind),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log check: %w", err)
	}
	return nil
}
// #endregion log-check

// #region list-checks
// ListChecks returns the most recent check_log entries, newest first.
func ListChecks(db *sql.DB, limit int) ([]CheckEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, operation, path, task, decision, error_kind, reason, created_at
		 FROM check_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var entries []CheckEntry
	for rows.Next() {
		var e CheckEntry
		var runID, taskName, kind, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&runID, &e.Operation, &e.Path, &taskName, &e.Decision, &kind, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.RunID = runID.String
		e.Task = taskName.String
		e.ErrorKind = kind.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-checks

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
