package logging

import "time"

// Decisions recorded in check_log.
const (
	DecisionPass = "pass"
	DecisionFail = "fail"
)

// Operations recorded in check_log.
const (
	OpEvaluate    = "evaluate"
	OpCheckFormat = "check_format"
)

// #region check-entry
// CheckEntry is a single row in the check_log table: the outcome of validating or
// scoring one submission file.
type CheckEntry struct {
	RunID     string    `json:"run_id,omitempty"` // set when the check belongs to a recorded evaluation run
	Operation string    `json:"operation"`        // OpEvaluate | OpCheckFormat
	Path      string    `json:"path"`
	Task      string    `json:"task,omitempty"`
	Decision  string    `json:"decision"` // DecisionPass | DecisionFail
	ErrorKind string    `json:"error_kind,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
// #endregion check-entry
