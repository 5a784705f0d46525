package eval

import (
	"errors"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
	"github.com/danielpatrickdp/quantscore/internal/validate"
)

// Error kinds reported in logs, metrics, run history and service responses.
const (
	KindUnknownTask           = "UnknownTask"
	KindParse                 = "ParseError"
	KindDimensionMismatch     = "DimensionMismatch"
	KindDuplicateID           = "DuplicateId"
	KindInvalidID             = "InvalidID"
	KindWrongNumberOfSamples  = "WrongNumberOfSamples"
	KindInvalidPrevalence     = "InvalidPrevalence"
	KindPrevalenceSum         = "PrevalenceSumError"
	KindMismatchedSubmissions = "MismatchedSubmissions"
	KindInternal              = "Internal"
)

var kinds = []struct {
	sentinel error
	kind     string
}{
	// ParseError wraps DuplicateId for duplicate rows in a file, so it goes first.
	{prevalence.ErrParse, KindParse},
	{task.ErrUnknownTask, KindUnknownTask},
	{prevalence.ErrDimensionMismatch, KindDimensionMismatch},
	{prevalence.ErrDuplicateID, KindDuplicateID},
	{validate.ErrInvalidID, KindInvalidID},
	{validate.ErrWrongNumberOfSamples, KindWrongNumberOfSamples},
	{validate.ErrInvalidPrevalence, KindInvalidPrevalence},
	{validate.ErrPrevalenceSum, KindPrevalenceSum},
	{ErrMismatchedSubmissions, KindMismatchedSubmissions},
}

// ErrorKind names the taxonomy entry of err, "" for nil and KindInternal for
// anything outside the taxonomy (I/O failures, for example).
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// IsUserError reports whether err is caused by the submitted content rather than
// by the environment.
func IsUserError(err error) bool {
	k := ErrorKind(err)
	return k != "" && k != KindInternal
}
