package validate

import (
	"errors"
	"fmt"
)

// DefaultTolerance is the allowed slack for a prevalence vector to sum to 1.
const DefaultTolerance = 1e-3

// #region options
// Options tunes the check sequence.
type Options struct {
	Tolerance float64 // allowed |sum-1|; DefaultTolerance when zero
	SkipSum   bool    // skip the sum check (pre-validated ground truth)
}

// DefaultOptions returns the full check sequence with the benchmark tolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// #endregion options

// #region check-names
// Check names, in the order they run.
const (
	CheckNameDimension   = "check_dimension"
	CheckNameSampleCount = "check_sample_count"
	CheckNameIDRange     = "check_id_range"
	CheckNameBounds      = "check_bounds"
	CheckNameSum         = "check_sum"
)

// #endregion check-names

// #region errors
var (
	ErrWrongNumberOfSamples = errors.New("wrong number of samples")
	ErrInvalidID            = errors.New("invalid sample id set")
	ErrInvalidPrevalence    = errors.New("invalid prevalence value")
	ErrPrevalenceSum        = errors.New("prevalence values do not sum to one")
)

// WrongNumberOfSamplesError reports a table whose size differs from the task's sample count.
type WrongNumberOfSamplesError struct {
	Expected int
	Actual   int
}

func (e *WrongNumberOfSamplesError) Error() string {
	return fmt.Sprintf("wrong number of prevalence vectors: expected %d, found %d", e.Expected, e.Actual)
}

func (e *WrongNumberOfSamplesError) Is(target error) bool { return target == ErrWrongNumberOfSamples }

// InvalidIDError reports ids missing from {0..m-1} and ids outside it. Both lists
// are ascending.
type InvalidIDError struct {
	Missing    []int
	Unexpected []int
}

func (e *InvalidIDError) Error() string {
	msg := ErrInvalidID.Error()
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf(": %d missing (first %d)", len(e.Missing), e.Missing[0])
	}
	if len(e.Unexpected) > 0 {
		msg += fmt.Sprintf(": %d unexpected (first %d)", len(e.Unexpected), e.Unexpected[0])
	}
	return msg
}

func (e *InvalidIDError) Is(target error) bool { return target == ErrInvalidID }

// InvalidPrevalenceError reports a component outside [0,1].
type InvalidPrevalenceError struct {
	ID    int
	Class int
	Value float64
}

func (e *InvalidPrevalenceError) Error() string {
	return fmt.Sprintf("prevalence out of range [0,1] for sample %d, class %d: %g", e.ID, e.Class, e.Value)
}

func (e *InvalidPrevalenceError) Is(target error) bool { return target == ErrInvalidPrevalence }

// PrevalenceSumError reports a vector whose sum is farther than Tolerance from 1.
type PrevalenceSumError struct {
	ID        int
	Sum       float64
	Tolerance float64
}

func (e *PrevalenceSumError) Error() string {
	return fmt.Sprintf("prevalence values for sample %d sum to %.6g (error tolerance %g)", e.ID, e.Sum, e.Tolerance)
}

func (e *PrevalenceSumError) Is(target error) bool { return target == ErrPrevalenceSum }

// #endregion errors
