package task

import (
	"errors"
	"fmt"
)

// #region descriptor
// Descriptor holds the fixed shape of one benchmark task.
type Descriptor struct {
	Name          string `json:"name" validate:"required"`
	Classes       int    `json:"classes" validate:"gte=2"`         // n: length of every prevalence vector
	Samples       int    `json:"samples" validate:"gte=1"`         // m: number of samples in a submission
	DocsPerSample int    `json:"docs_per_sample" validate:"gte=1"` // documents drawn per sample
}

// DefaultEpsilon returns the smoothing constant used by relative absolute error
// when no explicit value is configured: 1/(2*DocsPerSample).
func (d Descriptor) DefaultEpsilon() float64 {
	return 1.0 / (2.0 * float64(d.DocsPerSample))
}

// #endregion descriptor

// #region errors
// ErrUnknownTask is matched by every UnknownTaskError.
var ErrUnknownTask = errors.New("unknown task")

// UnknownTaskError names a task identifier that is not in the registry.
type UnknownTaskError struct {
	Name  string
	Known []string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q (expected one of %v)", e.Name, e.Known)
}

func (e *UnknownTaskError) Is(target error) bool { return target == ErrUnknownTask }

// #endregion errors
