package prevalence

import (
	"errors"
	"fmt"
)

// #region vector
// Vector holds the prevalence of each class within one sample, indexed by class id.
type Vector []float64

// Sum returns the total of all components.
func (v Vector) Sum() float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// #endregion vector

// #region row
// Row pairs a sample id with its prevalence vector.
type Row struct {
	ID     int
	Vector Vector
}

// #endregion row

// #region errors
var (
	ErrParse             = errors.New("parse error")
	ErrDuplicateID       = errors.New("duplicate sample id")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ParseError reports a malformed submission file. Line is 1-based; 0 means the
// problem is not tied to a line.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrParse, where, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrParse, where, e.Msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// DuplicateIDError reports a second vector for a sample id already in the table.
type DuplicateIDError struct {
	ID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("prevalence values for sample %d already added", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// DimensionMismatchError reports a vector whose length differs from the expected
// class count. ID is -1 when the mismatch concerns a whole table.
type DimensionMismatchError struct {
	ID       int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	if e.ID < 0 {
		return fmt.Sprintf("dimension mismatch: expected %d classes, found %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch for sample %d: expected %d classes, found %d", e.ID, e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// #endregion errors
