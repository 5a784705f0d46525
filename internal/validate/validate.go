package validate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
)

// #region validator
// Validator checks a prevalence table against a task's structural and numeric
// invariants.
type Validator struct {
	opts Options
}

// NewValidator creates a validator with the given options.
func NewValidator(opts Options) *Validator {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return &Validator{opts: opts}
}

// Check runs every check in order and returns the first failure.
func (v *Validator) Check(t *prevalence.Table, d task.Descriptor) error {
	if err := CheckDimension(t, d); err != nil {
		return fmt.Errorf("%s: %w", CheckNameDimension, err)
	}
	if err := CheckSampleCount(t, d); err != nil {
		return fmt.Errorf("%s: %w", CheckNameSampleCount, err)
	}
	if err := CheckIDRange(t, d); err != nil {
		return fmt.Errorf("%s: %w", CheckNameIDRange, err)
	}
	if err := CheckBounds(t); err != nil {
		return fmt.Errorf("%s: %w", CheckNameBounds, err)
	}
	if v.opts.SkipSum {
		return nil
	}
	if err := CheckSum(t, v.opts.Tolerance); err != nil {
		return fmt.Errorf("%s: %w", CheckNameSum, err)
	}
	return nil
}

// #endregion validator

// #region checks
// CheckDimension verifies every vector has exactly d.Classes components.
func CheckDimension(t *prevalence.Table, d task.Descriptor) error {
	if t.Len() == 0 {
		if t.Classes() != 0 && t.Classes() != d.Classes {
			return &prevalence.DimensionMismatchError{ID: -1, Expected: d.Classes, Actual: t.Classes()}
		}
		return nil
	}
	for _, id := range t.IDs() {
		vec, _ := t.Get(id)
		if len(vec) != d.Classes {
			return &prevalence.DimensionMismatchError{ID: id, Expected: d.Classes, Actual: len(vec)}
		}
	}
	return nil
}

// CheckSampleCount verifies the table holds exactly d.Samples vectors.
func CheckSampleCount(t *prevalence.Table, d task.Descriptor) error {
	if t.Len() != d.Samples {
		return &WrongNumberOfSamplesError{Expected: d.Samples, Actual: t.Len()}
	}
	return nil
}

// CheckIDRange verifies the id set is exactly {0, ..., d.Samples-1}.
func CheckIDRange(t *prevalence.Table, d task.Descriptor) error {
	var missing, unexpected []int
	for id := 0; id < d.Samples; id++ {
		if !t.Has(id) {
			missing = append(missing, id)
		}
	}
	for _, id := range t.IDs() {
		if id < 0 || id >= d.Samples {
			unexpected = append(unexpected, id)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return &InvalidIDError{Missing: missing, Unexpected: unexpected}
	}
	return nil
}

// CheckBounds verifies every component lies in [0,1].
func CheckBounds(t *prevalence.Table) error {
	for _, id := range t.IDs() {
		vec, _ := t.Get(id)
		for c, x := range vec {
			// negated so NaN fails too
			if !(x >= 0 && x <= 1) {
				return &InvalidPrevalenceError{ID: id, Class: c, Value: x}
			}
		}
	}
	return nil
}

// CheckSum verifies every vector sums to 1 within tolerance.
func CheckSum(t *prevalence.Table, tolerance float64) error {
	for _, id := range t.IDs() {
		vec, _ := t.Get(id)
		sum := vec.Sum()
		if !(math.Abs(sum-1) <= tolerance) {
			return &PrevalenceSumError{ID: id, Sum: sum, Tolerance: tolerance}
		}
	}
	return nil
}

// #endregion checks
