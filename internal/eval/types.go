package eval

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/validate"
)

// #region eval-config
// EvalConfig holds the scoring policy for one harness.
type EvalConfig struct {
	Epsilon     float64 // RAE smoothing; 0 means the task default 1/(2*DocsPerSample)
	Tolerance   float64 // allowed |sum-1| for prediction vectors
	StrictTruth bool    // also enforce the sum check on ground truth
}

// DefaultEvalConfig returns the benchmark policy.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Epsilon:   0,
		Tolerance: validate.DefaultTolerance,
	}
}

// #endregion eval-config

// #region score-report
// ScoreReport is the outcome of scoring one prediction file.
type ScoreReport struct {
	Task    string  `json:"task"`
	Samples int     `json:"samples"`
	Epsilon float64 `json:"epsilon"`
	MAE     float64 `json:"mae"`
	MRAE    float64 `json:"mrae"`
}

// #endregion score-report

// #region pair
// Pair holds the true and predicted vectors of one sample.
type Pair struct {
	ID   int
	True prevalence.Vector
	Pred prevalence.Vector
}

// MetricFunc scores one pair of vectors. Arguments are (true, predicted).
type MetricFunc func(truth, pred prevalence.Vector) float64

// #endregion pair

// #region errors
// ErrMismatchedSubmissions is matched by every MismatchedSubmissionsError.
var ErrMismatchedSubmissions = errors.New("mismatched submissions")

// MismatchedSubmissionsError reports the symmetric difference of two id sets.
// Missing ids are in the ground truth only; Unexpected ids are in the prediction only.
type MismatchedSubmissionsError struct {
	Missing    []int
	Unexpected []int
}

func (e *MismatchedSubmissionsError) Error() string {
	return fmt.Sprintf("%s: prediction is missing ids %v and has unexpected ids %v",
		ErrMismatchedSubmissions, truncate(e.Missing), truncate(e.Unexpected))
}

func (e *MismatchedSubmissionsError) Is(target error) bool { return target == ErrMismatchedSubmissions }

func truncate(ids []int) []int {
	const limit = 10
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

// #endregion errors
