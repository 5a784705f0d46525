package eval

import (
	"math"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
)

// #region align
// Align pairs the vectors of two tables by sample id in ascending order. The id
// sets must be identical and the class counts equal.
func Align(truth, pred *prevalence.Table) ([]Pair, error) {
	if truth.Classes() != pred.Classes() {
		return nil, &prevalence.DimensionMismatchError{ID: -1, Expected: truth.Classes(), Actual: pred.Classes()}
	}

	var missing, unexpected []int
	for _, id := range truth.IDs() {
		if !pred.Has(id) {
			missing = append(missing, id)
		}
	}
	for _, id := range pred.IDs() {
		if !truth.Has(id) {
			unexpected = append(unexpected, id)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return nil, &MismatchedSubmissionsError{Missing: missing, Unexpected: unexpected}
	}

	ids := truth.IDs()
	pairs := make([]Pair, len(ids))
	for i, id := range ids {
		t, _ := truth.Get(id)
		p, _ := pred.Get(id)
		pairs[i] = Pair{ID: id, True: t, Pred: p}
	}
	return pairs, nil
}

// #endregion align

// #region per-sample
// AbsoluteError is the mean over classes of |true_c - pred_c|. Both vectors must
// have the same length.
func AbsoluteError(truth, pred prevalence.Vector) float64 {
	if len(truth) == 0 {
		return 0
	}
	var sum float64
	for c := range truth {
		sum += math.Abs(truth[c] - pred[c])
	}
	return sum / float64(len(truth))
}

// Smooth maps each component x to (x + eps) / (1 + n*eps), keeping the vector a
// distribution while making every component strictly positive.
func Smooth(v prevalence.Vector, eps float64) prevalence.Vector {
	n := float64(len(v))
	out := make(prevalence.Vector, len(v))
	for c, x := range v {
		out[c] = (x + eps) / (1 + n*eps)
	}
	return out
}

// RelativeAbsoluteError is the mean over classes of |t'_c - p'_c| / t'_c where t'
// and p' are the smoothed vectors. The denominator comes from truth only, so the
// arguments must not be swapped.
func RelativeAbsoluteError(truth, pred prevalence.Vector, eps float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	t := Smooth(truth, eps)
	p := Smooth(pred, eps)
	var sum float64
	for c := range t {
		sum += math.Abs(t[c]-p[c]) / t[c]
	}
	return sum / float64(len(t))
}

// RelativeAbsoluteErrorFunc binds eps so the metric can be aggregated.
func RelativeAbsoluteErrorFunc(eps float64) MetricFunc {
	return func(truth, pred prevalence.Vector) float64 {
		return RelativeAbsoluteError(truth, pred, eps)
	}
}

// #endregion per-sample

// #region aggregate
// Aggregate returns the arithmetic mean of fn over all pairs, or 0 for no pairs.
func Aggregate(pairs []Pair, fn MetricFunc) float64 {
	if len(pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		sum += fn(p.True, p.Pred)
	}
	return sum / float64(len(pairs))
}

// MeanAbsoluteError aggregates AbsoluteError.
func MeanAbsoluteError(pairs []Pair) float64 {
	return Aggregate(pairs, AbsoluteError)
}

// MeanRelativeAbsoluteError aggregates RelativeAbsoluteError with a fixed eps.
func MeanRelativeAbsoluteError(pairs []Pair, eps float64) float64 {
	return Aggregate(pairs, RelativeAbsoluteErrorFunc(eps))
}

// #endregion aggregate
