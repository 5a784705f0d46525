package eval

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
	"github.com/danielpatrickdp/quantscore/internal/validate"
)

// #region helpers
func tableOf(t *testing.T, classes int, rows map[int]prevalence.Vector) *prevalence.Table {
	t.Helper()
	tbl := prevalence.NewTable(classes)
	for id, v := range rows {
		require.NoError(t, tbl.Add(id, v))
	}
	return tbl
}

func constantTable(t *testing.T, ids []int, v prevalence.Vector) *prevalence.Table {
	t.Helper()
	tbl := prevalence.NewTable(len(v))
	for _, id := range ids {
		require.NoError(t, tbl.Add(id, v))
	}
	return tbl
}

func seq(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func randomVector(rng *rand.Rand, n int) prevalence.Vector {
	v := make(prevalence.Vector, n)
	var sum float64
	for c := range v {
		v[c] = rng.Float64()
		sum += v[c]
	}
	for c := range v {
		v[c] /= sum
	}
	return v
}

func dump(t *testing.T, tbl *prevalence.Table, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, prevalence.Dump(tbl, path))
	return path
}

func newHarness() *Harness {
	return NewHarness(task.Default(), DefaultEvalConfig(), nil)
}

// #endregion helpers

// #region metric-tests
func TestAbsoluteErrorIdentityAndSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		a := randomVector(rng, 28)
		b := randomVector(rng, 28)
		assert.Equal(t, 0.0, AbsoluteError(a, a))
		assert.InDelta(t, AbsoluteError(a, b), AbsoluteError(b, a), 1e-15)
	}
}

func TestAbsoluteErrorSingleSample(t *testing.T) {
	got := AbsoluteError(prevalence.Vector{1.0, 0.0}, prevalence.Vector{0.5, 0.5})
	assert.InDelta(t, 0.5, got, 1e-15)
}

func TestRelativeAbsoluteErrorIsAsymmetric(t *testing.T) {
	a := prevalence.Vector{1, 0}
	b := prevalence.Vector{0.5, 0.5}
	eps := 1.0 / 500

	ab := RelativeAbsoluteError(a, b, eps)
	ba := RelativeAbsoluteError(b, a, eps)
	assert.NotEqual(t, ab, ba)
	assert.Greater(t, ab, ba, "a zero true class inflates the relative error")
}

func TestRelativeAbsoluteErrorHandComputed(t *testing.T) {
	eps := 0.1
	// smoothed truth (1.1/1.2, 0.1/1.2), smoothed pred (0.6/1.2, 0.6/1.2)
	want := ((0.5/1.2)/(1.1/1.2) + (0.5/1.2)/(0.1/1.2)) / 2
	got := RelativeAbsoluteError(prevalence.Vector{1, 0}, prevalence.Vector{0.5, 0.5}, eps)
	assert.InDelta(t, want, got, 1e-12)
	assert.Equal(t, 0.0, RelativeAbsoluteError(prevalence.Vector{0, 1}, prevalence.Vector{0, 1}, eps))
}

func TestSmoothKeepsDistribution(t *testing.T) {
	s := Smooth(prevalence.Vector{0, 0.25, 0.75}, 0.01)
	assert.InDelta(t, 1.0, s.Sum(), 1e-12)
	for _, x := range s {
		assert.Greater(t, x, 0.0)
	}
}

func TestAggregateMean(t *testing.T) {
	pairs := []Pair{
		{ID: 0, True: prevalence.Vector{1, 0}, Pred: prevalence.Vector{0.5, 0.5}},
		{ID: 1, True: prevalence.Vector{0.5, 0.5}, Pred: prevalence.Vector{0.5, 0.5}},
	}
	assert.InDelta(t, 0.25, MeanAbsoluteError(pairs), 1e-15)
	assert.Equal(t, 0.0, Aggregate(nil, AbsoluteError))
}

// #endregion metric-tests

// #region align-tests
func TestAlignMismatchedSubmissions(t *testing.T) {
	v := prevalence.Vector{0.5, 0.5}
	truth := constantTable(t, seq(1000), v)
	pred := constantTable(t, append(seq(999), 1000), v)

	_, err := Align(truth, pred)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMismatchedSubmissions))

	var ms *MismatchedSubmissionsError
	require.ErrorAs(t, err, &ms)
	assert.Equal(t, []int{999}, ms.Missing)
	assert.Equal(t, []int{1000}, ms.Unexpected)
	assert.Contains(t, err.Error(), "999")
	assert.Contains(t, err.Error(), "1000")
}

func TestAlignAscendingOrder(t *testing.T) {
	truth := tableOf(t, 2, map[int]prevalence.Vector{2: {1, 0}, 0: {0, 1}, 1: {0.5, 0.5}})
	pred := tableOf(t, 2, map[int]prevalence.Vector{1: {0.5, 0.5}, 2: {0, 1}, 0: {0, 1}})

	pairs, err := Align(truth, pred)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for i, p := range pairs {
		assert.Equal(t, i, p.ID)
	}
	assert.Equal(t, prevalence.Vector{1, 0}, pairs[2].True)
	assert.Equal(t, prevalence.Vector{0, 1}, pairs[2].Pred)
}

func TestAlignClassCountMismatch(t *testing.T) {
	truth := tableOf(t, 2, map[int]prevalence.Vector{0: {1, 0}})
	pred := tableOf(t, 3, map[int]prevalence.Vector{0: {1, 0, 0}})
	_, err := Align(truth, pred)
	assert.True(t, errors.Is(err, prevalence.ErrDimensionMismatch))
}

// #endregion align-tests

// #region harness-tests
func TestEvaluatePerfectPrediction(t *testing.T) {
	v := prevalence.Vector{0.5, 0.5}
	truePath := dump(t, constantTable(t, seq(1000), v), "true.csv")
	predPath := dump(t, constantTable(t, seq(1000), v), "pred.csv")

	report, err := newHarness().Evaluate("T1A", truePath, predPath)
	require.NoError(t, err)
	assert.Equal(t, "T1A", report.Task)
	assert.Equal(t, 1000, report.Samples)
	assert.Equal(t, 0.0, report.MAE)
	assert.Equal(t, 0.0, report.MRAE)
	assert.InDelta(t, 1.0/500, report.Epsilon, 1e-15)
}

func TestEvaluateInvariantUnderRowPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	truth := prevalence.NewTable(28)
	pred := prevalence.NewTable(28)
	for id := 0; id < 1000; id++ {
		require.NoError(t, truth.Add(id, randomVector(rng, 28)))
		require.NoError(t, pred.Add(id, randomVector(rng, 28)))
	}
	truePath := dump(t, truth, "true.csv")
	predPath := dump(t, pred, "pred.csv")

	// rewrite the prediction file with shuffled data rows
	data, err := os.ReadFile(predPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	body := lines[1:]
	rng.Shuffle(len(body), func(i, j int) { body[i], body[j] = body[j], body[i] })
	shuffledPath := filepath.Join(t.TempDir(), "shuffled.csv")
	require.NoError(t, os.WriteFile(shuffledPath, []byte(lines[0]+"\n"+strings.Join(body, "\n")+"\n"), 0o644))

	h := newHarness()
	a, err := h.Evaluate("T2A", truePath, predPath)
	require.NoError(t, err)
	b, err := h.Evaluate("T2A", truePath, shuffledPath)
	require.NoError(t, err)
	assert.Equal(t, a.MAE, b.MAE)
	assert.Equal(t, a.MRAE, b.MRAE)
	assert.Greater(t, a.MAE, 0.0)
}

func TestEvaluateErrors(t *testing.T) {
	v := prevalence.Vector{0.5, 0.5}
	good := dump(t, constantTable(t, seq(1000), v), "good.csv")
	short := dump(t, constantTable(t, seq(999), v), "short.csv")
	gap := dump(t, constantTable(t, append(seq(999), 1000), v), "gap.csv")
	sum := dump(t, constantTable(t, seq(1000), prevalence.Vector{0.601, 0.402}), "sum.csv")
	garbage := filepath.Join(t.TempDir(), "garbage.csv")
	require.NoError(t, os.WriteFile(garbage, []byte("id,0,1\n0,x,1\n"), 0o644))

	cases := []struct {
		name      string
		task      string
		truth     string
		pred      string
		sentinel  error
		kind      string
		userError bool
	}{
		{"unknown task", "T9Z", good, good, task.ErrUnknownTask, KindUnknownTask, true},
		{"parse error", "T1A", good, garbage, prevalence.ErrParse, KindParse, true},
		{"wrong size", "T1A", good, short, validate.ErrWrongNumberOfSamples, KindWrongNumberOfSamples, true},
		{"invalid ids", "T1A", good, gap, validate.ErrInvalidID, KindInvalidID, true},
		{"sum error", "T1A", good, sum, validate.ErrPrevalenceSum, KindPrevalenceSum, true},
		{"wrong class count for task", "T2A", good, good, prevalence.ErrDimensionMismatch, KindDimensionMismatch, true},
		{"missing file", "T1A", good, filepath.Join(t.TempDir(), "missing.csv"), os.ErrNotExist, KindInternal, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newHarness().Evaluate(tc.task, tc.truth, tc.pred)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel), "got %v", err)
			assert.Equal(t, tc.kind, ErrorKind(err))
			assert.Equal(t, tc.userError, IsUserError(err))
		})
	}
}

func TestGroundTruthSkipsSumCheckUnlessStrict(t *testing.T) {
	truth := constantTable(t, seq(1000), prevalence.Vector{0.601, 0.402})
	pred := constantTable(t, seq(1000), prevalence.Vector{0.5, 0.5})
	d, _ := task.Default().Resolve("T1A")

	_, err := newHarness().Score(d, truth, pred)
	assert.NoError(t, err)

	cfg := DefaultEvalConfig()
	cfg.StrictTruth = true
	_, err = NewHarness(task.Default(), cfg, nil).Score(d, truth, pred)
	assert.True(t, errors.Is(err, validate.ErrPrevalenceSum))
}

func TestConfiguredEpsilonOverridesTaskDefault(t *testing.T) {
	d, _ := task.Default().Resolve("T1B")
	assert.InDelta(t, 1.0/2000, newHarness().Epsilon(d), 1e-15)

	cfg := DefaultEvalConfig()
	cfg.Epsilon = 0.01
	assert.Equal(t, 0.01, NewHarness(task.Default(), cfg, nil).Epsilon(d))
}

func TestCheckFormat(t *testing.T) {
	h := newHarness()
	v := prevalence.Vector{0.5, 0.5}

	d, err := h.CheckFormat(dump(t, constantTable(t, seq(5000), v), "b.csv"), "")
	require.NoError(t, err)
	assert.Equal(t, "T1B", d.Name, "inferred from shape")

	_, err = h.CheckFormat(dump(t, constantTable(t, append(seq(999), 1000), v), "c.csv"), "T1A")
	assert.True(t, errors.Is(err, validate.ErrInvalidID))

	d, err = h.CheckFormat(dump(t, constantTable(t, seq(1001), v), "d.csv"), "")
	assert.True(t, errors.Is(err, validate.ErrWrongNumberOfSamples))
	assert.Equal(t, "T1A", d.Name)

	_, err = h.CheckFormat(dump(t, constantTable(t, seq(1000), prevalence.Vector{0.2, 0.3, 0.5}), "e.csv"), "")
	assert.True(t, errors.Is(err, prevalence.ErrDimensionMismatch))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores", "out.txt")
	require.NoError(t, WriteReport(path, ScoreReport{MAE: 0.123456, MRAE: 1.5}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MAE: 0.1235\nMRAE: 1.5000\n", string(data))
}

// #endregion harness-tests
