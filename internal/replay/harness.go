package replay

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/danielpatrickdp/quantscore/internal/eval"
	"github.com/danielpatrickdp/quantscore/internal/task"
)

// DefaultDelta is the score slack used when a case does not set one.
const DefaultDelta = 1e-6

// #region types

// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	Name      string
	Passed    bool
	Reason    string // why the case failed; empty when it passed
	Report    eval.ScoreReport
	ErrorKind string // kind of the scoring error, if any
	Err       error
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCases int
	Passed     int
	Failed     int
	Errors     int // cases whose scoring returned an error, expected or not
}

// #endregion types

// #region replay

// Replay scores every case of f through an eval.Harness built from the
// fixture's own task and policy. Only an invalid fixture task is an error;
// case mismatches are reported in the results.
func Replay(f *Fixture, logger *slog.Logger) ([]CaseResult, error) {
	d := f.Task.ToDescriptor()
	reg, err := task.NewRegistry(d)
	if err != nil {
		return nil, fmt.Errorf("fixture task: %w", err)
	}
	harness := eval.NewHarness(reg, f.ToEvalConfig(), logger)

	results := make([]CaseResult, 0, len(f.Cases))
	for _, c := range f.Cases {
		report, err := scoreCase(harness, d, c)
		res := CaseResult{Name: c.Name, Report: report, Err: err, ErrorKind: eval.ErrorKind(err)}
		res.Reason = check(c.Expect, report, res.ErrorKind, err)
		res.Passed = res.Reason == ""
		results = append(results, res)
	}
	return results, nil
}

func scoreCase(h *eval.Harness, d task.Descriptor, c FixtureCase) (eval.ScoreReport, error) {
	truth, err := c.TruthTable()
	if err != nil {
		return eval.ScoreReport{}, fmt.Errorf("truth: %w", err)
	}
	pred, err := c.PredictionTable()
	if err != nil {
		return eval.ScoreReport{}, fmt.Errorf("prediction: %w", err)
	}
	return h.Score(d, truth, pred)
}

// check compares one outcome with its expectations and returns the first mismatch.
func check(want FixtureExpectations, got eval.ScoreReport, kind string, err error) string {
	if want.Error != "" {
		if err == nil {
			return fmt.Sprintf("expected %s error, scored MAE=%.6f MRAE=%.6f", want.Error, got.MAE, got.MRAE)
		}
		if kind != want.Error {
			return fmt.Sprintf("expected %s error, got %s: %v", want.Error, kind, err)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected %s error: %v", kind, err)
	}

	delta := want.Delta
	if delta <= 0 {
		delta = DefaultDelta
	}
	if want.MAE != nil && math.Abs(got.MAE-*want.MAE) > delta {
		return fmt.Sprintf("MAE: want %.6f, got %.6f", *want.MAE, got.MAE)
	}
	if want.MRAE != nil && math.Abs(got.MRAE-*want.MRAE) > delta {
		return fmt.Sprintf("MRAE: want %.6f, got %.6f", *want.MRAE, got.MRAE)
	}
	return ""
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) ReplaySummary {
	s := ReplaySummary{TotalCases: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Err != nil {
			s.Errors++
		}
	}
	return s
}

// #endregion replay
