package eval

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
	"github.com/danielpatrickdp/quantscore/internal/validate"
)

// #region eval-harness
// Harness runs the load, validate, align and score pipeline. It holds only
// immutable configuration, so one harness may serve concurrent callers.
type Harness struct {
	registry *task.Registry
	config   EvalConfig
	pred     *validate.Validator
	truth    *validate.Validator
	logger   *slog.Logger
}

// NewHarness creates a harness over the given task registry. A nil logger uses slog.Default().
func NewHarness(registry *task.Registry, config EvalConfig, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		registry: registry,
		config:   config,
		pred:     validate.NewValidator(validate.Options{Tolerance: config.Tolerance}),
		truth:    validate.NewValidator(validate.Options{Tolerance: config.Tolerance, SkipSum: !config.StrictTruth}),
		logger:   logger,
	}
}

// Registry returns the task registry the harness resolves names against.
func (h *Harness) Registry() *task.Registry { return h.registry }

// Epsilon returns the smoothing constant used for every sample of task d.
func (h *Harness) Epsilon(d task.Descriptor) float64 {
	if h.config.Epsilon > 0 {
		return h.config.Epsilon
	}
	return d.DefaultEpsilon()
}

// #endregion eval-harness

// #region evaluate
// Evaluate scores the prediction file at predPath against the ground truth at
// truePath for the named task.
func (h *Harness) Evaluate(taskName, truePath, predPath string) (ScoreReport, error) {
	d, err := h.registry.Resolve(taskName)
	if err != nil {
		return ScoreReport{}, err
	}

	truth, err := prevalence.Load(truePath)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("load ground truth: %w", err)
	}
	pred, err := prevalence.Load(predPath)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("load prediction: %w", err)
	}
	h.logger.Debug("submissions loaded", "task", d.Name, "truth_rows", truth.Len(), "pred_rows", pred.Len())

	return h.Score(d, truth, pred)
}

// Score validates both tables and computes MAE and MRAE over their aligned rows.
func (h *Harness) Score(d task.Descriptor, truth, pred *prevalence.Table) (ScoreReport, error) {
	if err := h.pred.Check(pred, d); err != nil {
		return ScoreReport{}, fmt.Errorf("validate prediction: %w", err)
	}
	if err := h.truth.Check(truth, d); err != nil {
		return ScoreReport{}, fmt.Errorf("validate ground truth: %w", err)
	}

	pairs, err := Align(truth, pred)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("align: %w", err)
	}

	eps := h.Epsilon(d)
	report := ScoreReport{
		Task:    d.Name,
		Samples: len(pairs),
		Epsilon: eps,
		MAE:     MeanAbsoluteError(pairs),
		MRAE:    MeanRelativeAbsoluteError(pairs, eps),
	}
	h.logger.Info("submission scored", "task", d.Name, "samples", report.Samples,
		"mae", report.MAE, "mrae", report.MRAE, "epsilon", eps)
	return report, nil
}

// #endregion evaluate

// #region check-format
// CheckFormat loads the file at path and runs the full validation sequence. With
// an empty taskName the task is inferred from the table shape.
func (h *Harness) CheckFormat(path, taskName string) (task.Descriptor, error) {
	t, err := prevalence.Load(path)
	if err != nil {
		return task.Descriptor{}, err
	}
	return h.CheckTable(t, taskName)
}

// CheckTable validates an in-memory table against the named or inferred task.
func (h *Harness) CheckTable(t *prevalence.Table, taskName string) (task.Descriptor, error) {
	var d task.Descriptor
	if taskName != "" {
		var err error
		if d, err = h.registry.Resolve(taskName); err != nil {
			return task.Descriptor{}, err
		}
	} else {
		var ok bool
		d, ok = h.registry.Infer(t.Classes(), t.Len())
		if d.Name == "" {
			return task.Descriptor{}, &prevalence.DimensionMismatchError{ID: -1, Expected: h.smallestClassCount(), Actual: t.Classes()}
		}
		if !ok {
			h.logger.Debug("no task matches sample count, validating against closest", "task", d.Name, "rows", t.Len())
		}
	}
	if err := h.pred.Check(t, d); err != nil {
		return d, err
	}
	return d, nil
}

// smallestClassCount is reported as the expected dimension when no task has the
// table's class count.
func (h *Harness) smallestClassCount() int {
	best := 0
	for _, name := range h.registry.Names() {
		d, _ := h.registry.Resolve(name)
		if best == 0 || d.Classes < best {
			best = d.Classes
		}
	}
	return best
}

// #endregion check-format

// #region report
// FormatReport renders the two labeled score lines.
func FormatReport(r ScoreReport) string {
	return fmt.Sprintf("MAE: %.4f\nMRAE: %.4f\n", r.MAE, r.MRAE)
}

// WriteReport writes FormatReport(r) to path, creating the parent directory.
func WriteReport(path string, r ScoreReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(FormatReport(r)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// #endregion report
