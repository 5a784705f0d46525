package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/danielpatrickdp/quantscore/internal/eval"
	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a scoring regression fixture.
type Fixture struct {
	Description string        `json:"description"`
	Task        FixtureTask   `json:"task"`
	Epsilon     float64       `json:"epsilon"`
	Tolerance   float64       `json:"tolerance"`
	StrictTruth bool          `json:"strict_truth"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureTask mirrors task.Descriptor with JSON tags.
type FixtureTask struct {
	Name          string `json:"name"`
	Classes       int    `json:"classes"`
	Samples       int    `json:"samples"`
	DocsPerSample int    `json:"docs_per_sample"`
}

// FixtureCase is one truth/prediction pair and its expected outcome. A
// non-empty PredictionCSV is parsed instead of Prediction, so parse failures
// can be replayed too.
type FixtureCase struct {
	Name          string              `json:"name"`
	Truth         map[int][]float64   `json:"truth"`
	Prediction    map[int][]float64   `json:"prediction"`
	PredictionCSV string              `json:"prediction_csv,omitempty"`
	Expect        FixtureExpectations `json:"expect"`
}

// FixtureExpectations holds either scores or an error kind.
type FixtureExpectations struct {
	MAE   *float64 `json:"mae,omitempty"`
	MRAE  *float64 `json:"mrae,omitempty"`
	Error string   `json:"error,omitempty"` // eval.Kind* name
	Delta float64  `json:"delta,omitempty"` // score comparison slack; 0 means DefaultDelta
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToDescriptor converts the fixture task to a task.Descriptor.
func (ft *FixtureTask) ToDescriptor() task.Descriptor {
	return task.Descriptor{
		Name:          ft.Name,
		Classes:       ft.Classes,
		Samples:       ft.Samples,
		DocsPerSample: ft.DocsPerSample,
	}
}

// ToEvalConfig converts the fixture scoring policy to an eval.EvalConfig.
func (f *Fixture) ToEvalConfig() eval.EvalConfig {
	cfg := eval.DefaultEvalConfig()
	cfg.Epsilon = f.Epsilon
	if f.Tolerance > 0 {
		cfg.Tolerance = f.Tolerance
	}
	cfg.StrictTruth = f.StrictTruth
	return cfg
}

// PredictionTable builds the case's prediction table.
func (fc *FixtureCase) PredictionTable() (*prevalence.Table, error) {
	if fc.PredictionCSV != "" {
		return prevalence.Read(strings.NewReader(fc.PredictionCSV), fc.Name)
	}
	return toTable(fc.Prediction)
}

// TruthTable builds the case's ground-truth table.
func (fc *FixtureCase) TruthTable() (*prevalence.Table, error) {
	return toTable(fc.Truth)
}

// toTable adds rows in ascending id order so a class-count mismatch is reported
// against the lowest id.
func toTable(rows map[int][]float64) (*prevalence.Table, error) {
	ids := make([]int, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	t := prevalence.NewTable(0)
	for _, id := range ids {
		if err := t.Add(id, rows[id]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// #endregion fixture-loader
