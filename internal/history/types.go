package history

import "time"

// #region run-record
// RunRecord is one successful evaluation stored in evaluation_runs.
type RunRecord struct {
	RunID          string    `json:"run_id"`
	Task           string    `json:"task"`
	TruthPath      string    `json:"truth_path"`
	PredictionPath string    `json:"prediction_path"`
	Samples        int       `json:"samples"`
	Epsilon        float64   `json:"epsilon"`
	MAE            float64   `json:"mae"`
	MRAE           float64   `json:"mrae"`
	CreatedAt      time.Time `json:"created_at"`
}
// #endregion run-record
