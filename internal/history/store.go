package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// TimeLayout is the fixed-width timestamp format stored in created_at columns,
// so that text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS evaluation_runs (
	run_id          TEXT PRIMARY KEY,
	task            TEXT NOT NULL,
	truth_path      TEXT NOT NULL,
	prediction_path TEXT NOT NULL,
	samples         INTEGER NOT NULL,
	epsilon         REAL NOT NULL,
	mae             REAL NOT NULL,
	mrae            REAL NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS check_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT,
	operation   TEXT NOT NULL,
	path        TEXT NOT NULL,
	task        TEXT,
	decision    TEXT NOT NULL,
	error_kind  TEXT,
	reason      TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON evaluation_runs(created_at);
`
// #endregion schema

// #region store-struct
// Store keeps evaluation history in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	memory := dbPath == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region record-run
// RecordRun inserts a run. An empty RunID gets a fresh UUID and a zero CreatedAt
// is set to now; the stored record is returned.
func (s *Store) RecordRun(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO evaluation_runs (run_id, task, truth_path, prediction_path, samples, epsilon, mae, mrae, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Task, rec.TruthPath, rec.PredictionPath, rec.Samples,
		rec.Epsilon, rec.MAE, rec.MRAE, rec.CreatedAt.UTC().Format(TimeLayout),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}
// #endregion record-run

// #region get-run
// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, task, truth_path, prediction_path, samples, epsilon, mae, mrae, created_at
		 FROM evaluation_runs WHERE run_id = ?`, id,
	)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, task, truth_path, prediction_path, samples, epsilon, mae, mrae, created_at
		 FROM evaluation_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-runs

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	err := row.Scan(&rec.RunID, &rec.Task, &rec.TruthPath, &rec.PredictionPath, &rec.Samples,
		&rec.Epsilon, &rec.MAE, &rec.MRAE, &createdStr)
	if err != nil {
		return RunRecord{}, err
	}
	rec.CreatedAt, _ = time.Parse(TimeLayout, createdStr)
	return rec, nil
}
// #endregion scan
