package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ohl-research/exposure-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS match_runs (
	id         TEXT PRIMARY KEY,
	dataset    TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS did_results (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	specification TEXT NOT NULL,
	coefficient   REAL NOT NULL,
	std_error     REAL NOT NULL,
	p_value       REAL NOT NULL,
	n_obs         INTEGER NOT NULL,
	n_majors      INTEGER NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_match_runs_dataset ON match_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_did_results_run_id ON did_results(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveMatchRun(ctx context.Context, dataset string, report model.MatchReport) (*model.MatchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_runs (id, dataset, report, created_at) VALUES (?, ?, ?, ?)`,
		id, dataset, string(reportJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert match run")
	}

	return &model.MatchRun{ID: id, Dataset: dataset, Report: report, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListMatchRuns(ctx context.Context, filter RunFilter) ([]model.MatchRun, error) {
	query := `SELECT id, dataset, report, created_at FROM match_runs WHERE 1=1`
	var args []any

	if filter.Dataset != "" {
		query += ` AND dataset = ?`
		args = append(args, filter.Dataset)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list match runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.MatchRun
	for rows.Next() {
		var run model.MatchRun
		var reportJSON string
		if err := rows.Scan(&run.ID, &run.Dataset, &reportJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan match run")
		}
		if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal report for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate match runs")
}

func (s *SQLiteStore) SaveDiDResults(ctx context.Context, runID string, results []model.DiDResult) error {
	now := time.Now().UTC()
	for _, r := range results {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO did_results (id, run_id, specification, coefficient, std_error, p_value, n_obs, n_majors, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, r.Specification, r.Coefficient, r.StdError, r.PValue, r.NObs, r.NMajors, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert did result %s", r.Specification)
		}
	}
	return nil
}

func (s *SQLiteStore) ListDiDResults(ctx context.Context, runID string) ([]model.DiDResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT specification, coefficient, std_error, p_value, n_obs, n_majors
		 FROM did_results WHERE run_id = ? ORDER BY created_at, specification`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list did results")
	}
	defer rows.Close() //nolint:errcheck

	var results []model.DiDResult
	for rows.Next() {
		var r model.DiDResult
		if err := rows.Scan(&r.Specification, &r.Coefficient, &r.StdError, &r.PValue, &r.NObs, &r.NMajors); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan did result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate did results")
}
