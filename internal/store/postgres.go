package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ohl-research/exposure-cli/internal/db"
	"github.com/ohl-research/exposure-cli/internal/model"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the database at databaseURL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS match_runs (
	id         TEXT PRIMARY KEY,
	dataset    TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS did_results (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	specification TEXT NOT NULL,
	coefficient   DOUBLE PRECISION NOT NULL,
	std_error     DOUBLE PRECISION NOT NULL,
	p_value       DOUBLE PRECISION NOT NULL,
	n_obs         INTEGER NOT NULL,
	n_majors      INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_match_runs_dataset ON match_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_did_results_run_id ON did_results(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveMatchRun(ctx context.Context, dataset string, report model.MatchReport) (*model.MatchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO match_runs (id, dataset, report, created_at) VALUES ($1, $2, $3, $4)`,
		id, dataset, reportJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert match run")
	}

	return &model.MatchRun{ID: id, Dataset: dataset, Report: report, CreatedAt: now}, nil
}

func (s *PostgresStore) ListMatchRuns(ctx context.Context, filter RunFilter) ([]model.MatchRun, error) {
	query := `SELECT id, dataset, report, created_at FROM match_runs`
	var args []any

	if filter.Dataset != "" {
		query += ` WHERE dataset = $1`
		args = append(args, filter.Dataset)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		if filter.Dataset != "" {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list match runs")
	}
	defer rows.Close()

	var runs []model.MatchRun
	for rows.Next() {
		var run model.MatchRun
		var reportJSON []byte
		if err := rows.Scan(&run.ID, &run.Dataset, &reportJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan match run")
		}
		if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal report for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate match runs")
}

func (s *PostgresStore) SaveDiDResults(ctx context.Context, runID string, results []model.DiDResult) error {
	now := time.Now().UTC()
	for _, r := range results {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO did_results (id, run_id, specification, coefficient, std_error, p_value, n_obs, n_majors, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New().String(), runID, r.Specification, r.Coefficient, r.StdError, r.PValue, r.NObs, r.NMajors, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert did result %s", r.Specification)
		}
	}
	return nil
}

func (s *PostgresStore) ListDiDResults(ctx context.Context, runID string) ([]model.DiDResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT specification, coefficient, std_error, p_value, n_obs, n_majors
		 FROM did_results WHERE run_id = $1 ORDER BY created_at, specification`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list did results")
	}
	defer rows.Close()

	var results []model.DiDResult
	for rows.Next() {
		var r model.DiDResult
		if err := rows.Scan(&r.Specification, &r.Coefficient, &r.StdError, &r.PValue, &r.NObs, &r.NMajors); err != nil {
			return nil, eris.Wrap(err, "postgres: scan did result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate did results")
}
