// Package store persists match-run summaries and regression results so
// repeated analysis runs can be compared over time. Two backends exist:
// SQLite for local use and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/ohl-research/exposure-cli/internal/model"
)

// RunFilter specifies criteria for listing match runs.
type RunFilter struct {
	Dataset string `json:"dataset,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	SaveMatchRun(ctx context.Context, dataset string, report model.MatchReport) (*model.MatchRun, error)
	ListMatchRuns(ctx context.Context, filter RunFilter) ([]model.MatchRun, error)

	SaveDiDResults(ctx context.Context, runID string, results []model.DiDResult) error
	ListDiDResults(ctx context.Context, runID string) ([]model.DiDResult, error)

	Migrate(ctx context.Context) error
	Close() error
}
