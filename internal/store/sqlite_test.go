package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohl-research/exposure-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleReport() model.MatchReport {
	return model.MatchReport{
		TotalRows:      100,
		ExactRows:      80,
		FuzzyRows:      15,
		UnmatchedRows:  5,
		TotalCodes:     12,
		ExactCodes:     8,
		FuzzyCodes:     3,
		UnmatchedCodes: 1,
		TopUnmatched:   []model.CodeCount{{Code: "999999", Count: 5}},
	}
}

func TestSQLite_SaveAndListMatchRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.SaveMatchRun(ctx, "acs_2023", sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "acs_2023", run.Dataset)

	runs, err := st.ListMatchRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 100, runs[0].Report.TotalRows)
	assert.Equal(t, 80, runs[0].Report.ExactRows)
	require.Len(t, runs[0].Report.TopUnmatched, 1)
	assert.Equal(t, "999999", runs[0].Report.TopUnmatched[0].Code)
}

func TestSQLite_ListMatchRuns_FilterByDataset(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveMatchRun(ctx, "acs_2023", sampleReport())
	require.NoError(t, err)
	_, err = st.SaveMatchRun(ctx, "acs_2024", sampleReport())
	require.NoError(t, err)

	runs, err := st.ListMatchRuns(ctx, RunFilter{Dataset: "acs_2024"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "acs_2024", runs[0].Dataset)
}

func TestSQLite_ListMatchRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for range 5 {
		_, err := st.SaveMatchRun(ctx, "acs_2023", sampleReport())
		require.NoError(t, err)
	}

	runs, err := st.ListMatchRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLite_ListMatchRuns_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	runs, err := st.ListMatchRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLite_SaveAndListDiDResults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.SaveMatchRun(ctx, "acs_2023", sampleReport())
	require.NoError(t, err)

	results := []model.DiDResult{
		{Specification: "Basic DiD", Coefficient: -0.12, StdError: 0.04, PValue: 0.003, NObs: 840, NMajors: 120},
		{Specification: "Wage-Controlled DiD", Coefficient: -0.09, StdError: 0.05, PValue: 0.07, NObs: 840, NMajors: 120},
	}
	require.NoError(t, st.SaveDiDResults(ctx, run.ID, results))

	got, err := st.ListDiDResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Basic DiD", got[0].Specification)
	assert.InDelta(t, -0.12, got[0].Coefficient, 1e-12)
	assert.Equal(t, 840, got[0].NObs)
	assert.Equal(t, "Wage-Controlled DiD", got[1].Specification)
}

func TestSQLite_ListDiDResults_UnknownRun(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.ListDiDResults(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, got)
}
