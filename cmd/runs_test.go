package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ohl-research/exposure-cli/internal/did"
	"github.com/ohl-research/exposure-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	runs := []model.MatchRun{
		{
			ID:      "abc12345-6789-0000-0000-000000000000",
			Dataset: "acs_2023",
			Report: model.MatchReport{
				TotalRows: 1000, ExactRows: 900, FuzzyRows: 50, UnmatchedRows: 50,
			},
			CreatedAt: now,
		},
		{
			ID:      "def12345-6789-0000-0000-000000000000",
			Dataset: "acs_2024",
			Report: model.MatchReport{
				TotalRows: 400, ExactRows: 400,
			},
			CreatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "DATASET")
	assert.Contains(t, output, "acs_2023")
	assert.Contains(t, output, "90.0%")
	assert.Contains(t, output, "acs_2024")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "abc12345")
}

func TestFormatRunsList_EmptyReport(t *testing.T) {
	runs := []model.MatchRun{
		{ID: "empty-run", Dataset: "acs", CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	// Zero-row reports render 0.0% rather than NaN.
	assert.Contains(t, buf.String(), "0.0%")
}

func TestFormatCellMeans(t *testing.T) {
	var buf bytes.Buffer
	formatCellMeans(&buf, &did.CellMeans{
		HighPre: 10.0, HighPost: 9.5,
		LowPre: 10.0, LowPost: 9.9,
		Estimate: -0.4,
	})

	output := buf.String()
	assert.Contains(t, output, "Manual 2x2 cross-check")
	assert.Contains(t, output, "High exposure")
	assert.Contains(t, output, "Low exposure")
	assert.Contains(t, output, "DiD estimate:   -0.4000")
}
