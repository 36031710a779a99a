package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohl-research/exposure-cli/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStreamCSV_HeaderAndRows(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\n3,4\n"
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(in), CSVOptions{HasHeader: true, HeaderCh: headerCh})

	assert.Equal(t, []string{"a", "b"}, <-headerCh)

	var rows [][]string
	for r := range rowCh {
		rows = append(rows, r)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, rows)
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a\n1\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}

func TestMapColumns_CaseInsensitive(t *testing.T) {
	t.Parallel()

	idx := mapColumns([]string{"OCCSOC", " PerWt ", "degfieldd"})
	i, ok := findColumn(idx, "occsoc")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	i, ok = findColumn(idx, "perwt")
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestLoadReference_CSV(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "felten.csv", "soc_clean,Language Modeling AIOE\n2511,0.2\n2512,0.6\nbad,\n2519,0.9\n")
	entries, err := LoadReference(context.Background(), path)
	require.NoError(t, err)

	// The unparseable score row is skipped, not fatal.
	require.Len(t, entries, 3)
	assert.Equal(t, model.ReferenceEntry{Code: "2511", Score: 0.2}, entries[0])
	assert.Equal(t, model.ReferenceEntry{Code: "2519", Score: 0.9}, entries[2])
}

func TestLoadReference_MissingScoreColumn(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "felten.csv", "soc_clean,unrelated\n2511,0.2\n")
	_, err := LoadReference(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestLoadReference_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadReference(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadACS_FiltersAndDiagnostics(t *testing.T) {
	t.Parallel()

	csv := strings.Join([]string{
		"YEAR,AGE,OCCSOC,DEGFIELDD,PERWT",
		"2024,30,2511,6107,12",  // kept
		"2024,50,2511,6107,10",  // age out of band
		"2024,30,,6107,10",      // missing occupation
		"2024,30,2511,0,10",     // zero degree field
		"2025,25,251000,2408,8", // kept
	}, "\n") + "\n"
	path := writeTemp(t, "acs.csv", csv)

	res, err := LoadACS(context.Background(), path, ACSOptions{MinAge: 22, MaxAge: 35, Titles: map[string]string{"6107": "Nursing"}})
	require.NoError(t, err)

	require.Len(t, res.Observations, 2)
	assert.Equal(t, "2511", res.Observations[0].RawCode)
	assert.Equal(t, "Nursing", res.Observations[0].MajorTitle)
	assert.Equal(t, 12.0, res.Observations[0].Weight)

	d := res.Diagnostics
	assert.Equal(t, 5, d.TotalRows)
	assert.Equal(t, 4, d.AgeInBand)
	assert.Equal(t, 4, d.HasOccCode)
	assert.Equal(t, 4, d.MajorNonZero)
	assert.Equal(t, 2, d.AllFilters)
	assert.Equal(t, 1, d.YearCounts[2024])
	assert.Equal(t, 1, d.YearCounts[2025])
}

func TestLoadACS_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "acs.csv", "YEAR,OCCSOC,PERWT\n2024,2511,10\n")
	_, err := LoadACS(context.Background(), path, ACSOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degfieldd")
}

func TestLoadACS_NoAgeColumnDisablesAgeFilter(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "acs.csv", "OCCSOC,DEGFIELDD,PERWT\n2511,6107,10\n")
	res, err := LoadACS(context.Background(), path, ACSOptions{MinAge: 22, MaxAge: 35})
	require.NoError(t, err)
	assert.Len(t, res.Observations, 1)
}

func TestLoadEnrollment(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "enroll.csv", "CIP4,year,enrollment\n1107,2024,1500\n1107,2025,1200\nbad,x,y\n")
	rows, err := LoadEnrollment(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, EnrollmentRow{Major: "1107", Year: 2024, Enrollment: 1500}, rows[0])
}

func TestLoadWages(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "wages.csv", "cip4,mean_wage\n1107,85000\n2408,54000\n")
	wages, err := LoadWages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 85000.0, wages["1107"])
	assert.Equal(t, 54000.0, wages["2408"])
}

func TestLoadCodebook(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "codebook.yaml", "majors:\n  \"6107\": Nursing\n  \"2408\": Physics\n")
	cb, err := LoadCodebook(path)
	require.NoError(t, err)
	assert.Equal(t, "Nursing", cb.Title("6107"))
	assert.Equal(t, "", cb.Title("9999"))
}

func TestWriteObservations_RoundTrip(t *testing.T) {
	t.Parallel()

	score := 0.42
	obs := []model.Observation{
		{RawCode: "2511", Major: "6107", MajorTitle: "Nursing", Weight: 12, Score: &score},
		{RawCode: "999999", Major: "2408", Weight: 3}, // unmatched: empty score cell
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteObservations(path, obs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "occsoc,degfieldd,major_title,perwt,aioe", lines[0])
	assert.Equal(t, "2511,6107,Nursing,12,0.42", lines[1])
	assert.Equal(t, "999999,2408,,3,", lines[2])
}

func TestWritePanel_LoadPanel_RoundTrip(t *testing.T) {
	t.Parallel()

	rows := []model.PanelRow{
		{Major: "1107", Title: "CS", Year: 2024, Enrollment: 1500, LogEnrollment: 7.313, Exposure: 0.9, Tercile: model.TercileHigh, WageQuartile: "Q4"},
		{Major: "6107", Year: 2025, Enrollment: 900, LogEnrollment: 6.802, Exposure: 0.1, Tercile: model.TercileLow},
	}
	path := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, WritePanel(path, rows))

	got, err := LoadPanel(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteDiDResults(t *testing.T) {
	t.Parallel()

	results := []model.DiDResult{
		{Specification: "basic", Coefficient: -0.08, StdError: 0.02, PValue: 0.001, NObs: 420, NMajors: 60},
	}
	path := filepath.Join(t.TempDir(), "did_results.csv")
	require.NoError(t, WriteDiDResults(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "basic,-0.08,0.02,0.001,420,60", lines[1])
}
