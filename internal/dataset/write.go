package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/ohl-research/exposure-cli/internal/model"
)

// WriteObservations writes the augmented observation table as CSV. The
// score column is left empty for unmatched rows.
func WriteObservations(path string, obs []model.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"occsoc", "degfieldd", "major_title", "perwt", "aioe"}); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, o := range obs {
		score := ""
		if o.Score != nil {
			score = strconv.FormatFloat(*o.Score, 'f', -1, 64)
		}
		record := []string{
			o.RawCode,
			o.Major,
			o.MajorTitle,
			strconv.FormatFloat(o.Weight, 'f', -1, 64),
			score,
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "dataset: flush %s", path)
}

// WritePanel writes the major-year panel as CSV.
func WritePanel(path string, rows []model.PanelRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	header := []string{"cip4", "title", "year", "enrollment", "log_enrollment", "aioe", "ai_exposure_tercile", "wage_quartile"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, r := range rows {
		record := []string{
			r.Major,
			r.Title,
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Enrollment, 'f', -1, 64),
			strconv.FormatFloat(r.LogEnrollment, 'f', -1, 64),
			strconv.FormatFloat(r.Exposure, 'f', -1, 64),
			r.Tercile,
			r.WageQuartile,
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "dataset: flush %s", path)
}

// WriteDiDResults writes regression results as CSV, one specification per
// row.
func WriteDiDResults(path string, results []model.DiDResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	header := []string{"specification", "coefficient", "std_error", "p_value", "n_obs", "n_majors"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}
	for _, r := range results {
		record := []string{
			r.Specification,
			strconv.FormatFloat(r.Coefficient, 'f', -1, 64),
			strconv.FormatFloat(r.StdError, 'f', -1, 64),
			strconv.FormatFloat(r.PValue, 'f', -1, 64),
			strconv.Itoa(r.NObs),
			strconv.Itoa(r.NMajors),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "dataset: write row")
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "dataset: flush %s", path)
}
