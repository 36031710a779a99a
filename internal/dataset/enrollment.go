package dataset

import (
	"context"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// EnrollmentRow is one major-year enrollment count.
type EnrollmentRow struct {
	Major      string
	Year       int
	Enrollment float64
}

// LoadEnrollment reads the major-by-year enrollment panel CSV. Required
// columns: a major code (cip4 or major), year, and enrollment.
func LoadEnrollment(ctx context.Context, path string) ([]EnrollmentRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open enrollment %s", path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{HasHeader: true, HeaderCh: headerCh, TrimSpace: true})

	var header []string
	select {
	case header = <-headerCh:
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
		return nil, eris.Errorf("dataset: enrollment %s is empty", path)
	}

	colIdx := mapColumns(header)
	majorIdx, err := requireColumn(colIdx, "enrollment", "cip4", "major", "degfieldd")
	if err != nil {
		return nil, err
	}
	yearIdx, err := requireColumn(colIdx, "enrollment", "year")
	if err != nil {
		return nil, err
	}
	enrollIdx, err := requireColumn(colIdx, "enrollment", "enrollment")
	if err != nil {
		return nil, err
	}

	var rows []EnrollmentRow
	skipped := 0
	for record := range rowCh {
		major := cell(record, majorIdx)
		if major == "" {
			continue
		}
		year, yerr := strconv.Atoi(cell(record, yearIdx))
		enroll, eerr := strconv.ParseFloat(cell(record, enrollIdx), 64)
		if yerr != nil || eerr != nil {
			skipped++
			continue
		}
		rows = append(rows, EnrollmentRow{Major: major, Year: year, Enrollment: enroll})
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read enrollment %s", path)
	}

	if skipped > 0 {
		zap.L().Warn("enrollment rows skipped", zap.Int("skipped", skipped))
	}
	return rows, nil
}

// LoadWages reads the per-major mean wage CSV used for the
// wage-controlled DiD specification. Required columns: major code and a
// wage column. Returns major -> mean wage.
func LoadWages(ctx context.Context, path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open wages %s", path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{HasHeader: true, HeaderCh: headerCh, TrimSpace: true})

	var header []string
	select {
	case header = <-headerCh:
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
		return nil, eris.Errorf("dataset: wages %s is empty", path)
	}

	colIdx := mapColumns(header)
	majorIdx, err := requireColumn(colIdx, "wages", "cip4", "major", "degfieldd")
	if err != nil {
		return nil, err
	}
	wageIdx, err := requireColumn(colIdx, "wages", "mean_wage", "wage", "incwage")
	if err != nil {
		return nil, err
	}

	wages := make(map[string]float64)
	for record := range rowCh {
		major := cell(record, majorIdx)
		if major == "" {
			continue
		}
		wage, perr := strconv.ParseFloat(cell(record, wageIdx), 64)
		if perr != nil {
			continue
		}
		wages[major] = wage
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read wages %s", path)
	}
	return wages, nil
}
