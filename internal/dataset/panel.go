package dataset

import (
	"context"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/ohl-research/exposure-cli/internal/model"
)

// LoadPanel reads a panel CSV previously produced by WritePanel (or an
// equivalent external file) back into panel rows.
func LoadPanel(ctx context.Context, path string) ([]model.PanelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open panel %s", path)
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
		return nil, eris.Errorf("dataset: panel %s is empty", path)
	}

	colIdx := mapColumns(header)
	majorIdx, err := requireColumn(colIdx, "panel", "cip4", "major")
	if err != nil {
		return nil, err
	}
	yearIdx, err := requireColumn(colIdx, "panel", "year")
	if err != nil {
		return nil, err
	}
	enrollIdx, err := requireColumn(colIdx, "panel", "enrollment")
	if err != nil {
		return nil, err
	}
	logIdx, err := requireColumn(colIdx, "panel", "log_enrollment")
	if err != nil {
		return nil, err
	}
	tercileIdx, err := requireColumn(colIdx, "panel", "ai_exposure_tercile", "tercile")
	if err != nil {
		return nil, err
	}
	exposureIdx, hasExposure := findColumn(colIdx, "aioe", "exposure")
	titleIdx, hasTitle := findColumn(colIdx, "title")
	wageIdx, hasWage := findColumn(colIdx, "wage_quartile")

	var rows []model.PanelRow
	for record := range rowCh {
		year, yerr := strconv.Atoi(cell(record, yearIdx))
		enroll, eerr := strconv.ParseFloat(cell(record, enrollIdx), 64)
		logEnroll, lerr := strconv.ParseFloat(cell(record, logIdx), 64)
		if yerr != nil || eerr != nil || lerr != nil {
			continue
		}

		row := model.PanelRow{
			Major:         cell(record, majorIdx),
			Year:          year,
			Enrollment:    enroll,
			LogEnrollment: logEnroll,
			Tercile:       cell(record, tercileIdx),
		}
		if hasExposure {
			if v, perr := strconv.ParseFloat(cell(record, exposureIdx), 64); perr == nil {
				row.Exposure = v
			}
		}
		if hasTitle {
			row.Title = cell(record, titleIdx)
		}
		if hasWage {
			row.WageQuartile = cell(record, wageIdx)
		}
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read panel %s", path)
	}
	return rows, nil
}
