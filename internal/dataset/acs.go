package dataset

import (
	"context"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/model"
)

// ACSOptions configures ACS extract loading.
type ACSOptions struct {
	// MinAge/MaxAge bound the age filter. Both zero disables it.
	MinAge int
	MaxAge int
	// Titles maps degree-field codes to human titles for diagnostics
	// output. Optional.
	Titles map[string]string
}

// ACSResult is the loaded observation table plus per-filter survival
// counts for debugging thin samples.
type ACSResult struct {
	Observations []model.Observation
	Diagnostics  model.FilterDiagnostics
}

// LoadACS reads an IPUMS ACS extract CSV into observations. Required
// columns: OCCSOC (occupation code), DEGFIELDD (detailed degree field)
// and PERWT (person weight); AGE and YEAR are used when present. Rows
// with a missing occupation code, or a missing or zero degree field, are
// filtered out, as are rows outside the age band.
func LoadACS(ctx context.Context, path string, opts ACSOptions) (*ACSResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open acs %s", path)
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
		return nil, eris.Errorf("dataset: acs %s is empty", path)
	}

	colIdx := mapColumns(header)
	occIdx, err := requireColumn(colIdx, "acs", "occsoc")
	if err != nil {
		return nil, err
	}
	degIdx, err := requireColumn(colIdx, "acs", "degfieldd")
	if err != nil {
		return nil, err
	}
	wtIdx, err := requireColumn(colIdx, "acs", "perwt")
	if err != nil {
		return nil, err
	}
	ageIdx, hasAge := findColumn(colIdx, "age")
	yearIdx, hasYear := findColumn(colIdx, "year")

	log := zap.L().With(zap.String("dataset", "acs"))
	res := &ACSResult{}
	diag := &res.Diagnostics
	diag.YearCounts = make(map[int]int)

	for record := range rowCh {
		diag.TotalRows++

		ageOK := true
		if hasAge && (opts.MinAge != 0 || opts.MaxAge != 0) {
			age, parseErr := strconv.Atoi(cell(record, ageIdx))
			if parseErr != nil {
				diag.SkippedCells++
				continue
			}
			ageOK = age >= opts.MinAge && age <= opts.MaxAge
		}
		if ageOK {
			diag.AgeInBand++
		}

		occ := cell(record, occIdx)
		if occ != "" {
			diag.HasOccCode++
		}

		deg := cell(record, degIdx)
		if deg != "" {
			diag.HasMajor++
		}
		degNonZero := deg != "" && deg != "0"
		if degNonZero {
			diag.MajorNonZero++
		}

		if !ageOK || occ == "" || !degNonZero {
			continue
		}

		weight, parseErr := strconv.ParseFloat(cell(record, wtIdx), 64)
		if parseErr != nil || weight < 0 {
			diag.SkippedCells++
			continue
		}

		diag.AllFilters++
		if hasYear {
			if year, yerr := strconv.Atoi(cell(record, yearIdx)); yerr == nil {
				diag.YearCounts[year]++
			}
		}

		res.Observations = append(res.Observations, model.Observation{
			RawCode:    occ,
			Major:      deg,
			MajorTitle: opts.Titles[deg],
			Weight:     weight,
		})
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read acs %s", path)
	}

	log.Info("acs extract loaded",
		zap.Int("total_rows", diag.TotalRows),
		zap.Int("kept", diag.AllFilters),
		zap.Int("skipped_cells", diag.SkippedCells),
	)
	return res, nil
}
