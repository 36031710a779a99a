package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/model"
	"github.com/ohl-research/exposure-cli/internal/soccode"
)

// Column name candidates for the reference table. The Felten appendix
// ships as XLSX with spelled-out headers; cleaned extracts use short ones.
var (
	refCodeColumns  = []string{"soc_clean", "soc code", "soc", "occ_code"}
	refScoreColumns = []string{"language modeling aioe", "aioe", "score", "exposure"}
)

// LoadReference reads the reference exposure table from a CSV or XLSX
// file (chosen by extension). Codes are normalized on load; duplicate
// codes are kept in the returned slice so the matcher's prefix scan sees
// them all.
func LoadReference(ctx context.Context, path string) ([]model.ReferenceEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadReferenceXLSX(path)
	default:
		return loadReferenceCSV(ctx, path)
	}
}

func loadReferenceCSV(ctx context.Context, path string) ([]model.ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open reference %s", path)
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
		return nil, eris.Errorf("dataset: reference %s is empty", path)
	}

	colIdx := mapColumns(header)
	codeIdx, err := requireColumn(colIdx, "reference", refCodeColumns...)
	if err != nil {
		return nil, err
	}
	scoreIdx, err := requireColumn(colIdx, "reference", refScoreColumns...)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("dataset", "reference"))
	var entries []model.ReferenceEntry
	skipped := 0

	for record := range rowCh {
		code := soccode.Normalize(cell(record, codeIdx))
		if code == "" {
			continue
		}
		score, parseErr := strconv.ParseFloat(cell(record, scoreIdx), 64)
		if parseErr != nil {
			skipped++
			log.Debug("skipping reference row with unparseable score",
				zap.String("code", code), zap.String("raw", cell(record, scoreIdx)))
			continue
		}
		entries = append(entries, model.ReferenceEntry{Code: code, Score: score})
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dataset: read reference %s", path)
	}

	if skipped > 0 {
		log.Warn("reference rows skipped", zap.Int("skipped", skipped))
	}
	log.Info("reference table loaded", zap.Int("entries", len(entries)))
	return entries, nil
}

func loadReferenceXLSX(path string) ([]model.ReferenceEntry, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse reference xlsx %s", path)
	}
	if len(xlFile.Sheets) == 0 {
		return nil, eris.Errorf("dataset: reference xlsx %s has no sheets", path)
	}
	sheet := xlFile.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("dataset: reference xlsx %s is empty", path)
	}

	headerRow := sheet.Rows[0]
	header := make([]string, len(headerRow.Cells))
	for i, c := range headerRow.Cells {
		header[i] = strings.TrimSpace(c.String())
	}
	colIdx := mapColumns(header)

	codeIdx, err := requireColumn(colIdx, "reference", refCodeColumns...)
	if err != nil {
		return nil, err
	}
	scoreIdx, err := requireColumn(colIdx, "reference", refScoreColumns...)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("dataset", "reference"))
	var entries []model.ReferenceEntry
	skipped := 0

	for rowIdx := 1; rowIdx < len(sheet.Rows); rowIdx++ {
		row := sheet.Rows[rowIdx]
		record := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			record[i] = strings.TrimSpace(c.String())
		}

		code := soccode.Normalize(cell(record, codeIdx))
		if code == "" {
			continue
		}
		score, parseErr := strconv.ParseFloat(cell(record, scoreIdx), 64)
		if parseErr != nil {
			skipped++
			continue
		}
		entries = append(entries, model.ReferenceEntry{Code: code, Score: score})
	}

	if skipped > 0 {
		log.Warn("reference rows skipped", zap.Int("skipped", skipped))
	}
	log.Info("reference table loaded", zap.Int("entries", len(entries)))
	return entries, nil
}
