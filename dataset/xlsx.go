package dataset

import (
	"fmt"
	"io"

	"github.com/pivolan/chart_builder/domain/models"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one sheet of a workbook; an empty sheet name selects the
// first sheet. The first non-empty row goes through the same header detection
// as CSV files.
func ReadXLSX(r io.Reader, sheet string) ([]models.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheet, err)
	}

	// leading blank rows are common in exported reports
	for len(rows) > 0 && isEmptyRow(rows[0]) {
		rows = rows[1:]
	}
	return rowsToRecords(rows), nil
}
