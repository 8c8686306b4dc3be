package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/chart_builder/domain/models"
)

const SEPARATOR = ','

// ReadCSV reads a delimited text dataset. The separator is guessed from the
// first line (comma or semicolon); the header row is detected by AnalyzeHeaders.
func ReadCSV(r io.Reader) ([]models.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectSeparator(data)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing csv: %w", err)
	}
	return rowsToRecords(rows), nil
}

func detectSeparator(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{SEPARATOR}) {
		return ';'
	}
	return SEPARATOR
}

// rowsToRecords turns a header row plus data rows into records. Short rows
// keep only the cells they have; empty rows are skipped.
func rowsToRecords(rows [][]string) []models.Record {
	if len(rows) == 0 {
		return nil
	}
	analysis := AnalyzeHeaders(rows[0])
	if analysis == nil {
		return nil
	}

	dataRows := rows[1:]
	if analysis.FirstRowIsData {
		dataRows = rows
	}

	records := make([]models.Record, 0, len(dataRows))
	for _, row := range dataRows {
		if isEmptyRow(row) {
			continue
		}
		rec := make(models.Record, 0, len(analysis.Headers))
		for i, header := range analysis.Headers {
			if i >= len(row) {
				break
			}
			rec = append(rec, models.Cell{Name: header, Value: ParseValue(row[i])})
		}
		records = append(records, rec)
	}
	return records
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseValue returns a number when the trimmed text parses as a float and the
// original text otherwise. "NaN" and "Inf" stay text.
func ParseValue(s string) models.Value {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.Num(f)
	}
	return models.Str(s)
}
