package dataset

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/pivolan/chart_builder/domain/models"
)

// Load reads a dataset file, unpacking zip, gzip and lz4 archives first. The
// parser is chosen by the (inner) file extension: .json, .xlsx, anything else
// is read as delimited text.
func Load(filePath string) ([]models.Record, error) {
	rc, name, err := openDataset(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset: %w", err)
	}
	defer rc.Close()

	var records []models.Record
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		records, err = ReadJSON(rc)
	case ".xlsx":
		records, err = ReadXLSX(rc, "")
	default:
		records, err = ReadCSV(rc)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("loaded %d records from %s", len(records), name)
	return records, nil
}
