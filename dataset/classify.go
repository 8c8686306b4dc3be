package dataset

import (
	"github.com/pivolan/chart_builder/domain/models"
)

// Classify builds the field catalog from the first record only: a numeric
// value makes a measure, anything else a dimension. Kinds are frozen for the
// lifetime of the dataset, so a column that is numeric in row 1 and text in
// row 50 stays a measure.
func Classify(records []models.Record) ([]models.Field, error) {
	if len(records) == 0 {
		return nil, models.ErrEmptyDataset
	}

	first := records[0]
	names := first.Names()
	fields := make([]models.Field, 0, len(names))
	for _, name := range names {
		v, _ := first.Get(name)
		kind := models.KindDimension
		if v.IsNumber {
			kind = models.KindMeasure
		}
		fields = append(fields, models.Field{Name: name, Kind: kind})
	}
	return fields, nil
}

// Split divides the catalog into dimensions and measures, keeping catalog order.
func Split(fields []models.Field) (dimensions, measures []models.Field) {
	for _, f := range fields {
		if f.Kind == models.KindMeasure {
			measures = append(measures, f)
		} else {
			dimensions = append(dimensions, f)
		}
	}
	return
}
