package aggregate

import (
	"fmt"

	"github.com/pivolan/chart_builder/domain/models"
)

// Aggregate prepares the series chartType needs. Bar and line charts get the
// records unchanged, one point per row. Pie charts get a group-by-sum of the
// measure keyed by the dimension value, in first-occurrence order.
func Aggregate(records []models.Record, binding models.Binding, chartType models.ChartType) (models.Series, error) {
	for _, c := range chartType.RequiredChannels() {
		if !binding.IsBound(c) {
			return models.Series{}, fmt.Errorf("%w: %s needs %s", models.ErrInsufficientBinding, chartType, c.ID())
		}
	}

	switch chartType {
	case models.ChartPie:
		dim, _ := binding.Field(models.ChannelDimension)
		measure, _ := binding.Field(models.ChannelMeasure)
		slices, err := groupSum(records, dim, measure)
		if err != nil {
			return models.Series{}, err
		}
		return models.Series{ChartType: chartType, Slices: slices}, nil
	default:
		return models.Series{ChartType: chartType, Rows: records}, nil
	}
}

// groupSum keeps keys in the order they first appear. A missing dimension
// groups under the empty string; a non-numeric or missing measure aborts.
func groupSum(records []models.Record, dim, measure string) ([]models.PieSlice, error) {
	index := make(map[string]int)
	var slices []models.PieSlice

	for i, rec := range records {
		m, ok := rec.Get(measure)
		if !ok || !m.IsNumber {
			return nil, fmt.Errorf("%w: row %d, field %s", models.ErrNonNumericMeasure, i, measure)
		}

		key, _ := rec.Get(dim)
		// 1 and "1" are different keys
		k := fmt.Sprintf("%t:%s", key.IsNumber, key.String())
		pos, seen := index[k]
		if !seen {
			pos = len(slices)
			index[k] = pos
			slices = append(slices, models.PieSlice{Key: key})
		}
		slices[pos].Total += m.Number
	}
	return slices, nil
}

// Total sums the slice totals of a pie series.
func Total(series models.Series) float64 {
	var sum float64
	for _, s := range series.Slices {
		sum += s.Total
	}
	return sum
}
