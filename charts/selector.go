package charts

import (
	"fmt"

	"github.com/pivolan/chart_builder/aggregate"
	"github.com/pivolan/chart_builder/domain/models"
)

const (
	placeholderAxes   = "Please select X and Y axis"
	placeholderSlices = "Please select dimension and measure"
)

type Description struct {
	RequiredChannels []models.Channel `json:"requiredChannels"`
}

// Descriptor is everything a renderer needs to draw one chart. When
// Renderable is false only ChartType and Placeholder are meaningful.
type Descriptor struct {
	ChartType   models.ChartType `json:"chartType"`
	Title       string           `json:"title,omitempty"`
	XField      string           `json:"xField,omitempty"`
	YField      string           `json:"yField,omitempty"`
	Renderable  bool             `json:"renderable"`
	Placeholder string           `json:"placeholder,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Values      []float64        `json:"values,omitempty"`
}

// IsRenderable reports whether every channel chartType needs is bound. An
// unknown chart type is never renderable.
func IsRenderable(binding models.Binding, chartType models.ChartType) bool {
	if !chartType.Valid() {
		return false
	}
	for _, c := range chartType.RequiredChannels() {
		if !binding.IsBound(c) {
			return false
		}
	}
	return true
}

func Describe(chartType models.ChartType) Description {
	return Description{RequiredChannels: chartType.RequiredChannels()}
}

// Placeholder is the neutral message shown instead of a chart that cannot render.
func Placeholder(chartType models.ChartType) string {
	if chartType == models.ChartPie {
		return placeholderSlices
	}
	return placeholderAxes
}

// fieldsFor returns the category and value fields chartType reads.
func fieldsFor(binding models.Binding, chartType models.ChartType) (string, string) {
	if chartType == models.ChartPie {
		d, _ := binding.Field(models.ChannelDimension)
		m, _ := binding.Field(models.ChannelMeasure)
		return d, m
	}
	x, _ := binding.Field(models.ChannelXAxis)
	y, _ := binding.Field(models.ChannelYAxis)
	return x, y
}

func placeholderDescriptor(chartType models.ChartType) Descriptor {
	return Descriptor{ChartType: chartType, Placeholder: Placeholder(chartType)}
}

// Select turns an aggregated series into a descriptor. It does not aggregate:
// series must come from aggregate.Aggregate for the same binding and type.
func Select(chartType models.ChartType, binding models.Binding, series models.Series) (Descriptor, error) {
	if !IsRenderable(binding, chartType) {
		return placeholderDescriptor(chartType), nil
	}

	xField, yField := fieldsFor(binding, chartType)
	d := Descriptor{
		ChartType:  chartType,
		Title:      fmt.Sprintf("%s by %s", yField, xField),
		XField:     xField,
		YField:     yField,
		Renderable: true,
	}

	if chartType == models.ChartPie {
		d.Categories = make([]string, 0, len(series.Slices))
		d.Values = make([]float64, 0, len(series.Slices))
		for _, s := range series.Slices {
			d.Categories = append(d.Categories, s.Key.String())
			d.Values = append(d.Values, s.Total)
		}
		return d, nil
	}

	categories, values, err := Points(series.Rows, binding)
	if err != nil {
		return Descriptor{}, err
	}
	d.Categories = categories
	d.Values = values
	return d, nil
}

// Points reads the X label and Y number of every row. A row without a numeric
// Y value fails with ErrNonNumericMeasure.
func Points(records []models.Record, binding models.Binding) ([]string, []float64, error) {
	xField, okX := binding.Field(models.ChannelXAxis)
	yField, okY := binding.Field(models.ChannelYAxis)
	if !okX || !okY {
		return nil, nil, fmt.Errorf("%w: x and y axis must be bound", models.ErrInsufficientBinding)
	}

	labels := make([]string, 0, len(records))
	values := make([]float64, 0, len(records))
	for i, rec := range records {
		x, _ := rec.Get(xField)
		y, ok := rec.Get(yField)
		if !ok || !y.IsNumber {
			return nil, nil, fmt.Errorf("%w: row %d, field %s", models.ErrNonNumericMeasure, i, yField)
		}
		labels = append(labels, x.String())
		values = append(values, y.Number)
	}
	return labels, values, nil
}

// Build gates on IsRenderable before aggregating, so an incomplete binding
// yields the placeholder and never reaches the aggregation engine.
func Build(records []models.Record, binding models.Binding, chartType models.ChartType) (Descriptor, error) {
	if !IsRenderable(binding, chartType) {
		return placeholderDescriptor(chartType), nil
	}

	series, err := aggregate.Aggregate(records, binding, chartType)
	if err != nil {
		return Descriptor{}, err
	}
	return Select(chartType, binding, series)
}
