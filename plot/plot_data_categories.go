package plot

import (
	"fmt"
	"math"

	"github.com/pivolan/chart_builder/charts"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dataCategoriesForGraph is one value per category label, in descriptor order.
type dataCategoriesForGraph struct {
	labels    []string
	yValues   []float64
	nameYAxis string
	nameXAxis string
	nameGraph string
}

func newDataCategoriesForGraph(d charts.Descriptor) dataCategoriesForGraph {
	return dataCategoriesForGraph{
		labels:    d.Categories,
		yValues:   d.Values,
		nameYAxis: d.YField,
		nameXAxis: d.XField,
		nameGraph: d.Title,
	}
}

func (d dataCategoriesForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataCategoriesForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataCategoriesForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataCategoriesForGraph) lenXValues() int {
	return len(d.labels)
}

func (d dataCategoriesForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	// Проверка входных параметров
	if len(d.yValues) == 0 || d.lenXValues() <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if d.lenXValues() < 2 {
		x = 10.0
	} else if d.lenXValues() < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100        // отступ для оси Y и подписей
		spacingRatio = 0.2        // соотношение отступа между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон по умолчанию
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(d.lenXValues()) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d dataCategoriesForGraph) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: label,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(palette[0]),
				StrokeColor: drawing.ColorFromHex(palette[0]),
			},
		})
	}
	return bars
}

// yRange returns a range that always contains zero and is never empty.
func (d dataCategoriesForGraph) yRange() (float64, float64) {
	lo, hi := 0.0, findMaxValue(d.yValues)
	for _, v := range d.yValues {
		lo = math.Min(lo, v)
	}
	if hi < 0 {
		hi = 0
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func (d dataCategoriesForGraph) generateGrid() (ticks []chart.Tick, lo, hi float64) {
	lo, hi = d.yRange()
	gridStep := calculateGridStep(hi - lo)
	if gridStep <= 0 {
		return nil, lo, hi
	}
	lo = math.Floor(lo/gridStep) * gridStep
	hi = math.Ceil(hi/gridStep) * gridStep
	for i := lo; i <= hi+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: formatTick(i, gridStep),
		})
	}
	return ticks, lo, hi
}

func formatTick(v, step float64) string {
	if step >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
