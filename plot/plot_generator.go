package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pivolan/chart_builder/charts"
	"github.com/pivolan/chart_builder/domain/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToDraw is returned for descriptors with no points, or a pie
// chart without a single positive slice.
var ErrNothingToDraw = errors.New("nothing to draw")

// Size is the minimum canvas size; wide bar and line charts grow beyond it up
// to maxCanvasWidth x maxCanvasHeight.
type Size struct {
	Width  int
	Height int
}

const (
	maxCanvasWidth  = 4096
	maxCanvasHeight = 2304
	// minLabelSpacing is the narrowest slot an X label gets before labels are thinned.
	minLabelSpacing = 24
	maxLabelPadding = 200
)

// RenderPNG draws a renderable descriptor with go-chart.
func RenderPNG(d charts.Descriptor, size Size) ([]byte, error) {
	if !d.Renderable {
		return nil, fmt.Errorf("%w: %s", models.ErrInsufficientBinding, d.Placeholder)
	}
	if len(d.Values) == 0 {
		return nil, ErrNothingToDraw
	}

	data := newDataCategoriesForGraph(d)
	switch d.ChartType {
	case models.ChartPie:
		return drawPlotPie(data, size)
	case models.ChartLine:
		return drawPlotLine(data, size)
	default:
		return DrawPlotBar(data, size)
	}
}

// fitSize grows the canvas with the number of categories, but never past the
// max canvas (or the requested size, when that is larger).
func fitSize(data dataForGraph, size Size, barWidth float64) (int, int) {
	width, height := data.calculateChartDimensions(barWidth)
	width = clampInt(width, size.Width, maxInt(size.Width, maxCanvasWidth))
	height = clampInt(height, size.Height, maxInt(size.Height, maxCanvasHeight))
	return width, height
}

// barLayout shrinks bars and gaps so n bars fit into width. Bars are never
// wider than maxBar and never narrower than one pixel.
func barLayout(n, width, maxBar int) (barWidth, spacing int) {
	if n <= 0 {
		return maxBar, maxBar / 5
	}
	slot := float64(width-200) / float64(n)
	barWidth = int(slot / 1.2)
	barWidth = clampInt(barWidth, 1, maxBar)
	spacing = int(slot) - barWidth
	if spacing < 0 {
		spacing = 0
	}
	if barWidth == maxBar && spacing > maxBar {
		spacing = maxBar
	}
	return barWidth, spacing
}

// labelStep returns k such that only every k-th X label is drawn.
func labelStep(n, width int) int {
	maxLabels := width / minLabelSpacing
	if maxLabels < 1 {
		maxLabels = 1
	}
	if n <= maxLabels {
		return 1
	}
	return (n + maxLabels - 1) / maxLabels
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func yAxis(name string, ticks []chart.Tick, lo, hi float64) chart.YAxis {
	return chart.YAxis{
		Name: name,
		Range: &chart.ContinuousRange{
			Min: lo,
			Max: hi,
		},
		Style: chart.Style{
			StrokeWidth: 2, // Толщина линии
			StrokeColor: chart.ColorBlack,
			FontSize:    12,
		},
		Ticks: ticks,
		GridMajorStyle: chart.Style{
			StrokeColor:     drawing.ColorFromHex("e0e0e0"),
			StrokeWidth:     1,
			StrokeDashArray: []float64{3.0, 3.0}, // Пунктирная линия
		},
	}
}

func DrawPlotBar(data dataForGraph, size Size) ([]byte, error) {
	barValues := data.generateBarValues()
	width, height := fitSize(data, size, 60)
	step := labelStep(len(barValues), width)
	for i := range barValues {
		if i%step != 0 {
			barValues[i].Label = ""
		}
	}
	paddingX := customizePaddingXBottom(barValues)
	barWidth, spacing := barLayout(len(barValues), width, 60)
	ticks, lo, hi := data.generateGrid()

	bar := chart.BarChart{
		Title: data.GetNameGraph(),
		Background: chart.Style{
			StrokeColor: chart.ColorBlack,
			Padding: chart.Box{
				Bottom: paddingX,
				Top:    50,
			},
		},
		Height:     height,
		Width:      width + paddingX,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       barValues,
		YAxis:    yAxis(data.getNameYAxis(), ticks, lo, hi),
		XAxis: chart.Style{
			StrokeWidth:         2,
			StrokeColor:         chart.ColorBlack,
			TextRotationDegrees: 45,
			FontSize:            12,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	// Отрисовываем график в формате PNG
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func drawPlotLine(data dataCategoriesForGraph, size Size) ([]byte, error) {
	n := data.lenXValues()
	width, height := fitSize(data, size, 40)
	step := labelStep(n, width)
	xValues := make([]float64, n)
	// крайние пустые метки задают диапазон оси X, даже для одной точки
	xTicks := []chart.Tick{{Value: -0.5}}
	labelValues := make([]chart.Value, 0, n/step+1)
	for i, label := range data.labels {
		xValues[i] = float64(i)
		if i%step == 0 {
			xTicks = append(xTicks, chart.Tick{Value: float64(i), Label: label})
			labelValues = append(labelValues, chart.Value{Label: label})
		}
	}
	xTicks = append(xTicks, chart.Tick{Value: float64(n) - 0.5})
	paddingX := customizePaddingXBottom(labelValues)
	ticks, lo, hi := data.generateGrid()
	color := drawing.ColorFromHex(palette[0])

	graph := chart.Chart{
		Title: data.GetNameGraph(),
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: paddingX,
			},
			FillColor: drawing.ColorWhite,
		},
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  data.nameXAxis,
			Ticks: xTicks,
			Style: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: yAxis(data.getNameYAxis(), ticks, lo, hi),
		Series: []chart.Series{
			&chart.ContinuousSeries{
				Name:    data.getNameYAxis(),
				XValues: xValues,
				YValues: data.getYValues(),
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    4,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// drawPlotPie labels every slice with its share, rounded to whole percent.
// Slices that are not positive cannot be drawn and are skipped.
func drawPlotPie(data dataCategoriesForGraph, size Size) ([]byte, error) {
	var total float64
	for _, v := range data.yValues {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return nil, ErrNothingToDraw
	}

	values := make([]chart.Value, 0, len(data.labels))
	for i, label := range data.labels {
		v := data.yValues[i]
		if v <= 0 {
			continue
		}
		color := drawing.ColorFromHex(paletteColor(i))
		values = append(values, chart.Value{
			Value: v,
			Label: pieLabel(label, v/total),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	pie := chart.PieChart{
		Title:  data.GetNameGraph(),
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		Values: values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func pieLabel(name string, share float64) string {
	return fmt.Sprintf("%s: %.0f%%", name, share*100)
}

func calculateGridStep(maxValue float64) float64 {
	// Проверка на корректность входного значения
	if maxValue <= 0 {
		return 0
	}
	// Обработка очень маленьких чисел
	if maxValue < 1e-10 {
		return 1e-10
	}

	// Находим порядок величины максимального значения
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	// Нормализуем значение к диапазону [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}
	finalStep := step * magnitude

	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return minInt(count*8+40, maxLabelPadding)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
