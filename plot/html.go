package plot

import (
	"fmt"
	"io"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/chart_builder/charts"
	"github.com/pivolan/chart_builder/domain/models"
)

type htmlChart interface {
	Render(w io.Writer) error
}

// RenderHTML writes an interactive echarts page for a renderable descriptor.
func RenderHTML(w io.Writer, d charts.Descriptor, size Size) error {
	if !d.Renderable {
		return fmt.Errorf("%w: %s", models.ErrInsufficientBinding, d.Placeholder)
	}

	global := []echarts.GlobalOpts{
		echarts.WithTitleOpts(opts.Title{Title: d.Title}),
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: d.Title,
			Width:     fmt.Sprintf("%dpx", size.Width),
			Height:    fmt.Sprintf("%dpx", size.Height),
		}),
	}

	var c htmlChart
	switch d.ChartType {
	case models.ChartPie:
		pie := echarts.NewPie()
		pie.SetGlobalOptions(global...)
		items := make([]opts.PieData, 0, len(d.Values))
		for i, v := range d.Values {
			items = append(items, opts.PieData{
				Name:      d.Categories[i],
				Value:     v,
				ItemStyle: &opts.ItemStyle{Color: "#" + paletteColor(i)},
			})
		}
		pie.AddSeries(d.YField, items)
		c = pie
	case models.ChartLine:
		line := echarts.NewLine()
		line.SetGlobalOptions(global...)
		items := make([]opts.LineData, 0, len(d.Values))
		for _, v := range d.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.SetXAxis(d.Categories).AddSeries(d.YField, items)
		c = line
	default:
		bar := echarts.NewBar()
		bar.SetGlobalOptions(global...)
		items := make([]opts.BarData, 0, len(d.Values))
		for _, v := range d.Values {
			items = append(items, opts.BarData{Value: v})
		}
		bar.SetXAxis(d.Categories).AddSeries(d.YField, items)
		c = bar
	}

	if err := c.Render(w); err != nil {
		return fmt.Errorf("error rendering chart: %w", err)
	}
	return nil
}
