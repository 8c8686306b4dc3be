package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/chart_builder/aggregate"
	"github.com/pivolan/chart_builder/charts"
	"github.com/pivolan/chart_builder/domain/models"
	"github.com/pivolan/chart_builder/session"
)

// FormatCatalog renders the field catalog in catalog order.
func FormatCatalog(fields []models.Field) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Field", "Kind"})
	for i, f := range fields {
		t.AppendRow(table.Row{i + 1, f.Name, f.Kind.String()})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// FormatBinding shows every drop zone with its bound field and the chart type.
func FormatBinding(snap session.Snapshot) string {
	t := table.NewWriter()
	t.SetTitle("Chart: %s", snap.ChartType)
	t.AppendHeader(table.Row{"Zone", "Accepts", "Field"})
	for _, z := range snap.Zones {
		field := "-"
		if z.Field != nil {
			field = *z.Field
		}
		t.AppendRow(table.Row{z.ID, z.Accepts.String(), field})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// FormatSeries prints the points of a descriptor; pie charts get a share column.
func FormatSeries(d charts.Descriptor) string {
	if !d.Renderable {
		return d.Placeholder
	}

	t := table.NewWriter()
	t.SetTitle("%s", d.Title)
	if d.ChartType == models.ChartPie {
		total := aggregate.Total(descriptorSeries(d))
		t.AppendHeader(table.Row{d.XField, d.YField, "Share"})
		for i, c := range d.Categories {
			share := "-"
			if total != 0 {
				share = fmt.Sprintf("%.0f%%", d.Values[i]/total*100)
			}
			t.AppendRow(table.Row{c, formatNumber(d.Values[i]), share})
		}
	} else {
		t.AppendHeader(table.Row{d.XField, d.YField})
		for i, c := range d.Categories {
			t.AppendRow(table.Row{c, formatNumber(d.Values[i])})
		}
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

func descriptorSeries(d charts.Descriptor) models.Series {
	s := models.Series{ChartType: d.ChartType}
	for i, c := range d.Categories {
		s.Slices = append(s.Slices, models.PieSlice{Key: models.Str(c), Total: d.Values[i]})
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
