package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pivolan/chart_builder/config"
	"github.com/pivolan/chart_builder/dataset"
	"github.com/pivolan/chart_builder/domain/models"
	"github.com/pivolan/chart_builder/plot"
	"github.com/pivolan/chart_builder/session"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	chartType string
	xAxis     string
	yAxis     string
	dimension string
	measure   string
	output    string
	width     int
	height    int
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a chart of a dataset file to PNG or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if opts.width <= 0 {
				opts.width = cfg.ChartWidth
			}
			if opts.height <= 0 {
				opts.height = cfg.ChartHeight
			}
			return runRender(args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.chartType, "chart", "bar", "Chart type: bar, line or pie")
	cmd.Flags().StringVar(&opts.xAxis, "x", "", "Dimension field for the X axis")
	cmd.Flags().StringVar(&opts.yAxis, "y", "", "Measure field for the Y axis")
	cmd.Flags().StringVar(&opts.dimension, "dimension", "", "Dimension field for pie slices")
	cmd.Flags().StringVar(&opts.measure, "measure", "", "Measure field summed per slice")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "chart.png", "Output file, .html for an interactive chart")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Chart width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Chart height in pixels")
	return cmd
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields [dataset]",
		Short: "Print the fields of a dataset with their kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(args[0], cmd.OutOrStdout())
		},
	}
}

func loadSession(path string) (*session.Session, error) {
	records, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	s := session.New(filepath.Base(path))
	if err := s.Load(records); err != nil {
		return nil, err
	}
	return s, nil
}

func runFields(path string, out io.Writer) error {
	s, err := loadSession(path)
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	fmt.Fprintln(out, FormatCatalog(snap.Fields))
	fmt.Fprintln(out, FormatBinding(snap))
	return nil
}

// runRender starts from the default binding and applies only the flags given.
func runRender(path string, opts renderOptions, out io.Writer) error {
	s, err := loadSession(path)
	if err != nil {
		return err
	}
	if _, err := s.SetChartType(opts.chartType); err != nil {
		return err
	}

	binds := []struct {
		channel models.Channel
		field   string
	}{
		{models.ChannelXAxis, opts.xAxis},
		{models.ChannelYAxis, opts.yAxis},
		{models.ChannelDimension, opts.dimension},
		{models.ChannelMeasure, opts.measure},
	}
	for _, bind := range binds {
		if bind.field == "" {
			continue
		}
		if _, err := s.Bind(bind.channel.ID(), bind.field); err != nil {
			return fmt.Errorf("--%s: %w", flagName(bind.channel), err)
		}
	}

	snap := s.Snapshot()
	if snap.Error != "" {
		return errors.New(snap.Error)
	}
	if !snap.Descriptor.Renderable {
		return fmt.Errorf("%w: %s", models.ErrInsufficientBinding, snap.Descriptor.Placeholder)
	}

	size := plot.Size{Width: opts.width, Height: opts.height}
	var data []byte
	if strings.EqualFold(filepath.Ext(opts.output), ".html") {
		var buf bytes.Buffer
		if err := plot.RenderHTML(&buf, snap.Descriptor, size); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		data, err = plot.RenderPNG(snap.Descriptor, size)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", opts.output, err)
	}
	fmt.Fprintln(out, FormatSeries(snap.Descriptor))
	fmt.Fprintf(out, "written %s\n", opts.output)
	return nil
}

func flagName(c models.Channel) string {
	switch c {
	case models.ChannelXAxis:
		return "x"
	case models.ChannelYAxis:
		return "y"
	}
	return c.ID()
}
