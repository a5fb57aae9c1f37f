// Package charts renders dashboard distributions as PNG images with gonum/plot.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"crpdash/internal/config"
	"crpdash/pkg/contracts/domain"
)

// NoDataLabel is drawn when a distribution has no categories
const NoDataLabel = "No records match the selection"

var barColor = color.RGBA{R: 68, G: 1, B: 84, A: 255}

// Size is the rendered image size
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// SizeFrom converts the dashboard chart size, given in inches
func SizeFrom(cfg config.DashboardConfig) Size {
	s := Size{Width: vg.Length(cfg.ChartWidth) * vg.Inch, Height: vg.Length(cfg.ChartHeight) * vg.Inch}
	if s.Width <= 0 {
		s.Width = 10 * vg.Inch
	}
	if s.Height <= 0 {
		s.Height = 6 * vg.Inch
	}
	return s
}

// HorizontalBarChart plots a distribution as horizontal bars, the first
// category at the bottom, each bar annotated with its count.
func HorizontalBarChart(table domain.FrequencyTable, xLabel, yLabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = table.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Min = 0

	if len(table.Counts) == 0 {
		empty, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: 0, Y: 0}},
			Labels: []string{NoDataLabel},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create empty label: %w", err)
		}
		p.Add(empty)
		p.HideAxes()
		return p, nil
	}

	values := make(plotter.Values, len(table.Counts))
	labels := make([]string, len(table.Counts))
	points := make([]plotter.XY, len(table.Counts))
	texts := make([]string, len(table.Counts))
	for i, c := range table.Counts {
		values[i] = float64(c.Count)
		labels[i] = c.Category
		points[i] = plotter.XY{X: float64(c.Count), Y: float64(i)}
		texts[i] = strconv.Itoa(c.Count)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(labels...)

	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to create bar labels: %w", err)
	}
	annotations.Offset = vg.Point{X: vg.Points(4)}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(annotations)

	// headroom for the count labels
	p.X.Max = float64(table.Max()) * 1.15

	return p, nil
}

// DisabilityBarChart plots the disability distribution
func DisabilityBarChart(table domain.FrequencyTable) (*plot.Plot, error) {
	return HorizontalBarChart(table, "Count", "Disability Type")
}

// WritePNG renders p as a PNG into w
func WritePNG(w io.Writer, p *plot.Plot, size Size) error {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// RenderDisabilityPNG plots the disability distribution straight to w
func RenderDisabilityPNG(w io.Writer, table domain.FrequencyTable, size Size) error {
	p, err := DisabilityBarChart(table)
	if err != nil {
		return err
	}
	return WritePNG(w, p, size)
}
