package pkg

import (
	"errors"
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveChart draws the test accuracy of the three kernel types per dataset as
// grouped bars.
func SaveChart(r *Results, fileName string) error {
	if len(r.Datasets) == 0 {
		return errors.New("no dataset results to plot")
	}
	p := plot.New()
	p.Title.Text = "Test accuracy per dataset"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	series := []struct {
		name  string
		score func(d *DatasetResult) float64
	}{
		{"classical", func(d *DatasetResult) float64 { return d.Classical.Metrics.Accuracy }},
		{"quantum", func(d *DatasetResult) float64 { return d.Quantum.Metrics.Accuracy }},
		{"dual", func(d *DatasetResult) float64 { return d.Dual.Metrics.Accuracy }},
	}
	width := vg.Points(12)
	names := make([]string, len(r.Datasets))
	for i, d := range r.Datasets {
		names[i] = filepath.Base(d.Dataset)
	}

	for i, s := range series {
		values := make(plotter.Values, len(r.Datasets))
		for j, d := range r.Datasets {
			values[j] = s.score(d)
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("error building %s bars: %w", s.name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(i-1) * width
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(vg.Length(2+len(r.Datasets))*vg.Inch, 4*vg.Inch, fileName); err != nil {
		return fmt.Errorf("error saving chart to %s: %w", fileName, err)
	}
	return nil
}
