package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure file names, without extension.
const (
	FigureVariance = "pca_variance"
	FigureScatter  = "anomaly_scatter"
	FigureScores   = "anomaly_scores"
)

var (
	normalColor  = color.NRGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0x99}
	anomalyColor = color.NRGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xcc}
	dashes       = []vg.Length{vg.Points(5), vg.Points(4)}
)

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// PlotVariance draws the cumulative explained variance per component count
// with a dashed reference line at threshold.
func PlotVariance(path string, cumulative []float64, threshold float64) error {
	p := plot.New()
	p.Title.Text = "PCA - Cumulative Explained Variance"
	p.X.Label.Text = "Number of Principal Components"
	p.Y.Label.Text = "Cumulative Explained Variance"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(cumulative))
	for i, v := range cumulative {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	if err := plotutil.AddLinePoints(p, "Cumulative variance", pts); err != nil {
		return err
	}

	ref := plotter.NewFunction(func(float64) float64 { return threshold })
	ref.XMin = 1
	ref.XMax = float64(max(len(cumulative), 2))
	ref.Color = color.RGBA{R: 255, A: 255}
	ref.Dashes = dashes
	p.Add(ref)
	p.Legend.Add(fmt.Sprintf("%.0f%% threshold", threshold*100), ref)
	p.Legend.Top = false
	p.Legend.Left = false

	return save(p, 8*vg.Inch, 4*vg.Inch, path)
}

// PlotScatter draws the two-dimensional projection coloured by anomaly flag.
// ratio holds the explained variance ratio of the two plotted axes.
func PlotScatter(path string, xy [][]float64, anomalies []bool, ratio [2]float64) error {
	if len(xy) != len(anomalies) {
		return fmt.Errorf("scatter: %d points, %d flags", len(xy), len(anomalies))
	}
	var normal, anomalous plotter.XYs
	for i, pt := range xy {
		v := plotter.XY{X: pt[0], Y: pt[1]}
		if anomalies[i] {
			anomalous = append(anomalous, v)
		} else {
			normal = append(normal, v)
		}
	}

	p := plot.New()
	p.Title.Text = "PCA + Isolation Forest - Anomaly Detection"
	p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%% variance)", ratio[0]*100)
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%% variance)", ratio[1]*100)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	layers := []struct {
		label  string
		pts    plotter.XYs
		color  color.Color
		radius vg.Length
	}{
		{fmt.Sprintf("Normal (%d)", len(normal)), normal, normalColor, vg.Points(1.5)},
		{fmt.Sprintf("Anomaly (%d)", len(anomalous)), anomalous, anomalyColor, vg.Points(2.5)},
	}
	for _, l := range layers {
		if len(l.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(l.pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = l.color
		s.GlyphStyle.Radius = l.radius
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(l.label, s)
	}

	return save(p, 9*vg.Inch, 6*vg.Inch, path)
}

// PlotScores draws the score histograms of normal and anomalous rows and the
// zero decision boundary.
func PlotScores(path string, scores []float64, anomalies []bool) error {
	if len(scores) != len(anomalies) {
		return fmt.Errorf("scores: %d scores, %d flags", len(scores), len(anomalies))
	}
	var normal, anomalous plotter.Values
	for i, s := range scores {
		if anomalies[i] {
			anomalous = append(anomalous, s)
		} else {
			normal = append(normal, s)
		}
	}

	p := plot.New()
	p.Title.Text = "Isolation Forest - Anomaly Score Distribution"
	p.X.Label.Text = "Anomaly Score (lower = more anomalous)"
	p.Y.Label.Text = "Count"
	p.Add(plotter.NewGrid())

	peak := 0.0
	layers := []struct {
		label string
		vals  plotter.Values
		bins  int
		color color.Color
	}{
		{"Normal", normal, 50, normalColor},
		{"Anomaly", anomalous, 20, anomalyColor},
	}
	for _, l := range layers {
		if len(l.vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(l.vals, l.bins)
		if err != nil {
			return err
		}
		h.FillColor = l.color
		h.LineStyle.Width = 0
		for _, b := range h.Bins {
			peak = math.Max(peak, b.Weight)
		}
		p.Add(h)
		p.Legend.Add(l.label, h)
	}

	boundary, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 0, Y: peak}})
	if err != nil {
		return err
	}
	boundary.Color = color.Black
	boundary.Width = vg.Points(1.5)
	boundary.Dashes = dashes
	p.Add(boundary)
	p.Legend.Add("Decision boundary", boundary)
	p.Legend.Top = true

	return save(p, 9*vg.Inch, 4*vg.Inch, path)
}
