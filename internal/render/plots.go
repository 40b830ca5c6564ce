package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
)

// Options controls PNG chart rendering.
type Options struct {
	Bins     int
	WidthIn  float64
	HeightIn float64
}

// DefaultOptions matches the dashboard's default chart size.
func DefaultOptions() Options {
	return Options{Bins: 40, WidthIn: 6, HeightIn: 4}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Bins <= 0 {
		o.Bins = d.Bins
	}
	if o.WidthIn <= 0 {
		o.WidthIn = d.WidthIn
	}
	if o.HeightIn <= 0 {
		o.HeightIn = d.HeightIn
	}
	return o
}

// scatterColor is matplotlib's default blue at alpha 0.35.
var scatterColor = color.NRGBA{R: 31, G: 119, B: 180, A: 89}

// Image is a drawn chart.
type Image struct {
	Chart Chart
	PNG   []byte
}

// DrawAll draws every planned chart. A chart that fails to draw is logged
// and skipped.
func DrawAll(ds *dataset.Dataset, opt Options) []Image {
	var out []Image
	for _, c := range Plan(ds) {
		png, err := Draw(ds, c, opt)
		if err != nil {
			monitoring.Logf("render %s: %v", c.ID, err)
			continue
		}
		out = append(out, Image{Chart: c, PNG: png})
	}
	return out
}

// Draw renders one chart as PNG bytes.
func Draw(ds *dataset.Dataset, c Chart, opt Options) ([]byte, error) {
	opt = opt.withDefaults()
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case KindHistogram:
		err = addHistogram(p, ds, c.Column, opt.Bins)
	case KindBoxPlot:
		err = addBoxPlots(p, ds, c.Column)
	case KindScatter:
		err = addScatter(p, ds, c.XLabel, c.YLabel)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(vg.Length(opt.WidthIn)*vg.Inch, vg.Length(opt.HeightIn)*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func addHistogram(p *plot.Plot, ds *dataset.Dataset, col string, bins int) error {
	vals := present(ds.Floats(col))
	if len(vals) == 0 {
		return fmt.Errorf("no values in %s", col)
	}
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", col, err)
	}
	h.FillColor = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(h)
	return nil
}

func addBoxPlots(p *plot.Plot, ds *dataset.Dataset, col string) error {
	groups := groupValues(ds, dataset.ColActivity, col)
	if len(groups) == 0 {
		return fmt.Errorf("no values in %s by activity", col)
	}
	width := vg.Points(20)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Label
		if len(g.Values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(g.Values))
		if err != nil {
			return fmt.Errorf("box plot %s/%s: %w", col, g.Label, err)
		}
		// outliers are not drawn
		b.GlyphStyle.Radius = 0
		p.Add(b)
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	return nil
}

func addScatter(p *plot.Plot, ds *dataset.Dataset, xCol, yCol string) error {
	xs, ys := pairs(ds, xCol, yCol)
	if len(xs) == 0 {
		return fmt.Errorf("no rows with both %s and %s", xCol, yCol)
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = scatterColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)
	return nil
}
