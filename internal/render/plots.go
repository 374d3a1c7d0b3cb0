package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Zachkp/portfolio/internal/chart"
)

var gridColor = color.RGBA{R: 26, G: 26, B: 26, A: 26}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Legend.Top = true
	return p
}

func applyAxis(a *plot.Axis, axis chart.Axis) {
	a.Label.Text = axis.Label
	if axis.Fixed() {
		a.Min = axis.Min
		a.Max = axis.Max
	}
}

func buildBar(c chart.Bar) (*plot.Plot, error) {
	p := newPlot(c.Title)
	applyAxis(&p.Y, c.Y)
	p.Add(horizontalGrid())

	n := len(c.Series)
	width := vg.Points(40 / float64(n))
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return nil, fmt.Errorf("bar series %q: %w", s.Label, err)
		}
		bars.Color = s.Color
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(float64(i)-float64(n-1)/2)
		p.Add(bars)
		if n > 1 && s.Label != "" {
			p.Legend.Add(s.Label, bars)
		}
	}
	p.NominalX(c.Labels...)
	return p, nil
}

func buildLine(c chart.Line) (*plot.Plot, error) {
	p := newPlot(c.Title)
	applyAxis(&p.X, c.X)
	applyAxis(&p.Y, c.Y)
	p.Add(plotter.NewGrid())

	for _, s := range c.Series {
		xys := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("line series %q: %w", s.Label, err)
		}
		line.LineStyle.Color = opaque(s.Color)
		line.LineStyle.Width = vg.Points(2)
		if c.Fill {
			line.FillColor = s.Color
		}
		points.GlyphStyle.Color = opaque(s.Color)
		points.GlyphStyle.Radius = vg.Points(3)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		if s.Label != "" {
			p.Legend.Add(s.Label, line, points)
		}
	}
	p.NominalX(c.Labels...)
	return p, nil
}

func buildScatter(c chart.Scatter) (*plot.Plot, error) {
	p := newPlot(c.Title)
	applyAxis(&p.X, c.X)
	applyAxis(&p.Y, c.Y)
	p.Add(plotter.NewGrid())

	for _, s := range c.Series {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter series %q: %w", s.Label, err)
		}
		radius := s.Radius
		if radius <= 0 {
			radius = 4
		}
		sc.GlyphStyle.Color = s.Color
		sc.GlyphStyle.Radius = vg.Points(radius)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		if s.Label != "" {
			p.Legend.Add(s.Label, sc)
		}
	}
	return p, nil
}

// buildRadar draws the web and each series as polygons on a unit circle with hidden axes.
func buildRadar(c chart.Radar) (*plot.Plot, error) {
	p := newPlot(c.Title)
	p.HideAxes()
	p.X.Min, p.X.Max = -1.35, 1.35
	p.Y.Min, p.Y.Max = -1.25, 1.3

	n := len(c.Axes)
	const rings = 5
	for r := 1; r <= rings; r++ {
		ring, err := plotter.NewPolygon(radarPoints(n, func(int) float64 { return float64(r) / rings }))
		if err != nil {
			return nil, err
		}
		ring.LineStyle.Color = gridColor
		ring.LineStyle.Width = vg.Points(0.5)
		p.Add(ring)
	}

	for _, s := range c.Series {
		values := s.Values
		poly, err := plotter.NewPolygon(radarPoints(n, func(i int) float64 {
			return math.Min(math.Max(values[i]/c.Max, 0), 1)
		}))
		if err != nil {
			return nil, fmt.Errorf("radar series %q: %w", s.Label, err)
		}
		poly.Color = s.Color
		poly.LineStyle.Color = opaque(s.Color)
		poly.LineStyle.Width = vg.Points(2)
		p.Add(poly)
		if s.Label != "" {
			p.Legend.Add(s.Label, poly)
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    radarPoints(n, func(int) float64 { return 1.15 }),
		Labels: c.Axes,
	})
	if err != nil {
		return nil, err
	}
	p.Add(labels)
	return p, nil
}

// radarPoints places n spokes clockwise starting at twelve o'clock.
func radarPoints(n int, radius func(i int) float64) plotter.XYs {
	xys := make(plotter.XYs, n)
	for i := range xys {
		theta := math.Pi/2 - 2*math.Pi*float64(i)/float64(n)
		r := radius(i)
		xys[i] = plotter.XY{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return xys
}

// buildPie draws slices clockwise from twelve o'clock. A cutout above zero makes a doughnut.
func buildPie(title string, slices []chart.Slice, cutout float64) (*plot.Plot, error) {
	p := newPlot(title)
	p.HideAxes()
	p.X.Min, p.X.Max = -1.1, 1.1
	p.Y.Min, p.Y.Max = -1.1, 1.1

	var total float64
	for _, s := range slices {
		total += s.Value
	}

	start := math.Pi / 2
	for _, s := range slices {
		if s.Value == 0 {
			continue
		}
		sweep := 2 * math.Pi * s.Value / total
		poly, err := plotter.NewPolygon(wedge(start, start-sweep, cutout))
		if err != nil {
			return nil, fmt.Errorf("slice %q: %w", s.Label, err)
		}
		poly.Color = s.Color
		poly.LineStyle.Color = color.White
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
		p.Legend.Add(fmt.Sprintf("%s (%.0f%%)", s.Label, 100*s.Value/total), poly)
		start -= sweep
	}
	return p, nil
}

// wedge approximates the ring segment between from and to (radians, clockwise) with
// straight edges.
func wedge(from, to, inner float64) plotter.XYs {
	steps := int(math.Ceil(math.Abs(from-to)/(math.Pi/90))) + 1
	xys := make(plotter.XYs, 0, 2*steps+1)
	for i := 0; i < steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps-1)
		xys = append(xys, plotter.XY{X: math.Cos(a), Y: math.Sin(a)})
	}
	if inner <= 0 {
		return append(xys, plotter.XY{})
	}
	for i := steps - 1; i >= 0; i-- {
		a := from + (to-from)*float64(i)/float64(steps-1)
		xys = append(xys, plotter.XY{X: inner * math.Cos(a), Y: inner * math.Sin(a)})
	}
	return xys
}

func horizontalGrid() *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Color = nil
	g.Horizontal.Color = gridColor
	return g
}

func opaque(c color.RGBA) color.RGBA {
	if c.A == 0 || c.A == 255 {
		return c
	}
	// undo premultiplication
	k := 255 / float64(c.A)
	return color.RGBA{
		R: uint8(math.Min(float64(c.R)*k, 255)),
		G: uint8(math.Min(float64(c.G)*k, 255)),
		B: uint8(math.Min(float64(c.B)*k, 255)),
		A: 255,
	}
}
