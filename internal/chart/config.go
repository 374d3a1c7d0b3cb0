package chart

import (
	"errors"
	"fmt"
	"image/color"
)

// Kind names a chart type.
type Kind string

const (
	KindBar      Kind = "bar"
	KindLine     Kind = "line"
	KindScatter  Kind = "scatter"
	KindRadar    Kind = "radar"
	KindPie      Kind = "pie"
	KindDoughnut Kind = "doughnut"
)

var ErrInvalidConfig = errors.New("invalid chart config")

// Config is one of Bar, Line, Scatter, Radar, Pie or Doughnut.
type Config interface {
	Kind() Kind
	Validate() error
	config()
}

// Axis describes one cartesian axis. Min == Max leaves the range to the library.
type Axis struct {
	Label string
	Min   float64
	Max   float64
}

// Fixed reports whether the axis has an explicit range.
func (a Axis) Fixed() bool { return a.Min != a.Max }

// Series is a run of values aligned with the chart's labels.
type Series struct {
	Label  string
	Values []float64
	Color  color.RGBA
}

type Point struct {
	X, Y float64
}

type PointSeries struct {
	Label  string
	Points []Point
	Color  color.RGBA
	Radius float64
}

// Slice is one segment of a pie or doughnut.
type Slice struct {
	Label string
	Value float64
	Color color.RGBA
}

type Bar struct {
	Title  string
	Labels []string
	Series []Series
	Y      Axis
}

type Line struct {
	Title  string
	Labels []string
	Series []Series
	X, Y   Axis
	Fill   bool
}

type Scatter struct {
	Title  string
	Series []PointSeries
	X, Y   Axis
}

type Radar struct {
	Title  string
	Axes   []string
	Series []Series
	Max    float64
}

type Pie struct {
	Title  string
	Slices []Slice
}

// Doughnut is a pie with a hole; Cutout is the inner radius as a fraction of the outer one.
type Doughnut struct {
	Title  string
	Slices []Slice
	Cutout float64
}

func (Bar) Kind() Kind      { return KindBar }
func (Line) Kind() Kind     { return KindLine }
func (Scatter) Kind() Kind  { return KindScatter }
func (Radar) Kind() Kind    { return KindRadar }
func (Pie) Kind() Kind      { return KindPie }
func (Doughnut) Kind() Kind { return KindDoughnut }

func (Bar) config()      {}
func (Line) config()     {}
func (Scatter) config()  {}
func (Radar) config()    {}
func (Pie) config()      {}
func (Doughnut) config() {}

func (c Bar) Validate() error {
	return validateSeries(KindBar, c.Labels, c.Series)
}

func (c Line) Validate() error {
	return validateSeries(KindLine, c.Labels, c.Series)
}

func (c Scatter) Validate() error {
	if len(c.Series) == 0 {
		return fmt.Errorf("%w: %s has no series", ErrInvalidConfig, KindScatter)
	}
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			return fmt.Errorf("%w: %s series %q has no points", ErrInvalidConfig, KindScatter, s.Label)
		}
	}
	return nil
}

func (c Radar) Validate() error {
	if len(c.Axes) < 3 {
		return fmt.Errorf("%w: %s needs at least 3 axes, got %d", ErrInvalidConfig, KindRadar, len(c.Axes))
	}
	if err := validateSeries(KindRadar, c.Axes, c.Series); err != nil {
		return err
	}
	if c.Max <= 0 {
		return fmt.Errorf("%w: %s max must be positive", ErrInvalidConfig, KindRadar)
	}
	return nil
}

func (c Pie) Validate() error {
	return validateSlices(KindPie, c.Slices)
}

func (c Doughnut) Validate() error {
	if c.Cutout <= 0 || c.Cutout >= 1 {
		return fmt.Errorf("%w: %s cutout %.2f not in (0,1)", ErrInvalidConfig, KindDoughnut, c.Cutout)
	}
	return validateSlices(KindDoughnut, c.Slices)
}

func validateSeries(kind Kind, labels []string, series []Series) error {
	if len(labels) == 0 {
		return fmt.Errorf("%w: %s has no labels", ErrInvalidConfig, kind)
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: %s has no series", ErrInvalidConfig, kind)
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return fmt.Errorf("%w: %s series %q has %d values for %d labels",
				ErrInvalidConfig, kind, s.Label, len(s.Values), len(labels))
		}
	}
	return nil
}

func validateSlices(kind Kind, slices []Slice) error {
	if len(slices) == 0 {
		return fmt.Errorf("%w: %s has no slices", ErrInvalidConfig, kind)
	}
	var total float64
	for _, s := range slices {
		if s.Value < 0 {
			return fmt.Errorf("%w: %s slice %q is negative", ErrInvalidConfig, kind, s.Label)
		}
		total += s.Value
	}
	if total == 0 {
		return fmt.Errorf("%w: %s slices sum to zero", ErrInvalidConfig, kind)
	}
	return nil
}

// RGBA is a shorthand for building colors from CSS-style channels.
func RGBA(r, g, b uint8, alpha float64) color.RGBA {
	// color.RGBA is alpha-premultiplied.
	a := alpha * 255
	return color.RGBA{
		R: uint8(float64(r) * alpha),
		G: uint8(float64(g) * alpha),
		B: uint8(float64(b) * alpha),
		A: uint8(a),
	}
}
