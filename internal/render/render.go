// Package render is the chart library: it turns a chart.Config into an image painted on a
// surface.Target and hands back a destroyable chart instance.
package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/surface"
)

var ErrDestroyed = errors.New("chart has been destroyed")

const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Library builds charts. The zero value is not usable; call New.
type Library struct {
	format string
	log    *zap.Logger
}

type Option func(*Library)

// WithFormat selects the image encoding, "png" or "svg".
func WithFormat(format string) Option {
	return func(l *Library) { l.format = format }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Library) { l.log = log }
}

func New(opts ...Option) (*Library, error) {
	l := &Library{format: FormatPNG, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	switch l.format {
	case FormatPNG, FormatSVG:
	default:
		return nil, fmt.Errorf("unsupported chart format %q", l.format)
	}
	l.log = l.log.Named("render")
	return l, nil
}

func (l *Library) Format() string { return l.format }

// ContentType is the MIME type of the images this library paints.
func (l *Library) ContentType() string {
	if l.format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Create draws cfg onto target and returns the chart bound to it. The target must have a
// committed layout and no other live chart.
func (l *Library) Create(target *surface.Target, cfg chart.Config) (*Chart, error) {
	if target == nil {
		return nil, errors.New("nil target")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Chart{id: uuid.NewString(), kind: cfg.Kind(), target: target}
	if err := target.Bind(c); err != nil {
		return nil, fmt.Errorf("bind %s chart: %w", cfg.Kind(), err)
	}

	img, err := l.draw(target, cfg)
	if err != nil {
		target.Release(c)
		return nil, fmt.Errorf("draw %s chart on %q: %w", cfg.Kind(), target.ID(), err)
	}
	if err := target.Paint(c, img); err != nil {
		target.Release(c)
		return nil, err
	}

	l.log.Debug("chart created",
		zap.String("id", c.id),
		zap.String("kind", string(c.kind)),
		zap.String("target", target.ID()),
		zap.Int("bytes", len(img)))
	return c, nil
}

func (l *Library) draw(target *surface.Target, cfg chart.Config) ([]byte, error) {
	w, h := target.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("target measured %dx%d", w, h)
	}

	p, err := build(cfg)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(pixels(w), pixels(h), l.format)
	if err != nil {
		return nil, fmt.Errorf("create plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write plot: %w", err)
	}
	return buf.Bytes(), nil
}

func build(cfg chart.Config) (*plot.Plot, error) {
	switch c := cfg.(type) {
	case chart.Bar:
		return buildBar(c)
	case chart.Line:
		return buildLine(c)
	case chart.Scatter:
		return buildScatter(c)
	case chart.Radar:
		return buildRadar(c)
	case chart.Pie:
		return buildPie(c.Title, c.Slices, 0)
	case chart.Doughnut:
		return buildPie(c.Title, c.Slices, c.Cutout)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", cfg.Kind())
	}
}

// pixels converts a 96 dpi pixel size to plot units.
func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

// Chart is a live chart instance. It is not safe for concurrent use; the owner of the
// registry it lives in serializes access.
type Chart struct {
	id        string
	kind      chart.Kind
	target    *surface.Target
	destroyed bool
}

func (c *Chart) ID() string { return c.id }

func (c *Chart) Kind() chart.Kind { return c.kind }

// Image returns the encoded chart.
func (c *Chart) Image() ([]byte, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	img, ok := c.target.Image()
	if !ok {
		return nil, fmt.Errorf("target %q holds no image", c.target.ID())
	}
	return img, nil
}

// Destroy releases the target. Destroying twice returns ErrDestroyed.
func (c *Chart) Destroy() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.destroyed = true
	c.target.Release(c)
	return nil
}
