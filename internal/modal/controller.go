// Package modal drives the project-detail modal: which project is shown, when its charts
// are built, and when they are released.
package modal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/project"
	"github.com/Zachkp/portfolio/internal/render"
	"github.com/Zachkp/portfolio/internal/surface"
)

// VisualizationsID is the container the modal draws its charts into.
const VisualizationsID = "projectVisualizations"

// DefaultRenderDelay lets the modal finish opening before charts measure their targets.
const DefaultRenderDelay = 300 * time.Millisecond

const displayErrorText = "Visualizations could not be loaded."

var (
	ErrUnknownProject = errors.New("unknown project")
	ErrChartNotFound  = errors.New("chart not found")
)

// Library creates chart instances on drawing targets.
type Library interface {
	Create(target *surface.Target, cfg chart.Config) (*render.Chart, error)
}

type Catalog interface {
	Get(id int) (*project.Project, error)
}

type Options struct {
	RenderDelay time.Duration
	Logger      *zap.Logger
}

// Controller owns one modal: its page surface and the registry of the charts drawn on it.
// All methods are safe for concurrent use; registry and surface changes happen under one
// lock so clears and registrations keep their order.
type Controller struct {
	mu       sync.Mutex
	catalog  Catalog
	lib      Library
	page     *surface.Page
	registry *chart.Registry[*render.Chart]
	delay    time.Duration
	log      *zap.Logger

	gen     uint64
	pending *time.Timer
	current *View
}

func NewController(catalog Catalog, lib Library, page *surface.Page, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if page == nil {
		page = surface.NewPage(VisualizationsID)
	}
	return &Controller{
		catalog:  catalog,
		lib:      lib,
		page:     page,
		registry: chart.NewRegistry[*render.Chart](log),
		delay:    opts.RenderDelay,
		log:      log.Named("modal"),
	}
}

// Open shows project id, replacing whatever the modal displayed before. Charts are built
// after the render delay; use View.Wait to block until they are.
func (c *Controller) Open(id int) (*View, error) {
	p, err := c.catalog.Get(id)
	if err != nil {
		c.log.Warn("unknown project", zap.Int("project", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %d", ErrUnknownProject, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.registry.ClearAll()

	v := newView(p)
	c.current = v

	container, err := c.page.Container(VisualizationsID)
	if err != nil {
		c.log.Error("visualization container missing", zap.Int("project", id), zap.Error(err))
		v.displayErr = displayErrorText
		v.finish()
		return v, nil
	}
	container.Reset()
	for _, slot := range p.Charts {
		container.AddTarget(string(slot.Key), slot.Width, slot.Height)
	}

	gen := c.gen
	c.pending = time.AfterFunc(c.delay, func() { c.build(gen, v) })
	c.log.Debug("modal opened", zap.Int("project", id), zap.Uint64("gen", gen), zap.Int("charts", len(p.Charts)))
	return v, nil
}

// Close handles the modal being hidden: pending builds are dropped and every chart is
// released.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.registry.ClearAll()
	if container, err := c.page.Container(VisualizationsID); err == nil {
		container.Reset()
	}
	c.current = nil
}

// ForceClear releases every chart without touching the open view.
func (c *Controller) ForceClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.ForceClearAll()
}

// cancelLocked stops a pending build and invalidates any build already waiting on the lock.
func (c *Controller) cancelLocked() {
	if c.pending != nil && c.pending.Stop() && c.current != nil {
		c.current.finish()
	}
	c.pending = nil
	c.gen++
}

func (c *Controller) build(gen uint64, v *View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer v.finish()

	if gen != c.gen {
		c.log.Debug("stale chart build dropped", zap.Uint64("gen", gen), zap.Uint64("current", c.gen))
		return
	}
	c.pending = nil

	container, err := c.page.Container(VisualizationsID)
	if err != nil {
		c.abortLocked(v, err)
		return
	}
	container.CommitLayout()

	for _, slot := range v.Project.Charts {
		target, ok := container.Target(string(slot.Key))
		if !ok {
			c.abortLocked(v, fmt.Errorf("target %q missing", slot.Key))
			return
		}
		ch, err := c.lib.Create(target, slot.Config)
		if err != nil {
			c.log.Warn("chart build failed", zap.String("key", string(slot.Key)), zap.Error(err))
			continue
		}
		if err := c.registry.Register(slot.Key, ch); err != nil {
			c.log.Warn("chart register failed", zap.String("key", string(slot.Key)), zap.Error(err))
			if err := ch.Destroy(); err != nil {
				c.log.Warn("chart destroy failed", zap.String("key", string(slot.Key)), zap.Error(err))
			}
			continue
		}
	}
	c.log.Debug("charts built", zap.Int("project", v.Project.ID), zap.Int("live", c.registry.Len()))
}

// abortLocked releases charts built so far and reports the failure on the view.
func (c *Controller) abortLocked(v *View, err error) {
	c.log.Error("chart build aborted", zap.Int("project", v.Project.ID), zap.Error(err))
	c.registry.ClearAll()
	v.setDisplayError(displayErrorText)
}

// ChartImage returns the encoded image of a live chart.
func (c *Controller) ChartImage(key chart.Key) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChartNotFound, key)
	}
	return ch.Image()
}

// WaitCharts blocks until the open view's charts are built. It returns immediately when
// the modal is closed.
func (c *Controller) WaitCharts(ctx context.Context) error {
	v := c.Current()
	if v == nil {
		return nil
	}
	return v.Wait(ctx)
}

// Current returns the open view, or nil when the modal is closed.
func (c *Controller) Current() *View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Status summarizes the controller for the admin dashboard.
type Status struct {
	Project int         `json:"project,omitempty"`
	Charts  []chart.Key `json:"charts"`
	Stats   chart.Stats `json:"stats"`
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{Charts: c.registry.Keys(), Stats: c.registry.Stats()}
	if c.current != nil {
		s.Project = c.current.Project.ID
	}
	return s
}

// View is what the modal shows for one Open call.
type View struct {
	Project *project.Project

	mu         sync.Mutex
	displayErr string
	done       chan struct{}
	doneOnce   sync.Once
}

func newView(p *project.Project) *View {
	return &View{Project: p, done: make(chan struct{})}
}

func (v *View) finish() {
	v.doneOnce.Do(func() { close(v.done) })
}

func (v *View) setDisplayError(msg string) {
	v.mu.Lock()
	v.displayErr = msg
	v.mu.Unlock()
}

// Err returns the in-page error message, if any.
func (v *View) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayErr
}

// Done is closed once the chart build for this view finished or was dropped.
func (v *View) Done() <-chan struct{} { return v.done }

// Wait blocks until Done or ctx ends.
func (v *View) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
