package main

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/modal"
	"github.com/Zachkp/portfolio/internal/project"
	"github.com/Zachkp/portfolio/internal/render"
	"github.com/Zachkp/portfolio/internal/surface"
)

const skillsContainer = "skills"

// homeCharts are drawn once at startup and shared by every visitor.
type homeCharts struct {
	mu       sync.Mutex
	registry *chart.Registry[*render.Chart]
}

// initCharts draws the home page charts. A chart that fails is logged and left out; the
// page still renders.
func initCharts(lib *render.Library, log *zap.Logger) *homeCharts {
	h := &homeCharts{registry: chart.NewRegistry[*render.Chart](log)}

	page := surface.NewPage(skillsContainer)
	container, err := page.Container(skillsContainer)
	if err != nil {
		log.Error("home chart container missing", zap.Error(err))
		return h
	}
	target := container.AddTarget(string(project.SkillChartKey), 420, 420)
	container.CommitLayout()

	ch, err := lib.Create(target, project.SkillChart())
	if err != nil {
		log.Error("skill chart failed", zap.Error(err))
		return h
	}
	if err := h.registry.Register(project.SkillChartKey, ch); err != nil {
		log.Error("skill chart register failed", zap.Error(err))
	}
	return h
}

func (h *homeCharts) image(key chart.Key) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", modal.ErrChartNotFound, key)
	}
	return ch.Image()
}

func (h *homeCharts) stats() chart.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Stats()
}

// redraw force-clears the home charts and draws them again.
func (h *homeCharts) redraw(lib *render.Library, log *zap.Logger) {
	fresh := initCharts(lib, log)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.ForceClearAll()
	h.registry = fresh.registry
}
