package modal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/project"
	"github.com/Zachkp/portfolio/internal/render"
	"github.com/Zachkp/portfolio/internal/surface"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCatalog map[int]*project.Project

func (f fakeCatalog) Get(id int) (*project.Project, error) {
	p, ok := f[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	return p, nil
}

func newCatalog(t *testing.T) *project.Catalog {
	t.Helper()
	c, err := project.Load()
	require.NoError(t, err)
	return c
}

func newLibrary(t *testing.T) *render.Library {
	t.Helper()
	l, err := render.New()
	require.NoError(t, err)
	return l
}

func waitView(t *testing.T, v *View) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, v.Wait(ctx))
}

func TestController_OpenBuildsChartsAfterDelay(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{})

	v, err := c.Open(1)
	require.NoError(t, err)
	waitView(t, v)

	st := c.Status()
	assert.Equal(t, 1, st.Project)
	assert.Equal(t, []chart.Key{"kboChart", "kboCorrelationChart", "kboEfficiencyChart", "kboImportanceChart"}, st.Charts)
	assert.Empty(t, v.Err())

	img, err := c.ChartImage("kboCorrelationChart")
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestController_SwitchProjectReleasesPreviousCharts(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{})

	v1, err := c.Open(1)
	require.NoError(t, err)
	waitView(t, v1)

	v2, err := c.Open(2)
	require.NoError(t, err)

	// previous charts are gone as soon as the next project opens
	_, err = c.ChartImage("kboChart")
	assert.ErrorIs(t, err, ErrChartNotFound)

	waitView(t, v2)
	st := c.Status()
	assert.Equal(t, 2, st.Project)
	assert.Len(t, st.Charts, 4)
	assert.Equal(t, uint64(4), st.Stats.Destroyed)
	assert.Zero(t, st.Stats.DestroyFailures)
}

func TestController_CloseDropsPendingBuild(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{RenderDelay: time.Hour})

	v, err := c.Open(3)
	require.NoError(t, err)
	c.Close()

	select {
	case <-v.Done():
	default:
		t.Fatal("view not finished after close")
	}
	assert.Nil(t, c.Current())
	assert.Empty(t, c.Status().Charts)
	assert.NoError(t, c.WaitCharts(context.Background()))
}

func TestController_CloseReleasesCharts(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{})

	v, err := c.Open(3)
	require.NoError(t, err)
	waitView(t, v)
	require.Len(t, c.Status().Charts, 4)

	c.Close()

	st := c.Status()
	assert.Empty(t, st.Charts)
	assert.Equal(t, uint64(4), st.Stats.Destroyed)
}

func TestController_StaleBuildIsDropped(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{RenderDelay: time.Hour})

	v1, err := c.Open(1)
	require.NoError(t, err)
	gen := c.gen

	v2, err := c.Open(2)
	require.NoError(t, err)

	// a build for the first view that already left its timer must not draw anything
	c.build(gen, v1)
	assert.Empty(t, c.Status().Charts)

	c.mu.Lock()
	current := c.gen
	c.pending.Stop()
	c.mu.Unlock()
	c.build(current, v2)
	assert.Len(t, c.Status().Charts, 4)
}

func TestController_UnknownProject(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{Logger: zap.New(core)})

	v, err := c.Open(1)
	require.NoError(t, err)
	waitView(t, v)

	_, err = c.Open(99)
	assert.ErrorIs(t, err, ErrUnknownProject)
	assert.Equal(t, 1, logs.FilterMessage("unknown project").Len())
	// the open view is left alone
	assert.Len(t, c.Status().Charts, 4)
}

func TestController_MissingContainer(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), surface.NewPage(), Options{})

	v, err := c.Open(1)
	require.NoError(t, err)

	assert.Equal(t, displayErrorText, v.Err())
	select {
	case <-v.Done():
	default:
		t.Fatal("view should be finished")
	}
	assert.Empty(t, c.Status().Charts)
}

func TestController_ContainerLostBeforeBuild(t *testing.T) {
	page := surface.NewPage(VisualizationsID)
	c := NewController(newCatalog(t), newLibrary(t), page, Options{RenderDelay: time.Hour})

	v, err := c.Open(2)
	require.NoError(t, err)

	c.mu.Lock()
	c.pending.Stop()
	gen := c.gen
	page.Remove(VisualizationsID)
	c.mu.Unlock()

	c.build(gen, v)

	assert.Equal(t, displayErrorText, v.Err())
	assert.Empty(t, c.Status().Charts)
}

// vanishingLibrary resets the container once its first chart is created.
type vanishingLibrary struct {
	lib       *render.Library
	container *surface.Container
	created   []*render.Chart
}

func (l *vanishingLibrary) Create(target *surface.Target, cfg chart.Config) (*render.Chart, error) {
	ch, err := l.lib.Create(target, cfg)
	if err != nil {
		return nil, err
	}
	l.created = append(l.created, ch)
	if len(l.created) == 1 {
		l.container.Reset()
	}
	return ch, nil
}

func TestController_ContainerLostMidBuildReleasesBuiltCharts(t *testing.T) {
	page := surface.NewPage(VisualizationsID)
	container, err := page.Container(VisualizationsID)
	require.NoError(t, err)
	lib := &vanishingLibrary{lib: newLibrary(t), container: container}
	c := NewController(newCatalog(t), lib, page, Options{})

	v, err := c.Open(3)
	require.NoError(t, err)
	waitView(t, v)

	require.Len(t, lib.created, 1)
	assert.Equal(t, displayErrorText, v.Err())
	assert.Equal(t, 0, c.Status().Stats.Live)
	assert.Equal(t, uint64(1), c.Status().Stats.Destroyed)
	_, err = lib.created[0].Image()
	assert.ErrorIs(t, err, render.ErrDestroyed)
}

func TestController_FailingChartIsSkipped(t *testing.T) {
	good, _ := project.ChartConfig("kboEfficiencyChart")
	catalog := fakeCatalog{7: {
		ID: 7,
		Charts: []project.ChartSlot{
			{Key: "broken", Config: chart.Bar{Labels: []string{"a"}}, Width: 100, Height: 100},
			{Key: "good", Config: good, Width: 200, Height: 150},
		},
	}}
	core, logs := observer.New(zap.WarnLevel)
	c := NewController(catalog, newLibrary(t), nil, Options{Logger: zap.New(core)})

	v, err := c.Open(7)
	require.NoError(t, err)
	waitView(t, v)

	assert.Equal(t, []chart.Key{"good"}, c.Status().Charts)
	assert.Empty(t, v.Err())
	assert.Equal(t, 1, logs.FilterMessage("chart build failed").Len())
}

func TestController_UnregisterableChartIsReleased(t *testing.T) {
	good, _ := project.ChartConfig("kboEfficiencyChart")
	catalog := fakeCatalog{8: {
		ID: 8,
		Charts: []project.ChartSlot{
			{Key: "", Config: good, Width: 200, Height: 150},
			{Key: "good", Config: good, Width: 200, Height: 150},
		},
	}}
	core, logs := observer.New(zap.WarnLevel)
	c := NewController(catalog, newLibrary(t), nil, Options{Logger: zap.New(core)})

	v, err := c.Open(8)
	require.NoError(t, err)
	waitView(t, v)

	assert.Equal(t, []chart.Key{"good"}, c.Status().Charts)
	assert.Equal(t, 1, logs.FilterMessage("chart register failed").Len())
	assert.Zero(t, logs.FilterMessage("chart destroy failed").Len())
}

func TestController_ForceClear(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{})

	v, err := c.Open(1)
	require.NoError(t, err)
	waitView(t, v)

	c.ForceClear()

	assert.Empty(t, c.Status().Charts)
	assert.NotNil(t, c.Current())
	_, err = c.ChartImage("kboChart")
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestView_WaitHonorsContext(t *testing.T) {
	c := NewController(newCatalog(t), newLibrary(t), nil, Options{RenderDelay: time.Hour})
	v, err := c.Open(1)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, v.Wait(ctx), context.Canceled)
}
