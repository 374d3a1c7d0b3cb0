// Package project holds the portfolio's project catalog: card text, modal narrative,
// figures, chart slots and code snippets.
package project

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/chart"
)

//go:embed content
var content embed.FS

var ErrNotFound = errors.New("project not found")

type KPI struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Figure is a static image shown in the modal next to the charts.
type Figure struct {
	Title string `yaml:"title"`
	Src   string `yaml:"src"`
	Alt   string `yaml:"alt"`
	Wide  bool   `yaml:"wide"`
}

// ChartSlot is one chart the modal draws, keyed by its drawing target id.
type ChartSlot struct {
	Key    chart.Key
	Title  string
	Config chart.Config
	Width  int
	Height int
}

type Snippet struct {
	Title    string `yaml:"title"`
	Icon     string `yaml:"icon"`
	Language string `yaml:"language"`
	File     string `yaml:"file"`
	Source   string `yaml:"-"`
}

// ToggleLabel is the button text for a snippet that is currently open or closed.
func (s Snippet) ToggleLabel(open bool) string {
	if open {
		return "Hide code"
	}
	return "Show code"
}

type Project struct {
	ID        int         `yaml:"id"`
	Slug      string      `yaml:"slug"`
	Title     string      `yaml:"title"`
	Summary   string      `yaml:"summary"`
	Tags      []string    `yaml:"tags"`
	Narrative string      `yaml:"narrative"`
	KPIs      []KPI       `yaml:"kpis"`
	Links     []Link      `yaml:"links"`
	Figures   []Figure    `yaml:"figures"`
	ChartKeys []chart.Key `yaml:"charts"`
	Code      []Snippet   `yaml:"code"`

	Body   template.HTML `yaml:"-"`
	Charts []ChartSlot   `yaml:"-"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	projects []*Project
	byID     map[int]*Project
}

// Default chart target size in pixels.
const (
	chartWidth  = 480
	chartHeight = 320
)

// Load reads the embedded catalog.
func Load() (*Catalog, error) {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads projects.yaml and the files it references from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, "projects.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var projects []*Project
	if err := yaml.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer))
	c := &Catalog{byID: make(map[int]*Project, len(projects))}
	for _, p := range projects {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate project id %d", p.ID)
		}
		if err := p.resolve(fsys, md); err != nil {
			return nil, fmt.Errorf("project %d (%s): %w", p.ID, p.Slug, err)
		}
		c.byID[p.ID] = p
		c.projects = append(c.projects, p)
	}
	sort.Slice(c.projects, func(i, j int) bool { return c.projects[i].ID < c.projects[j].ID })
	return c, nil
}

func (p *Project) resolve(fsys fs.FS, md goldmark.Markdown) error {
	if p.Narrative != "" {
		src, err := fs.ReadFile(fsys, p.Narrative)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return fmt.Errorf("render %s: %w", p.Narrative, err)
		}
		p.Body = template.HTML(buf.String())
	}

	for i := range p.Code {
		src, err := fs.ReadFile(fsys, p.Code[i].File)
		if err != nil {
			return err
		}
		p.Code[i].Source = string(src)
	}

	seen := make(map[chart.Key]bool, len(p.ChartKeys))
	for _, key := range p.ChartKeys {
		if seen[key] {
			return fmt.Errorf("chart %q listed twice", key)
		}
		seen[key] = true
		cfg, ok := ChartConfig(key)
		if !ok {
			return fmt.Errorf("unknown chart %q", key)
		}
		p.Charts = append(p.Charts, ChartSlot{
			Key:    key,
			Title:  chartTitle(cfg),
			Config: cfg,
			Width:  chartWidth,
			Height: chartHeight,
		})
	}
	return nil
}

func chartTitle(cfg chart.Config) string {
	switch c := cfg.(type) {
	case chart.Bar:
		return c.Title
	case chart.Line:
		return c.Title
	case chart.Scatter:
		return c.Title
	case chart.Radar:
		return c.Title
	case chart.Pie:
		return c.Title
	case chart.Doughnut:
		return c.Title
	}
	return ""
}

func (c *Catalog) Get(id int) (*Project, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return p, nil
}

// All returns the projects ordered by id.
func (c *Catalog) All() []*Project {
	out := make([]*Project, len(c.projects))
	copy(out, c.projects)
	return out
}

// Snippet returns the n-th code snippet of project id.
func (c *Catalog) Snippet(id, n int) (Snippet, error) {
	p, err := c.Get(id)
	if err != nil {
		return Snippet{}, err
	}
	if n < 0 || n >= len(p.Code) {
		return Snippet{}, fmt.Errorf("%w: snippet %d of project %d", ErrNotFound, n, id)
	}
	return p.Code[n], nil
}
