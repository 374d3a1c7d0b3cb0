package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/chart"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/modal"
	"github.com/Zachkp/portfolio/internal/nav"
	"github.com/Zachkp/portfolio/internal/project"
	"github.com/Zachkp/portfolio/internal/render"
	"github.com/Zachkp/portfolio/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const sessionCookie = "portfolio_session"

// chartWait bounds how long a chart request waits for a pending build.
const chartWait = 5 * time.Second

var (
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site",
	Long: `Serves the portfolio: project cards, a navigation bar that follows the scroll
position, and a project modal with narrative, figures, charts and code snippets.

Run without arguments to start the web server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(verbose || cfg.Log.Verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./portfolio.yaml if present)")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	gin.SetMode(cfg.Server.Mode)

	s, err := newSite(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.sessions.Run(ctx, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// site wires the page content, the chart library and the per-visitor modals together.
type site struct {
	cfg      config.Config
	log      *zap.Logger
	catalog  *project.Catalog
	lib      *render.Library
	sessions *session.Store
	home     *homeCharts
	admin    *adminAuth
	tmpl     *template.Template
}

func newSite(cfg config.Config, log *zap.Logger) (*site, error) {
	catalog, err := project.Load()
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	lib, err := render.New(render.WithFormat(cfg.Chart.Format), render.WithLogger(log))
	if err != nil {
		return nil, err
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &site{
		cfg:     cfg,
		log:     log,
		catalog: catalog,
		lib:     lib,
		home:    initCharts(lib, log),
		admin:   newAdminAuth(cfg, log),
		tmpl:    tmpl,
	}
	s.sessions = session.NewStore(s.newController, cfg.Session.IdleTimeout, log)
	return s, nil
}

func (s *site) newController() *modal.Controller {
	return modal.NewController(s.catalog, s.lib, nil, modal.Options{
		RenderDelay: s.cfg.Modal.RenderDelay,
		Logger:      s.log,
	})
}

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

func (s *site) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Requests(s.log, "/charts/:key", "/static/*filepath", "/nav"))
	r.SetHTMLTemplate(s.tmpl)

	r.Static("/images", "./images")
	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", s.indexData(false))
	})

	// Project modal content - opening a project replaces whatever the modal showed before
	r.GET("/projects/:id", s.openProject)

	// Modal hidden
	r.POST("/modal/close", func(c *gin.Context) {
		if ctl, ok := s.controller(c); ok {
			ctl.Close()
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/projects/:id/code/:n", s.codeSnippet)
	r.GET("/charts/:key", s.chartImage)
	r.GET("/nav", s.navFragment)

	setupAdminRoutes(r, s)
	return r
}

func (s *site) indexData(static bool) gin.H {
	assets := "/"
	if static {
		assets = ""
	}
	return gin.H{
		"assets":    assets,
		"about":     AboutMe,
		"headline":  Headline,
		"email":     ContactEmail,
		"github":    GitHubURL,
		"navLinks":  nav.Highlight(navLinks, "home"),
		"projects":  s.catalog.All(),
		"skillSrc":  s.skillSrc(static),
		"static":    static,
		"threshold": s.cfg.Nav.Threshold,
	}
}

func (s *site) skillSrc(static bool) string {
	if static {
		return "charts/" + string(project.SkillChartKey) + "." + s.lib.Format()
	}
	return "/charts/" + string(project.SkillChartKey)
}

// controller returns the caller's existing session, if any.
func (s *site) controller(c *gin.Context) (*modal.Controller, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Lookup(id)
}

func (s *site) openProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "modal-error.html", gin.H{"error": "Project not found."})
		return
	}

	cookie, _ := c.Cookie(sessionCookie)
	sid, ctl := s.sessions.Get(cookie)
	// refreshed on every open so the cookie lives as long as the server-side session
	c.SetCookie(sessionCookie, sid, int(s.cfg.Session.IdleTimeout.Seconds()), "/", "", false, true)

	view, err := ctl.Open(id)
	if err != nil {
		c.HTML(http.StatusNotFound, "modal-error.html", gin.H{"error": "Project not found."})
		return
	}

	c.HTML(http.StatusOK, "modal.html", modalData(view.Project, view.Err(), liveLinks))
}

// pageLinks says where a rendered page finds charts and assets. The live site uses
// absolute routes, the static export uses paths relative to the page.
type pageLinks struct {
	Charts   string
	ChartExt string
	Assets   string
	Static   bool
}

var liveLinks = pageLinks{Charts: "/charts/", Assets: "/"}

func modalData(p *project.Project, displayErr string, links pageLinks) gin.H {
	return gin.H{
		"project": p,
		"error":   displayErr,
		"links":   links,
	}
}

func (s *site) chartImage(c *gin.Context) {
	key := chart.Key(c.Param("key"))

	var (
		img []byte
		err error
	)
	if key == project.SkillChartKey {
		img, err = s.home.image(key)
	} else {
		ctl, ok := s.controller(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), chartWait)
		defer cancel()
		if err := ctl.WaitCharts(ctx); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		img, err = ctl.ChartImage(key)
	}
	if err != nil {
		s.log.Debug("chart unavailable", zap.String("key", string(key)), zap.Error(err))
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, s.lib.ContentType(), img)
}

func (s *site) codeSnippet(c *gin.Context) {
	id, errID := strconv.Atoi(c.Param("id"))
	n, errN := strconv.Atoi(c.Param("n"))
	if errID != nil || errN != nil {
		c.Status(http.StatusNotFound)
		return
	}
	snippet, err := s.catalog.Snippet(id, n)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	open := c.Query("open") == "true"
	c.HTML(http.StatusOK, "code.html", gin.H{
		"projectID": id,
		"index":     n,
		"snippet":   snippet,
		"open":      open,
		"label":     snippet.ToggleLabel(open),
	})
}

func (s *site) navFragment(c *gin.Context) {
	y, err := strconv.ParseFloat(c.DefaultQuery("y", "0"), 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	sections, err := nav.ParseSections(c.QueryArray("s"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	active := nav.Active(sections, y, s.cfg.Nav.Threshold)
	c.HTML(http.StatusOK, "nav.html", gin.H{"navLinks": nav.Highlight(navLinks, active)})
}
