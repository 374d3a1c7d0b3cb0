package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/portfolio/internal/modal"
	"github.com/Zachkp/portfolio/internal/project"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the site to static files",
	Long: `Renders the home page, one page per project and every chart image into a
directory that any static file host can serve.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "dist", "output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := newSite(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.export(ctx, exportOut); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("export complete", zap.String("out", exportOut), zap.Int("projects", len(s.catalog.All())))
	return nil
}

func exportLinks(slug, format string) pageLinks {
	return pageLinks{
		Charts:   "../charts/" + slug + "/",
		ChartExt: "." + format,
		Assets:   "../",
		Static:   true,
	}
}

// export writes the static site to out. Projects render in parallel, each with a
// controller and registry of its own.
func (s *site) export(ctx context.Context, out string) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	g.Go(func() error { return s.exportIndex(out) })
	g.Go(func() error { return exportAssets(out) })
	for _, p := range s.catalog.All() {
		g.Go(func() error { return s.exportProject(ctx, out, p) })
	}
	return g.Wait()
}

func (s *site) exportIndex(out string) error {
	img, err := s.home.image(project.SkillChartKey)
	if err != nil {
		s.log.Warn("skill chart not exported", zap.Error(err))
	} else {
		name := string(project.SkillChartKey) + "." + s.lib.Format()
		if err := writeFile(filepath.Join(out, "charts", name), img); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", s.indexData(true)); err != nil {
		return fmt.Errorf("index page: %w", err)
	}
	return writeFile(filepath.Join(out, "index.html"), buf.Bytes())
}

func (s *site) exportProject(ctx context.Context, out string, p *project.Project) error {
	ctl := modal.NewController(s.catalog, s.lib, nil, modal.Options{Logger: s.log})
	defer ctl.Close()

	view, err := ctl.Open(p.ID)
	if err != nil {
		return err
	}
	if err := view.Wait(ctx); err != nil {
		return fmt.Errorf("project %d: %w", p.ID, err)
	}

	dir := filepath.Join(out, "charts", p.Slug)
	for _, slot := range p.Charts {
		img, err := ctl.ChartImage(slot.Key)
		if err != nil {
			s.log.Warn("chart not exported",
				zap.Int("project", p.ID),
				zap.String("chart", string(slot.Key)),
				zap.Error(err))
			continue
		}
		if err := writeFile(filepath.Join(dir, string(slot.Key)+"."+s.lib.Format()), img); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	data := modalData(p, view.Err(), exportLinks(p.Slug, s.lib.Format()))
	if err := s.tmpl.ExecuteTemplate(&buf, "project-page.html", data); err != nil {
		return fmt.Errorf("project %d page: %w", p.ID, err)
	}
	return writeFile(filepath.Join(out, "projects", strconv.Itoa(p.ID)+".html"), buf.Bytes())
}

// exportAssets copies the embedded static files and, when present, the local images
// directory.
func exportAssets(out string) error {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	if err := replaceDir(filepath.Join(out, "static"), static); err != nil {
		return err
	}

	if _, err := os.Stat("images"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return replaceDir(filepath.Join(out, "images"), os.DirFS("images"))
}

func replaceDir(dst string, src fs.FS) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.CopyFS(dst, src)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
