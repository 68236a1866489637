package build

import (
	"context"
	"path/filepath"
	"time"

	"github.com/sitekit/sitekit/internal/assets"
	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/css"
	"github.com/sitekit/sitekit/internal/jsbundle"
	"github.com/sitekit/sitekit/internal/logging"
	"github.com/sitekit/sitekit/internal/templates"
	"github.com/sitekit/sitekit/internal/theme"
)

// Runner wires the transformers into the standard build graph:
//
//	clean → {css, js, images, runtime, html} → templates → notice
//
// and exposes the per-category rebuild pipelines the watcher dispatches to.
type Runner struct {
	cfg *config.Config
	log *logging.Logger

	css    *css.Compiler
	js     *jsbundle.Bundler
	tmpl   *templates.Compiler
	copier *assets.Copier
}

// NewRunner loads the theme and constructs the transformers.
func NewRunner(cfg *config.Config, log *logging.Logger) (*Runner, error) {
	th, err := theme.Load(filepath.Join(cfg.Root, cfg.Theme))
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:    cfg,
		log:    log,
		css:    css.New(cfg.Dirs, th, cfg.Mode, log),
		js:     jsbundle.New(cfg.Dirs, cfg.Mode, cfg.JSEntry, log),
		tmpl:   templates.NewCompiler(cfg.Dirs, cfg.Mode, cfg.Namespace, log),
		copier: assets.NewCopier(cfg.Dirs, log),
	}, nil
}

// timed wraps a task body with completion logging.
func (r *Runner) timed(name string, run func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		start := time.Now()
		if err := run(ctx); err != nil {
			return err
		}
		r.log.Task(name, time.Since(start))
		return nil
	}
}

// Build runs the full graph from a clean tree.
func (r *Runner) Build(ctx context.Context) error {
	start := time.Now()

	g := NewGraph()
	tasks := []*Task{
		{Name: "clean", Run: r.timed("clean", func(ctx context.Context) error {
			return Clean(ctx, r.cfg.Dirs.Build.Base)
		})},
		{Name: "css", Deps: []string{"clean"}, Run: r.timed("css", r.css.Compile)},
		{Name: "js", Deps: []string{"clean"}, Run: r.timed("js", r.js.Bundle)},
		{Name: "images", Deps: []string{"clean"}, Run: r.timed("images", r.copier.CopyImages)},
		{Name: "runtime", Deps: []string{"clean"}, Run: r.timed("runtime", r.tmpl.WriteRuntime)},
		{Name: "html", Deps: []string{"clean"}, Run: r.timed("html", r.copier.CopyHTML)},
		{Name: "templates", Deps: []string{"css", "js", "images", "runtime", "html"},
			Run: r.timed("templates", r.tmpl.Compile)},
	}
	for _, t := range tasks {
		if err := g.Add(t); err != nil {
			return err
		}
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if err := g.Run(ctx); err != nil {
		return err
	}

	r.log.Info("build finished",
		"mode", r.cfg.Mode, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Per-category rebuild pipelines. Utility pruning reads page and template
// content, so content changes rebuild css too.

func (r *Runner) RebuildCSS(ctx context.Context) error {
	return r.timed("css", r.css.Compile)(ctx)
}

func (r *Runner) RebuildJS(ctx context.Context) error {
	return r.timed("js", r.js.Bundle)(ctx)
}

func (r *Runner) RebuildImages(ctx context.Context) error {
	return r.timed("images", r.copier.CopyImages)(ctx)
}

func (r *Runner) RebuildHTML(ctx context.Context) error {
	if err := r.RebuildCSS(ctx); err != nil {
		return err
	}
	return r.timed("html", r.copier.CopyHTML)(ctx)
}

func (r *Runner) RebuildTemplates(ctx context.Context) error {
	if err := r.RebuildCSS(ctx); err != nil {
		return err
	}
	return r.timed("templates", r.tmpl.Compile)(ctx)
}
