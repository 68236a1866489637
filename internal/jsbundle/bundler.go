package jsbundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
	"github.com/sitekit/sitekit/internal/sourcemap"
)

// Bundler resolves one entry file through its import graph and writes a
// single ES-module bundle.
type Bundler struct {
	dirs  config.Dirs
	mode  config.Mode
	entry string
	log   *logging.Logger
}

func New(dirs config.Dirs, mode config.Mode, entry string, log *logging.Logger) *Bundler {
	return &Bundler{dirs: dirs, mode: mode, entry: entry, log: log.WithComponent("js")}
}

// OutputName returns the bundle file name, derived from the entry name.
func (b *Bundler) OutputName() string { return b.entry }

// Bundle builds and writes the bundle. Unresolved imports, cycles, and
// unsupported module syntax are fatal.
func (b *Bundler) Bundle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	entryPath := filepath.Join(b.dirs.Src.JS, b.entry)
	modules, err := loadGraph(entryPath, b.dirs.Src.JS)
	if err != nil {
		return err
	}

	idents := make(map[string]string, len(modules))
	for _, m := range modules {
		idents[m.path] = m.ident()
	}

	outName := b.OutputName()
	smap := sourcemap.NewBuilder(outName)

	var sb strings.Builder
	line := 0
	for _, m := range modules {
		text, err := rewriteModule(m, idents)
		if err != nil {
			return err
		}

		sb.WriteString("// " + m.rel + "\n")
		line++
		for i, l := range strings.Split(text, "\n") {
			sb.WriteString(l)
			sb.WriteByte('\n')
			smap.AddMapping(line, m.rel, i)
			line++
		}
		sb.WriteByte('\n')
		line++
	}

	out := sb.String()
	if err := os.MkdirAll(b.dirs.Build.JS, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(b.dirs.Build.JS, outName)

	if b.mode.IsProduction() {
		out = StripDeadBranches(out)
		out = Minify(out)
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return err
		}
	} else {
		out += "//# sourceMappingURL=" + outName + ".map\n"
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return err
		}
		mapData, err := smap.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath+".map", mapData, 0o644); err != nil {
			return err
		}
	}

	b.log.Debug("bundle written",
		"modules", len(modules), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
