package templates

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/errors"
	"github.com/sitekit/sitekit/internal/jsbundle"
	"github.com/sitekit/sitekit/internal/logging"
)

const (
	// OutputName is the compiled templates bundle file name.
	OutputName = "templates.js"
	// RuntimeName is the runtime file written next to the bundle.
	RuntimeName = "handlebars.js"

	taskName = "templates"
)

// Compiler compiles the .hbs trees into templates.js and writes the runtime.
type Compiler struct {
	dirs      config.Dirs
	mode      config.Mode
	namespace []string // e.g. ["App", "templates"]
	log       *logging.Logger
}

// NewCompiler builds a compiler. namespace is the dotted declaration
// namespace, e.g. "App.templates".
func NewCompiler(dirs config.Dirs, mode config.Mode, namespace string, log *logging.Logger) *Compiler {
	return &Compiler{
		dirs:      dirs,
		mode:      mode,
		namespace: strings.Split(namespace, "."),
		log:       log.WithComponent(taskName),
	}
}

// Compile writes templates.js: partial registrations first, then namespaced
// template declarations. Invalid template syntax is fatal.
func (c *Compiler) Compile(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	var sb strings.Builder

	partials, err := c.compilePartials(&sb)
	if err != nil {
		return err
	}
	pages, err := c.compilePages(&sb)
	if err != nil {
		return err
	}

	out := sb.String()
	if c.mode.IsProduction() {
		out = jsbundle.Minify(out) + "\n"
	}

	if err := os.MkdirAll(c.dirs.Build.JS, 0o755); err != nil {
		return errors.Task(taskName, err)
	}
	path := filepath.Join(c.dirs.Build.JS, OutputName)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return errors.Task(taskName, err)
	}

	c.log.Debug("templates compiled",
		"partials", partials, "templates", pages,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// compilePartials appends Handlebars.registerPartial calls for every .hbs
// file under the partials dir. Registration keys drop the leading
// underscore of the base name; on a key collision the later file wins and a
// warning names both sources.
func (c *Compiler) compilePartials(sb *strings.Builder) (int, error) {
	files, err := hbsFiles(c.dirs.Src.Partials)
	if err != nil {
		return 0, errors.Task(taskName, err)
	}

	registered := make(map[string]string, len(files))
	count := 0
	for _, file := range files {
		key := strings.TrimPrefix(baseName(file), "_")
		if prev, dup := registered[key]; dup {
			c.log.Warn("partial key collision, later file wins",
				"key", key, "kept", file, "shadowed", prev)
		}
		registered[key] = file

		nodes, err := parseFile(filepath.Join(c.dirs.Src.Partials, filepath.FromSlash(file)), file)
		if err != nil {
			return 0, errors.Task(taskName, err)
		}
		sb.WriteString("Handlebars.registerPartial(" + jsString(key) + ", " + Emit(nodes) + ");\n")
		count++
	}
	return count, nil
}

// compilePages appends namespaced declarations for every .hbs file under
// the templates dir, preceded by redeclare-safe namespace guards. A file's
// directory path extends the namespace, so sub/home.hbs becomes
// App.templates.sub.home and cannot collide with home.hbs.
func (c *Compiler) compilePages(sb *strings.Builder) (int, error) {
	files, err := hbsFiles(c.dirs.Src.Templates)
	if err != nil {
		return 0, errors.Task(taskName, err)
	}
	if len(files) == 0 {
		return 0, nil
	}

	root := "this"
	declared := make(map[string]bool)
	declare := func(ref string) {
		if !declared[ref] {
			declared[ref] = true
			sb.WriteString(ref + " = " + ref + " || {};\n")
		}
	}
	for _, seg := range c.namespace {
		root += "[" + jsString(seg) + "]"
		declare(root)
	}

	for _, file := range files {
		nodes, err := parseFile(filepath.Join(c.dirs.Src.Templates, filepath.FromSlash(file)), file)
		if err != nil {
			return 0, errors.Task(taskName, err)
		}
		ref := root
		if dir := path.Dir(file); dir != "." {
			for _, seg := range strings.Split(dir, "/") {
				ref += "[" + jsString(seg) + "]"
				declare(ref)
			}
		}
		sb.WriteString(ref + "[" + jsString(baseName(file)) + "] = " + Emit(nodes) + ";\n")
	}
	return len(files), nil
}

// WriteRuntime writes the embedded runtime into the build js dir.
func (c *Compiler) WriteRuntime(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := runtimeJS
	if c.mode.IsProduction() {
		out = jsbundle.Minify(out) + "\n"
	}
	if err := os.MkdirAll(c.dirs.Build.JS, 0o755); err != nil {
		return errors.Task("runtime", err)
	}
	path := filepath.Join(c.dirs.Build.JS, RuntimeName)
	return errors.Task("runtime", os.WriteFile(path, []byte(out), 0o644))
}

// hbsFiles lists **/*.hbs under dir as sorted slash paths. A missing dir
// yields no files.
func hbsFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return doublestar.Glob(os.DirFS(dir), "**/*.hbs")
}

func baseName(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseFile(path, display string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(display, string(data))
}
