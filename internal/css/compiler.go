package css

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
	"github.com/sitekit/sitekit/internal/sourcemap"
	"github.com/sitekit/sitekit/internal/theme"
)

const (
	// OutputName is the concatenated stylesheet written to the build css dir.
	OutputName = "style.css"
	// MapDir is the subdirectory for the debug source map.
	MapDir = "maps"
)

// Compiler is the CSS transformer. It reads every .css file directly under
// the source css directory, inlines imports, expands and prunes theme
// utilities against the content scan, resolves nesting, adds vendor
// prefixes, and writes one stylesheet. Debug builds get a companion source
// map; production builds are minified instead.
type Compiler struct {
	dirs config.Dirs
	th   *theme.Theme
	mode config.Mode
	log  *logging.Logger
}

func New(dirs config.Dirs, th *theme.Theme, mode config.Mode, log *logging.Logger) *Compiler {
	return &Compiler{dirs: dirs, th: th, mode: mode, log: log.WithComponent("css")}
}

// Compile runs the full pipeline and writes the output stylesheet.
func (c *Compiler) Compile(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	files, err := c.sourceFiles()
	if err != nil {
		return err
	}

	var nodes []Node
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		sheet, err := Parse(string(data), file)
		if err != nil {
			return err
		}
		sheet, err = InlineImports(sheet, file)
		if err != nil {
			return err
		}
		nodes = append(nodes, sheet.Nodes...)
	}

	used, err := ScanContent(c.dirs.Root, c.th.Content)
	if err != nil {
		return err
	}
	utilities := GenerateUtilities(c.th, used)
	nodes = injectUtilities(nodes, utilities)

	nodes = Flatten(nodes)
	Prefix(nodes)

	if err := os.MkdirAll(c.dirs.Build.CSS, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(c.dirs.Build.CSS, OutputName)

	if c.mode.IsProduction() {
		out := Serialize(nodes, true, nil, nil)
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return err
		}
	} else {
		smap := sourcemap.NewBuilder(OutputName)
		out := Serialize(nodes, false, smap, c.mapSourceName)
		out += "\n/*# sourceMappingURL=" + MapDir + "/" + OutputName + ".map */\n"
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return err
		}
		mapData, err := smap.JSON()
		if err != nil {
			return err
		}
		mapPath := filepath.Join(c.dirs.Build.CSS, MapDir, OutputName+".map")
		if err := os.MkdirAll(filepath.Dir(mapPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(mapPath, mapData, 0o644); err != nil {
			return err
		}
	}

	c.log.Debug("stylesheet compiled",
		"sources", len(files), "used_classes", len(used), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// sourceFiles lists .css files directly under the source css dir, sorted
// for deterministic concatenation. A missing dir yields an empty list.
func (c *Compiler) sourceFiles() ([]string, error) {
	entries, err := os.ReadDir(c.dirs.Src.CSS)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".css") {
			continue
		}
		files = append(files, filepath.Join(c.dirs.Src.CSS, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// injectUtilities replaces the first top-level @utilities directive with
// the generated rules, or appends them when no directive is present.
// Remaining directives are dropped.
func injectUtilities(nodes []Node, utilities []Node) []Node {
	injected := false
	var out []Node
	for _, n := range nodes {
		if at, ok := n.(*AtRule); ok && at.Name == "utilities" && !at.HasBody {
			if !injected {
				out = append(out, utilities...)
				injected = true
			}
			continue
		}
		out = append(out, n)
	}
	if !injected {
		out = append(out, utilities...)
	}
	return out
}

// mapSourceName shortens an on-disk source path for the source map.
func (c *Compiler) mapSourceName(src string) string {
	if src == generatedSrc {
		return src
	}
	if rel, err := filepath.Rel(c.dirs.Src.CSS, src); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(src)
}
