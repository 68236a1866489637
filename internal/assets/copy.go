// Package assets implements the static copy tasks: images are mirrored
// into the build tree, page HTML lands in the build root.
package assets

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/errors"
	"github.com/sitekit/sitekit/internal/logging"
)

// Copier runs the static copy tasks for one project.
type Copier struct {
	dirs config.Dirs
	log  *logging.Logger
}

func NewCopier(dirs config.Dirs, log *logging.Logger) *Copier {
	return &Copier{dirs: dirs, log: log.WithComponent("assets")}
}

// CopyImages mirrors the images source tree into the build images dir,
// preserving relative structure. A missing source dir copies nothing.
func (c *Copier) CopyImages(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	count := 0
	src := c.dirs.Src.Images
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == src && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(c.dirs.Build.Images, rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return errors.Task("images", err)
	}

	c.log.Debug("images copied", "files", count,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// CopyHTML copies *.html files directly under the pages dir into the build
// root. Not recursive; plain pages live flat.
func (c *Copier) CopyHTML(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	matches, err := filepath.Glob(filepath.Join(c.dirs.Src.Pages, "*.html"))
	if err != nil {
		return errors.Task("html", err)
	}
	for _, path := range matches {
		if err := copyFile(path, filepath.Join(c.dirs.Build.Base, filepath.Base(path))); err != nil {
			return errors.Task("html", err)
		}
	}

	c.log.Debug("pages copied", "files", len(matches),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
