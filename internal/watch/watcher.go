// Package watch implements source-tree watching for serve mode: fsnotify
// events are filtered, classified by pipeline category, coalesced over a
// short debounce window, and handed to the dispatch loop.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
)

// Category is the rebuild pipeline a change maps to.
type Category int

const (
	CategoryCSS Category = iota
	CategoryJS
	CategoryImages
	CategoryHTML
	CategoryTemplates
)

func (c Category) String() string {
	switch c {
	case CategoryCSS:
		return "css"
	case CategoryJS:
		return "js"
	case CategoryImages:
		return "images"
	case CategoryHTML:
		return "html"
	case CategoryTemplates:
		return "templates"
	default:
		return "unknown"
	}
}

// Event is one coalesced source change.
type Event struct {
	Category Category
	Path     string
}

// Watcher watches the source tree and emits categorized events.
type Watcher struct {
	dirs     config.Dirs
	debounce time.Duration
	log      *logging.Logger

	fs     *fsnotify.Watcher
	events chan Event
}

// New creates a watcher over the project's source directories.
func New(dirs config.Dirs, debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dirs:     dirs,
		debounce: debounce,
		log:      log.WithComponent("watch"),
		fs:       fs,
		events:   make(chan Event, 64),
	}

	for _, dir := range []string{
		dirs.Src.CSS, dirs.Src.JS, dirs.Src.Images,
		dirs.Src.Pages, dirs.Src.Partials, dirs.Src.Templates,
	} {
		if err := w.addRecursive(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

// Events is the coalesced change stream. Closed when Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run pumps fsnotify events until ctx is done. Rapid duplicate events for
// the same path collapse into one within the debounce window.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fs.Close()

	pending := make(map[Event]struct{})
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.trackNewDirs(ev)

			cat, relevant := w.Classify(ev.Name)
			if !relevant || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[Event{Category: cat, Path: ev.Name}] = struct{}{}
			if flush == nil {
				flush = time.After(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case <-flush:
			for ev := range pending {
				w.log.Debug("change detected", "category", ev.Category, "path", ev.Path)
				select {
				case w.events <- ev:
				case <-ctx.Done():
					return
				}
				delete(pending, ev)
			}
			flush = nil
		}
	}
}

// Classify maps a changed path to its rebuild category. Temp, hidden, and
// unrelated files report relevant=false.
func (w *Watcher) Classify(path string) (Category, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return 0, false
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case within(path, w.dirs.Src.CSS) && ext == ".css":
		return CategoryCSS, true
	case within(path, w.dirs.Src.JS) && ext == ".js":
		return CategoryJS, true
	case within(path, w.dirs.Src.Images):
		return CategoryImages, true
	case within(path, w.dirs.Src.Pages) && ext == ".html":
		return CategoryHTML, true
	case within(path, w.dirs.Src.Partials) && ext == ".hbs":
		return CategoryTemplates, true
	case within(path, w.dirs.Src.Templates) && ext == ".hbs":
		return CategoryTemplates, true
	default:
		return 0, false
	}
}

// trackNewDirs adds directories created under a watched tree so their
// contents are watched too.
func (w *Watcher) trackNewDirs(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addRecursive(ev.Name); err != nil {
		w.log.Warn("cannot watch new directory", "path", ev.Name, "error", err)
	}
}

// addRecursive watches dir and every subdirectory. Missing dirs are fine;
// they may be created later under an existing watched parent.
func (w *Watcher) addRecursive(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
