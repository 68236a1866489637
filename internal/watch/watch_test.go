package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
)

func projectDirs(t *testing.T) config.Dirs {
	t.Helper()
	dirs := config.DefaultDirs(t.TempDir())
	for _, d := range []string{
		dirs.Src.CSS, dirs.Src.JS, dirs.Src.Images,
		dirs.Src.Pages, dirs.Src.Partials, dirs.Src.Templates,
	} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	return dirs
}

func TestClassify(t *testing.T) {
	dirs := projectDirs(t)
	w, err := New(dirs, 10*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { w.fs.Close() })

	cases := []struct {
		path     string
		category Category
		relevant bool
	}{
		{filepath.Join(dirs.Src.CSS, "style.css"), CategoryCSS, true},
		{filepath.Join(dirs.Src.CSS, "nested", "extra.css"), CategoryCSS, true},
		{filepath.Join(dirs.Src.JS, "main.js"), CategoryJS, true},
		{filepath.Join(dirs.Src.JS, "vendor", "lib.js"), CategoryJS, true},
		{filepath.Join(dirs.Src.Images, "logo.png"), CategoryImages, true},
		{filepath.Join(dirs.Src.Images, "icons", "a.svg"), CategoryImages, true},
		{filepath.Join(dirs.Src.Pages, "index.html"), CategoryHTML, true},
		{filepath.Join(dirs.Src.Partials, "_card.hbs"), CategoryTemplates, true},
		{filepath.Join(dirs.Src.Templates, "home.hbs"), CategoryTemplates, true},

		{filepath.Join(dirs.Src.CSS, ".style.css.swp"), 0, false},
		{filepath.Join(dirs.Src.CSS, "style.css~"), 0, false},
		{filepath.Join(dirs.Src.JS, "notes.txt"), 0, false},
		{filepath.Join(dirs.Src.Pages, "draft.hbs"), 0, false},
		{filepath.Join(dirs.Root, "README.md"), 0, false},
	}
	for _, tc := range cases {
		cat, relevant := w.Classify(tc.path)
		assert.Equal(t, tc.relevant, relevant, "path %s", tc.path)
		if tc.relevant {
			assert.Equal(t, tc.category, cat, "path %s", tc.path)
		}
	}
}

func TestWatcherEmitsCoalescedEvents(t *testing.T) {
	dirs := projectDirs(t)
	w, err := New(dirs, 30*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	target := filepath.Join(dirs.Src.CSS, "style.css")
	for range 3 {
		require.NoError(t, os.WriteFile(target, []byte(".a{}"), 0o644))
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case ev := <-w.Events():
		assert.Equal(t, CategoryCSS, ev.Category)
		assert.Equal(t, target, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}

	// The rapid writes collapsed into a single event for the path.
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected extra event: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

// fakeBuilder records which pipelines ran.
type fakeBuilder struct {
	calls []string
	fail  map[string]error
}

func (f *fakeBuilder) run(name string) error {
	f.calls = append(f.calls, name)
	if f.fail != nil {
		return f.fail[name]
	}
	return nil
}

func (f *fakeBuilder) RebuildCSS(context.Context) error    { return f.run("css") }
func (f *fakeBuilder) RebuildJS(context.Context) error     { return f.run("js") }
func (f *fakeBuilder) RebuildImages(context.Context) error { return f.run("images") }
func (f *fakeBuilder) RebuildHTML(context.Context) error {
	if err := f.run("css"); err != nil {
		return err
	}
	return f.run("html")
}
func (f *fakeBuilder) RebuildTemplates(context.Context) error {
	if err := f.run("css"); err != nil {
		return err
	}
	return f.run("templates")
}

type fakeNotifier struct{ reloads int }

func (f *fakeNotifier) Broadcast() { f.reloads++ }

func TestDispatchTable(t *testing.T) {
	cases := []struct {
		category Category
		want     []string
	}{
		{CategoryCSS, []string{"css"}},
		{CategoryJS, []string{"js"}},
		{CategoryImages, []string{"images"}},
		{CategoryHTML, []string{"css", "html"}},
		{CategoryTemplates, []string{"css", "templates"}},
	}
	for _, tc := range cases {
		t.Run(tc.category.String(), func(t *testing.T) {
			b := &fakeBuilder{}
			n := &fakeNotifier{}
			d := NewDispatcher(b, n, logging.Discard())

			d.Dispatch(context.Background(), Event{Category: tc.category})

			assert.Equal(t, tc.want, b.calls)
			assert.Equal(t, 1, n.reloads, "one reload per successful rebuild")
		})
	}
}

func TestDispatchFailureSkipsReloadAndContinues(t *testing.T) {
	b := &fakeBuilder{fail: map[string]error{"css": errors.New("parse error")}}
	n := &fakeNotifier{}
	d := NewDispatcher(b, n, logging.Discard())

	d.Dispatch(context.Background(), Event{Category: CategoryCSS})
	assert.Zero(t, n.reloads)

	// The loop keeps serving later events.
	b.fail = nil
	d.Dispatch(context.Background(), Event{Category: CategoryJS})
	assert.Equal(t, 1, n.reloads)
}

func TestDispatcherRunStopsWhenChannelCloses(t *testing.T) {
	b := &fakeBuilder{}
	n := &fakeNotifier{}
	d := NewDispatcher(b, n, logging.Discard())

	events := make(chan Event, 2)
	events <- Event{Category: CategoryJS}
	events <- Event{Category: CategoryImages}
	close(events)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
	assert.Equal(t, []string{"js", "images"}, b.calls)
	assert.Equal(t, 2, n.reloads)
}
