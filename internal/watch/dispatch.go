package watch

import (
	"context"
	"time"

	"github.com/sitekit/sitekit/internal/logging"
)

// Rebuilder is the per-category rebuild surface the dispatcher drives.
// *build.Runner implements it.
type Rebuilder interface {
	RebuildCSS(ctx context.Context) error
	RebuildJS(ctx context.Context) error
	RebuildImages(ctx context.Context) error
	RebuildHTML(ctx context.Context) error
	RebuildTemplates(ctx context.Context) error
}

// Notifier receives the reload signal after a successful rebuild.
// *server.Hub implements it.
type Notifier interface {
	Broadcast()
}

// Dispatcher consumes watcher events and runs the rebuild table. Rebuilds
// are serial; events arriving mid-rebuild queue on the event channel.
type Dispatcher struct {
	builder  Rebuilder
	notifier Notifier
	log      *logging.Logger
}

func NewDispatcher(builder Rebuilder, notifier Notifier, log *logging.Logger) *Dispatcher {
	return &Dispatcher{builder: builder, notifier: notifier, log: log.WithComponent("watch")}
}

// Run processes events until the channel closes or ctx is done. A failing
// rebuild is logged and watching continues.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Dispatch(ctx, ev)
		}
	}
}

// Dispatch runs one event's rebuild pipeline and broadcasts reload on
// success.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	start := time.Now()

	var err error
	switch ev.Category {
	case CategoryCSS:
		err = d.builder.RebuildCSS(ctx)
	case CategoryJS:
		err = d.builder.RebuildJS(ctx)
	case CategoryImages:
		err = d.builder.RebuildImages(ctx)
	case CategoryHTML:
		err = d.builder.RebuildHTML(ctx)
	case CategoryTemplates:
		err = d.builder.RebuildTemplates(ctx)
	}
	if err != nil {
		d.log.Error("rebuild failed", err, "category", ev.Category, "path", ev.Path)
		return
	}

	d.log.Info("rebuilt", "category", ev.Category,
		"duration", time.Since(start).Round(time.Millisecond))
	d.notifier.Broadcast()
}
