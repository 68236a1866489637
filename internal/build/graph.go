// Package build wires the transformers into the task graph and runs full
// and per-category builds.
package build

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is one node in the build graph.
type Task struct {
	Name string
	Deps []string
	Run  func(ctx context.Context) error
}

// Graph is a set of named tasks with dependency edges. Add tasks, Validate
// once, then Run any number of times.
type Graph struct {
	tasks map[string]*Task
	order []string // insertion order, for deterministic scheduling
}

func NewGraph() *Graph {
	return &Graph{tasks: make(map[string]*Task)}
}

// Add registers a task. Duplicate names are an error.
func (g *Graph) Add(t *Task) error {
	if _, dup := g.tasks[t.Name]; dup {
		return fmt.Errorf("duplicate task %q", t.Name)
	}
	g.tasks[t.Name] = t
	g.order = append(g.order, t.Name)
	return nil
}

// Validate checks that every dep reference resolves and that the graph is
// acyclic.
func (g *Graph) Validate() error {
	for _, name := range g.order {
		for _, dep := range g.tasks[name].Deps {
			if _, ok := g.tasks[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", name, dep)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.tasks))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("dependency cycle through task %q", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, dep := range g.tasks[name].Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the graph in dependency levels: every task whose deps are
// satisfied fans out concurrently, the level fans in before dependents
// start. The first error cancels the group and fails the run.
func (g *Graph) Run(ctx context.Context) error {
	completed := make(map[string]bool, len(g.tasks))

	for len(completed) < len(g.tasks) {
		var level []*Task
		for _, name := range g.order {
			if completed[name] {
				continue
			}
			ready := true
			for _, dep := range g.tasks[name].Deps {
				if !completed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, g.tasks[name])
			}
		}
		if len(level) == 0 {
			return fmt.Errorf("build graph stalled; run Validate before Run")
		}

		eg, gctx := errgroup.WithContext(ctx)
		for _, t := range level {
			eg.Go(func() error { return t.Run(gctx) })
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		for _, t := range level {
			completed[t.Name] = true
		}
	}
	return nil
}
