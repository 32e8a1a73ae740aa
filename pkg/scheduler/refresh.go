// Package scheduler implements RefreshScheduler (spec §4.12 C14):
// dependency-ordered parallel model refresh plus a periodic cron-style
// trigger, grounded on the teacher's View Start/Ready/Refresh
// background-loop pattern (clockwork.Clock, panic-recovered refresh,
// prometheus counters).
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/malbeclabs/grizzly/pkg/dag"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/metrics"
	"github.com/malbeclabs/grizzly/pkg/retry"
	"golang.org/x/sync/errgroup"
)

// RefreshFunc executes one model's refresh body. Implementations are
// expected to be safe to call concurrently with refreshes of any
// model outside their own dependency group.
type RefreshFunc func(ctx context.Context, model string) error

// Scheduler drives model refreshes against a DependencyGraph.
type Scheduler struct {
	log     *slog.Logger
	graph   *dag.Graph
	refresh RefreshFunc
}

// New constructs a Scheduler over graph, calling fn to execute each
// model's refresh.
func New(log *slog.Logger, graph *dag.Graph, fn RefreshFunc) *Scheduler {
	return &Scheduler{log: log, graph: graph, refresh: fn}
}

// RefreshModel executes target and every transitive dependency it
// has not already executed, in topological parallel groups (spec
// §4.12): within a group, every model refreshes concurrently; between
// groups there is a full fence. The first error (in group insertion
// order) aborts remaining groups. A target that is not a node of the
// graph is refreshed on its own.
func (s *Scheduler) RefreshModel(ctx context.Context, target string) error {
	if !s.allNodes()[target] {
		return s.refreshOne(ctx, target)
	}
	deps := s.graph.TransitiveDependencies(target)
	toRun := make(map[string]bool, len(deps)+1)
	for _, d := range deps {
		toRun[d] = true
	}
	toRun[target] = true

	executed := make(map[string]bool)
	for name := range s.allNodes() {
		if !toRun[name] {
			executed[name] = true // already-satisfied nodes outside the refresh set
		}
	}

	groups, err := s.graph.GetParallelExecutionGroups(executed)
	if err != nil {
		return err
	}

	for _, group := range groups {
		if err := s.runGroup(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) allNodes() map[string]bool {
	out := make(map[string]bool)
	for _, n := range s.graph.Nodes() {
		out[n] = true
	}
	return out
}

func (s *Scheduler) runGroup(ctx context.Context, group []string) error {
	if len(group) == 1 {
		return s.refreshOne(ctx, group[0])
	}

	g, gctx := errgroup.WithContext(ctx)
	errs := make([]error, len(group))
	for i, model := range group {
		i, model := i, model
		g.Go(func() error {
			errs[i] = s.refreshOne(gctx, model)
			return nil // collect all; first-error selection happens below
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) refreshOne(ctx context.Context, model string) error {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler: refresh panicked", "model", model, "panic", r)
			metrics.RefreshTotal.WithLabelValues(model, "panic").Inc()
		}
	}()

	timer := metrics.RefreshDuration.WithLabelValues(model)
	start := time.Now()
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return s.refresh(ctx, model)
	})
	timer.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RefreshTotal.WithLabelValues(model, "error").Inc()
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "refresh model "+model+" failed")
	}
	metrics.RefreshTotal.WithLabelValues(model, "success").Inc()
	return nil
}
