package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/grizzly/pkg/dag"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGrizzly_Scheduler_RefreshModelRunsDependenciesFirst(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddDependency("orders_summary", "orders")
	g.AddDependency("orders_summary", "customers")

	var mu sync.Mutex
	var order []string
	fn := func(ctx context.Context, model string) error {
		mu.Lock()
		order = append(order, model)
		mu.Unlock()
		return nil
	}

	s := New(discardLogger(), g, fn)
	require.NoError(t, s.RefreshModel(context.Background(), "orders_summary"))

	require.Len(t, order, 3)
	require.Equal(t, "orders_summary", order[2])
	require.ElementsMatch(t, []string{"orders", "customers"}, order[:2])
}

func TestGrizzly_Scheduler_RefreshModelStopsOnFirstGroupError(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddDependency("b", "a")
	g.AddNode("c") // unrelated node, should never run

	var ran []string
	var mu sync.Mutex
	fn := func(ctx context.Context, model string) error {
		mu.Lock()
		ran = append(ran, model)
		mu.Unlock()
		if model == "a" {
			return errors.New("boom")
		}
		return nil
	}

	s := New(discardLogger(), g, fn)
	err := s.RefreshModel(context.Background(), "b")
	require.Error(t, err)
	require.ElementsMatch(t, []string{"a"}, ran)
}

func TestGrizzly_Scheduler_RefreshModelRecoversPanic(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddNode("flaky")

	fn := func(ctx context.Context, model string) error {
		panic("kaboom")
	}

	s := New(discardLogger(), g, fn)
	require.NotPanics(t, func() {
		_ = s.RefreshModel(context.Background(), "flaky")
	})
}

func TestGrizzly_Periodic_RunsDueScheduleAndAdvancesNextRun(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddNode("daily_report")

	var calls int
	var mu sync.Mutex
	fn := func(ctx context.Context, model string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}
	s := New(discardLogger(), g, fn)

	clock := clockwork.NewFakeClock()
	cronNext := func(expr string, now time.Time) (time.Time, error) {
		return now.Add(24 * time.Hour), nil
	}
	runner := NewPeriodicRunner(discardLogger(), clock, s, cronNext)
	runner.AddSchedule(&Schedule{
		ID:         "sched-1",
		ModelName:  "daily_report",
		CronExpr:   "0 0 * * *",
		NextRun:    clock.Now(),
		MaxRetries: 3,
	})

	runner.Tick(context.Background())

	mu.Lock()
	got := calls
	mu.Unlock()
	require.Equal(t, 1, got)

	sched, ok := runner.Schedule("sched-1")
	require.True(t, ok)
	require.Equal(t, ScheduleEnabled, sched.State)
	require.Equal(t, 0, sched.RetryCount)
	require.True(t, sched.NextRun.After(clock.Now()))
}

func TestGrizzly_Periodic_DisablesScheduleAfterMaxRetries(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddNode("flaky_model")

	fn := func(ctx context.Context, model string) error {
		return errors.New("upstream unavailable")
	}
	s := New(discardLogger(), g, fn)

	clock := clockwork.NewFakeClock()
	cronNext := func(expr string, now time.Time) (time.Time, error) {
		return now.Add(time.Minute), nil
	}
	runner := NewPeriodicRunner(discardLogger(), clock, s, cronNext)
	runner.AddSchedule(&Schedule{
		ID:         "sched-2",
		ModelName:  "flaky_model",
		CronExpr:   "* * * * *",
		NextRun:    clock.Now(),
		MaxRetries: 2,
	})

	runner.Tick(context.Background())
	sched, _ := runner.Schedule("sched-2")
	require.Equal(t, 1, sched.RetryCount)
	require.Equal(t, ScheduleFailing, sched.State)
	require.True(t, sched.Enabled)

	clock.Advance(time.Minute)
	runner.Tick(context.Background())
	sched, _ = runner.Schedule("sched-2")
	require.Equal(t, 2, sched.RetryCount)
	require.Equal(t, ScheduleDisabled, sched.State)
	require.False(t, sched.Enabled)

	clock.Advance(time.Hour)
	runner.Tick(context.Background())
	sched, _ = runner.Schedule("sched-2")
	require.Equal(t, 2, sched.RetryCount, "disabled schedule must not run again")
}

func TestGrizzly_Periodic_SkipsScheduleNotYetDue(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddNode("weekly_model")

	var calls int
	fn := func(ctx context.Context, model string) error {
		calls++
		return nil
	}
	s := New(discardLogger(), g, fn)

	clock := clockwork.NewFakeClock()
	runner := NewPeriodicRunner(discardLogger(), clock, s, nil)
	runner.AddSchedule(&Schedule{
		ID:         "sched-3",
		ModelName:  "weekly_model",
		NextRun:    clock.Now().Add(time.Hour),
		MaxRetries: 3,
	})

	runner.Tick(context.Background())
	require.Equal(t, 0, calls)
}
