package grizzlytesting

import (
	"context"
	"testing"
	"time"

	"github.com/malbeclabs/grizzly/pkg/scheduler"
	"github.com/stretchr/testify/require"
)

func TestGrizzly_Testing_NewDatabaseIsUsableAndBackedByTempDir(t *testing.T) {
	t.Parallel()
	db, dir := NewDatabase(t)
	require.NotEmpty(t, dir)
	require.Empty(t, db.ListTables())
}

func TestGrizzly_Testing_SchedulerFixtureRunsOnFakeClockTick(t *testing.T) {
	t.Parallel()
	db, _ := NewDatabase(t)

	var ran bool
	fn := func(ctx context.Context, model string) error {
		ran = true
		return nil
	}
	cronNext := func(expr string, now time.Time) (time.Time, error) {
		return now.Add(time.Hour), nil
	}
	fx := NewSchedulerFixture(t, db, fn, cronNext)
	fx.Runner.AddSchedule(&scheduler.Schedule{
		ID:         "fixture-sched",
		ModelName:  "any_model",
		NextRun:    fx.Clock.Now(),
		MaxRetries: 1,
	})
	fx.Runner.Tick(context.Background())

	require.True(t, ran)
	sched, ok := fx.Runner.Schedule("fixture-sched")
	require.True(t, ok)
	require.True(t, sched.NextRun.After(fx.Clock.Now()))
}
