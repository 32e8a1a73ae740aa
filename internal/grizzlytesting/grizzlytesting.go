// Package grizzlytesting provides shared test fixtures for Grizzly's
// packages, grounded on the teacher's utils/pkg/testing: a quiet
// default logger, a temp-directory-backed Database, and a
// clockwork.FakeClock-driven scheduler so refresh-interval and
// retry/backoff logic can be tested without sleeping.
package grizzlytesting

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/grizzly/pkg/database"
	"github.com/malbeclabs/grizzly/pkg/scheduler"
)

// NewLogger returns a logger suppressed to errors-and-above by
// default; set DEBUG=1 for info or DEBUG=2 for debug output.
func NewLogger() *slog.Logger {
	level := slog.LevelError
	switch os.Getenv("DEBUG") {
	case "2":
		level = slog.LevelDebug
	case "1":
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewDatabase constructs an empty Database named for the running test,
// backed by a fresh t.TempDir() for any SaveIncrementalState /
// LoadIncrementalState call the test wants to make.
func NewDatabase(t *testing.T) (*database.Database, string) {
	t.Helper()
	dir := t.TempDir()
	db := database.New(t.Name(), NewLogger())
	return db, dir
}

// SchedulerFixture bundles a Scheduler with the FakeClock driving its
// periodic trigger, so tests can advance time deterministically
// instead of sleeping real wall-clock durations.
type SchedulerFixture struct {
	Scheduler *scheduler.Scheduler
	Runner    *scheduler.PeriodicRunner
	Clock     clockwork.FakeClock
}

// NewSchedulerFixture wires a Scheduler over db's model graph with fn
// as the refresh action, plus a PeriodicRunner on a FakeClock. cronNext
// may be nil if the test drives NextRun fields directly.
func NewSchedulerFixture(t *testing.T, db *database.Database, fn scheduler.RefreshFunc, cronNext func(string, time.Time) (time.Time, error)) *SchedulerFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	sched := scheduler.New(NewLogger(), db.Graph(), fn)
	runner := scheduler.NewPeriodicRunner(NewLogger(), clock, sched, cronNext)
	return &SchedulerFixture{Scheduler: sched, Runner: runner, Clock: clock}
}
