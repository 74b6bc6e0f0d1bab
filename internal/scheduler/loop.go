// Package scheduler runs the polling loop that fires scheduled tasks. It is
// single-threaded and cooperative: each tick reloads the schedule store,
// computes which enabled tasks are due, and asks the job controller to start
// them. Overlap protection comes from the controller's already-running
// guard, not from the loop.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"disinfowatch/internal/schedule"
	"disinfowatch/internal/telemetry"
)

// Starter launches a named job; satisfied by jobs.Controller.
type Starter interface {
	Start(name, command string) (ok bool, message string)
}

// Loop polls the schedule store and fires due tasks.
type Loop struct {
	log     *slog.Logger
	store   *schedule.Store
	starter Starter
	command func(task string) string
	tick    time.Duration
	now     func() time.Time
	lastRun map[string]time.Time
}

// New builds a loop. command derives the launch command for a task name;
// tick is the polling interval (a lower bound on responsiveness).
func New(log *slog.Logger, store *schedule.Store, starter Starter, command func(task string) string, tick time.Duration) *Loop {
	return &Loop{
		log:     log,
		store:   store,
		starter: starter,
		command: command,
		tick:    tick,
		now:     time.Now,
		lastRun: map[string]time.Time{},
	}
}

// Run polls until ctx is cancelled. Termination is external; there is no
// drain step because spawned jobs are decoupled from the loop's lifetime.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.Tick(l.now())
	for {
		select {
		case <-ctx.Done():
			l.log.Info("scheduler loop stopping")
			return ctx.Err()
		case t := <-ticker.C:
			l.Tick(t)
		}
	}
}

// Tick performs one poll at the given instant. Exposed separately so the
// due-check logic is testable without sleeping.
func (l *Loop) Tick(now time.Time) {
	telemetry.SchedulerTicks.Inc()

	entries, err := l.store.Load()
	if err != nil {
		l.log.Error("reload schedule", "err", err)
		return
	}

	for task, entry := range entries {
		if !entry.Enabled {
			continue
		}
		if !l.due(task, entry, now) {
			continue
		}

		command := l.command(task)
		l.log.Info("launching scheduled task", "task", task, "command", command)
		ok, msg := l.starter.Start(task, command)
		if ok {
			telemetry.JobsStarted.Inc()
		} else {
			telemetry.JobStartFailures.Inc()
			l.log.Warn("scheduled start rejected", "task", task, "reason", msg)
		}
		// Record the attempt time regardless of outcome so a repeatedly
		// failing start cannot turn into a retry storm.
		l.lastRun[task] = now
	}
}

func (l *Loop) due(task string, entry schedule.Entry, now time.Time) bool {
	interval := time.Duration(entry.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	last, seen := l.lastRun[task]
	if !seen {
		// First sight of a task counts as already overdue so it fires on
		// the next tick rather than a full interval later.
		return true
	}
	return now.Sub(last) >= interval
}
