package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Controller starts and stops named background jobs and keeps the registry
// in sync with what it did. Outcomes are reported as (ok, message) pairs
// because every failure here is operator-actionable and must surface
// verbatim, not as an error to be wrapped away.
type Controller struct {
	log      *slog.Logger
	registry *Registry
	launcher Launcher
	handle   HandleFunc
	now      func() time.Time
}

// NewController builds a controller that launches real detached processes.
func NewController(log *slog.Logger, registry *Registry) *Controller {
	return &Controller{
		log:      log,
		registry: registry,
		launcher: shellLauncher{},
		handle:   OSHandle,
		now:      time.Now,
	}
}

// Start launches command as a detached process under the given job name.
// It refuses when the registry shows the job running and the tracked PID is
// still alive; a record whose process died outside our control is repaired
// and the start proceeds.
func (c *Controller) Start(name, command string) (ok bool, message string) {
	err := c.registry.Update(func(records map[string]Record) (bool, error) {
		rec := records[name]
		if rec.Status == StatusRunning {
			if rec.PID > 0 && c.handle(rec.PID).Alive() {
				ok, message = false, "Job already running"
				return false, nil
			}
			c.log.Warn("repairing stale job record", "job", name, "pid", rec.PID)
		}

		pid, err := c.launcher.Launch(command)
		if err != nil {
			ok, message = false, err.Error()
			return false, nil
		}
		started := c.now()
		rec.Status = StatusRunning
		rec.PID = pid
		rec.LastRun = &started
		records[name] = rec

		ok, message = true, fmt.Sprintf("Started job %s (PID %d)", name, pid)
		c.log.Info("job started", "job", name, "pid", pid, "command", command)
		return true, nil
	})
	if err != nil {
		return false, err.Error()
	}
	return ok, message
}

// End terminates the tracked process of a running job. A termination failure
// is reported, not swallowed, and leaves the record untouched. If the
// tracked process already exited, the record is repaired to terminated but
// the call still reports failure so the operator sees what happened.
func (c *Controller) End(name string) (ok bool, message string) {
	err := c.registry.Update(func(records map[string]Record) (bool, error) {
		rec, found := records[name]
		if !found || rec.Status != StatusRunning {
			ok, message = false, "No running job found"
			return false, nil
		}

		h := c.handle(rec.PID)
		if !h.Alive() {
			ended := c.now()
			rec.Status = StatusTerminated
			rec.LastEnd = &ended
			records[name] = rec
			ok = false
			message = fmt.Sprintf("process %d already exited; record marked terminated", rec.PID)
			c.log.Warn("job process gone before end", "job", name, "pid", rec.PID)
			return true, nil
		}

		if err := h.Terminate(); err != nil {
			ok, message = false, err.Error()
			c.log.Error("job termination failed", "job", name, "pid", rec.PID, "err", err)
			return false, nil
		}

		ended := c.now()
		rec.Status = StatusTerminated
		rec.LastEnd = &ended
		records[name] = rec
		ok, message = true, fmt.Sprintf("Job %s terminated.", name)
		c.log.Info("job terminated", "job", name, "pid", rec.PID)
		return true, nil
	})
	if err != nil {
		return false, err.Error()
	}
	return ok, message
}

// Status is a pass-through read of the registry.
func (c *Controller) Status() (map[string]Record, error) {
	return c.registry.Load()
}
