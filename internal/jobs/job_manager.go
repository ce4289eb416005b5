package jobs

import (
	"context"
	"fmt"
	"time"

	"handoff/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Schedule binds a Runner to a cron spec.
type Schedule struct {
	Spec   string
	Runner *Runner
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	cron      *cron.Cron
	log       *logger.Logger
	schedules []Schedule
	entries   map[string]cron.EntryID
	started   bool
}

// NewJobManager creates a job manager running each schedule on one scheduler.
// Overlapping runs of the same job are skipped and panics are recovered.
func NewJobManager(log *logger.Logger, schedules ...Schedule) *JobManager {
	if log == nil {
		log = logger.Nop()
	}
	cronLog := log.CronLogger("scheduler")
	return &JobManager{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:       log,
		schedules: schedules,
		entries:   make(map[string]cron.EntryID, len(schedules)),
	}
}

// StartAll registers every schedule and starts the scheduler.
// Returns an error if any spec fails to parse; nothing is started then.
func (jm *JobManager) StartAll() error {
	for _, s := range jm.schedules {
		runner := s.Runner
		id, err := jm.cron.AddFunc(s.Spec, func() {
			_, _ = runner.RunOnce(context.Background())
		})
		if err != nil {
			for name, added := range jm.entries {
				jm.cron.Remove(added)
				delete(jm.entries, name)
			}
			return fmt.Errorf("failed to schedule %s job: %w", runner.Name(), err)
		}
		jm.entries[runner.Name()] = id
		jm.log.Info(jm.log.WithFields(context.Background(), map[string]any{
			"job":  runner.Name(),
			"spec": s.Spec,
		}), "job scheduled")
	}

	jm.cron.Start()
	jm.started = true
	return nil
}

// StopAll stops the scheduler and waits for running jobs until ctx is done.
func (jm *JobManager) StopAll(ctx context.Context) {
	if !jm.started {
		return
	}
	done := jm.cron.Stop().Done()
	select {
	case <-done:
		jm.log.Info(context.Background(), "scheduled jobs stopped")
	case <-ctx.Done():
		jm.log.Warn(context.Background(), "scheduled jobs still running at shutdown", ctx.Err())
	}
	jm.started = false
}

// Next reports the next activation of every scheduled job.
func (jm *JobManager) Next() map[string]time.Time {
	next := make(map[string]time.Time, len(jm.entries))
	for name, id := range jm.entries {
		next[name] = jm.cron.Entry(id).Next
	}
	return next
}
