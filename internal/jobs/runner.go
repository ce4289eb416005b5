package jobs

import (
	"context"
	"fmt"
	"time"

	"handoff/internal/pkg/logger"
	"handoff/internal/pkg/metrics"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner executes a Job under its lock, recording duration and outcome.
type Runner struct {
	job     Job
	lock    Lock
	log     *logger.Logger
	metrics *metrics.JobMetrics
	timeout time.Duration
}

// NewRunner wraps job. A nil lock means the job runs without exclusion; a
// zero timeout means no deadline beyond the parent context.
func NewRunner(job Job, lock Lock, log *logger.Logger, m *metrics.JobMetrics, timeout time.Duration) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{job: job, lock: lock, log: log, metrics: m, timeout: timeout}
}

func (r *Runner) Name() string {
	return r.job.Name()
}

// RunOnce executes the job once. It reports ran=false when another instance
// held the lock.
func (r *Runner) RunOnce(ctx context.Context) (ran bool, err error) {
	name := r.job.Name()
	ctx = r.log.WithFields(ctx, map[string]any{"job": name, "event": "cron.job"})

	if r.lock != nil {
		locked, lockErr := r.lock.Acquire(ctx)
		if lockErr != nil {
			r.metrics.IncFailure(name)
			return false, fmt.Errorf("acquire %s lock: %w", name, lockErr)
		}
		if !locked {
			r.metrics.IncSkipped(name)
			r.log.Debug(ctx, "another instance holds the job lock, skipping")
			return false, nil
		}
		defer func() {
			if relErr := r.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
				r.log.Error(ctx, "failed to release job lock", relErr)
			}
		}()
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	err = r.job.Run(runCtx)
	duration := time.Since(start)
	r.metrics.ObserveDuration(name, duration)

	ctx = r.log.WithField(ctx, "duration_ms", duration.Milliseconds())
	if err != nil {
		r.metrics.IncFailure(name)
		r.log.Error(ctx, "job failed", err)
		return true, err
	}
	r.metrics.IncSuccess(name)
	r.log.Debug(ctx, "job completed")
	return true, nil
}
