// Package jobs provides scheduled background tasks for the hand-off system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic work that must stay off the request path.
//
// # Available Jobs
//
// 1. DeliverySweepJob - auto-confirms deliveries whose 12h confirmation window expired
// 2. OutboxRelayJob - hands committed notifications and settlements to the collaborators
//
// # Usage
//
// Each job is wrapped in a Runner holding its lock and metrics, and the
// runners are scheduled through JobManager:
//
//	sweep := jobs.NewRunner(jobs.NewDeliverySweepJob(sweepHandler, 100, log, m), lock, log, m, time.Minute)
//	relay := jobs.NewRunner(jobs.NewOutboxRelayJob(relayHandler, 50, 10, log, m), relayLock, log, m, 0)
//
//	jobManager := jobs.NewJobManager(log,
//		jobs.Schedule{Spec: "@every 1m", Runner: sweep},
//		jobs.Schedule{Spec: "@every 5s", Runner: relay},
//	)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll(shutdownCtx)
//
// # Exclusion
//
// Overlapping runs inside one process are skipped by cron.SkipIfStillRunning.
// Across processes the Runner takes a RedisLock (SET NX with TTL) before each
// run; without Redis a LocalLock is used. The sweep stays correct without the
// lock because every mission is resolved through a conditional write; the
// lock only avoids wasted work.
//
// # Error Handling
//
// - A run skipped because of the lock is counted, not logged as an error
// - Sweep per-mission failures are logged individually and fail the run
// - Failed job scheduling removes any jobs already added
package jobs
