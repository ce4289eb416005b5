package jobs

import (
	"context"

	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/pkg/logger"
	"handoff/internal/pkg/metrics"
)

const OutboxRelayJobName = "outbox_relay"

// RelayHandler is implemented by commands.DispatchOutboxCommandHandler.
type RelayHandler interface {
	Handle(ctx context.Context, cmd commands.DispatchOutboxCommand) (commands.DispatchReport, error)
}

// OutboxRelayJob hands committed side effects to the collaborators.
type OutboxRelayJob struct {
	handler     RelayHandler
	batchSize   int
	maxAttempts int
	log         *logger.Logger
	metrics     *metrics.JobMetrics
}

func NewOutboxRelayJob(handler RelayHandler, batchSize, maxAttempts int, log *logger.Logger, m *metrics.JobMetrics) *OutboxRelayJob {
	if log == nil {
		log = logger.Nop()
	}
	return &OutboxRelayJob{handler: handler, batchSize: batchSize, maxAttempts: maxAttempts, log: log, metrics: m}
}

func (j *OutboxRelayJob) Name() string {
	return OutboxRelayJobName
}

func (j *OutboxRelayJob) Run(ctx context.Context) error {
	cmd, err := commands.NewDispatchOutboxCommand(j.batchSize, j.maxAttempts)
	if err != nil {
		return err
	}

	report, err := j.handler.Handle(ctx, cmd)
	for _, item := range report.Items {
		j.metrics.IncOutbox(string(item.Message.Kind), string(item.Result))
	}
	if err != nil {
		return err
	}

	if len(report.Items) > 0 {
		j.log.Debug(j.log.WithFields(ctx, map[string]any{
			"sent":    report.Count(commands.DispatchSent),
			"dropped": report.Count(commands.DispatchDropped),
			"retry":   report.Count(commands.DispatchRetry),
		}), "outbox relay finished")
	}
	return nil
}
