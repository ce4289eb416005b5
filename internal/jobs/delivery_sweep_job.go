package jobs

import (
	"context"

	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/pkg/logger"
	"handoff/internal/pkg/metrics"
)

const DeliverySweepJobName = "delivery_confirmation_sweep"

// SweepHandler is implemented by commands.SweepDeliveryConfirmationsCommandHandler.
type SweepHandler interface {
	Handle(ctx context.Context, cmd commands.SweepDeliveryConfirmationsCommand) (commands.SweepReport, error)
}

// DeliverySweepJob auto-confirms deliveries whose confirmation window expired.
// Per-mission failures are logged one by one and fail the run as a whole.
type DeliverySweepJob struct {
	handler   SweepHandler
	batchSize int
	log       *logger.Logger
	metrics   *metrics.JobMetrics
}

func NewDeliverySweepJob(handler SweepHandler, batchSize int, log *logger.Logger, m *metrics.JobMetrics) *DeliverySweepJob {
	if log == nil {
		log = logger.Nop()
	}
	return &DeliverySweepJob{handler: handler, batchSize: batchSize, log: log, metrics: m}
}

func (j *DeliverySweepJob) Name() string {
	return DeliverySweepJobName
}

func (j *DeliverySweepJob) Run(ctx context.Context) error {
	cmd, err := commands.NewSweepDeliveryConfirmationsCommand(j.batchSize)
	if err != nil {
		return err
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	for _, outcome := range []commands.SweepOutcome{commands.SweepConfirmed, commands.SweepSkipped, commands.SweepFailed} {
		j.metrics.AddSweepOutcome(string(outcome), report.Count(outcome))
	}
	for _, item := range report.Items {
		if item.Outcome == commands.SweepFailed {
			j.log.Error(j.log.WithField(ctx, "mission_id", item.MissionID.String()), "auto-confirmation failed", item.Err)
		}
	}

	if report.Visited() > 0 {
		j.log.Info(j.log.WithFields(ctx, map[string]any{
			"visited":   report.Visited(),
			"confirmed": report.Count(commands.SweepConfirmed),
			"skipped":   report.Count(commands.SweepSkipped),
			"failed":    report.Count(commands.SweepFailed),
		}), "delivery confirmation sweep finished")
	}
	return report.Err()
}
