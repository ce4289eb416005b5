package commands

import (
	"context"
	"errors"
	"fmt"

	"handoff/internal/core/ports"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/logger"

	"go.uber.org/multierr"
)

// DispatchResult is what the relay did with one outbox message.
type DispatchResult string

const (
	DispatchSent    DispatchResult = "sent"
	DispatchDropped DispatchResult = "dropped"
	DispatchRetry   DispatchResult = "retry"
)

// DispatchItem reports one relayed message.
type DispatchItem struct {
	Message ports.OutboxMessage
	Result  DispatchResult
}

// DispatchReport summarises one relay run.
type DispatchReport struct {
	Items []DispatchItem
}

func (r DispatchReport) Count(result DispatchResult) int {
	n := 0
	for _, item := range r.Items {
		if item.Result == result {
			n++
		}
	}
	return n
}

var errUnknownOutboxKind = errors.New("unknown outbox message kind")

// DispatchOutboxCommandHandler relays committed side effects to the
// notification dispatcher and the settlement trigger.
//
// Notifications are fire and forget: a failed Send is logged and the message
// is marked dispatched (DispatchDropped). Settlements are retried on later
// runs until the trigger acknowledges them or maxAttempts is reached; the
// mission id travels as idempotency key so redelivery is harmless.
type DispatchOutboxCommandHandler struct {
	store      ports.OutboxStore
	notifier   ports.NotificationDispatcher
	settlement ports.SettlementTrigger
	clock      clock.Clock
	log        *logger.Logger
}

func NewDispatchOutboxCommandHandler(
	store ports.OutboxStore,
	notifier ports.NotificationDispatcher,
	settlement ports.SettlementTrigger,
	clk clock.Clock,
	log *logger.Logger,
) DispatchOutboxCommandHandler {
	if log == nil {
		log = logger.Nop()
	}
	return DispatchOutboxCommandHandler{
		store:      store,
		notifier:   notifier,
		settlement: settlement,
		clock:      clk,
		log:        log,
	}
}

// Handle returns an error when the outbox cannot be read or a message state
// cannot be recorded. Collaborator failures are not errors of the run.
func (h DispatchOutboxCommandHandler) Handle(ctx context.Context, cmd DispatchOutboxCommand) (DispatchReport, error) {
	if err := cmd.Validate(); err != nil {
		return DispatchReport{}, err
	}

	messages, err := h.store.FetchPending(ctx, cmd.BatchSize(), cmd.MaxAttempts())
	if err != nil {
		return DispatchReport{}, fmt.Errorf("fetching pending outbox messages: %w", err)
	}

	report := DispatchReport{Items: make([]DispatchItem, 0, len(messages))}
	var markErr error
	for _, msg := range messages {
		result, dispatchErr := h.dispatch(ctx, msg)

		msgCtx := h.log.WithFields(ctx, map[string]any{
			"outbox_id":  msg.ID.String(),
			"kind":       string(msg.Kind),
			"mission_id": msg.MissionID.String(),
		})

		switch result {
		case DispatchRetry:
			h.log.Warn(msgCtx, "outbox dispatch failed, will retry", dispatchErr)
			markErr = multierr.Append(markErr, h.store.MarkFailed(ctx, msg.ID, dispatchErr))
		case DispatchDropped:
			h.log.Warn(msgCtx, "notification dispatch failed, dropping", dispatchErr)
			markErr = multierr.Append(markErr, h.store.MarkDispatched(ctx, msg.ID, h.clock.Now()))
		default:
			h.log.Debug(msgCtx, "outbox message dispatched")
			markErr = multierr.Append(markErr, h.store.MarkDispatched(ctx, msg.ID, h.clock.Now()))
		}

		report.Items = append(report.Items, DispatchItem{Message: msg, Result: result})
	}

	return report, markErr
}

func (h DispatchOutboxCommandHandler) dispatch(ctx context.Context, msg ports.OutboxMessage) (DispatchResult, error) {
	switch msg.Kind {
	case ports.OutboxNotification:
		if msg.Notification == nil {
			return DispatchRetry, fmt.Errorf("notification message %s has no payload", msg.ID)
		}
		n := msg.Notification
		if err := h.notifier.Send(ctx, n.Recipient, n.Title, n.Body, n.Payload); err != nil {
			return DispatchDropped, err
		}
		return DispatchSent, nil
	case ports.OutboxSettlement:
		if err := h.settlement.OnDeliveryConfirmed(ctx, msg.MissionID); err != nil {
			return DispatchRetry, err
		}
		return DispatchSent, nil
	default:
		return DispatchRetry, fmt.Errorf("%w: %q", errUnknownOutboxKind, msg.Kind)
	}
}
