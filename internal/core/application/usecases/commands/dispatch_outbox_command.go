package commands

import (
	"errors"

	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

const (
	DefaultOutboxBatchSize   = 50
	DefaultOutboxMaxAttempts = 10
)

var ErrDispatchOutboxCommandIsNotConstructed = errors.New(
	"DispatchOutboxCommand must be created via NewDispatchOutboxCommand constructor",
)

// DispatchOutboxCommand asks the relay to hand one batch of pending outbox
// messages to the collaborators. Zero values select the defaults.
type DispatchOutboxCommand struct { //nolint:recvcheck //using for validation
	batchSize   int
	maxAttempts int

	guard guard.ConstructorGuard
}

func NewDispatchOutboxCommand(batchSize, maxAttempts int) (DispatchOutboxCommand, error) {
	if batchSize == 0 {
		batchSize = DefaultOutboxBatchSize
	}
	if maxAttempts == 0 {
		maxAttempts = DefaultOutboxMaxAttempts
	}

	var batchErr, attemptsErr error
	if batchSize < 0 {
		batchErr = errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	if maxAttempts < 0 {
		attemptsErr = errs.NewValueIsOutOfRangeError("maxAttempts", maxAttempts, 1, "unbounded")
	}
	if err := errors.Join(batchErr, attemptsErr); err != nil {
		return DispatchOutboxCommand{}, err
	}

	return DispatchOutboxCommand{
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c DispatchOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOutboxCommandIsNotConstructed)
}

func (c DispatchOutboxCommand) BatchSize() int   { return c.batchSize }
func (c DispatchOutboxCommand) MaxAttempts() int { return c.maxAttempts }
