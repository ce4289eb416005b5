package commands

import (
	"errors"

	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

const (
	DefaultSweepBatchSize = 100
	MaxSweepBatchSize     = 1000
)

var ErrSweepDeliveryConfirmationsCommandIsNotConstructed = errors.New(
	"SweepDeliveryConfirmationsCommand must be created via NewSweepDeliveryConfirmationsCommand constructor",
)

// SweepDeliveryConfirmationsCommand asks for one pass over expired
// confirmation windows. A batch size of 0 selects DefaultSweepBatchSize.
type SweepDeliveryConfirmationsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewSweepDeliveryConfirmationsCommand(batchSize int) (SweepDeliveryConfirmationsCommand, error) {
	if batchSize == 0 {
		batchSize = DefaultSweepBatchSize
	}
	if batchSize < 0 || batchSize > MaxSweepBatchSize {
		return SweepDeliveryConfirmationsCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, MaxSweepBatchSize)
	}

	return SweepDeliveryConfirmationsCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SweepDeliveryConfirmationsCommand) Validate() error {
	return c.guard.Validate(ErrSweepDeliveryConfirmationsCommandIsNotConstructed)
}

func (c SweepDeliveryConfirmationsCommand) BatchSize() int { return c.batchSize }
