package ports

import (
	"context"

	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
)

// CarrierRepository stores carrier statistics.
type CarrierRepository interface {
	// Get returns errs.ObjectNotFoundError for a carrier without statistics yet.
	Get(ctx context.Context, id kernel.UUID) (*carrier.Carrier, error)

	// Save inserts statistics at version 0 and otherwise performs a
	// conditional update on the version.
	Save(ctx context.Context, aggregate *carrier.Carrier) error
}
