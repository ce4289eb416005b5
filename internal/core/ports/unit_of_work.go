package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per command. A UnitOfWork is not
// safe for concurrent use.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork binds the parcel, mission and carrier writes of one hand-off
// transition and its outbox rows to a single transaction.
type UnitOfWork interface {
	// Begin opens the transaction. Repositories obtained afterwards use it.
	Begin(ctx context.Context) error

	Commit(ctx context.Context) error

	// Rollback after Commit returns an error callers may discard, so it is
	// safe to defer right after Begin.
	Rollback(ctx context.Context) error

	ParcelRepository() ParcelRepository
	MissionRepository() MissionRepository
	CarrierRepository() CarrierRepository
	Outbox() Outbox
}
