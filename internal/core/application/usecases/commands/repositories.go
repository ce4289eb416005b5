// Package commands contains the operations that change hand-off state.
// Every handler validates its command, opens a unit of work, loads the
// aggregates it needs, applies one services.Handoff transition, writes the
// aggregates with conditional updates, records the side effects in the outbox
// and commits.
package commands

import (
	"context"

	"handoff/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ParcelRepoFactory provides access to the parcel repository within a transaction.
	ParcelRepoFactory interface {
		ParcelRepository() ports.ParcelRepository
	}

	// MissionRepoFactory provides access to the mission repository within a transaction.
	MissionRepoFactory interface {
		MissionRepository() ports.MissionRepository
	}

	// CarrierRepoFactory provides access to carrier statistics within a transaction.
	CarrierRepoFactory interface {
		CarrierRepository() ports.CarrierRepository
	}

	// OutboxFactory provides the transactional outbox.
	OutboxFactory interface {
		Outbox() ports.Outbox
	}

	// ParcelUoW manages transactions for parcel-only operations.
	ParcelUoW interface {
		TxManager
		ParcelRepoFactory
	}

	// ParcelUoWFactory creates new parcel unit of work instances.
	ParcelUoWFactory interface {
		Create() ParcelUoW
	}

	// UoW spans parcels, missions, carrier statistics and the outbox. Used by
	// every mission transition.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   p, err := uow.ParcelRepository().Get(ctx, parcelID)
	//   m, effects, err := services.NewHandoff().Accept(p, carrierID, now)
	//   // ... write aggregates, enqueue effects
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		ParcelRepoFactory
		MissionRepoFactory
		CarrierRepoFactory
		OutboxFactory
	}

	// UoWFactory creates new unit of work instances for mission transitions.
	UoWFactory interface {
		Create() UoW
	}
)
