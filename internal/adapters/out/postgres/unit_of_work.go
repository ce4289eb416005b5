// Package postgres provides the GORM connection, schema migrations and the
// Unit of Work binding the parcel, mission and carrier repositories and the
// transactional outbox to one database transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, clock.System{})
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.ParcelRepository().Update(ctx, p); err != nil {
//	    return err
//	}
//	if err := uow.MissionRepository().Add(ctx, m); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns gorm.ErrInvalidTransaction and is
// safe to ignore.
package postgres

import (
	"context"
	"fmt"

	"handoff/internal/adapters/out/postgres/carrierrepo"
	"handoff/internal/adapters/out/postgres/missionrepo"
	"handoff/internal/adapters/out/postgres/outboxrepo"
	"handoff/internal/adapters/out/postgres/parcelrepo"
	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/logger"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

func (a trackedAggregate) String() string {
	kind := "aggregate"
	switch a.Aggregate.(type) {
	case *parcel.Parcel:
		kind = "parcel"
	case *mission.Mission:
		kind = "mission"
	case *carrier.Carrier:
		kind = "carrier"
	}
	return fmt.Sprintf("%s:%s", kind, a.ID)
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db    *gorm.DB
	clock clock.Clock
	log   *logger.Logger
}

func NewGormUnitOfWorkFactory(db *gorm.DB, clk clock.Clock) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, clock: clk}
}

// WithLogger makes every committed unit of work log the aggregates it wrote
// at debug level.
func (f *GormUnitOfWorkFactory) WithLogger(log *logger.Logger) *GormUnitOfWorkFactory {
	f.log = log
	return f
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		clock:             f.clock,
		log:               f.log,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction. Repositories obtained
// before Begin run on the pool, after Begin on the transaction.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	clock             clock.Clock
	log               *logger.Logger
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. A second call is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err == nil {
		uow.logCommitted(ctx)
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) ParcelRepository() ports.ParcelRepository {
	return parcelrepo.NewGormParcelRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) MissionRepository() ports.MissionRepository {
	return missionrepo.NewGormMissionRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) CarrierRepository() ports.CarrierRepository {
	return carrierrepo.NewGormCarrierRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) Outbox() ports.Outbox {
	return outboxrepo.NewGormOutbox(uow.conn(), uow.clock.Now)
}

// TrackAggregate registers an aggregate written within this unit of work.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregate writes the open transaction holds.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}

func (uow *GormUnitOfWork) logCommitted(ctx context.Context) {
	if uow.log == nil || len(uow.trackedAggregates) == 0 {
		return
	}
	written := make([]string, 0, len(uow.trackedAggregates))
	for _, a := range uow.trackedAggregates {
		written = append(written, a.String())
	}
	uow.log.Debug(uow.log.WithField(ctx, "aggregates", written), "unit of work committed")
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
