package commands_test

import (
	"context"
	"testing"
	"time"

	"handoff/internal/adapters/out/postgres"
	"handoff/internal/adapters/out/postgres/sqlitetest"
	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/errs"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

const (
	photoURL = "https://cdn.example.com/packaging.jpg"
	proofURL = "https://cdn.example.com/proof.jpg"
)

var (
	louvre   = commands.Place{Address: "Rue de Rivoli, 75001 Paris", Lat: 48.8606, Lon: 2.3376}
	bastille = commands.Place{Address: "Place de la Bastille, 75011 Paris", Lat: 48.8532, Lon: 2.3692}
)

type uowFactoryFunc func() commands.UoW

func (f uowFactoryFunc) Create() commands.UoW { return f() }

type parcelUoWFactoryFunc func() commands.ParcelUoW

func (f parcelUoWFactoryFunc) Create() commands.ParcelUoW { return f() }

// fixture runs handlers against an in-memory sqlite database.
type fixture struct {
	t         *testing.T
	db        *gorm.DB
	clock     *clock.Manual
	store     *postgres.GormUnitOfWorkFactory
	uows      commands.UoWFactory
	vendorID  kernel.UUID
	carrierID kernel.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitetest.Open(t)
	clk := clock.NewManual(t0)
	store := postgres.NewGormUnitOfWorkFactory(db, clk)
	return &fixture{
		t:         t,
		db:        db,
		clock:     clk,
		store:     store,
		uows:      uowFactoryFunc(func() commands.UoW { return store.Create() }),
		vendorID:  kernel.NewUUID(),
		carrierID: kernel.NewUUID(),
	}
}

func (f *fixture) parcelUoWs() commands.ParcelUoWFactory {
	return parcelUoWFactoryFunc(func() commands.ParcelUoW { return f.store.Create() })
}

func (f *fixture) createParcel() parcel.Snapshot {
	f.t.Helper()
	cmd, err := commands.NewCreateParcelCommand(kernel.NewUUID(), f.vendorID, louvre, bastille)
	require.NoError(f.t, err)
	created, err := commands.NewCreateParcelCommandHandler(f.parcelUoWs(), f.clock).Handle(f.t.Context(), cmd)
	require.NoError(f.t, err)
	return created
}

func (f *fixture) accept(parcelID kernel.UUID) commands.Result {
	f.t.Helper()
	cmd, err := commands.NewAcceptMissionCommand(parcelID, f.carrierID)
	require.NoError(f.t, err)
	result, err := commands.NewAcceptMissionCommandHandler(f.uows, f.clock).Handle(f.t.Context(), cmd)
	require.NoError(f.t, err)
	return result
}

// packaged returns an accepted mission whose packaging both sides confirmed.
func (f *fixture) packaged() commands.Result {
	f.t.Helper()
	accepted := f.accept(f.createParcel().ID)

	f.clock.Advance(time.Minute)
	pkg, err := commands.NewConfirmPackagingCommand(accepted.Mission.ID, f.carrierID, photoURL)
	require.NoError(f.t, err)
	_, err = commands.NewConfirmPackagingCommandHandler(f.uows, f.clock).Handle(f.t.Context(), pkg)
	require.NoError(f.t, err)

	f.clock.Advance(time.Minute)
	vendor, err := commands.NewVendorConfirmPackagingCommand(accepted.Parcel.ID, f.vendorID)
	require.NoError(f.t, err)
	result, err := commands.NewVendorConfirmPackagingCommandHandler(f.uows, f.clock).Handle(f.t.Context(), vendor)
	require.NoError(f.t, err)
	return result
}

// delivered returns a picked up mission whose proof was submitted one hour
// after t0, so its confirmation deadline is t0+13h.
func (f *fixture) delivered() commands.Result {
	f.t.Helper()
	packaged := f.packaged()

	pickup, err := commands.NewPickupMissionCommand(packaged.Mission.ID, f.carrierID)
	require.NoError(f.t, err)
	_, err = commands.NewPickupMissionCommandHandler(f.uows, f.clock).Handle(f.t.Context(), pickup)
	require.NoError(f.t, err)

	f.clock.Set(t0.Add(time.Hour))
	submit, err := commands.NewSubmitDeliveryProofCommand(packaged.Mission.ID, f.carrierID, proofURL)
	require.NoError(f.t, err)
	result, err := commands.NewSubmitDeliveryProofCommandHandler(f.uows, f.clock).Handle(f.t.Context(), submit)
	require.NoError(f.t, err)
	return result
}

func (f *fixture) loadMission(id kernel.UUID) *mission.Mission {
	f.t.Helper()
	m, err := f.store.Create().MissionRepository().Get(f.t.Context(), id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) loadParcel(id kernel.UUID) *parcel.Parcel {
	f.t.Helper()
	p, err := f.store.Create().ParcelRepository().Get(f.t.Context(), id)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) carrierStats() *carrier.Carrier {
	f.t.Helper()
	c, err := f.store.Create().CarrierRepository().Get(f.t.Context(), f.carrierID)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) outboxCount(kind ports.OutboxKind) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Table("outbox_messages").Where("kind = ?", string(kind)).Count(&n).Error)
	return n
}

// staleUoW hands out a mission snapshot taken before a competing writer
// committed, reproducing the loser of a race on sqlite's single connection.
// Only the first read is stale.
type staleUoW struct {
	commands.UoW
	stale  *mission.Mission
	served *bool
}

func (u staleUoW) MissionRepository() ports.MissionRepository {
	return staleMissions{MissionRepository: u.UoW.MissionRepository(), stale: u.stale, served: u.served}
}

type staleMissions struct {
	ports.MissionRepository
	stale  *mission.Mission
	served *bool
}

func (r staleMissions) Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error) {
	if *r.served {
		return r.MissionRepository.Get(ctx, id)
	}
	*r.served = true
	return mission.RestoreMission(r.stale.Snapshot())
}

func (r staleMissions) GetCurrentForParcel(ctx context.Context, parcelID kernel.UUID) (*mission.Mission, error) {
	if *r.served {
		return r.MissionRepository.GetCurrentForParcel(ctx, parcelID)
	}
	*r.served = true
	return mission.RestoreMission(r.stale.Snapshot())
}

func (r staleMissions) FindAwaitingAutoConfirmation(context.Context, time.Time, int) ([]kernel.UUID, error) {
	return []kernel.UUID{r.stale.ID()}, nil
}

func (f *fixture) staleUoWs(stale *mission.Mission) commands.UoWFactory {
	served := false
	return uowFactoryFunc(func() commands.UoW {
		return staleUoW{UoW: f.store.Create(), stale: stale, served: &served}
	})
}

// racedCarrierUoW fails every carrier statistics write with a conflict, as if
// another delivery of the same carrier committed first.
type racedCarrierUoW struct {
	commands.UoW
}

func (u racedCarrierUoW) CarrierRepository() ports.CarrierRepository {
	return racedCarriers{CarrierRepository: u.UoW.CarrierRepository()}
}

type racedCarriers struct {
	ports.CarrierRepository
}

func (racedCarriers) Save(_ context.Context, c *carrier.Carrier) error {
	return errs.NewConflictError("carrier", c.ID())
}

func (f *fixture) racedCarrierUoWs() commands.UoWFactory {
	return uowFactoryFunc(func() commands.UoW {
		return racedCarrierUoW{UoW: f.store.Create()}
	})
}
