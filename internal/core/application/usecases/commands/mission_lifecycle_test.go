package commands_test

import (
	"testing"
	"time"

	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateParcelCommandHandler_StoresPendingParcel(t *testing.T) {
	f := newFixture(t)

	created := f.createParcel()

	assert.Equal(t, parcel.Pending, created.Status)
	assert.Len(t, created.PickupCode, 6)
	stored := f.loadParcel(created.ID)
	assert.Equal(t, created.PickupCode, stored.PickupCode().String())
	assert.True(t, stored.IsOwnedBy(f.vendorID))
	assert.Nil(t, stored.CarrierID())
}

func TestAcceptMissionCommandHandler_AssignsCarrier(t *testing.T) {
	f := newFixture(t)
	created := f.createParcel()

	result := f.accept(created.ID)

	assert.Equal(t, mission.Accepted, result.Mission.Status)
	p := f.loadParcel(created.ID)
	assert.Equal(t, parcel.Accepted, p.Status())
	require.NotNil(t, p.CarrierID())
	assert.True(t, p.CarrierID().IsEqual(f.carrierID))
	assert.Equal(t, mission.Accepted, f.loadMission(result.Mission.ID).Status())
	assert.Equal(t, int64(1), f.outboxCount(ports.OutboxNotification))
}

func TestAcceptMissionCommandHandler_Rejections(t *testing.T) {
	f := newFixture(t)
	created := f.createParcel()
	handler := commands.NewAcceptMissionCommandHandler(f.uows, f.clock)

	own, err := commands.NewAcceptMissionCommand(created.ID, f.vendorID)
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), own)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	unknown, err := commands.NewAcceptMissionCommand(kernel.NewUUID(), f.carrierID)
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), unknown)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	f.accept(created.ID)
	late, err := commands.NewAcceptMissionCommand(created.ID, kernel.NewUUID())
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), late)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Equal(t, int64(1), f.outboxCount(ports.OutboxNotification))
}

func TestStartJourneyAndArrive(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)

	depart, err := commands.NewStartJourneyCommand(accepted.Mission.ID, f.carrierID, 48.8566, 2.3522)
	require.NoError(t, err)
	result, err := commands.NewStartJourneyCommandHandler(f.uows, f.clock).Handle(t.Context(), depart)
	require.NoError(t, err)

	assert.Equal(t, mission.InProgress, result.Mission.Status)
	assert.Equal(t, parcel.InProgress, result.Parcel.Status)
	require.NotNil(t, result.Mission.EstimatedArrival)
	assert.True(t, result.Mission.EstimatedArrival.After(t0))
	assert.Equal(t, parcel.InProgress, f.loadParcel(accepted.Parcel.ID).Status())

	f.clock.Advance(5 * time.Minute)
	arrive, err := commands.NewArriveAtPickupCommand(accepted.Mission.ID, f.carrierID)
	require.NoError(t, err)
	result, err = commands.NewArriveAtPickupCommandHandler(f.uows, f.clock).Handle(t.Context(), arrive)
	require.NoError(t, err)
	assert.Equal(t, mission.InProgress, result.Mission.Status)
	require.NotNil(t, f.loadMission(accepted.Mission.ID).ArrivedAt())

	_, err = commands.NewStartJourneyCommandHandler(f.uows, f.clock).Handle(t.Context(), depart)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Equal(t, int64(3), f.outboxCount(ports.OutboxNotification))
}

func TestStartJourney_OtherCarrierIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)

	cmd, err := commands.NewStartJourneyCommand(accepted.Mission.ID, kernel.NewUUID(), 48.8566, 2.3522)
	require.NoError(t, err)
	_, err = commands.NewStartJourneyCommandHandler(f.uows, f.clock).Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Equal(t, mission.Accepted, f.loadMission(accepted.Mission.ID).Status())
}

func TestPickup_RequiresBothPackagingConfirmations(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)
	pickupHandler := commands.NewPickupMissionCommandHandler(f.uows, f.clock)
	pickup, err := commands.NewPickupMissionCommand(accepted.Mission.ID, f.carrierID)
	require.NoError(t, err)

	_, err = pickupHandler.Handle(t.Context(), pickup)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Contains(t, err.Error(), "packaging not yet confirmed by carrier")

	pkg, err := commands.NewConfirmPackagingCommand(accepted.Mission.ID, f.carrierID, photoURL)
	require.NoError(t, err)
	_, err = commands.NewConfirmPackagingCommandHandler(f.uows, f.clock).Handle(t.Context(), pkg)
	require.NoError(t, err)

	_, err = pickupHandler.Handle(t.Context(), pickup)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Contains(t, err.Error(), "packaging not yet confirmed by vendor")

	vendor, err := commands.NewVendorConfirmPackagingCommand(accepted.Parcel.ID, f.vendorID)
	require.NoError(t, err)
	_, err = commands.NewVendorConfirmPackagingCommandHandler(f.uows, f.clock).Handle(t.Context(), vendor)
	require.NoError(t, err)

	result, err := pickupHandler.Handle(t.Context(), pickup)
	require.NoError(t, err)
	assert.Equal(t, mission.PickedUp, result.Mission.Status)
	assert.Equal(t, parcel.PickedUp, f.loadParcel(accepted.Parcel.ID).Status())
}

func TestVendorConfirmPackaging_Rejections(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)
	handler := commands.NewVendorConfirmPackagingCommandHandler(f.uows, f.clock)

	early, err := commands.NewVendorConfirmPackagingCommand(accepted.Parcel.ID, f.vendorID)
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), early)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)

	stranger, err := commands.NewVendorConfirmPackagingCommand(accepted.Parcel.ID, kernel.NewUUID())
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), stranger)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	unassigned := f.createParcel()
	none, err := commands.NewVendorConfirmPackagingCommand(unassigned.ID, f.vendorID)
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), none)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestConfirmPickupByCode(t *testing.T) {
	f := newFixture(t)
	packaged := f.packaged()
	handler := commands.NewConfirmPickupByCodeCommandHandler(f.uows, f.clock)

	wrong := "000000"
	if packaged.Parcel.PickupCode == wrong {
		wrong = "999999"
	}
	bad, err := commands.NewConfirmPickupByCodeCommand(packaged.Parcel.ID, f.vendorID, wrong)
	require.NoError(t, err)
	_, err = handler.Handle(t.Context(), bad)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, parcel.Accepted, f.loadParcel(packaged.Parcel.ID).Status())

	good, err := commands.NewConfirmPickupByCodeCommand(packaged.Parcel.ID, f.vendorID, packaged.Parcel.PickupCode)
	require.NoError(t, err)
	result, err := handler.Handle(t.Context(), good)
	require.NoError(t, err)
	assert.Equal(t, mission.PickedUp, result.Mission.Status)
	assert.Equal(t, parcel.PickedUp, f.loadParcel(packaged.Parcel.ID).Status())

	_, err = handler.Handle(t.Context(), good)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestSubmitDeliveryProof_OpensConfirmationWindow(t *testing.T) {
	f := newFixture(t)

	result := f.delivered()

	assert.Equal(t, mission.PickedUp, result.Mission.Status)
	assert.Equal(t, parcel.PickedUp, result.Parcel.Status)
	require.NotNil(t, result.Mission.DeliveryConfirmationDeadline)
	assert.Equal(t, t0.Add(13*time.Hour), *result.Mission.DeliveryConfirmationDeadline)

	m := f.loadMission(result.Mission.ID)
	view := m.DeliveryView(f.clock.Now())
	assert.Equal(t, mission.DeliveryAwaitingConfirmation, view.Status)
	assert.Equal(t, 12, view.HoursRemaining)

	again, err := commands.NewSubmitDeliveryProofCommand(result.Mission.ID, f.carrierID, proofURL)
	require.NoError(t, err)
	_, err = commands.NewSubmitDeliveryProofCommandHandler(f.uows, f.clock).Handle(t.Context(), again)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestCancelMission_ReleasesParcel(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)

	pkg, err := commands.NewConfirmPackagingCommand(accepted.Mission.ID, f.carrierID, photoURL)
	require.NoError(t, err)
	_, err = commands.NewConfirmPackagingCommandHandler(f.uows, f.clock).Handle(t.Context(), pkg)
	require.NoError(t, err)

	cancel, err := commands.NewCancelMissionCommand(accepted.Mission.ID, f.carrierID, "  flat tyre ")
	require.NoError(t, err)
	result, err := commands.NewCancelMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), cancel)
	require.NoError(t, err)

	assert.Equal(t, mission.Cancelled, result.Mission.Status)
	assert.Equal(t, "flat tyre", result.Mission.CancelReason)
	p := f.loadParcel(accepted.Parcel.ID)
	assert.Equal(t, parcel.Pending, p.Status())
	assert.Nil(t, p.CarrierID())
	require.NotNil(t, p.PackagingConfirmedAt())
	assert.Equal(t, photoURL, p.PackagingPhotoURL())

	other := kernel.NewUUID()
	reaccept, err := commands.NewAcceptMissionCommand(accepted.Parcel.ID, other)
	require.NoError(t, err)
	second, err := commands.NewAcceptMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), reaccept)
	require.NoError(t, err)
	assert.False(t, second.Mission.ID.IsEqual(accepted.Mission.ID))
	assert.True(t, f.loadParcel(accepted.Parcel.ID).CarrierID().IsEqual(other))
}

func TestCancelMission_NextCarrierKeepsPackagingHandshake(t *testing.T) {
	f := newFixture(t)
	packaged := f.packaged()

	cancel, err := commands.NewCancelMissionCommand(packaged.Mission.ID, f.carrierID, "")
	require.NoError(t, err)
	_, err = commands.NewCancelMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), cancel)
	require.NoError(t, err)

	other := kernel.NewUUID()
	reaccept, err := commands.NewAcceptMissionCommand(packaged.Parcel.ID, other)
	require.NoError(t, err)
	second, err := commands.NewAcceptMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), reaccept)
	require.NoError(t, err)
	assert.NotNil(t, second.Parcel.VendorPackagingConfirmedAt)

	pickup, err := commands.NewPickupMissionCommand(second.Mission.ID, other)
	require.NoError(t, err)
	result, err := commands.NewPickupMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), pickup)
	require.NoError(t, err)

	assert.Equal(t, mission.PickedUp, result.Mission.Status)
	assert.Equal(t, parcel.PickedUp, result.Parcel.Status)
	assert.Equal(t, photoURL, result.Parcel.PackagingPhotoURL)
}

func TestCancelMission_AfterDepartureIsRejected(t *testing.T) {
	f := newFixture(t)
	accepted := f.accept(f.createParcel().ID)

	depart, err := commands.NewStartJourneyCommand(accepted.Mission.ID, f.carrierID, 48.8566, 2.3522)
	require.NoError(t, err)
	_, err = commands.NewStartJourneyCommandHandler(f.uows, f.clock).Handle(t.Context(), depart)
	require.NoError(t, err)

	cancel, err := commands.NewCancelMissionCommand(accepted.Mission.ID, f.carrierID, "")
	require.NoError(t, err)
	_, err = commands.NewCancelMissionCommandHandler(f.uows, f.clock).Handle(t.Context(), cancel)
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Equal(t, mission.InProgress, f.loadMission(accepted.Mission.ID).Status())
}
