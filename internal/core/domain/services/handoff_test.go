package services_test

import (
	"testing"
	"time"

	"handoff/internal/core/domain/model/carrier"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/domain/services"
	"handoff/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

const (
	photo = "https://cdn.example.com/packaging.jpg"
	proof = "https://cdn.example.com/proof.jpg"
)

type fixture struct {
	h         services.Handoff
	parcel    *parcel.Parcel
	mission   *mission.Mission
	carrier   *carrier.Carrier
	vendorID  kernel.UUID
	carrierID kernel.UUID
}

func point(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pickup, err := parcel.NewAddress("pickup", point(t, 48.8606, 2.3376))
	require.NoError(t, err)
	dropoff, err := parcel.NewAddress("dropoff", point(t, 48.8532, 2.3692))
	require.NoError(t, err)
	code, err := kernel.NewPickupCode("123456")
	require.NoError(t, err)

	f := &fixture{h: services.NewHandoff(), vendorID: kernel.NewUUID(), carrierID: kernel.NewUUID()}
	f.parcel, err = parcel.NewParcel(kernel.NewUUID(), f.vendorID, pickup, dropoff, code, t0)
	require.NoError(t, err)
	f.carrier, err = carrier.NewCarrier(f.carrierID)
	require.NoError(t, err)

	var eff services.Effects
	f.mission, eff, err = f.h.Accept(f.parcel, f.carrierID, t0)
	require.NoError(t, err)
	require.Len(t, eff.Notifications, 1)
	return f
}

func (f *fixture) packaged(t *testing.T) *fixture {
	t.Helper()
	_, err := f.h.ConfirmPackagingByCarrier(f.mission, f.parcel, f.carrierID, photo, t0.Add(time.Minute))
	require.NoError(t, err)
	_, err = f.h.ConfirmPackagingByVendor(f.mission, f.parcel, f.vendorID, t0.Add(2*time.Minute))
	require.NoError(t, err)
	return f
}

func (f *fixture) delivered(t *testing.T) *fixture {
	t.Helper()
	f.packaged(t)
	_, err := f.h.Pickup(f.mission, f.parcel, f.carrierID, t0.Add(3*time.Minute))
	require.NoError(t, err)
	_, err = f.h.SubmitDeliveryProof(f.mission, f.parcel, f.carrierID, proof, t0.Add(time.Hour))
	require.NoError(t, err)
	return f
}

func TestHandoff_Accept(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, parcel.Accepted, f.parcel.Status())
	assert.Equal(t, mission.Accepted, f.mission.Status())
	assert.True(t, f.mission.ParcelID().IsEqual(f.parcel.ID()))
	assert.True(t, f.parcel.CarrierID().IsEqual(f.carrierID))

	_, _, err := f.h.Accept(f.parcel, kernel.NewUUID(), t0)
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestHandoff_StartJourney(t *testing.T) {
	f := newFixture(t)
	// About 2.55 km from the pickup point, so 6 minutes at 2 min/km.
	origin := point(t, 48.8606, 2.3030)

	eff, err := f.h.StartJourney(f.mission, f.parcel, f.carrierID, origin, t0)

	require.NoError(t, err)
	assert.Equal(t, mission.InProgress, f.mission.Status())
	assert.Equal(t, parcel.InProgress, f.parcel.Status())
	assert.Equal(t, t0.Add(6*time.Minute), *f.mission.EstimatedArrival())
	require.Len(t, eff.Notifications, 1)
	n := eff.Notifications[0]
	assert.True(t, n.Recipient.IsEqual(f.vendorID))
	assert.Equal(t, services.KindCarrierDeparted, n.Payload["type"])
	assert.Equal(t, t0.Add(6*time.Minute).Format(time.RFC3339), n.Payload["estimatedArrival"])
	assert.False(t, eff.Settle)
}

func TestHandoff_Authorization(t *testing.T) {
	f := newFixture(t)
	stranger := kernel.NewUUID()

	_, err := f.h.ArriveAtPickup(f.mission, f.parcel, stranger, t0)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = f.h.ConfirmPackagingByVendor(f.mission, f.parcel, f.carrierID, t0)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	other := newFixture(t)
	_, err = f.h.Pickup(other.mission, f.parcel, other.carrierID, t0)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestHandoff_PickupGate(t *testing.T) {
	t.Run("carrier confirmation missing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.h.Pickup(f.mission, f.parcel, f.carrierID, t0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "packaging not yet confirmed by carrier")
		assert.Equal(t, mission.Accepted, f.mission.Status())
	})

	t.Run("vendor confirmation missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.h.ConfirmPackagingByCarrier(f.mission, f.parcel, f.carrierID, photo, t0)
		require.NoError(t, err)

		_, err = f.h.Pickup(f.mission, f.parcel, f.carrierID, t0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "packaging not yet confirmed by vendor")
		assert.Equal(t, mission.Accepted, f.mission.Status())
		assert.Equal(t, parcel.Accepted, f.parcel.Status())
	})

	t.Run("both confirmed", func(t *testing.T) {
		f := newFixture(t).packaged(t)

		eff, err := f.h.Pickup(f.mission, f.parcel, f.carrierID, t0.Add(5*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, mission.PickedUp, f.mission.Status())
		assert.Equal(t, parcel.PickedUp, f.parcel.Status())
		assert.Equal(t, services.KindParcelPickedUp, eff.Notifications[0].Payload["type"])
	})
}

func TestHandoff_PickupByCode(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		f := newFixture(t).packaged(t)

		_, err := f.h.PickupByCode(f.mission, f.parcel, f.vendorID, "123456", t0)

		require.NoError(t, err)
		assert.Equal(t, mission.PickedUp, f.mission.Status())
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newFixture(t).packaged(t)

		_, err := f.h.PickupByCode(f.mission, f.parcel, f.vendorID, "654321", t0)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, mission.Accepted, f.mission.Status())
	})

	t.Run("packaging gate still applies", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.h.PickupByCode(f.mission, f.parcel, f.vendorID, "123456", t0)

		assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})

	t.Run("parcel must be accepted", func(t *testing.T) {
		f := newFixture(t).packaged(t)
		_, err := f.h.StartJourney(f.mission, f.parcel, f.carrierID, point(t, 48.86, 2.33), t0)
		require.NoError(t, err)

		_, err = f.h.PickupByCode(f.mission, f.parcel, f.vendorID, "123456", t0)

		assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})
}

func TestHandoff_SubmitDeliveryProof(t *testing.T) {
	f := newFixture(t).delivered(t)

	assert.Equal(t, mission.PickedUp, f.mission.Status())
	assert.Equal(t, parcel.PickedUp, f.parcel.Status())
	assert.Equal(t, t0.Add(13*time.Hour), *f.mission.DeliveryConfirmationDeadline())

	_, err := f.h.SubmitDeliveryProof(f.mission, f.parcel, f.carrierID, proof, t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestHandoff_Cancel(t *testing.T) {
	f := newFixture(t)

	eff, err := f.h.Cancel(f.mission, f.parcel, f.carrierID, "vehicle broke down", t0.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, mission.Cancelled, f.mission.Status())
	assert.Equal(t, parcel.Pending, f.parcel.Status())
	assert.Nil(t, f.parcel.CarrierID())
	assert.True(t, eff.Notifications[0].Recipient.IsEqual(f.vendorID))

	next, _, err := f.h.Accept(f.parcel, kernel.NewUUID(), t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, mission.Accepted, next.Status())
}

func TestHandoff_ConfirmDelivery(t *testing.T) {
	f := newFixture(t).delivered(t)
	rating, _ := kernel.NewRating(5)

	eff, err := f.h.ConfirmDelivery(f.mission, f.parcel, f.carrier, f.vendorID, &rating, "thanks", t0.Add(2*time.Hour))

	require.NoError(t, err)
	assert.True(t, eff.Settle)
	assert.Equal(t, mission.Delivered, f.mission.Status())
	assert.Equal(t, parcel.Delivered, f.parcel.Status())
	assert.Equal(t, 1, f.carrier.CompletedDeliveries())
	assert.Equal(t, "5.00", f.carrier.AverageRating().StringFixed(2))
	assert.True(t, eff.Notifications[0].Recipient.IsEqual(f.carrierID))

	_, err = f.h.ConfirmDelivery(f.mission, f.parcel, f.carrier, f.vendorID, nil, "", t0.Add(3*time.Hour))
	assert.ErrorIs(t, err, errs.ErrAlreadyResolved)
	_, err = f.h.AutoConfirm(f.mission, f.parcel, f.carrier, t0.Add(14*time.Hour))
	assert.ErrorIs(t, err, errs.ErrAlreadyResolved)
}

func TestHandoff_ContestDelivery(t *testing.T) {
	f := newFixture(t).delivered(t)

	eff, err := f.h.ContestDelivery(f.mission, f.parcel, f.vendorID, "parcel damaged", t0.Add(2*time.Hour))

	require.NoError(t, err)
	assert.False(t, eff.Settle)
	assert.Equal(t, mission.PickedUp, f.mission.Status())
	assert.Equal(t, parcel.PickedUp, f.parcel.Status())
	assert.Equal(t, mission.ResolvedContested, f.mission.Resolution())

	_, err = f.h.ConfirmDelivery(f.mission, f.parcel, f.carrier, f.vendorID, nil, "", t0.Add(3*time.Hour))
	assert.ErrorIs(t, err, errs.ErrAlreadyResolved)
}

func TestHandoff_AutoConfirm(t *testing.T) {
	f := newFixture(t).delivered(t)

	_, err := f.h.AutoConfirm(f.mission, f.parcel, f.carrier, t0.Add(12*time.Hour))
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)

	eff, err := f.h.AutoConfirm(f.mission, f.parcel, f.carrier, t0.Add(14*time.Hour))

	require.NoError(t, err)
	assert.True(t, eff.Settle)
	assert.Len(t, eff.Notifications, 2)
	assert.True(t, f.mission.AutoConfirmed())
	assert.Equal(t, parcel.Delivered, f.parcel.Status())
	assert.Equal(t, 1, f.carrier.CompletedDeliveries())
	assert.Zero(t, f.carrier.RatingCount())

	_, err = f.h.ConfirmDelivery(f.mission, f.parcel, f.carrier, f.vendorID, nil, "", t0.Add(15*time.Hour))
	assert.ErrorIs(t, err, errs.ErrAlreadyResolved)
}

func TestEstimateArrival(t *testing.T) {
	here := point(t, 10, 10)

	eta, err := services.EstimateArrival(here, here, t0)
	require.NoError(t, err)
	assert.Equal(t, t0, eta)

	// One degree of latitude is about 111.19 km.
	eta, err = services.EstimateArrival(here, point(t, 11, 10), t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(223*time.Minute), eta)

	_, err = services.EstimateArrival(kernel.GeoPoint{}, here, t0)
	assert.Error(t, err)
}
