package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
)

// missionActor identifies a carrier acting on one of its missions.
type missionActor struct {
	missionID kernel.UUID
	carrierID kernel.UUID
}

func newMissionActor(missionID, carrierID kernel.UUID) (missionActor, error) {
	if err := errors.Join(
		validateID("missionId", missionID),
		validateID("carrierId", carrierID),
	); err != nil {
		return missionActor{}, err
	}
	return missionActor{missionID: missionID, carrierID: carrierID}, nil
}

func (a missionActor) MissionID() kernel.UUID { return a.missionID }
func (a missionActor) CarrierID() kernel.UUID { return a.carrierID }

// parcelOwner identifies a vendor acting on one of its parcels.
type parcelOwner struct {
	parcelID kernel.UUID
	vendorID kernel.UUID
}

func newParcelOwner(parcelID, vendorID kernel.UUID) (parcelOwner, error) {
	if err := errors.Join(
		validateID("parcelId", parcelID),
		validateID("vendorId", vendorID),
	); err != nil {
		return parcelOwner{}, err
	}
	return parcelOwner{parcelID: parcelID, vendorID: vendorID}, nil
}

func (o parcelOwner) ParcelID() kernel.UUID { return o.parcelID }
func (o parcelOwner) VendorID() kernel.UUID { return o.vendorID }
