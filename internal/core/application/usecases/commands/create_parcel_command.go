package commands

import (
	"errors"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/pkg/errs"
	"handoff/internal/pkg/guard"
)

var ErrCreateParcelCommandIsNotConstructed = errors.New(
	"CreateParcelCommand must be created via NewCreateParcelCommand constructor",
)

// Place is an address as submitted by a client.
type Place struct {
	Address string
	Lat     float64
	Lon     float64
}

// CreateParcelCommand represents a vendor publishing a parcel for carriers.
//
// Example:
//
//	cmd, err := NewCreateParcelCommand(kernel.NewUUID(), vendorID,
//	    Place{Address: "1 Rue de Rivoli, Paris", Lat: 48.8606, Lon: 2.3376},
//	    Place{Address: "5 Place de la Bastille, Paris", Lat: 48.8532, Lon: 2.3692},
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid parcel data: %w", err)
//	}
//
//	created, err := handler.Handle(ctx, cmd)
type CreateParcelCommand struct { //nolint:recvcheck //using for validation
	parcelID kernel.UUID
	vendorID kernel.UUID
	pickup   parcel.Address
	dropoff  parcel.Address

	guard guard.ConstructorGuard
}

// NewCreateParcelCommand validates identifiers, address lines and coordinates.
func NewCreateParcelCommand(parcelID, vendorID kernel.UUID, pickup, dropoff Place) (CreateParcelCommand, error) {
	cmd := CreateParcelCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		validateID("parcelId", parcelID),
		validateID("vendorId", vendorID),
		cmd.setAddress(&cmd.pickup, "pickup", pickup),
		cmd.setAddress(&cmd.dropoff, "dropoff", dropoff),
	); err != nil {
		return CreateParcelCommand{}, err
	}

	cmd.parcelID = parcelID
	cmd.vendorID = vendorID
	return cmd, nil
}

func (c CreateParcelCommand) Validate() error {
	return c.guard.Validate(ErrCreateParcelCommandIsNotConstructed)
}

func (c CreateParcelCommand) ParcelID() kernel.UUID   { return c.parcelID }
func (c CreateParcelCommand) VendorID() kernel.UUID   { return c.vendorID }
func (c CreateParcelCommand) Pickup() parcel.Address  { return c.pickup }
func (c CreateParcelCommand) Dropoff() parcel.Address { return c.dropoff }

func (c *CreateParcelCommand) setAddress(dst *parcel.Address, name string, place Place) error {
	point, err := kernel.NewGeoPoint(place.Lat, place.Lon)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	address, err := parcel.NewAddress(place.Address, point)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	*dst = address
	return nil
}
