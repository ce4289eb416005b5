package parcel

import (
	"errors"
	"strings"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/errs"
)

const maxAddressLength = 500

// Address is a free-text street address with its geocoded point. Geocoding is
// done upstream; the point arrives already resolved.
type Address struct {
	line  string
	point kernel.GeoPoint
}

// NewAddress validates the address line and point.
func NewAddress(line string, point kernel.GeoPoint) (Address, error) {
	line = strings.TrimSpace(line)

	var lineErr error
	switch {
	case line == "":
		lineErr = errs.NewValueIsRequiredError("address")
	case len(line) > maxAddressLength:
		lineErr = errs.NewValueIsOutOfRangeError("address length", len(line), 1, maxAddressLength)
	}

	if err := errors.Join(lineErr, point.Validate()); err != nil {
		return Address{}, err
	}
	return Address{line: line, point: point}, nil
}

func (a Address) Line() string           { return a.line }
func (a Address) Point() kernel.GeoPoint { return a.point }
