// Package kernel provides the value objects shared by the parcel, mission and
// carrier aggregates.
//
// The package includes:
//   - UUID: identifier value object with validation and comparison
//   - GeoPoint: latitude/longitude pair with great-circle distance
//   - PickupCode: the 6-digit secret a vendor checks at pickup
//   - Rating: a 1 to 5 star delivery rating
//
// All values are immutable and safe for concurrent use. Zero values fail
// Validate, so aggregates can detect values that bypassed their constructor.
package kernel
