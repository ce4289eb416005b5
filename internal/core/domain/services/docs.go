// Package services provides domain services that apply business operations
// across the parcel, mission and carrier aggregates.
//
// The package includes:
//   - Handoff: one transition per lifecycle operation, mutating the mission and
//     its parcel together and reporting the notifications and settlement to emit
//   - EstimateArrival: the flat-pace arrival estimate used on departure
package services
