// Package mission provides the Mission aggregate: one carrier's assignment to
// one parcel, from acceptance through pickup to a resolved delivery.
//
// The package includes:
//   - Mission: the aggregate root holding the lifecycle timestamps and the
//     delivery confirmation handshake
//   - Status: the lifecycle state machine
//   - Resolution and DeliveryView: the client-facing outcome of the handshake
//
// Key business rules:
//   - Status follows Accepted -> InProgress -> PickedUp -> Delivered, with
//     Accepted -> Cancelled before departure
//   - Delivery proof opens a fixed 12 hour confirmation window
//   - The vendor confirms or contests once; an unanswered window is
//     auto-confirmed after the deadline
package mission
