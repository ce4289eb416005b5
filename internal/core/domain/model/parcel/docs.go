// Package parcel provides the Parcel aggregate: the vendor's shipment, its
// pickup and drop-off addresses, the pickup code and the packaging handshake.
package parcel
