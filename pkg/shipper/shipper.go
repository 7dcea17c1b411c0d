// Package shipper defines the carrier-agnostic shipping domain model
// and the contract a carrier integration must implement.
package shipper

import (
	"context"
)

// Carrier defines the interface a carrier integration must implement.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "UPS").
	Name() string

	// ValidateAddress checks an address against the carrier's address
	// database and returns the matched candidate.
	ValidateAddress(ctx context.Context, addr Address) (Address, error)

	// ShopRates returns rate quotes for the requested shipment. The
	// returned rates carry no token; tokens are issued on persistence.
	ShopRates(ctx context.Context, req QuoteRequest) ([]Rate, error)

	// CreateShipment books a shipment with the carrier.
	CreateShipment(ctx context.Context, order ShipmentOrder) (ShipmentConfirmation, error)

	// TrackShipment returns the latest tracking snapshot for a
	// tracking number.
	TrackShipment(ctx context.Context, trackingNumber string) (TrackingSnapshot, error)

	// TrackingURL builds a public status-page URL for a tracking
	// number.
	TrackingURL(trackingNumber string) string
}
