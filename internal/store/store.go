// Package store implements the persistence gateway for shipments,
// addresses, parcels and saved rates.
package store

import (
	"context"
	"time"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// Quote bundles the rows created by one quote request. The shipment is
// persisted together with its two addresses, its parcels and its rates
// in one atomic unit; a shipment row without its children is a
// reportable inconsistency.
type Quote struct {
	Shipment shipper.Shipment
	Origin   shipper.Address
	Delivery shipper.Address
	Parcels  []shipper.Parcel
	Rates    []shipper.Rate
}

// Store defines the persistence operations the workflows depend on.
// Rows are only ever created or mutated; nothing is deleted here -
// retention is an external concern.
type Store interface {
	// CreateAddress inserts an address, returning it with its
	// generated id.
	CreateAddress(ctx context.Context, addr shipper.Address) (shipper.Address, error)

	// CreateShipment inserts a shipment row, returning it with its
	// generated id.
	CreateShipment(ctx context.Context, s shipper.Shipment) (shipper.Shipment, error)

	// CreateParcel inserts a parcel owned by a shipment.
	CreateParcel(ctx context.Context, p shipper.Parcel, shipmentID int64) (shipper.Parcel, error)

	// CreateSavedRate inserts a rate owned by a shipment, issuing its
	// globally unique token.
	CreateSavedRate(ctx context.Context, r shipper.Rate, shipmentID int64) (shipper.Rate, error)

	// SaveQuote persists a complete quote atomically, returning the
	// bundle with generated ids and rate tokens filled in. Rate order
	// is preserved.
	SaveQuote(ctx context.Context, q Quote) (Quote, error)

	// GetSavedRateByToken looks a rate up by its token. Unknown tokens
	// yield shipper.ErrNotFound.
	GetSavedRateByToken(ctx context.Context, token string) (shipper.Rate, error)

	// GetShipmentByID loads a shipment row.
	GetShipmentByID(ctx context.Context, id int64) (shipper.Shipment, error)

	// GetAddressByID loads an address row.
	GetAddressByID(ctx context.Context, id int64) (shipper.Address, error)

	// GetParcelsByShipmentID loads all parcels owned by a shipment.
	GetParcelsByShipmentID(ctx context.Context, shipmentID int64) ([]shipper.Parcel, error)

	// GetUnfinishedShipments loads all shipments whose status is not
	// terminal.
	GetUnfinishedShipments(ctx context.Context) ([]shipper.Shipment, error)

	// UpdateShipment persists a partial update of a shipment row by
	// id.
	UpdateShipment(ctx context.Context, s shipper.Shipment) error

	// ConsumeShipment merges shipment-creation results into the row,
	// succeeding only while the stored tracking number is still
	// empty. A concurrent consumer losing the race observes
	// shipper.ErrConflict.
	ConsumeShipment(ctx context.Context, s shipper.Shipment) error

	// UpdateTracking persists a status transition observed by the
	// tracking reconciler.
	UpdateTracking(ctx context.Context, shipmentID int64, status shipper.Status, at time.Time) error
}
