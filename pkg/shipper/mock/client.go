// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// Client is a mock carrier for testing. Default responses are
// deterministic; individual operations can be overridden per test.
type Client struct {
	name string

	// Overrides replace the canned behaviour when set.
	OnValidateAddress func(ctx context.Context, addr shipper.Address) (shipper.Address, error)
	OnShopRates       func(ctx context.Context, req shipper.QuoteRequest) ([]shipper.Rate, error)
	OnCreateShipment  func(ctx context.Context, order shipper.ShipmentOrder) (shipper.ShipmentConfirmation, error)
	OnTrackShipment   func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error)

	mu             sync.Mutex
	createdOrders  []shipper.ShipmentOrder
	trackedNumbers []string
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// ValidateAddress echoes the address back as already valid.
func (c *Client) ValidateAddress(ctx context.Context, addr shipper.Address) (shipper.Address, error) {
	if c.OnValidateAddress != nil {
		return c.OnValidateAddress(ctx, addr)
	}
	return addr, nil
}

// ShopRates returns two deterministic rates.
func (c *Client) ShopRates(ctx context.Context, req shipper.QuoteRequest) ([]shipper.Rate, error) {
	if c.OnShopRates != nil {
		return c.OnShopRates(ctx, req)
	}
	return []shipper.Rate{
		{
			ServiceCode:  "03",
			Carrier:      c.name,
			ServiceLevel: "Ground",
			Price:        "11.25",
			CurrencyCode: "USD",
		},
		{
			ServiceCode:  "02",
			Carrier:      c.name,
			ServiceLevel: "2nd Day Air",
			Price:        "28.40",
			CurrencyCode: "USD",
		},
	}, nil
}

// CreateShipment returns a canned confirmation and records the order.
func (c *Client) CreateShipment(ctx context.Context, order shipper.ShipmentOrder) (shipper.ShipmentConfirmation, error) {
	if c.OnCreateShipment != nil {
		return c.OnCreateShipment(ctx, order)
	}
	c.mu.Lock()
	c.createdOrders = append(c.createdOrders, order)
	n := len(c.createdOrders)
	c.mu.Unlock()

	tracking := fmt.Sprintf("1Z%s%09d", "MOCK", n)
	return shipper.ShipmentConfirmation{
		ShipmentNumber: tracking,
		TrackingNumber: tracking,
		ChargeAmount:   "11.25",
		ChargeCurrency: "USD",
		WeightAmount:   "4.4",
		WeightUnits:    "LBS",
		LabelFormat:    "GIF",
		LabelData:      []byte("mock-label"),
	}, nil
}

// TrackShipment reports every shipment as in transit.
func (c *Client) TrackShipment(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
	if c.OnTrackShipment != nil {
		return c.OnTrackShipment(ctx, trackingNumber)
	}
	c.mu.Lock()
	c.trackedNumbers = append(c.trackedNumbers, trackingNumber)
	c.mu.Unlock()

	return shipper.TrackingSnapshot{
		TrackingNumber: trackingNumber,
		Status:         shipper.StatusTransit,
		StatusText:     "In Transit",
		ObservedAt:     time.Now().UTC(),
	}, nil
}

// TrackingURL returns a mock tracking link.
func (c *Client) TrackingURL(trackingNumber string) string {
	return fmt.Sprintf("https://track.%s.mock/track/%s", c.name, trackingNumber)
}

// CreatedOrders returns every order passed to CreateShipment.
func (c *Client) CreatedOrders() []shipper.ShipmentOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]shipper.ShipmentOrder(nil), c.createdOrders...)
}

// TrackedNumbers returns every tracking number queried.
func (c *Client) TrackedNumbers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.trackedNumbers...)
}

var _ shipper.Carrier = (*Client)(nil)
