// Package marketplace sends shipment notifications back to the sales
// channels that placed the orders.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// ShipmentEvent is the payload pushed to a channel when a shipment is
// created or changes tracking status.
type ShipmentEvent struct {
	PartnerID      string `json:"partnerId"`
	ShipmentNumber string `json:"shipmentNumber"`
	TrackingNumber string `json:"trackingNumber"`
	Status         string `json:"status"`
	StatusURL      string `json:"statusUrl"`
}

// Notifier delivers shipment events to the owning channel.
type Notifier interface {
	Notify(ctx context.Context, event ShipmentEvent) error
}

// Channel holds the connection settings for one marketplace partner.
type Channel struct {
	Partner string `json:"partner"`
	BaseURL string `json:"baseUrl"`
	Key     string `json:"key"`
	Secret  string `json:"secret"`
}

// Channels is the configured channel list, looked up by partner id.
type Channels []Channel

// Decode parses the channel list from its JSON environment value. It
// satisfies envconfig's Decoder interface.
func (cs *Channels) Decode(value string) error {
	if value == "" {
		*cs = nil
		return nil
	}
	if err := json.Unmarshal([]byte(value), cs); err != nil {
		return fmt.Errorf("parse channel config: %w", err)
	}
	return nil
}

// Lookup finds a channel by partner id.
func (cs Channels) Lookup(partner string) (Channel, error) {
	for _, c := range cs {
		if c.Partner == partner {
			return c, nil
		}
	}
	return Channel{}, shipper.ErrNotFound.WithMessage("unknown channel")
}
