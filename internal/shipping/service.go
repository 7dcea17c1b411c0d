// Package shipping implements the connector's order workflows: rate
// quoting, shipment creation, address validation and tracking
// reconciliation.
package shipping

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/internal/store"
	"github.com/tournevent/shipping-connector/internal/telemetry"
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// Service coordinates the carrier, the store and the marketplace
// channels.
type Service struct {
	carrier  shipper.Carrier
	store    store.Store
	notifier marketplace.Notifier
	validate *shipper.Validator
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
}

func NewService(carrier shipper.Carrier, st store.Store, notifier marketplace.Notifier, logger *otelzap.Logger, metrics *telemetry.Metrics) *Service {
	return &Service{
		carrier:  carrier,
		store:    st,
		notifier: notifier,
		validate: shipper.NewValidator(),
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer("shipping"),
	}
}

// statusText renders a status for human consumption in responses and
// notifications.
func statusText(s shipper.Status) string {
	switch s {
	case shipper.StatusPreTransit:
		return "Label created, awaiting pickup"
	case shipper.StatusTransit:
		return "In transit"
	case shipper.StatusDelivered:
		return "Delivered"
	case shipper.StatusReturned:
		return "Returned to sender"
	case shipper.StatusFailure:
		return "Delivery failed"
	default:
		return "Status unknown"
	}
}
