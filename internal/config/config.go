package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/pkg/shipper/ups"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port         int    `envconfig:"PORT" default:"8080"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	SharedSecret string `envconfig:"SHARED_SECRET"`

	// Database
	DBDialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	DBDSN     string `envconfig:"DB_DSN" default:"shipping-connector.db"`

	// UPS
	UPSBaseURL            string        `envconfig:"UPS_BASE_URL" default:"https://onlinetools.ups.com/rest"`
	UPSTrackingBaseURL    string        `envconfig:"UPS_TRACKING_BASE_URL" default:"https://www.ups.com/track"`
	UPSUsername           string        `envconfig:"UPS_USERNAME"`
	UPSPassword           string        `envconfig:"UPS_PASSWORD"`
	UPSAccessKey          string        `envconfig:"UPS_ACCESS_KEY"`
	UPSAccountNumber      string        `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSUseNegotiatedRates bool          `envconfig:"UPS_USE_NEGOTIATED_RATES" default:"false"`
	UPSUseMock            bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSTimeout            time.Duration `envconfig:"UPS_TIMEOUT" default:"30s"`

	// Shipper of record printed on labels and billed for shipments.
	ShipperName    string `envconfig:"SHIPPER_NAME"`
	ShipperTaxID   string `envconfig:"SHIPPER_TAX_ID"`
	ShipperPhone   string `envconfig:"SHIPPER_PHONE"`
	ShipperStreet1 string `envconfig:"SHIPPER_STREET1"`
	ShipperStreet2 string `envconfig:"SHIPPER_STREET2"`
	ShipperCity    string `envconfig:"SHIPPER_CITY"`
	ShipperState   string `envconfig:"SHIPPER_STATE"`
	ShipperZip     string `envconfig:"SHIPPER_ZIP"`
	ShipperCountry string `envconfig:"SHIPPER_COUNTRY" default:"US"`

	DimensionPrecision int    `envconfig:"DIMENSION_PRECISION" default:"2"`
	LabelFormat        string `envconfig:"LABEL_FORMAT" default:"GIF"`

	// Marketplace channels as a JSON array of
	// {"partner","baseUrl","key","secret"} objects.
	Channels marketplace.Channels `envconfig:"MARKETPLACE_CHANNELS"`

	// Reconciler
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"10m"`
	ReconcileWorkers  int           `envconfig:"RECONCILE_WORKERS" default:"4"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shipping-connector"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// UPS assembles the carrier client configuration.
func (c *Config) UPS() ups.Config {
	return ups.Config{
		BaseURL:         c.UPSBaseURL,
		TrackingBaseURL: c.UPSTrackingBaseURL,
		Username:        c.UPSUsername,
		Password:        c.UPSPassword,
		AccessKey:       c.UPSAccessKey,
		AccountNumber:   c.UPSAccountNumber,
		Shipper: ups.ShipperInfo{
			Name:          c.ShipperName,
			ShipperNumber: c.UPSAccountNumber,
			TaxID:         c.ShipperTaxID,
			Street1:       c.ShipperStreet1,
			Street2:       c.ShipperStreet2,
			City:          c.ShipperCity,
			State:         c.ShipperState,
			Zip:           c.ShipperZip,
			Country:       c.ShipperCountry,
			Phone:         c.ShipperPhone,
		},
		DimensionPrecision: c.DimensionPrecision,
		LabelFormat:        c.LabelFormat,
		UseNegotiatedRates: c.UPSUseNegotiatedRates,
		UseMock:            c.UPSUseMock,
		Timeout:            c.UPSTimeout,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.mock", c.UPSUseMock),
		attribute.Bool("ups.negotiated_rates", c.UPSUseNegotiatedRates),
	}
}
