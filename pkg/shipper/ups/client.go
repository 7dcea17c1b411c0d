package ups

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/tournevent/shipping-connector/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "UPS"

// When an ambiguous address is validated, limit the number of
// candidates returned in the error context.
const candidateAddressLimit = 5

// ShipperInfo is the configured shipper used for rating and shipment
// payloads.
type ShipperInfo struct {
	Name          string
	ShipperNumber string
	TaxID         string
	Street1       string
	Street2       string
	City          string
	State         string
	Zip           string
	Country       string
	Phone         string
}

// Config holds UPS integration configuration.
type Config struct {
	BaseURL            string
	TrackingBaseURL    string
	Username           string
	Password           string
	AccessKey          string
	AccountNumber      string
	Shipper            ShipperInfo
	DimensionPrecision int
	LabelFormat        string
	UseNegotiatedRates bool
	UseMock            bool
	Timeout            time.Duration
}

// Client is the UPS carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.BaseURL,
			Username:  cfg.Username,
			Password:  cfg.Password,
			AccessKey: cfg.AccessKey,
			Timeout:   cfg.Timeout,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new UPS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// ValidateAddress validates an address against the UPS street-level
// database. UPS normalizes against the USPS database instead of
// checking individual fields: an address is invalid when it matches
// nothing, and ambiguous when it matches two or more records. Both
// cases surface as an invalid-address error, the latter carrying up to
// five candidates to assist debugging.
func (c *Client) ValidateAddress(ctx context.Context, addr shipper.Address) (shipper.Address, error) {
	c.logger.Ctx(ctx).Info("Validating address with UPS",
		zap.String("city", addr.City),
		zap.String("country", addr.Country),
	)

	resp, err := c.apiClient.ValidateAddress(ctx, &XAVRequest{
		AddressKeyFormat: ToValidationAddress(addr),
	})
	if err != nil {
		return shipper.Address{}, c.classify(ctx, "validate_address", err)
	}

	backfill := AddressContext{
		Name:    addr.Name,
		Company: addr.Company,
		Phone:   addr.Phone,
		Email:   addr.Email,
	}

	switch {
	case resp.ValidAddressIndicator != nil:
		if len(resp.Candidate) == 0 {
			return shipper.Address{}, shipper.ErrMalformedCarrierResponse.
				WithMessage("valid address response carries no candidate")
		}
		return FromCarrierAddress(resp.Candidate[0].AddressKeyFormat, backfill), nil

	case resp.AmbiguousAddressIndicator != nil:
		candidates := make([]shipper.Address, 0, candidateAddressLimit)
		for i, cand := range resp.Candidate {
			if i == candidateAddressLimit {
				break
			}
			candidates = append(candidates, FromCarrierAddress(cand.AddressKeyFormat, backfill))
		}
		return shipper.Address{}, shipper.ErrInvalidAddress.
			WithMessage("ambiguous.address.multiple.results").
			WithDetail(candidates)

	case resp.NoCandidatesIndicator != nil:
		return shipper.Address{}, shipper.ErrInvalidAddress.
			WithMessage("no.matching.addresses.found")

	default:
		return shipper.Address{}, shipper.ErrMalformedCarrierResponse.
			WithMessage("address validation response carries no indicator")
	}
}

// ShopRates fetches rate quotes from UPS for a quote request.
func (c *Client) ShopRates(ctx context.Context, req shipper.QuoteRequest) ([]shipper.Rate, error) {
	c.logger.Ctx(ctx).Info("Shopping UPS rates",
		zap.String("origin_country", req.OriginAddress.Country),
		zap.String("destination_country", req.DeliveryAddress.Country),
		zap.Int("parcel_count", len(req.Parcels)),
	)

	apiReq := &RateRequest{
		Shipper:  shipperParty(c.config.Shipper, false),
		ShipTo:   ToQuoteAddress(req.DeliveryAddress),
		ShipFrom: ToQuoteAddress(req.OriginAddress),
	}
	if c.config.UseNegotiatedRates {
		apiReq.ShipmentRatingOptions = &RatingOptions{}
	}

	for _, parcel := range req.Parcels {
		pkg, err := ToPackage(parcel, req.OriginAddress.Country, PurposeQuote, c.config.DimensionPrecision)
		if err != nil {
			return nil, err
		}
		apiReq.Package = append(apiReq.Package, pkg)
	}

	resp, err := c.apiClient.ShopRates(ctx, apiReq)
	if err != nil {
		return nil, c.classify(ctx, "shop_rates", err)
	}
	if len(resp.RatedShipment) == 0 {
		return nil, shipper.ErrMalformedCarrierResponse.WithMessage("rating response carries no rated shipment")
	}

	rates := make([]shipper.Rate, len(resp.RatedShipment))
	for i, rs := range resp.RatedShipment {
		rates[i] = FromRatedShipment(rs)
	}
	return rates, nil
}

// CreateShipment books a shipment with UPS using the service code
// selected from a previously persisted quote.
func (c *Client) CreateShipment(ctx context.Context, order shipper.ShipmentOrder) (shipper.ShipmentConfirmation, error) {
	c.logger.Ctx(ctx).Info("Creating UPS shipment",
		zap.String("service_code", order.ServiceCode),
		zap.Int("parcel_count", len(order.Parcels)),
	)

	apiReq := &ShipmentRequest{
		Description: "Created by UPS Shipping Connector",
		Shipper:     shipperParty(c.config.Shipper, true),
		ShipTo:      ToShipmentAddress(order.Delivery),
		ShipFrom:    ToShipmentAddress(order.Origin),
		PaymentInformation: PaymentInformation{
			ShipmentCharge: ShipmentCharge{
				Type:        "01",
				BillShipper: BillShipper{AccountNumber: c.config.AccountNumber},
			},
		},
		Service: CodeDescription{Code: order.ServiceCode},
	}
	if c.config.LabelFormat != "" {
		apiReq.LabelSpecification = &LabelSpecification{
			LabelImageFormat: CodeDescription{Code: c.config.LabelFormat},
		}
	}

	for _, parcel := range order.Parcels {
		pkg, err := ToPackage(parcel, order.Origin.Country, PurposeShipment, c.config.DimensionPrecision)
		if err != nil {
			return shipper.ShipmentConfirmation{}, err
		}
		apiReq.Package = append(apiReq.Package, pkg)
	}

	resp, err := c.apiClient.CreateShipment(ctx, apiReq)
	if err != nil {
		return shipper.ShipmentConfirmation{}, c.classify(ctx, "create_shipment", err)
	}

	results := resp.ShipmentResults
	if len(results.PackageResults) == 0 {
		return shipper.ShipmentConfirmation{}, shipper.ErrMalformedCarrierResponse.
			WithMessage("shipment response carries no package results")
	}
	first := results.PackageResults[0]

	label, err := base64.StdEncoding.DecodeString(first.ShippingLabel.GraphicImage)
	if err != nil {
		return shipper.ShipmentConfirmation{}, shipper.ErrMalformedCarrierResponse.
			WithMessage("label image is not valid base64").WithCause(err)
	}

	return shipper.ShipmentConfirmation{
		ShipmentNumber: results.ShipmentIdentificationNumber,
		TrackingNumber: first.TrackingNumber,
		ChargeAmount:   results.ShipmentCharges.TotalCharges.MonetaryValue,
		ChargeCurrency: results.ShipmentCharges.TotalCharges.CurrencyCode,
		WeightAmount:   results.BillingWeight.Weight,
		WeightUnits:    results.BillingWeight.UnitOfMeasurement.Code,
		LabelFormat:    first.ShippingLabel.ImageFormat.Code,
		LabelData:      label,
	}, nil
}

// TrackShipment fetches the latest tracking snapshot for a tracking
// number.
func (c *Client) TrackShipment(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
	resp, err := c.apiClient.Track(ctx, trackingNumber)
	if err != nil {
		return shipper.TrackingSnapshot{}, c.classify(ctx, "track", err)
	}
	return SnapshotFromTrackResponse(resp)
}

// TrackingURL builds the public status-page URL for a tracking number.
func (c *Client) TrackingURL(trackingNumber string) string {
	return BuildTrackingURL(c.config.TrackingBaseURL, trackingNumber)
}

// classify translates transport and fault errors into the connector
// taxonomy. Faults whose origin code indicates a caller error map to a
// client fault; everything else, including timeouts, is a
// carrier-side fault.
func (c *Client) classify(ctx context.Context, operation string, err error) error {
	var fault *Fault
	if errors.As(err, &fault) {
		code, desc := fault.PrimaryError()
		c.logger.Ctx(ctx).Warn("UPS fault",
			zap.String("operation", operation),
			zap.String("fault_code", fault.FaultCode),
			zap.String("error_code", code),
			zap.String("error_description", desc),
		)
		if fault.ClientFault() {
			return shipper.ErrCarrierClient.WithMessage("%s", fault.Error()).WithCause(err)
		}
		return shipper.ErrCarrierService.WithMessage("%s", fault.Error()).WithCause(err)
	}

	c.logger.Ctx(ctx).Error("UPS request failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return shipper.ErrCarrierService.WithMessage("ups %s request failed", operation).WithCause(err)
}

var _ shipper.Carrier = (*Client)(nil)
