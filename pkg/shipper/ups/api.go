// Package ups provides the UPS carrier integration: payload
// translation, unit normalization, and the REST API client.
package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// APIClient defines the interface for UPS REST API operations. This
// abstraction allows for mock implementations during testing and real
// implementations in production.
type APIClient interface {
	// ValidateAddress calls the UPS street-level address validation
	// (XAV) endpoint.
	ValidateAddress(ctx context.Context, req *XAVRequest) (*XAVResponse, error)

	// ShopRates calls the UPS rating endpoint in shop mode, returning
	// one rated shipment per available service.
	ShopRates(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateShipment books a shipment and returns charges, identifiers
	// and the label image.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	// Track fetches tracking activity for an inquiry number.
	Track(ctx context.Context, inquiryNumber string) (*TrackResponse, error)
}

// oneOrMany normalizes UPS response fields that are a single object
// when one element is present and an array otherwise. Coercion happens
// here, at the parse boundary, so nothing downstream ever sees the
// single-object form.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

// ============================================================================
// Shared wire fragments
// ============================================================================

// CodeDescription is the UPS code/description pair used across
// services, packaging types and units of measurement.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Money is the UPS charges structure.
type Money struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// Phone wraps a phone number.
type Phone struct {
	Number string `json:"Number"`
}

// AddressFields is the nested address used by rating and shipping
// payloads. AddressLine keeps street1/street2 as an ordered sequence.
type AddressFields struct {
	AddressLine       []string `json:"AddressLine"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// NamedAddress is a named party in a rating payload.
type NamedAddress struct {
	Name    string        `json:"Name"`
	Address AddressFields `json:"Address"`
}

// ShipAddress is a named party in a shipment payload; UPS requires a
// phone number at shipment time.
type ShipAddress struct {
	Name    string        `json:"Name"`
	Address AddressFields `json:"Address"`
	Phone   *Phone        `json:"Phone,omitempty"`
}

// ShipperParty is the configured shipper in rating and shipment
// payloads.
type ShipperParty struct {
	Name                    string        `json:"Name"`
	ShipperNumber           string        `json:"ShipperNumber,omitempty"`
	TaxIdentificationNumber string        `json:"TaxIdentificationNumber,omitempty"`
	Phone                   *Phone        `json:"Phone,omitempty"`
	Address                 AddressFields `json:"Address"`
}

// Dimensions carries converted parcel dimensions as strings, as UPS
// requires.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight carries the converted parcel weight.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// Package is one parcel in a rating or shipment payload. Rating
// payloads tag the packaging type as PackagingType, shipment payloads
// as Packaging; the code value is the same.
type Package struct {
	PackagingType *CodeDescription `json:"PackagingType,omitempty"`
	Packaging     *CodeDescription `json:"Packaging,omitempty"`
	Dimensions    Dimensions       `json:"Dimensions"`
	PackageWeight PackageWeight    `json:"PackageWeight"`
}

// ============================================================================
// Address validation (XAV)
// ============================================================================

// addressLines accepts the UPS AddressLine field as either a single
// string or an ordered sequence of strings; UPS uses both forms.
type addressLines []string

func (a *addressLines) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []string
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*a = many
		return nil
	}
	var one string
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*a = []string{one}
	return nil
}

func (a addressLines) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(a))
}

// AddressKeyFormat is the flat address shape used by the XAV endpoint.
// UPS never echoes name/company/phone/email back, so candidates are
// back-filled from the caller's input.
type AddressKeyFormat struct {
	ConsigneeName      string       `json:"ConsigneeName,omitempty"`
	AddressLine        addressLines `json:"AddressLine"`
	PoliticalDivision2 string       `json:"PoliticalDivision2"`
	PoliticalDivision1 string       `json:"PoliticalDivision1"`
	PostcodePrimaryLow string       `json:"PostcodePrimaryLow"`
	CountryCode        string       `json:"CountryCode"`
}

// XAVRequest is the address validation request payload.
type XAVRequest struct {
	AddressKeyFormat AddressKeyFormat `json:"AddressKeyFormat"`
}

// Candidate is one address candidate in an XAV response.
type Candidate struct {
	AddressKeyFormat AddressKeyFormat `json:"AddressKeyFormat"`
}

// XAVResponse is the address validation response. Indicators are
// either omitted or present with an empty-string value; a non-nil
// pointer means present.
type XAVResponse struct {
	ValidAddressIndicator     *string              `json:"ValidAddressIndicator,omitempty"`
	AmbiguousAddressIndicator *string              `json:"AmbiguousAddressIndicator,omitempty"`
	NoCandidatesIndicator     *string              `json:"NoCandidatesIndicator,omitempty"`
	Candidate                 oneOrMany[Candidate] `json:"Candidate,omitempty"`
}

// ============================================================================
// Rating
// ============================================================================

// RatingOptions requests negotiated rates when the indicator is
// present.
type RatingOptions struct {
	NegotiatedRatesIndicator string `json:"NegotiatedRatesIndicator"`
}

// RateRequest is the rating payload sent in shop mode.
type RateRequest struct {
	Shipper               ShipperParty   `json:"Shipper"`
	ShipTo                NamedAddress   `json:"ShipTo"`
	ShipFrom              NamedAddress   `json:"ShipFrom"`
	Package               []Package      `json:"Package"`
	ShipmentRatingOptions *RatingOptions `json:"ShipmentRatingOptions,omitempty"`
}

// RatedShipment is one service-level quote in a rating response.
type RatedShipment struct {
	Service      CodeDescription `json:"Service"`
	TotalCharges Money           `json:"TotalCharges"`
}

// RateResponse is the rating response. RatedShipment is a single
// object when only one service is available.
type RateResponse struct {
	RatedShipment oneOrMany[RatedShipment] `json:"RatedShipment"`
}

// ============================================================================
// Shipment creation
// ============================================================================

// BillShipper bills shipment charges to the configured UPS account.
type BillShipper struct {
	AccountNumber string `json:"AccountNumber"`
}

// ShipmentCharge identifies who pays for the shipment. Type 01 is
// transportation charges.
type ShipmentCharge struct {
	Type        string      `json:"Type"`
	BillShipper BillShipper `json:"BillShipper"`
}

// PaymentInformation wraps the shipment charge.
type PaymentInformation struct {
	ShipmentCharge ShipmentCharge `json:"ShipmentCharge"`
}

// LabelSpecification selects the label image format.
type LabelSpecification struct {
	LabelImageFormat CodeDescription `json:"LabelImageFormat"`
}

// ShipmentRequest is the shipment creation payload.
type ShipmentRequest struct {
	Description        string              `json:"Description,omitempty"`
	Shipper            ShipperParty        `json:"Shipper"`
	ShipTo             ShipAddress         `json:"ShipTo"`
	ShipFrom           ShipAddress         `json:"ShipFrom"`
	PaymentInformation PaymentInformation  `json:"PaymentInformation"`
	Service            CodeDescription     `json:"Service"`
	Package            []Package           `json:"Package"`
	LabelSpecification *LabelSpecification `json:"LabelSpecification,omitempty"`
}

// ShipmentCharges carries the total charge of a created shipment.
type ShipmentCharges struct {
	TotalCharges Money `json:"TotalCharges"`
}

// BillingWeight is the weight UPS actually bills for.
type BillingWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// ShippingLabel is the label image for a created package.
type ShippingLabel struct {
	ImageFormat  CodeDescription `json:"ImageFormat"`
	GraphicImage string          `json:"GraphicImage"`
}

// PackageResults is the per-package outcome of a shipment creation.
type PackageResults struct {
	TrackingNumber string        `json:"TrackingNumber"`
	ShippingLabel  ShippingLabel `json:"ShippingLabel"`
}

// ShipmentResults is the body of a shipment creation response.
type ShipmentResults struct {
	ShipmentCharges              ShipmentCharges           `json:"ShipmentCharges"`
	BillingWeight                BillingWeight             `json:"BillingWeight"`
	ShipmentIdentificationNumber string                    `json:"ShipmentIdentificationNumber"`
	PackageResults               oneOrMany[PackageResults] `json:"PackageResults"`
}

// ShipmentResponse is the shipment creation response.
type ShipmentResponse struct {
	ShipmentResults ShipmentResults `json:"ShipmentResults"`
}

// ============================================================================
// Tracking
// ============================================================================

// InquiryNumber echoes the queried tracking number.
type InquiryNumber struct {
	Value string `json:"Value"`
}

// ActivityStatus is the status portion of a tracking activity.
type ActivityStatus struct {
	Type        string `json:"Type"`
	Description string `json:"Description"`
}

// Activity is one tracking event. Date and Time arrive as "YYYYMMDD"
// and "HHMMSS" in two separate fields.
type Activity struct {
	Date   string         `json:"Date"`
	Time   string         `json:"Time"`
	Status ActivityStatus `json:"Status"`
}

// TrackPackage is one package in a tracking response.
type TrackPackage struct {
	TrackingNumber string              `json:"TrackingNumber"`
	Activity       oneOrMany[Activity] `json:"Activity"`
}

// TrackShipment is the shipment portion of a tracking response. The
// absence of Package means a non-parcel (freight) response, which the
// connector does not support.
type TrackShipment struct {
	InquiryNumber InquiryNumber           `json:"InquiryNumber"`
	Package       oneOrMany[TrackPackage] `json:"Package"`
}

// TrackResponse is the tracking response.
type TrackResponse struct {
	Shipment TrackShipment `json:"Shipment"`
}

// ============================================================================
// Faults
// ============================================================================

// PrimaryErrorCode is the machine-readable code/description pair UPS
// attaches to a fault.
type PrimaryErrorCode struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// ErrorDetail is one error entry in a fault envelope.
type ErrorDetail struct {
	Severity         string           `json:"Severity"`
	PrimaryErrorCode PrimaryErrorCode `json:"PrimaryErrorCode"`
}

// Fault is the structured UPS fault envelope. FaultCode classifies the
// origin: "Client" means the request was at fault, anything else is a
// carrier-side failure.
type Fault struct {
	FaultCode   string `json:"faultcode"`
	FaultString string `json:"faultstring"`
	Detail      struct {
		Errors struct {
			ErrorDetail oneOrMany[ErrorDetail] `json:"ErrorDetail"`
		} `json:"Errors"`
	} `json:"detail"`
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if code, desc := f.PrimaryError(); code != "" {
		return fmt.Sprintf("ups fault (%s): %s: %s", f.FaultCode, code, desc)
	}
	return fmt.Sprintf("ups fault (%s): %s", f.FaultCode, f.FaultString)
}

// ClientFault reports whether the fault is attributable to the caller.
func (f *Fault) ClientFault() bool {
	return f.FaultCode == "Client"
}

// PrimaryError returns the first machine-readable code/description
// pair, if present.
func (f *Fault) PrimaryError() (code, description string) {
	if len(f.Detail.Errors.ErrorDetail) == 0 {
		return "", ""
	}
	pe := f.Detail.Errors.ErrorDetail[0].PrimaryErrorCode
	return pe.Code, pe.Description
}
