package shipper

import (
	"time"
)

// Status represents the normalized lifecycle status of a shipment.
type Status string

const (
	StatusUnknown    Status = "UNKNOWN"
	StatusPreTransit Status = "PRE_TRANSIT"
	StatusTransit    Status = "TRANSIT"
	StatusDelivered  Status = "DELIVERED"
	StatusReturned   Status = "RETURNED"
	StatusFailure    Status = "FAILURE"
)

// Terminal reports whether the status is final. Terminal shipments are
// never polled for tracking updates again.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusFailure:
		return true
	}
	return false
}

// LengthUnit represents a dimension measurement unit.
type LengthUnit string

const (
	LengthMM LengthUnit = "mm"
	LengthCM LengthUnit = "cm"
	LengthM  LengthUnit = "m"
	LengthIN LengthUnit = "in"
	LengthFT LengthUnit = "ft"
	LengthYD LengthUnit = "yd"
)

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	WeightG  WeightUnit = "g"
	WeightKG WeightUnit = "kg"
	WeightOZ WeightUnit = "oz"
	WeightLB WeightUnit = "lb"
)

// Address represents a physical postal address, owned by a shipment as
// either the origin or the delivery side.
type Address struct {
	ID      int64  `json:"-"`
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Street1 string `json:"street1" validate:"required"`
	Street2 string `json:"street2"`
	City    string `json:"city" validate:"required"`
	State   string `json:"stateCode" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required,len=2"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Parcel represents one package's physical dimensions and weight.
type Parcel struct {
	ID         int64      `json:"-"`
	Length     float64    `json:"length" validate:"gte=0"`
	Width      float64    `json:"width" validate:"gte=0"`
	Height     float64    `json:"height" validate:"gte=0"`
	LengthUnit LengthUnit `json:"lengthUnit" validate:"oneof=mm cm m in ft yd"`
	Weight     float64    `json:"weight" validate:"gte=0"`
	WeightUnit WeightUnit `json:"weightUnit" validate:"oneof=g kg oz lb"`
}

// QuoteRequest is the input for requesting shipping rates.
type QuoteRequest struct {
	ShoppingCartID  string   `json:"shoppingCartId" validate:"required"`
	OriginAddress   Address  `json:"originAddress" validate:"required"`
	DeliveryAddress Address  `json:"deliveryAddress" validate:"required"`
	Parcels         []Parcel `json:"parcels" validate:"min=1,dive"`
}

// ShipmentRequest is the input for creating a shipment from a
// previously quoted rate.
type ShipmentRequest struct {
	ShoppingCartID string `json:"shoppingCartId" validate:"required"`
	RateToken      string `json:"rateId" validate:"required,uuid4"`
}

// Rate is a carrier-quoted price for one service level, tied to one
// shipment. Token is issued by the store when the rate is persisted and
// is the only identifier ever exposed to callers.
type Rate struct {
	ID           int64
	Token        string
	ShipmentID   int64
	ServiceCode  string
	Carrier      string
	ServiceLevel string
	Price        string
	CurrencyCode string
}

// View returns the public response shape for a rate.
func (r Rate) View() RateView {
	return RateView{
		ID:           r.Token,
		Carrier:      r.Carrier,
		ServiceLevel: r.ServiceLevel,
		Price:        r.Price,
		CurrencyCode: r.CurrencyCode,
	}
}

// RateView is the JSON response shape for a quoted rate.
type RateView struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	ServiceLevel string `json:"serviceLevel"`
	Price        string `json:"price"`
	CurrencyCode string `json:"currencyCode"`
}

// Shipment is the persisted record linking a quote to an eventual
// carrier shipment. It is created once by the quote workflow and
// mutated, never re-created, by the shipment workflow and the tracking
// reconciler.
type Shipment struct {
	ID                 int64
	ShoppingCartID     string
	OriginAddressID    int64
	DeliveryAddressID  int64
	PartnerID          string
	Status             Status
	ShipmentNumber     string
	TrackingNumber     string
	LastTrackingUpdate *time.Time
	ChargeAmount       string
	ChargeCurrency     string
	WeightAmount       string
	WeightUnits        string
	LabelFormat        string
	LabelData          []byte
}

// Consumed reports whether a shipment has already been created against
// this record's quote. A tracking number is set at most once.
func (s Shipment) Consumed() bool {
	return s.TrackingNumber != ""
}

// ShipmentView is the JSON response shape for a created or tracked
// shipment.
type ShipmentView struct {
	ShipmentID     string `json:"shipmentId"`
	TrackingNumber string `json:"shipmentTrackingNumber"`
	StatusURL      string `json:"shipmentStatusUrl"`
	Status         Status `json:"shipmentStatus"`
	StatusText     string `json:"shipmentStatusText"`
}

// ShipmentOrder is the carrier-facing instruction assembled by the
// shipment workflow from the persisted quote.
type ShipmentOrder struct {
	Origin      Address
	Delivery    Address
	Parcels     []Parcel
	ServiceCode string
}

// ShipmentConfirmation carries the fields a carrier returns when a
// shipment is created.
type ShipmentConfirmation struct {
	ShipmentNumber string
	TrackingNumber string
	ChargeAmount   string
	ChargeCurrency string
	WeightAmount   string
	WeightUnits    string
	LabelFormat    string
	LabelData      []byte
}

// TrackingSnapshot is a transient view of a shipment's latest carrier
// activity, used by the tracking reconciler to detect transitions.
type TrackingSnapshot struct {
	TrackingNumber string
	Status         Status
	StatusText     string
	ObservedAt     time.Time
}
