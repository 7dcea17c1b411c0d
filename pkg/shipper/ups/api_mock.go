package ups

import (
	"context"
	"encoding/base64"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnValidateAddress func(ctx context.Context, req *XAVRequest) (*XAVResponse, error)
	OnShopRates       func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment  func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	OnTrack           func(ctx context.Context, inquiryNumber string) (*TrackResponse, error)
}

// NewMockAPIClient creates a new mock API client with default
// behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &Fault{FaultCode: "Server", FaultString: "Simulated API error"}
	}
	return nil
}

// ValidateAddress returns a mock valid-address response echoing the
// request.
func (m *MockAPIClient) ValidateAddress(ctx context.Context, req *XAVRequest) (*XAVResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnValidateAddress != nil {
		return m.OnValidateAddress(ctx, req)
	}

	present := ""
	return &XAVResponse{
		ValidAddressIndicator: &present,
		Candidate: oneOrMany[Candidate]{
			{AddressKeyFormat: req.AddressKeyFormat},
		},
	}, nil
}

// ShopRates returns mock rated shipments.
func (m *MockAPIClient) ShopRates(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnShopRates != nil {
		return m.OnShopRates(ctx, req)
	}

	return &RateResponse{
		RatedShipment: oneOrMany[RatedShipment]{
			{
				Service:      CodeDescription{Code: "03"},
				TotalCharges: Money{CurrencyCode: "USD", MonetaryValue: "11.25"},
			},
			{
				Service:      CodeDescription{Code: "02"},
				TotalCharges: Money{CurrencyCode: "USD", MonetaryValue: "28.40"},
			},
			{
				Service:      CodeDescription{Code: "01"},
				TotalCharges: Money{CurrencyCode: "USD", MonetaryValue: "57.09"},
			},
		},
	}, nil
}

// CreateShipment returns a mock shipment confirmation.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	tracking := "1Z9999W99999999999"
	resp := &ShipmentResponse{}
	resp.ShipmentResults.ShipmentIdentificationNumber = tracking
	resp.ShipmentResults.ShipmentCharges.TotalCharges = Money{CurrencyCode: "USD", MonetaryValue: "11.25"}
	resp.ShipmentResults.BillingWeight = BillingWeight{
		UnitOfMeasurement: CodeDescription{Code: "LBS"},
		Weight:            "44.1",
	}
	resp.ShipmentResults.PackageResults = oneOrMany[PackageResults]{
		{
			TrackingNumber: tracking,
			ShippingLabel: ShippingLabel{
				ImageFormat:  CodeDescription{Code: "GIF"},
				GraphicImage: base64.StdEncoding.EncodeToString([]byte("GIF89a mock label")),
			},
		},
	}
	return resp, nil
}

// Track returns mock tracking activity with the latest event in
// transit.
func (m *MockAPIClient) Track(ctx context.Context, inquiryNumber string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrack != nil {
		return m.OnTrack(ctx, inquiryNumber)
	}

	now := time.Now().UTC()
	resp := &TrackResponse{}
	resp.Shipment.InquiryNumber = InquiryNumber{Value: inquiryNumber}
	resp.Shipment.Package = oneOrMany[TrackPackage]{
		{
			TrackingNumber: inquiryNumber,
			Activity: oneOrMany[Activity]{
				{
					Date:   now.Add(-48 * time.Hour).Format("20060102"),
					Time:   now.Add(-48 * time.Hour).Format("150405"),
					Status: ActivityStatus{Type: "P", Description: "Pickup scan"},
				},
				{
					Date:   now.Add(-6 * time.Hour).Format("20060102"),
					Time:   now.Add(-6 * time.Hour).Format("150405"),
					Status: ActivityStatus{Type: "I", Description: "In transit"},
				},
			},
		},
	}
	return resp, nil
}

var _ APIClient = (*MockAPIClient)(nil)
