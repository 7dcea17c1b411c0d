package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using
// the UPS REST endpoints.
type HTTPAPIClient struct {
	baseURL    string
	username   string
	password   string
	accessKey  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	Username  string
	Password  string
	AccessKey string
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production
// use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:   cfg.BaseURL,
		username:  cfg.Username,
		password:  cfg.Password,
		accessKey: cfg.AccessKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ============================================================================
// Request/response envelopes
// ============================================================================

// upsSecurity carries the credentials UPS requires in every request
// body.
type upsSecurity struct {
	UsernameToken struct {
		Username string `json:"Username"`
		Password string `json:"Password"`
	} `json:"UsernameToken"`
	ServiceAccessToken struct {
		AccessLicenseNumber string `json:"AccessLicenseNumber"`
	} `json:"ServiceAccessToken"`
}

func (c *HTTPAPIClient) security() upsSecurity {
	var sec upsSecurity
	sec.UsernameToken.Username = c.username
	sec.UsernameToken.Password = c.password
	sec.ServiceAccessToken.AccessLicenseNumber = c.accessKey
	return sec
}

type trackRequestBody struct {
	Request struct {
		RequestAction string `json:"RequestAction"`
		RequestOption string `json:"RequestOption"`
	} `json:"Request"`
	InquiryNumber string `json:"InquiryNumber"`
}

type rateRequestBody struct {
	Request struct {
		RequestOption string `json:"RequestOption"`
	} `json:"Request"`
	Shipment *RateRequest `json:"Shipment"`
}

type shipRequestBody struct {
	Shipment *ShipmentRequest `json:"Shipment"`
}

// faultEnvelope detects a fault in any response body.
type faultEnvelope struct {
	Fault *Fault `json:"Fault"`
}

// ValidateAddress calls the UPS XAV endpoint.
func (c *HTTPAPIClient) ValidateAddress(ctx context.Context, req *XAVRequest) (*XAVResponse, error) {
	body := map[string]any{
		"UPSSecurity": c.security(),
		"XAVRequest":  req,
	}

	var envelope struct {
		faultEnvelope
		XAVResponse *XAVResponse `json:"XAVResponse"`
	}
	if err := c.post(ctx, "/XAV", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fault != nil {
		return nil, envelope.Fault
	}
	if envelope.XAVResponse == nil {
		return nil, fmt.Errorf("ups XAV response carries no body")
	}
	return envelope.XAVResponse, nil
}

// ShopRates calls the UPS rating endpoint in shop mode.
func (c *HTTPAPIClient) ShopRates(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var rateBody rateRequestBody
	rateBody.Request.RequestOption = "Shop"
	rateBody.Shipment = req

	body := map[string]any{
		"UPSSecurity": c.security(),
		"RateRequest": rateBody,
	}

	var envelope struct {
		faultEnvelope
		RateResponse *RateResponse `json:"RateResponse"`
	}
	if err := c.post(ctx, "/Rate", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fault != nil {
		return nil, envelope.Fault
	}
	if envelope.RateResponse == nil {
		return nil, fmt.Errorf("ups rate response carries no body")
	}
	return envelope.RateResponse, nil
}

// CreateShipment calls the UPS shipping endpoint.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	body := map[string]any{
		"UPSSecurity":     c.security(),
		"ShipmentRequest": shipRequestBody{Shipment: req},
	}

	var envelope struct {
		faultEnvelope
		ShipmentResponse *ShipmentResponse `json:"ShipmentResponse"`
	}
	if err := c.post(ctx, "/Ship", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fault != nil {
		return nil, envelope.Fault
	}
	if envelope.ShipmentResponse == nil {
		return nil, fmt.Errorf("ups shipment response carries no body")
	}
	return envelope.ShipmentResponse, nil
}

// Track calls the UPS tracking endpoint with activity detail.
func (c *HTTPAPIClient) Track(ctx context.Context, inquiryNumber string) (*TrackResponse, error) {
	var trackBody trackRequestBody
	trackBody.Request.RequestAction = "Track"
	trackBody.Request.RequestOption = "activity"
	trackBody.InquiryNumber = inquiryNumber

	body := map[string]any{
		"UPSSecurity":  c.security(),
		"TrackRequest": trackBody,
	}

	var envelope struct {
		faultEnvelope
		TrackResponse *TrackResponse `json:"TrackResponse"`
	}
	if err := c.post(ctx, "/Track", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fault != nil {
		return nil, envelope.Fault
	}
	if envelope.TrackResponse == nil {
		return nil, fmt.Errorf("ups track response carries no body")
	}
	return envelope.TrackResponse, nil
}

// post performs a JSON POST and decodes the response into out. UPS
// reports faults in the body, usually with a 200 status, so fault
// detection is left to the callers; non-2xx responses without a
// parseable fault become plain errors.
func (c *HTTPAPIClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling ups request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building ups request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shipping-connector/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading ups response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ups returned HTTP %d: %s", resp.StatusCode, raw)
		}
		return fmt.Errorf("decoding ups response: %w", err)
	}
	return nil
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
