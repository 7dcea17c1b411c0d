package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/internal/server"
	"github.com/tournevent/shipping-connector/internal/shipping"
	"github.com/tournevent/shipping-connector/internal/store"
	"github.com/tournevent/shipping-connector/internal/telemetry"
	"github.com/tournevent/shipping-connector/pkg/shipper"
	"github.com/tournevent/shipping-connector/pkg/shipper/mock"
)

// Prometheus collectors register globally; one instance serves every
// test in the package.
var testMetrics = telemetry.NewMetrics()

const testSecret = "s3cret"

func newTestServer(t *testing.T) (*server.Server, *mock.Client) {
	t.Helper()
	carrier := mock.New("UPS")
	service := shipping.NewService(
		carrier,
		store.NewMemoryStore(),
		marketplace.NewMockNotifier(),
		otelzap.New(zap.NewNop()),
		testMetrics,
	)
	srv := server.New(server.Config{
		Port:         8080,
		SharedSecret: testSecret,
		Channels: marketplace.Channels{
			{Partner: "webshop", BaseURL: "https://shop.example.com/api"},
		},
	}, service, otelzap.New(zap.NewNop()), testMetrics)
	return srv, carrier
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, authorize bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorize {
		req.Header.Set("Authorization", "Bearer "+testSecret)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code, body.Error.Message
}

func testQuoteBody() shipper.QuoteRequest {
	addr := shipper.Address{
		Name:    "Jane Porter",
		Street1: "123 Main St",
		City:    "Austin",
		State:   "TX",
		Zip:     "78701",
		Country: "US",
		Phone:   "5125550100",
	}
	return shipper.QuoteRequest{
		ShoppingCartID:  "cart-42",
		OriginAddress:   addr,
		DeliveryAddress: addr,
		Parcels: []shipper.Parcel{
			{Length: 10, Width: 10, Height: 10, LengthUnit: shipper.LengthCM, Weight: 1, WeightUnit: shipper.WeightKG},
		},
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/webshop/quote", testQuoteBody(), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "invalid.request", code)
}

func TestUnknownChannel(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/nobody/quote", testQuoteBody(), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, message := decodeError(t, rec)
	assert.Equal(t, "unknown channel", message)
}

func TestQuoteEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/webshop/quote", testQuoteBody(), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rates []shipper.RateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	require.Len(t, rates, 2)
	assert.NotEmpty(t, rates[0].ID)
	assert.Equal(t, "UPS", rates[0].Carrier)
}

func TestQuoteEndpoint_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost,
		"/api/shipments/v1/webshop/quote", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testSecret)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "invalid.request", code)
	assert.Contains(t, message, "invalid JSON")
}

func TestQuoteEndpoint_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)
	body := testQuoteBody()
	body.Parcels = nil

	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/webshop/quote", body, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "invalid.request", code)
}

func TestShipmentEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	quoteRec := doRequest(t, h, http.MethodPost,
		"/api/shipments/v1/webshop/quote", testQuoteBody(), true)
	require.Equal(t, http.StatusOK, quoteRec.Code)

	var quoted []shipper.RateView
	require.NoError(t, json.Unmarshal(quoteRec.Body.Bytes(), &quoted))
	require.NotEmpty(t, quoted)

	shipReq := map[string]string{
		"shoppingCartId": "cart-42",
		"rateId":         quoted[0].ID,
	}
	rec := doRequest(t, h, http.MethodPost,
		"/api/shipments/v1/webshop/shipment", shipReq, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view shipper.ShipmentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.ShipmentID)
	assert.NotEmpty(t, view.TrackingNumber)
	assert.Equal(t, shipper.StatusPreTransit, view.Status)

	// Replaying the same rate conflicts.
	rec = doRequest(t, h, http.MethodPost,
		"/api/shipments/v1/webshop/shipment", shipReq, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "already.shipped", code)
}

func TestValidateAddressEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/webshop/validateAddress", testQuoteBody().OriginAddress, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var addr shipper.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr))
	assert.Equal(t, "Jane Porter", addr.Name)
}

func TestValidateAddressEndpoint_UnsupportedCountry(t *testing.T) {
	srv, _ := newTestServer(t)
	addr := testQuoteBody().OriginAddress
	addr.Country = "DE"

	rec := doRequest(t, srv.Handler(), http.MethodPost,
		"/api/shipments/v1/webshop/validateAddress", addr, true)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	code, _ := decodeError(t, rec)
	assert.Equal(t, "unsupported.country", code)
}

func TestTrackingStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet,
		"/api/shipments/v1/webshop/tracking/status?trackingNumber=1Z123", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var view shipper.ShipmentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "1Z123", view.TrackingNumber)
	assert.Equal(t, shipper.StatusTransit, view.Status)
}

func TestTrackingStatusEndpoint_MissingNumber(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet,
		"/api/shipments/v1/webshop/tracking/status", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Handler(), http.MethodGet,
		"/api/shipments/v1/webshop/quote", nil, true)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
