package shipping_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/internal/shipping"
	"github.com/tournevent/shipping-connector/internal/store"
	"github.com/tournevent/shipping-connector/internal/telemetry"
	"github.com/tournevent/shipping-connector/pkg/shipper"
	"github.com/tournevent/shipping-connector/pkg/shipper/mock"
)

// Prometheus collectors register globally; one instance serves every
// test in the package.
var testMetrics = telemetry.NewMetrics()

type fixture struct {
	carrier  *mock.Client
	store    *store.MemoryStore
	notifier *marketplace.MockNotifier
	service  *shipping.Service
}

func newFixture() *fixture {
	carrier := mock.New("UPS")
	st := store.NewMemoryStore()
	notifier := marketplace.NewMockNotifier()
	logger := otelzap.New(zap.NewNop())
	return &fixture{
		carrier:  carrier,
		store:    st,
		notifier: notifier,
		service:  shipping.NewService(carrier, st, notifier, logger, testMetrics),
	}
}

func usAddress(name string) shipper.Address {
	return shipper.Address{
		Name:    name,
		Street1: "123 Main St",
		City:    "Austin",
		State:   "TX",
		Zip:     "78701",
		Country: "US",
		Phone:   "5125550100",
	}
}

func quoteRequest() shipper.QuoteRequest {
	return shipper.QuoteRequest{
		ShoppingCartID:  "cart-42",
		OriginAddress:   usAddress("Warehouse"),
		DeliveryAddress: usAddress("Customer"),
		Parcels: []shipper.Parcel{
			{Length: 10, Width: 10, Height: 10, LengthUnit: shipper.LengthCM, Weight: 1, WeightUnit: shipper.WeightKG},
		},
	}
}

func TestGetQuotes_PersistsAndReturnsRates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rates, err := f.service.GetQuotes(ctx, "webshop", quoteRequest())
	require.NoError(t, err)
	require.Len(t, rates, 2) // mock carrier returns 2 rates

	// Rate views expose the persisted token as the id.
	assert.NotEmpty(t, rates[0].ID)
	assert.NotEqual(t, rates[0].ID, rates[1].ID)
	assert.Equal(t, "UPS", rates[0].Carrier)
	assert.Equal(t, "11.25", rates[0].Price)

	stored, err := f.store.GetSavedRateByToken(ctx, rates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "03", stored.ServiceCode)

	sh, err := f.store.GetShipmentByID(ctx, stored.ShipmentID)
	require.NoError(t, err)
	assert.Equal(t, "cart-42", sh.ShoppingCartID)
	assert.Equal(t, "webshop", sh.PartnerID)
	assert.False(t, sh.Consumed())
}

func TestGetQuotes_ValidationSkipsCarrier(t *testing.T) {
	f := newFixture()
	called := false
	f.carrier.OnShopRates = func(ctx context.Context, req shipper.QuoteRequest) ([]shipper.Rate, error) {
		called = true
		return nil, nil
	}

	req := quoteRequest()
	req.Parcels = nil

	_, err := f.service.GetQuotes(context.Background(), "webshop", req)
	assert.True(t, errors.Is(err, shipper.ErrValidation))
	assert.False(t, called)
}

func TestGetQuotes_CarrierError(t *testing.T) {
	f := newFixture()
	f.carrier.OnShopRates = func(ctx context.Context, req shipper.QuoteRequest) ([]shipper.Rate, error) {
		return nil, shipper.ErrCarrierService.WithMessage("down")
	}

	_, err := f.service.GetQuotes(context.Background(), "webshop", quoteRequest())
	assert.True(t, errors.Is(err, shipper.ErrCarrierService))
}

// quoteThen runs a quote and returns the first rate token.
func quoteThen(t *testing.T, f *fixture) string {
	t.Helper()
	rates, err := f.service.GetQuotes(context.Background(), "webshop", quoteRequest())
	require.NoError(t, err)
	require.NotEmpty(t, rates)
	return rates[0].ID
}

func TestCreateShipment_HappyPath(t *testing.T) {
	f := newFixture()
	token := quoteThen(t, f)

	view, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "cart-42",
		RateToken:      token,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ShipmentID)
	assert.NotEmpty(t, view.TrackingNumber)
	assert.Equal(t, shipper.StatusPreTransit, view.Status)
	assert.Contains(t, view.StatusURL, view.TrackingNumber)

	// The order sent to the carrier was assembled from the persisted
	// quote.
	orders := f.carrier.CreatedOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "03", orders[0].ServiceCode)
	assert.Equal(t, "Warehouse", orders[0].Origin.Name)
	assert.Equal(t, "Customer", orders[0].Delivery.Name)
	require.Len(t, orders[0].Parcels, 1)
}

func TestCreateShipment_UnknownToken(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "cart-42",
		RateToken:      "8f14e45f-ceea-467f-a8d5-5bd8ff9e0f5a",
	})
	assert.True(t, errors.Is(err, shipper.ErrNotFound))
}

func TestCreateShipment_CartMismatch(t *testing.T) {
	f := newFixture()
	token := quoteThen(t, f)

	_, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "some-other-cart",
		RateToken:      token,
	})
	assert.True(t, errors.Is(err, shipper.ErrPreconditionFailed))
	assert.Empty(t, f.carrier.CreatedOrders())
}

func TestCreateShipment_ConsumedTokenConflicts(t *testing.T) {
	f := newFixture()
	token := quoteThen(t, f)

	req := shipper.ShipmentRequest{ShoppingCartID: "cart-42", RateToken: token}
	_, err := f.service.CreateShipment(context.Background(), req)
	require.NoError(t, err)

	// The second attempt conflicts before any carrier call.
	_, err = f.service.CreateShipment(context.Background(), req)
	assert.True(t, errors.Is(err, shipper.ErrConflict))
	assert.Len(t, f.carrier.CreatedOrders(), 1)
}

func TestCreateShipment_ConcurrentConsumeHasOneWinner(t *testing.T) {
	f := newFixture()
	token := quoteThen(t, f)

	const attempts = 8
	results := make(chan error, attempts)
	var release sync.WaitGroup
	release.Add(1)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release.Wait()
			_, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
				ShoppingCartID: "cart-42",
				RateToken:      token,
			})
			results <- err
		}()
	}
	release.Done()
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, shipper.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCreateShipment_MalformedToken(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "cart-42",
		RateToken:      "not-a-uuid",
	})
	assert.True(t, errors.Is(err, shipper.ErrValidation))
}

func TestValidateAddress_NonUSRejected(t *testing.T) {
	f := newFixture()

	addr := usAddress("Jane")
	addr.Country = "CA"

	_, err := f.service.ValidateAddress(context.Background(), addr)
	assert.True(t, errors.Is(err, shipper.ErrUnsupportedCountry))
}

func TestValidateAddress_Valid(t *testing.T) {
	f := newFixture()

	validated, err := f.service.ValidateAddress(context.Background(), usAddress("Jane"))
	require.NoError(t, err)
	assert.Equal(t, "Jane", validated.Name)
}

func TestTrackingStatus(t *testing.T) {
	f := newFixture()

	view, err := f.service.TrackingStatus(context.Background(), "1Z123")
	require.NoError(t, err)
	assert.Equal(t, "1Z123", view.TrackingNumber)
	assert.Equal(t, shipper.StatusTransit, view.Status)
	assert.Contains(t, view.StatusURL, "1Z123")

	_, err = f.service.TrackingStatus(context.Background(), "")
	assert.True(t, errors.Is(err, shipper.ErrValidation))
}

// shipOne creates a consumed shipment ready for reconciliation.
func shipOne(t *testing.T, f *fixture) shipper.Shipment {
	t.Helper()
	token := quoteThen(t, f)
	view, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "cart-42",
		RateToken:      token,
	})
	require.NoError(t, err)

	rate, err := f.store.GetSavedRateByToken(context.Background(), token)
	require.NoError(t, err)
	sh, err := f.store.GetShipmentByID(context.Background(), rate.ShipmentID)
	require.NoError(t, err)
	require.Equal(t, view.TrackingNumber, sh.TrackingNumber)
	return sh
}

func TestReconcilePass_NotifiesAndPersistsTransition(t *testing.T) {
	f := newFixture()
	sh := shipOne(t, f)

	observed := time.Now().UTC().Truncate(time.Second)
	f.carrier.OnTrackShipment = func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
		return shipper.TrackingSnapshot{
			TrackingNumber: trackingNumber,
			Status:         shipper.StatusTransit,
			StatusText:     "In Transit",
			ObservedAt:     observed,
		}, nil
	}

	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "webshop", events[0].PartnerID)
	assert.Equal(t, sh.TrackingNumber, events[0].TrackingNumber)
	assert.Equal(t, string(shipper.StatusTransit), events[0].Status)

	updated, err := f.store.GetShipmentByID(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, shipper.StatusTransit, updated.Status)
	require.NotNil(t, updated.LastTrackingUpdate)
	assert.True(t, updated.LastTrackingUpdate.Equal(observed))
}

func TestReconcilePass_SameStatusDoesNotNotify(t *testing.T) {
	f := newFixture()
	sh := shipOne(t, f)

	f.carrier.OnTrackShipment = func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
		return shipper.TrackingSnapshot{
			TrackingNumber: trackingNumber,
			Status:         sh.Status,
			ObservedAt:     time.Now().UTC(),
		}, nil
	}

	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))
	assert.Empty(t, f.notifier.Events())
}

func TestReconcilePass_NotificationFailureSkipsPersist(t *testing.T) {
	f := newFixture()
	sh := shipOne(t, f)
	f.notifier.SimulateErrors = true

	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))

	// The status transition is not recorded, so the next pass retries.
	stored, err := f.store.GetShipmentByID(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.Status, stored.Status)
	assert.Nil(t, stored.LastTrackingUpdate)

	f.notifier.SimulateErrors = false
	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))
	assert.Len(t, f.notifier.Events(), 1)
}

func TestReconcilePass_StaleObservationIgnored(t *testing.T) {
	f := newFixture()
	sh := shipOne(t, f)

	// Record an update observed at T.
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, f.store.UpdateTracking(context.Background(), sh.ID, shipper.StatusTransit, at))

	// A snapshot from before T must not regress the status.
	f.carrier.OnTrackShipment = func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
		return shipper.TrackingSnapshot{
			TrackingNumber: trackingNumber,
			Status:         shipper.StatusPreTransit,
			ObservedAt:     at.Add(-time.Hour),
		}, nil
	}

	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))
	assert.Empty(t, f.notifier.Events())

	stored, err := f.store.GetShipmentByID(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, shipper.StatusTransit, stored.Status)
}

func TestReconcilePass_AbsorbsPerShipmentFailures(t *testing.T) {
	f := newFixture()
	bad := shipOne(t, f)

	// A second open shipment that tracks fine.
	token := quoteThen(t, f)
	_, err := f.service.CreateShipment(context.Background(), shipper.ShipmentRequest{
		ShoppingCartID: "cart-42",
		RateToken:      token,
	})
	require.NoError(t, err)

	f.carrier.OnTrackShipment = func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
		if trackingNumber == bad.TrackingNumber {
			return shipper.TrackingSnapshot{}, shipper.ErrCarrierService.WithMessage("down")
		}
		return shipper.TrackingSnapshot{
			TrackingNumber: trackingNumber,
			Status:         shipper.StatusTransit,
			ObservedAt:     time.Now().UTC(),
		}, nil
	}

	// The failing shipment does not abort the pass.
	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))
	assert.Len(t, f.notifier.Events(), 1)
}

func TestReconcilePass_SkipsTerminalShipments(t *testing.T) {
	f := newFixture()
	sh := shipOne(t, f)

	require.NoError(t, f.store.UpdateTracking(
		context.Background(), sh.ID, shipper.StatusDelivered, time.Now().UTC()))

	tracked := false
	f.carrier.OnTrackShipment = func(ctx context.Context, trackingNumber string) (shipper.TrackingSnapshot, error) {
		tracked = true
		return shipper.TrackingSnapshot{}, nil
	}

	require.NoError(t, f.service.ReconcilePass(context.Background(), 2))
	assert.False(t, tracked)
}
