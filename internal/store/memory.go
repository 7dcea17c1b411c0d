package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// MemoryStore is an in-process Store used by tests and by the mock
// serving mode. It applies the same single-use rate semantics as the
// database-backed store.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	addresses map[int64]shipper.Address
	shipments map[int64]shipper.Shipment
	parcels   map[int64][]shipper.Parcel
	rates     map[string]shipper.Rate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		addresses: make(map[int64]shipper.Address),
		shipments: make(map[int64]shipper.Shipment),
		parcels:   make(map[int64][]shipper.Parcel),
		rates:     make(map[string]shipper.Rate),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateAddress(_ context.Context, addr shipper.Address) (shipper.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr.ID = s.id()
	s.addresses[addr.ID] = addr
	return addr, nil
}

func (s *MemoryStore) CreateShipment(_ context.Context, sh shipper.Shipment) (shipper.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh.ID = s.id()
	s.shipments[sh.ID] = sh
	return sh, nil
}

func (s *MemoryStore) CreateParcel(_ context.Context, p shipper.Parcel, shipmentID int64) (shipper.Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.parcels[shipmentID] = append(s.parcels[shipmentID], p)
	return p, nil
}

func (s *MemoryStore) CreateSavedRate(_ context.Context, r shipper.Rate, shipmentID int64) (shipper.Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createRateLocked(r, shipmentID), nil
}

func (s *MemoryStore) createRateLocked(r shipper.Rate, shipmentID int64) shipper.Rate {
	r.ID = s.id()
	r.ShipmentID = shipmentID
	if r.Token == "" {
		r.Token = uuid.NewString()
	}
	s.rates[r.Token] = r
	return r
}

func (s *MemoryStore) SaveQuote(_ context.Context, q Quote) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := Quote{}
	q.Origin.ID = s.id()
	s.addresses[q.Origin.ID] = q.Origin
	saved.Origin = q.Origin

	q.Delivery.ID = s.id()
	s.addresses[q.Delivery.ID] = q.Delivery
	saved.Delivery = q.Delivery

	sh := q.Shipment
	sh.ID = s.id()
	sh.OriginAddressID = q.Origin.ID
	sh.DeliveryAddressID = q.Delivery.ID
	s.shipments[sh.ID] = sh
	saved.Shipment = sh

	for _, p := range q.Parcels {
		p.ID = s.id()
		s.parcels[sh.ID] = append(s.parcels[sh.ID], p)
		saved.Parcels = append(saved.Parcels, p)
	}
	for _, r := range q.Rates {
		saved.Rates = append(saved.Rates, s.createRateLocked(r, sh.ID))
	}
	return saved, nil
}

func (s *MemoryStore) GetSavedRateByToken(_ context.Context, token string) (shipper.Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rates[token]
	if !ok {
		return shipper.Rate{}, shipper.ErrNotFound.WithMessage("unknown rate")
	}
	return r, nil
}

func (s *MemoryStore) GetShipmentByID(_ context.Context, id int64) (shipper.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[id]
	if !ok {
		return shipper.Shipment{}, shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	return sh, nil
}

func (s *MemoryStore) GetAddressByID(_ context.Context, id int64) (shipper.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return shipper.Address{}, shipper.ErrNotFound.WithMessage("unknown address")
	}
	return a, nil
}

func (s *MemoryStore) GetParcelsByShipmentID(_ context.Context, shipmentID int64) ([]shipper.Parcel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shipper.Parcel(nil), s.parcels[shipmentID]...), nil
}

func (s *MemoryStore) GetUnfinishedShipments(_ context.Context) ([]shipper.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shipper.Shipment
	for _, sh := range s.shipments {
		if sh.TrackingNumber != "" && !sh.Status.Terminal() {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateShipment(_ context.Context, sh shipper.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[sh.ID]; !ok {
		return shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	s.shipments[sh.ID] = sh
	return nil
}

func (s *MemoryStore) ConsumeShipment(_ context.Context, sh shipper.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.shipments[sh.ID]
	if !ok {
		return shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	if stored.Consumed() {
		return shipper.ErrConflict
	}
	stored.Status = sh.Status
	stored.ShipmentNumber = sh.ShipmentNumber
	stored.TrackingNumber = sh.TrackingNumber
	stored.ChargeAmount = sh.ChargeAmount
	stored.ChargeCurrency = sh.ChargeCurrency
	stored.WeightAmount = sh.WeightAmount
	stored.WeightUnits = sh.WeightUnits
	stored.LabelFormat = sh.LabelFormat
	stored.LabelData = sh.LabelData
	s.shipments[sh.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateTracking(_ context.Context, shipmentID int64, status shipper.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[shipmentID]
	if !ok {
		return shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	sh.Status = status
	sh.LastTrackingUpdate = &at
	s.shipments[shipmentID] = sh
	return nil
}

var _ Store = (*MemoryStore)(nil)
