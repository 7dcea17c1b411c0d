package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// GormStore implements Store on a relational database through GORM.
// Both sqlite and postgres are supported; sqlite is the default for
// local development.
type GormStore struct {
	db *gorm.DB
}

// Open connects to the configured database and returns a GormStore.
func Open(dialect, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an existing gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&addressRow{},
		&shipmentRow{},
		&parcelRow{},
		&savedRateRow{},
	)
}

func (s *GormStore) CreateAddress(ctx context.Context, addr shipper.Address) (shipper.Address, error) {
	row := toAddressRow(addr)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return shipper.Address{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromAddressRow(row), nil
}

func (s *GormStore) CreateShipment(ctx context.Context, sh shipper.Shipment) (shipper.Shipment, error) {
	row := toShipmentRow(sh)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return shipper.Shipment{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromShipmentRow(row), nil
}

func (s *GormStore) CreateParcel(ctx context.Context, p shipper.Parcel, shipmentID int64) (shipper.Parcel, error) {
	row := toParcelRow(p, shipmentID)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return shipper.Parcel{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromParcelRow(row), nil
}

func (s *GormStore) CreateSavedRate(ctx context.Context, r shipper.Rate, shipmentID int64) (shipper.Rate, error) {
	row := toSavedRateRow(r, shipmentID)
	if row.Token == "" {
		row.Token = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return shipper.Rate{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromSavedRateRow(row), nil
}

// SaveQuote writes the shipment, its addresses, parcels and rates in a
// single transaction so a partial quote never becomes visible.
func (s *GormStore) SaveQuote(ctx context.Context, q Quote) (Quote, error) {
	var saved Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		origin := toAddressRow(q.Origin)
		if err := tx.Create(&origin).Error; err != nil {
			return err
		}
		delivery := toAddressRow(q.Delivery)
		if err := tx.Create(&delivery).Error; err != nil {
			return err
		}

		shipment := toShipmentRow(q.Shipment)
		shipment.OriginAddressID = origin.ID
		shipment.DeliveryAddressID = delivery.ID
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}

		saved = Quote{
			Shipment: fromShipmentRow(shipment),
			Origin:   fromAddressRow(origin),
			Delivery: fromAddressRow(delivery),
		}

		for _, p := range q.Parcels {
			row := toParcelRow(p, shipment.ID)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			saved.Parcels = append(saved.Parcels, fromParcelRow(row))
		}
		for _, r := range q.Rates {
			row := toSavedRateRow(r, shipment.ID)
			if row.Token == "" {
				row.Token = uuid.NewString()
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			saved.Rates = append(saved.Rates, fromSavedRateRow(row))
		}
		return nil
	})
	if err != nil {
		return Quote{}, shipper.ErrPersistence.WithCause(err)
	}
	return saved, nil
}

func (s *GormStore) GetSavedRateByToken(ctx context.Context, token string) (shipper.Rate, error) {
	var row savedRateRow
	if err := s.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipper.Rate{}, shipper.ErrNotFound.WithMessage("unknown rate")
		}
		return shipper.Rate{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromSavedRateRow(row), nil
}

func (s *GormStore) GetShipmentByID(ctx context.Context, id int64) (shipper.Shipment, error) {
	var row shipmentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipper.Shipment{}, shipper.ErrNotFound.WithMessage("unknown shipment")
		}
		return shipper.Shipment{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromShipmentRow(row), nil
}

func (s *GormStore) GetAddressByID(ctx context.Context, id int64) (shipper.Address, error) {
	var row addressRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipper.Address{}, shipper.ErrNotFound.WithMessage("unknown address")
		}
		return shipper.Address{}, shipper.ErrPersistence.WithCause(err)
	}
	return fromAddressRow(row), nil
}

func (s *GormStore) GetParcelsByShipmentID(ctx context.Context, shipmentID int64) ([]shipper.Parcel, error) {
	var rows []parcelRow
	if err := s.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, shipper.ErrPersistence.WithCause(err)
	}
	parcels := make([]shipper.Parcel, 0, len(rows))
	for _, r := range rows {
		parcels = append(parcels, fromParcelRow(r))
	}
	return parcels, nil
}

func (s *GormStore) GetUnfinishedShipments(ctx context.Context) ([]shipper.Shipment, error) {
	var rows []shipmentRow
	if err := s.db.WithContext(ctx).
		Where("tracking_number <> '' AND status NOT IN ?", terminalStatuses()).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, shipper.ErrPersistence.WithCause(err)
	}
	shipments := make([]shipper.Shipment, 0, len(rows))
	for _, r := range rows {
		shipments = append(shipments, fromShipmentRow(r))
	}
	return shipments, nil
}

func (s *GormStore) UpdateShipment(ctx context.Context, sh shipper.Shipment) error {
	row := toShipmentRow(sh)
	res := s.db.WithContext(ctx).Model(&shipmentRow{}).
		Where("id = ?", sh.ID).
		Updates(&row)
	if res.Error != nil {
		return shipper.ErrPersistence.WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		return shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	return nil
}

// ConsumeShipment records the carrier confirmation on the shipment row.
// The update is guarded by the tracking number still being empty, which
// makes a saved rate single-use even under concurrent consumers.
func (s *GormStore) ConsumeShipment(ctx context.Context, sh shipper.Shipment) error {
	res := s.db.WithContext(ctx).Model(&shipmentRow{}).
		Where("id = ? AND tracking_number = ''", sh.ID).
		Updates(map[string]any{
			"status":          string(sh.Status),
			"shipment_number": sh.ShipmentNumber,
			"tracking_number": sh.TrackingNumber,
			"charge_amount":   sh.ChargeAmount,
			"charge_currency": sh.ChargeCurrency,
			"weight_amount":   sh.WeightAmount,
			"weight_units":    sh.WeightUnits,
			"label_format":    sh.LabelFormat,
			"label_data":      sh.LabelData,
		})
	if res.Error != nil {
		return shipper.ErrPersistence.WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		return shipper.ErrConflict
	}
	return nil
}

func (s *GormStore) UpdateTracking(ctx context.Context, shipmentID int64, status shipper.Status, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&shipmentRow{}).
		Where("id = ?", shipmentID).
		Updates(map[string]any{
			"status":               string(status),
			"last_tracking_update": at,
		})
	if res.Error != nil {
		return shipper.ErrPersistence.WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		return shipper.ErrNotFound.WithMessage("unknown shipment")
	}
	return nil
}

func terminalStatuses() []string {
	return []string{
		string(shipper.StatusDelivered),
		string(shipper.StatusReturned),
		string(shipper.StatusFailure),
	}
}

var _ Store = (*GormStore)(nil)
