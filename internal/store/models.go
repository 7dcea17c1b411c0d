package store

import (
	"time"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

type addressRow struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	Company   string `gorm:"size:100"`
	Street1   string `gorm:"size:100"`
	Street2   string `gorm:"size:100"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:100"`
	Zip       string `gorm:"size:20"`
	Country   string `gorm:"size:2"`
	Phone     string `gorm:"size:30"`
	Email     string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (addressRow) TableName() string { return "addresses" }

type shipmentRow struct {
	ID                 int64 `gorm:"primaryKey"`
	ShoppingCartID     string
	OriginAddressID    int64
	DeliveryAddressID  int64
	PartnerID          string
	Status             string `gorm:"size:20;index"`
	ShipmentNumber     string
	TrackingNumber     string `gorm:"index"`
	LastTrackingUpdate *time.Time
	ChargeAmount       string
	ChargeCurrency     string `gorm:"size:3"`
	WeightAmount       string
	WeightUnits        string `gorm:"size:4"`
	LabelFormat        string `gorm:"size:8"`
	LabelData          []byte
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (shipmentRow) TableName() string { return "shipments" }

type parcelRow struct {
	ID         int64 `gorm:"primaryKey"`
	ShipmentID int64 `gorm:"index"`
	Length     float64
	Width      float64
	Height     float64
	LengthUnit string `gorm:"size:4"`
	Weight     float64
	WeightUnit string `gorm:"size:4"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (parcelRow) TableName() string { return "parcels" }

type savedRateRow struct {
	ID           int64  `gorm:"primaryKey"`
	Token        string `gorm:"size:36;uniqueIndex"`
	ShipmentID   int64  `gorm:"index"`
	ServiceCode  string `gorm:"size:8"`
	Carrier      string `gorm:"size:20"`
	ServiceLevel string
	Price        string
	CurrencyCode string `gorm:"size:3"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (savedRateRow) TableName() string { return "saved_rates" }

func toAddressRow(a shipper.Address) addressRow {
	return addressRow{
		ID:      a.ID,
		Name:    a.Name,
		Company: a.Company,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

func fromAddressRow(r addressRow) shipper.Address {
	return shipper.Address{
		ID:      r.ID,
		Name:    r.Name,
		Company: r.Company,
		Street1: r.Street1,
		Street2: r.Street2,
		City:    r.City,
		State:   r.State,
		Zip:     r.Zip,
		Country: r.Country,
		Phone:   r.Phone,
		Email:   r.Email,
	}
}

func toShipmentRow(s shipper.Shipment) shipmentRow {
	return shipmentRow{
		ID:                 s.ID,
		ShoppingCartID:     s.ShoppingCartID,
		OriginAddressID:    s.OriginAddressID,
		DeliveryAddressID:  s.DeliveryAddressID,
		PartnerID:          s.PartnerID,
		Status:             string(s.Status),
		ShipmentNumber:     s.ShipmentNumber,
		TrackingNumber:     s.TrackingNumber,
		LastTrackingUpdate: s.LastTrackingUpdate,
		ChargeAmount:       s.ChargeAmount,
		ChargeCurrency:     s.ChargeCurrency,
		WeightAmount:       s.WeightAmount,
		WeightUnits:        s.WeightUnits,
		LabelFormat:        s.LabelFormat,
		LabelData:          s.LabelData,
	}
}

func fromShipmentRow(r shipmentRow) shipper.Shipment {
	return shipper.Shipment{
		ID:                 r.ID,
		ShoppingCartID:     r.ShoppingCartID,
		OriginAddressID:    r.OriginAddressID,
		DeliveryAddressID:  r.DeliveryAddressID,
		PartnerID:          r.PartnerID,
		Status:             shipper.Status(r.Status),
		ShipmentNumber:     r.ShipmentNumber,
		TrackingNumber:     r.TrackingNumber,
		LastTrackingUpdate: r.LastTrackingUpdate,
		ChargeAmount:       r.ChargeAmount,
		ChargeCurrency:     r.ChargeCurrency,
		WeightAmount:       r.WeightAmount,
		WeightUnits:        r.WeightUnits,
		LabelFormat:        r.LabelFormat,
		LabelData:          r.LabelData,
	}
}

func toParcelRow(p shipper.Parcel, shipmentID int64) parcelRow {
	return parcelRow{
		ID:         p.ID,
		ShipmentID: shipmentID,
		Length:     p.Length,
		Width:      p.Width,
		Height:     p.Height,
		LengthUnit: string(p.LengthUnit),
		Weight:     p.Weight,
		WeightUnit: string(p.WeightUnit),
	}
}

func fromParcelRow(r parcelRow) shipper.Parcel {
	return shipper.Parcel{
		ID:         r.ID,
		Length:     r.Length,
		Width:      r.Width,
		Height:     r.Height,
		LengthUnit: shipper.LengthUnit(r.LengthUnit),
		Weight:     r.Weight,
		WeightUnit: shipper.WeightUnit(r.WeightUnit),
	}
}

func toSavedRateRow(rt shipper.Rate, shipmentID int64) savedRateRow {
	return savedRateRow{
		ID:           rt.ID,
		Token:        rt.Token,
		ShipmentID:   shipmentID,
		ServiceCode:  rt.ServiceCode,
		Carrier:      rt.Carrier,
		ServiceLevel: rt.ServiceLevel,
		Price:        rt.Price,
		CurrencyCode: rt.CurrencyCode,
	}
}

func fromSavedRateRow(r savedRateRow) shipper.Rate {
	return shipper.Rate{
		ID:           r.ID,
		Token:        r.Token,
		ShipmentID:   r.ShipmentID,
		ServiceCode:  r.ServiceCode,
		Carrier:      r.Carrier,
		ServiceLevel: r.ServiceLevel,
		Price:        r.Price,
		CurrencyCode: r.CurrencyCode,
	}
}
