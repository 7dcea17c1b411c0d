package shipping

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// CreateShipment turns a previously quoted rate into a carrier
// shipment. The saved rate is single-use: once a tracking number is
// stored the quote is consumed and further attempts conflict.
func (s *Service) CreateShipment(ctx context.Context, req shipper.ShipmentRequest) (shipper.ShipmentView, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.CreateShipment")
	defer span.End()

	if err := s.validate.Check(req); err != nil {
		return shipper.ShipmentView{}, err
	}

	rate, err := s.store.GetSavedRateByToken(ctx, req.RateToken)
	if err != nil {
		return shipper.ShipmentView{}, err
	}
	shipment, err := s.store.GetShipmentByID(ctx, rate.ShipmentID)
	if err != nil {
		return shipper.ShipmentView{}, err
	}

	if shipment.ShoppingCartID != req.ShoppingCartID {
		return shipper.ShipmentView{}, shipper.ErrPreconditionFailed.
			WithMessage("rate was quoted for a different shopping cart")
	}
	if shipment.Consumed() {
		return shipper.ShipmentView{}, shipper.ErrConflict
	}

	origin, err := s.store.GetAddressByID(ctx, shipment.OriginAddressID)
	if err != nil {
		return shipper.ShipmentView{}, err
	}
	delivery, err := s.store.GetAddressByID(ctx, shipment.DeliveryAddressID)
	if err != nil {
		return shipper.ShipmentView{}, err
	}
	parcels, err := s.store.GetParcelsByShipmentID(ctx, shipment.ID)
	if err != nil {
		return shipper.ShipmentView{}, err
	}

	confirmation, err := s.carrier.CreateShipment(ctx, shipper.ShipmentOrder{
		Origin:      origin,
		Delivery:    delivery,
		Parcels:     parcels,
		ServiceCode: rate.ServiceCode,
	})
	if err != nil {
		return shipper.ShipmentView{}, err
	}

	shipment.Status = shipper.StatusPreTransit
	shipment.ShipmentNumber = confirmation.ShipmentNumber
	shipment.TrackingNumber = confirmation.TrackingNumber
	shipment.ChargeAmount = confirmation.ChargeAmount
	shipment.ChargeCurrency = confirmation.ChargeCurrency
	shipment.WeightAmount = confirmation.WeightAmount
	shipment.WeightUnits = confirmation.WeightUnits
	shipment.LabelFormat = confirmation.LabelFormat
	shipment.LabelData = confirmation.LabelData

	if err := s.store.ConsumeShipment(ctx, shipment); err != nil {
		// The carrier shipment exists but the record does not. This
		// cannot be retried through the same rate, so it is surfaced
		// loudly instead of mapped to a retryable failure.
		s.logger.Ctx(ctx).Error("carrier shipment created but persistence failed",
			zap.Int64("shipment_id", shipment.ID),
			zap.String("tracking_number", confirmation.TrackingNumber),
			zap.Error(err))
		return shipper.ShipmentView{}, err
	}

	s.logger.Ctx(ctx).Info("shipment created",
		zap.Int64("shipment_id", shipment.ID),
		zap.String("carrier", s.carrier.Name()),
		zap.String("service_code", rate.ServiceCode),
		zap.String("tracking_number", confirmation.TrackingNumber))

	return s.shipmentView(shipment), nil
}

func (s *Service) shipmentView(sh shipper.Shipment) shipper.ShipmentView {
	return shipper.ShipmentView{
		ShipmentID:     strconv.FormatInt(sh.ID, 10),
		TrackingNumber: sh.TrackingNumber,
		StatusURL:      s.carrier.TrackingURL(sh.TrackingNumber),
		Status:         sh.Status,
		StatusText:     statusText(sh.Status),
	}
}
