package shipping

import (
	"context"

	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/store"
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// GetQuotes asks the carrier for rates and persists the quote so any
// returned rate can later be turned into a shipment. The shipment row,
// both addresses, the parcels and the rates are written atomically;
// rate order follows the carrier response.
func (s *Service) GetQuotes(ctx context.Context, partnerID string, req shipper.QuoteRequest) ([]shipper.RateView, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.GetQuotes")
	defer span.End()

	if err := s.validate.Check(req); err != nil {
		return nil, err
	}

	rates, err := s.carrier.ShopRates(ctx, req)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.SaveQuote(ctx, store.Quote{
		Shipment: shipper.Shipment{
			ShoppingCartID: req.ShoppingCartID,
			PartnerID:      partnerID,
			Status:         shipper.StatusUnknown,
		},
		Origin:   req.OriginAddress,
		Delivery: req.DeliveryAddress,
		Parcels:  req.Parcels,
		Rates:    rates,
	})
	if err != nil {
		s.logger.Ctx(ctx).Error("persisting quote failed",
			zap.String("shopping_cart_id", req.ShoppingCartID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Ctx(ctx).Info("quote created",
		zap.String("shopping_cart_id", req.ShoppingCartID),
		zap.Int64("shipment_id", saved.Shipment.ID),
		zap.Int("rates", len(saved.Rates)))

	views := make([]shipper.RateView, 0, len(saved.Rates))
	for _, r := range saved.Rates {
		views = append(views, r.View())
	}
	return views, nil
}
