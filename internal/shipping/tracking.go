package shipping

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// TrackingStatus queries the carrier for a tracking number on demand.
// Nothing is persisted; this is the read-only lookup behind the status
// endpoint.
func (s *Service) TrackingStatus(ctx context.Context, trackingNumber string) (shipper.ShipmentView, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.TrackingStatus")
	defer span.End()

	if trackingNumber == "" {
		return shipper.ShipmentView{}, shipper.ErrValidation.WithMessage("trackingNumber is required")
	}

	snapshot, err := s.carrier.TrackShipment(ctx, trackingNumber)
	if err != nil {
		return shipper.ShipmentView{}, err
	}
	return shipper.ShipmentView{
		TrackingNumber: snapshot.TrackingNumber,
		StatusURL:      s.carrier.TrackingURL(snapshot.TrackingNumber),
		Status:         snapshot.Status,
		StatusText:     snapshot.StatusText,
	}, nil
}

// ReconcilePass polls the carrier for every non-terminal shipment and
// pushes genuine status transitions to the owning marketplace channel.
// Per-shipment failures are logged and absorbed so one bad tracking
// number never stalls the rest of the batch.
func (s *Service) ReconcilePass(ctx context.Context, workers int) error {
	ctx, span := s.tracer.Start(ctx, "shipping.ReconcilePass")
	defer span.End()

	if workers < 1 {
		workers = 1
	}

	shipments, err := s.store.GetUnfinishedShipments(ctx)
	if err != nil {
		return err
	}
	s.metrics.ReconcilePasses.Inc()
	if len(shipments) == 0 {
		return nil
	}

	s.logger.Ctx(ctx).Info("reconciling shipments",
		zap.Int("count", len(shipments)),
		zap.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sh := range shipments {
		g.Go(func() error {
			if err := s.reconcileShipment(ctx, sh); err != nil {
				s.logger.Ctx(ctx).Warn("reconcile skipped shipment",
					zap.Int64("shipment_id", sh.ID),
					zap.String("tracking_number", sh.TrackingNumber),
					zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) reconcileShipment(ctx context.Context, sh shipper.Shipment) error {
	snapshot, err := s.carrier.TrackShipment(ctx, sh.TrackingNumber)
	if err != nil {
		s.metrics.RecordError(s.carrier.Name(), shipper.ErrorCode(err))
		return err
	}

	// A snapshot observed before the last recorded update is stale
	// carrier data and must not regress the stored status.
	if sh.LastTrackingUpdate != nil && snapshot.ObservedAt.Before(*sh.LastTrackingUpdate) {
		return nil
	}
	if snapshot.Status == sh.Status {
		return nil
	}

	// The channel hears about the transition before it is recorded. A
	// failed notification leaves the row untouched so the next pass
	// detects the same transition and retries the delivery.
	err = s.notifier.Notify(ctx, marketplace.ShipmentEvent{
		PartnerID:      sh.PartnerID,
		ShipmentNumber: sh.ShipmentNumber,
		TrackingNumber: sh.TrackingNumber,
		Status:         string(snapshot.Status),
		StatusURL:      s.carrier.TrackingURL(sh.TrackingNumber),
	})
	if err != nil {
		s.metrics.RecordNotification(sh.PartnerID, "failure")
		return err
	}
	s.metrics.RecordNotification(sh.PartnerID, "success")

	observedAt := snapshot.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}
	if err := s.store.UpdateTracking(ctx, sh.ID, snapshot.Status, observedAt); err != nil {
		return err
	}
	s.metrics.RecordTransition(string(snapshot.Status))

	s.logger.Ctx(ctx).Info("shipment status updated",
		zap.Int64("shipment_id", sh.ID),
		zap.String("tracking_number", sh.TrackingNumber),
		zap.String("from", string(sh.Status)),
		zap.String("to", string(snapshot.Status)))
	return nil
}
