package shipping

import (
	"context"

	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// ValidateAddress checks an address structurally and then against the
// carrier's address book. Only US addresses are supported; the carrier
// account is not enabled for other countries.
func (s *Service) ValidateAddress(ctx context.Context, addr shipper.Address) (shipper.Address, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.ValidateAddress")
	defer span.End()

	if err := s.validate.Check(addr); err != nil {
		return shipper.Address{}, err
	}
	if addr.Country != "US" {
		return shipper.Address{}, shipper.ErrUnsupportedCountry.
			WithMessage("address validation is only available for US addresses")
	}

	validated, err := s.carrier.ValidateAddress(ctx, addr)
	if err != nil {
		s.logger.Ctx(ctx).Warn("address validation failed",
			zap.String("city", addr.City),
			zap.String("zip", addr.Zip),
			zap.Error(err))
		return shipper.Address{}, err
	}
	return validated, nil
}
