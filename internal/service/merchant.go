package service

import (
	"context"
	"log/slog"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

type MerchantGateway interface {
	GetProfile(ctx context.Context) (entities.Merchant, error)
	UpdateProfile(ctx context.Context, m entities.Merchant) (entities.Merchant, error)
}

type merchantService struct {
	logger  *slog.Logger
	gateway MerchantGateway
}

func NewMerchantService(logger *slog.Logger, gateway MerchantGateway) *merchantService {
	return &merchantService{
		logger:  logger.With(slog.String("service", "merchant")),
		gateway: gateway,
	}
}

func (s *merchantService) GetProfile(ctx context.Context) (entities.Merchant, error) {
	return s.gateway.GetProfile(ctx)
}

func (s *merchantService) UpdateProfile(ctx context.Context, m entities.Merchant) (entities.Merchant, error) {
	updated, err := s.gateway.UpdateProfile(ctx, m)
	if err != nil {
		return entities.Merchant{}, err
	}

	s.logger.InfoContext(ctx, "merchant profile updated", slog.String("merchant_id", updated.ID))
	return updated, nil
}
