package service

import (
	"context"
	"log/slog"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

type OfferGateway interface {
	ListOffers(ctx context.Context) ([]entities.Offer, error)
	CreateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error)
	UpdateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

type offerService struct {
	logger  *slog.Logger
	gateway OfferGateway
}

func NewOfferService(logger *slog.Logger, gateway OfferGateway) *offerService {
	return &offerService{
		logger:  logger.With(slog.String("service", "offers")),
		gateway: gateway,
	}
}

func (s *offerService) ListOffers(ctx context.Context) ([]entities.Offer, error) {
	return s.gateway.ListOffers(ctx)
}

// Окно действия проверяется до похода в шлюз: заведомо битый оффер не
// должен тратить сетевой запрос.
func (s *offerService) CreateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	if err := o.Validate(); err != nil {
		return entities.Offer{}, err
	}

	created, err := s.gateway.CreateOffer(ctx, o)
	if err != nil {
		return entities.Offer{}, err
	}

	s.logger.InfoContext(ctx, "offer created", slog.String("offer_id", created.ID))
	return created, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	if err := o.Validate(); err != nil {
		return entities.Offer{}, err
	}
	return s.gateway.UpdateOffer(ctx, o)
}

func (s *offerService) DeleteOffer(ctx context.Context, offerID string) error {
	if err := s.gateway.DeleteOffer(ctx, offerID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "offer deleted", slog.String("offer_id", offerID))
	return nil
}
