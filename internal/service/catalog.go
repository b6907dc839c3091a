package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

type ProductGateway interface {
	ListProducts(ctx context.Context) ([]entities.Product, error)
	CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

const productsCacheKey = "products"

// catalogService — CRUD каталога поверх шлюза с читающим кешем на
// списке. Любая мутация инвалидирует закешированный список.
type catalogService struct {
	logger  *slog.Logger
	gateway ProductGateway
	cache   Cache
}

func NewCatalogService(logger *slog.Logger, gateway ProductGateway, cache Cache) *catalogService {
	return &catalogService{
		logger:  logger.With(slog.String("service", "catalog")),
		gateway: gateway,
		cache:   cache,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]entities.Product, error) {
	if data, ok := s.cache.Get(productsCacheKey); ok {
		var list entities.ProductList
		if err := list.Unmarshal(data); err == nil {
			return list.Products, nil
		}
		// Битую запись просто выкидываем и идём в шлюз.
		s.cache.Remove(productsCacheKey)
	}

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	list := entities.ProductList{Products: products}
	if data, err := list.Marshal(); err == nil {
		s.cache.Set(productsCacheKey, data)
	} else {
		s.logger.ErrorContext(ctx, "failed to marshal product list", slog.Any("error", err))
	}
	return products, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	created, err := s.gateway.CreateProduct(ctx, p)
	if err != nil {
		return entities.Product{}, err
	}
	s.cache.Remove(productsCacheKey)

	s.logger.InfoContext(ctx, "product created", slog.String("product_id", created.ID))
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	if p.ID == "" {
		return entities.Product{}, fmt.Errorf("product id is required")
	}

	updated, err := s.gateway.UpdateProduct(ctx, p)
	if err != nil {
		return entities.Product{}, err
	}
	s.cache.Remove(productsCacheKey)
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.gateway.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.cache.Remove(productsCacheKey)

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", productID))
	return nil
}
