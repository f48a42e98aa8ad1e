package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const FieldProduct = "product"

// CatalogService manages products priced in a single store currency.
type CatalogService struct {
	products port.ProductRepository
	currency currency.Unit
	logger   *zap.Logger
}

func NewCatalogService(products port.ProductRepository, cur currency.Unit, logger *zap.Logger) (*CatalogService, error) {
	if products == nil {
		return nil, errors.New("product repository is nil")
	}
	if cur == (currency.Unit{}) {
		return nil, errors.New("currency is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CatalogService{
		products: products,
		currency: cur,
		logger:   logger,
	}, nil
}

func (s *CatalogService) Currency() currency.Unit {
	return s.currency
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}
	return products, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	var created domain.Product

	if err := s.validate(product); err != nil {
		return created, err
	}

	productID, err := s.products.InsertProduct(ctx, product)
	if err != nil {
		return created, fmt.Errorf("products.InsertProduct: %w", err)
	}

	created, err = s.products.GetProduct(ctx, productID)
	if err != nil {
		return created, fmt.Errorf("products.GetProduct: %w", err)
	}

	s.logger.Info("product created", zap.Stringer("product_id", productID), zap.String("name", created.Name))

	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	var updated domain.Product

	if err := s.validate(product); err != nil {
		return updated, err
	}

	updated, err := s.products.UpdateProduct(ctx, product)
	if err != nil {
		return updated, fmt.Errorf("products.UpdateProduct: %w", err)
	}

	s.logger.Info("product updated", zap.Stringer("product_id", updated.ID))

	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.products.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("products.DeleteProduct: %w", err)
	}

	s.logger.Info("product deleted", zap.Stringer("product_id", productID))

	return nil
}

// Seed replaces the whole catalog with the sample products.
func (s *CatalogService) Seed(ctx context.Context) ([]domain.Product, error) {
	if err := s.products.ReplaceProducts(ctx, SampleCatalog(s.currency)); err != nil {
		return nil, fmt.Errorf("products.ReplaceProducts: %w", err)
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}

	s.logger.Info("catalog seeded", zap.Int("products", len(products)))

	return products, nil
}

func (s *CatalogService) validate(product domain.Product) error {
	if err := product.Validate(); err != nil {
		return &domain.ValidationError{Fields: domain.FieldErrors{FieldProduct: err.Error()}}
	}

	if product.Price.Currency != s.currency {
		return &domain.ValidationError{Fields: domain.FieldErrors{
			FieldProduct: fmt.Sprintf("price currency must be %s", s.currency),
		}}
	}

	return nil
}
