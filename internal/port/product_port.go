package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
)

type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type ProductRepository interface {
	ProductLister

	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// ReplaceProducts swaps the whole catalog in one transaction.
	ReplaceProducts(ctx context.Context, products []domain.Product) error
}
