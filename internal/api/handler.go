package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"golang.org/x/text/currency"
)

type Catalog interface {
	Currency() currency.Unit
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	Seed(ctx context.Context) ([]domain.Product, error)
}

type Orders interface {
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}
