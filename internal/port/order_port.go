package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
)

// OrderCreator persists a new order. Implementations must treat a repeated
// idempotency key as the same order and return its existing id.
type OrderCreator interface {
	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)
}

type OrderRepository interface {
	OrderCreator

	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error

	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
}
