package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"go.uber.org/zap"
)

// OrderService is the server side of checkout. It never trusts the client:
// eligibility rules and totals are checked again before anything is stored.
type OrderService struct {
	orders    port.OrderRepository
	publisher port.OrderEventPublisher
	rules     domain.Rules
	logger    *zap.Logger
}

// NewOrderService accepts a nil publisher, order events are then disabled.
func NewOrderService(orders port.OrderRepository, publisher port.OrderEventPublisher, rules domain.Rules, logger *zap.Logger) (*OrderService, error) {
	if orders == nil {
		return nil, errors.New("order repository is nil")
	}
	if err := rules.Check(); err != nil {
		return nil, fmt.Errorf("rules.Check: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OrderService{
		orders:    orders,
		publisher: publisher,
		rules:     rules,
		logger:    logger,
	}, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	var stored domain.Order

	if err := s.rules.Validate(order.Customer, order); err != nil {
		return stored, err
	}

	if err := order.Validate(); err != nil {
		return stored, &domain.ValidationError{Fields: domain.FieldErrors{
			domain.FieldItems: err.Error(),
		}}
	}

	orderID, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		return stored, fmt.Errorf("orders.InsertOrder: %w", err)
	}

	stored, err = s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return stored, fmt.Errorf("orders.GetOrder: %w", err)
	}

	logger := s.logger.With(
		zap.Stringer("order_id", stored.ID),
		zap.String("category", string(stored.Category())))

	logger.Info("order created",
		zap.String("total_amount", stored.TotalAmount.String()),
		zap.Int("total_quantity", stored.TotalQuantity))

	if s.publisher != nil {
		// the order is stored, a lost event must not fail the request
		if err := s.publisher.PublishOrderCreated(ctx, stored); err != nil {
			logger.Warn("publish order created", zap.Error(err))
		}
	}

	return stored, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return order, fmt.Errorf("orders.GetOrder: %w", err)
	}
	return order, nil
}

// ListOrders returns every order, newest first, or only the matching ones when
// the filter is not empty.
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.IsEmpty() {
		orders, err := s.orders.ListOrders(ctx)
		if err != nil {
			return nil, fmt.Errorf("orders.ListOrders: %w", err)
		}
		return orders, nil
	}

	orders, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	var order domain.Order

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return order, fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return order, fmt.Errorf("orders.GetOrder: %w", err)
	}

	s.logger.Info("order status updated",
		zap.Stringer("order_id", orderID),
		zap.String("status", string(status)))

	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("orders.DeleteOrder: %w", err)
	}

	s.logger.Info("order deleted", zap.Stringer("order_id", orderID))

	return nil
}
