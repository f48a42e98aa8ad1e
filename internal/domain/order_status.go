package domain

import (
	"errors"
	"fmt"
)

type OrderStatus string

// remember to add new statuses to the orderStatusRank map
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusCompleted:  2,
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderStatusRank[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted}
}

// CanTransitionTo allows forward moves only, pending may go straight to completed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}

	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}

	return to > from
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

func CheckTransition(from, to OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidStatusTransition)
	}
	return nil
}
