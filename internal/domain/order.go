package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Order struct {
	ID             uuid.UUID
	IdempotencyKey uuid.UUID
	Customer       CustomerDetails
	Items          []OrderItem
	TotalAmount    Money
	TotalQuantity  int
	Status         OrderStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a snapshot of a cart line at submission time, later catalog
// edits never change it.
type OrderItem struct {
	ProductID   uuid.UUID
	ProductName string
	Price       Money
	Quantity    int
}

type OrderReceipt struct {
	OrderID       uuid.UUID
	TotalAmount   Money
	TotalQuantity int
}

// NewOrder snapshots the cart into a pending order.
func NewOrder(details CustomerDetails, cart *Cart, idempotencyKey uuid.UUID) (Order, error) {
	var o Order

	if details == nil {
		return o, errors.New("customer details are nil")
	}
	if cart == nil || cart.IsEmpty() {
		return o, errors.New("cart is empty")
	}

	items := lo.Map(cart.Lines(), func(line CartLine, _ int) OrderItem {
		return OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
		}
	})

	return Order{
		IdempotencyKey: idempotencyKey,
		Customer:       details,
		Items:          items,
		TotalAmount:    cart.TotalPrice(),
		TotalQuantity:  cart.TotalItems(),
		Status:         OrderStatusPending,
	}, nil
}

func (o Order) Category() CustomerCategory {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Category()
}

// TotalItems sums the item quantities, it does not trust TotalQuantity.
func (o Order) TotalItems() int {
	return lo.SumBy(o.Items, func(item OrderItem) int {
		return item.Quantity
	})
}

func (o Order) Receipt() OrderReceipt {
	return OrderReceipt{
		OrderID:       o.ID,
		TotalAmount:   o.TotalAmount,
		TotalQuantity: o.TotalQuantity,
	}
}

// Validate checks the order is internally consistent. Eligibility rules are
// checked separately by Rules.
func (o Order) Validate() error {
	if o.Customer == nil {
		return errors.New("customer is empty")
	}

	if len(o.Items) == 0 {
		return errors.New("no items in order")
	}

	total := ZeroMoney(o.TotalAmount.Currency)
	for idx, item := range o.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item[%d]: product id is empty", idx)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item[%d]: quantity must be positive", idx)
		}
		if !item.Price.IsPositive() {
			return fmt.Errorf("item[%d]: price must be positive", idx)
		}
		if !item.Price.FitsScale() {
			return fmt.Errorf("item[%d]: price has more than %d decimal places", idx, MoneyScale)
		}
		total = total.Add(item.Price.Mul(item.Quantity))
	}

	if o.TotalQuantity != o.TotalItems() {
		return fmt.Errorf("total quantity %d does not match items %d", o.TotalQuantity, o.TotalItems())
	}

	if !total.Amount.Equal(o.TotalAmount.Amount) {
		return fmt.Errorf("total amount %s does not match items %s", o.TotalAmount.Amount, total.Amount)
	}

	return nil
}

// SameContent reports whether both orders carry the same customer, items and
// totals. Ids, keys, status and timestamps are not compared.
func (o Order) SameContent(other Order) bool {
	if o.Customer != other.Customer {
		return false
	}

	if o.TotalQuantity != other.TotalQuantity || !o.TotalAmount.Equal(other.TotalAmount) {
		return false
	}

	if len(o.Items) != len(other.Items) {
		return false
	}

	for i, item := range o.Items {
		that := other.Items[i]
		if item.ProductID != that.ProductID ||
			item.ProductName != that.ProductName ||
			item.Quantity != that.Quantity ||
			!item.Price.Equal(that.Price) {
			return false
		}
	}

	return true
}
