package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

// Cart lives for one browsing session and is never stored server side.
// It is not safe for concurrent use.
type Cart struct {
	currency currency.Unit
	lines    []CartLine
}

type CartLine struct {
	ProductID   uuid.UUID
	ProductName string
	Price       Money
	Quantity    int
}

func (l CartLine) Subtotal() Money {
	return l.Price.Mul(l.Quantity)
}

func NewCart(cur currency.Unit) *Cart {
	return &Cart{currency: cur}
}

func (c *Cart) Currency() currency.Unit {
	return c.currency
}

// AddItem merges into the existing line for the product, if any.
// Quantities below 1 are treated as 1.
func (c *Cart) AddItem(product Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	if idx := c.indexOf(product.ID); idx >= 0 {
		c.lines[idx].Quantity += quantity
		return
	}

	c.lines = append(c.lines, CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    quantity,
	})
}

// UpdateQuantity replaces the line quantity, a quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}

	idx := c.indexOf(productID)
	if idx < 0 {
		return fmt.Errorf("product[%s]: %w", productID, ErrNotFound)
	}

	c.lines[idx].Quantity = quantity

	return nil
}

func (c *Cart) RemoveItem(productID uuid.UUID) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return fmt.Errorf("product[%s]: %w", productID, ErrNotFound)
	}

	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)

	return nil
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Lines() []CartLine {
	result := make([]CartLine, len(c.lines))
	copy(result, c.lines)
	return result
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) TotalItems() int {
	return lo.SumBy(c.lines, func(line CartLine) int {
		return line.Quantity
	})
}

func (c *Cart) TotalPrice() Money {
	total := ZeroMoney(c.currency)
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	_, idx, _ := lo.FindIndexOf(c.lines, func(line CartLine) bool {
		return line.ProductID == productID
	})
	return idx
}
