package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       Money
	ImageURL    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is empty")
	}

	if !p.Price.IsPositive() {
		return errors.New("price is not positive")
	}

	if !p.Price.FitsScale() {
		return fmt.Errorf("price has more than %d decimal places", MoneyScale)
	}

	if p.Price.Currency == (currency.Unit{}) || p.Price.Currency == currency.XXX {
		return errors.New("currency is empty")
	}

	return nil
}
