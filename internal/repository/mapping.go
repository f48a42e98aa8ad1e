package repository

import (
	"fmt"

	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// numeric columns are selected as text and parsed here, the driver never sees decimal.Decimal
func parseMoney(amount, currencyCode string) (domain.Money, error) {
	var m domain.Money

	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return m, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return m, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
