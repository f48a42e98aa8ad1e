package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// MoneyScale is the number of fractional digits amounts are stored with.
const MoneyScale = 2

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func ZeroMoney(cur currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: cur}
}

// Add keeps the receiver's currency, mixing currencies is the caller's problem.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) Mul(quantity int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: m.Currency}
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// FitsScale reports whether the amount needs no more than MoneyScale fractional digits.
func (m Money) FitsScale() bool {
	return m.Amount.Equal(m.Amount.Round(MoneyScale))
}

func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && m.Currency.String() == other.Currency.String()
}

// String renders the amount with two fractional digits, e.g. "INR 299.00".
func (m Money) String() string {
	return m.Currency.String() + " " + m.Amount.StringFixed(2)
}
