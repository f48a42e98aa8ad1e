package dto

import (
	"errors"

	"github.com/nikolayk812/ecomall/internal/domain"
	"golang.org/x/text/currency"
)

// ErrorResponse is the body of every non-2xx answer. Fields is set for
// validation failures only.
type ErrorResponse struct {
	Error  string             `json:"error"`
	Fields domain.FieldErrors `json:"fields,omitempty"`
}

func NewErrorResponse(err error) ErrorResponse {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return ErrorResponse{Error: vErr.Error(), Fields: vErr.Fields}
	}
	return ErrorResponse{Error: err.Error()}
}

func fieldError(field, msg string) error {
	return &domain.ValidationError{Fields: domain.FieldErrors{field: msg}}
}

func parseCurrency(code string, fallback currency.Unit) (currency.Unit, error) {
	if code == "" {
		if fallback == (currency.Unit{}) {
			return fallback, fieldError(FieldCurrency, "Currency is required")
		}
		return fallback, nil
	}

	cur, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fieldError(FieldCurrency, "Currency is not supported")
	}
	return cur, nil
}
