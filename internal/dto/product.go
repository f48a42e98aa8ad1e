package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductRequest is the admin payload for create and update. A missing
// currency means the store currency.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	ImageURL    string          `json:"image_url"`
}

func ToProduct(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount,
		Currency:    p.Price.Currency.String(),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProducts(products []domain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		result = append(result, ToProduct(p))
	}
	return result
}

func (p Product) ToDomain() (domain.Product, error) {
	cur, err := parseCurrency(p.Currency, currency.Unit{})
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       domain.Money{Amount: p.Price, Currency: cur},
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (r ProductRequest) ToDomain(productID uuid.UUID, defaultCurrency currency.Unit) (domain.Product, error) {
	cur, err := parseCurrency(r.Currency, defaultCurrency)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:          productID,
		Name:        r.Name,
		Description: r.Description,
		Price:       domain.Money{Amount: r.Price, Currency: cur},
		ImageURL:    r.ImageURL,
	}, nil
}
