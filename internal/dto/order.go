package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const FieldCurrency = "currency"

type OrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	CustomerType  string          `json:"customer_type"`
	CustomerData  json.RawMessage `json:"customer_data"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalQuantity int             `json:"total_quantity"`
	Currency      string          `json:"currency,omitempty"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	CustomerType  string          `json:"customer_type"`
	CustomerData  json.RawMessage `json:"customer_data"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalQuantity int             `json:"total_quantity"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// legacy customer type names still sent by older storefront builds
var customerTypeAliases = map[string]domain.CustomerCategory{
	"sri_city":        domain.CategoryLocalResident,
	"university_club": domain.CategoryBulkClub,
}

func ParseCustomerType(s string) (domain.CustomerCategory, error) {
	if category, ok := customerTypeAliases[s]; ok {
		return category, nil
	}
	return domain.ToCustomerCategory(s)
}

func NewOrderRequest(order domain.Order) (OrderRequest, error) {
	var r OrderRequest

	customerData, err := domain.MarshalCustomerDetails(order.Customer)
	if err != nil {
		return r, fmt.Errorf("domain.MarshalCustomerDetails: %w", err)
	}

	return OrderRequest{
		CustomerType:  string(order.Category()),
		CustomerData:  customerData,
		Items:         toOrderItems(order.Items),
		TotalAmount:   order.TotalAmount.Amount,
		TotalQuantity: order.TotalQuantity,
		Currency:      order.TotalAmount.Currency.String(),
	}, nil
}

// ToDomain maps the request into a pending order. Malformed input is reported
// as a *domain.ValidationError so handlers answer 400.
func (r OrderRequest) ToDomain(idempotencyKey uuid.UUID, defaultCurrency currency.Unit) (domain.Order, error) {
	var o domain.Order

	category, err := ParseCustomerType(r.CustomerType)
	if err != nil {
		return o, fieldError(domain.FieldCustomerType, "Customer type is required")
	}

	if len(r.CustomerData) == 0 {
		return o, fieldError(domain.FieldCustomerType, "Customer details are required")
	}

	details, err := domain.UnmarshalCustomerDetails(category, r.CustomerData)
	if err != nil {
		return o, fieldError(domain.FieldCustomerType, "Customer details are malformed")
	}

	cur, err := parseCurrency(r.Currency, defaultCurrency)
	if err != nil {
		return o, err
	}

	items := lo.Map(r.Items, func(item OrderItem, _ int) domain.OrderItem {
		return domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       domain.Money{Amount: item.Price, Currency: cur},
			Quantity:    item.Quantity,
		}
	})

	return domain.Order{
		IdempotencyKey: idempotencyKey,
		Customer:       details,
		Items:          items,
		TotalAmount:    domain.Money{Amount: r.TotalAmount, Currency: cur},
		TotalQuantity:  r.TotalQuantity,
		Status:         domain.OrderStatusPending,
	}, nil
}

func ToOrder(order domain.Order) (Order, error) {
	var o Order

	customerData, err := domain.MarshalCustomerDetails(order.Customer)
	if err != nil {
		return o, fmt.Errorf("domain.MarshalCustomerDetails: %w", err)
	}

	return Order{
		ID:            order.ID,
		CustomerType:  string(order.Category()),
		CustomerData:  customerData,
		Items:         toOrderItems(order.Items),
		TotalAmount:   order.TotalAmount.Amount,
		TotalQuantity: order.TotalQuantity,
		Currency:      order.TotalAmount.Currency.String(),
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func ToOrders(orders []domain.Order) ([]Order, error) {
	result := make([]Order, 0, len(orders))
	for idx, order := range orders {
		o, err := ToOrder(order)
		if err != nil {
			return nil, fmt.Errorf("order[%d]: %w", idx, err)
		}
		result = append(result, o)
	}
	return result, nil
}

func (o Order) ToDomain() (domain.Order, error) {
	var order domain.Order

	category, err := ParseCustomerType(o.CustomerType)
	if err != nil {
		return order, fmt.Errorf("ParseCustomerType[%s]: %w", o.CustomerType, err)
	}

	details, err := domain.UnmarshalCustomerDetails(category, o.CustomerData)
	if err != nil {
		return order, fmt.Errorf("domain.UnmarshalCustomerDetails: %w", err)
	}

	cur, err := parseCurrency(o.Currency, currency.Unit{})
	if err != nil {
		return order, err
	}

	status, err := domain.ToOrderStatus(o.Status)
	if err != nil {
		return order, fmt.Errorf("domain.ToOrderStatus[%s]: %w", o.Status, err)
	}

	return domain.Order{
		ID:       o.ID,
		Customer: details,
		Items: lo.Map(o.Items, func(item OrderItem, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Price:       domain.Money{Amount: item.Price, Currency: cur},
				Quantity:    item.Quantity,
			}
		}),
		TotalAmount:   domain.Money{Amount: o.TotalAmount, Currency: cur},
		TotalQuantity: o.TotalQuantity,
		Status:        status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func toOrderItems(items []domain.OrderItem) []OrderItem {
	return lo.Map(items, func(item domain.OrderItem, _ int) OrderItem {
		return OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.Amount,
			Quantity:    item.Quantity,
		}
	})
}
