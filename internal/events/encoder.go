package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkedin/goavro/v2"
	"github.com/nikolayk812/ecomall/internal/domain"
)

// OrderCreated is the Go view of the avro record.
type OrderCreated struct {
	OrderID          uuid.UUID
	CustomerCategory domain.CustomerCategory
	TotalAmount      string
	Currency         string
	TotalQuantity    int
	ItemCount        int
	CreatedAt        time.Time
}

func NewOrderCreated(order domain.Order) (OrderCreated, error) {
	var e OrderCreated

	if order.ID == uuid.Nil {
		return e, errors.New("order id is empty")
	}
	if order.Customer == nil {
		return e, errors.New("customer is empty")
	}

	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return OrderCreated{
		OrderID:          order.ID,
		CustomerCategory: order.Category(),
		TotalAmount:      order.TotalAmount.Amount.StringFixed(2),
		Currency:         order.TotalAmount.Currency.String(),
		TotalQuantity:    order.TotalQuantity,
		ItemCount:        len(order.Items),
		CreatedAt:        createdAt.UTC().Truncate(time.Millisecond),
	}, nil
}

// Encoder converts OrderCreated to and from avro binary. goavro codecs are
// safe for concurrent use.
type Encoder struct {
	codec *goavro.Codec
}

func NewEncoder() (*Encoder, error) {
	codec, err := goavro.NewCodec(OrderCreatedSchema)
	if err != nil {
		return nil, fmt.Errorf("goavro.NewCodec: %w", err)
	}

	return &Encoder{codec: codec}, nil
}

func (e *Encoder) Encode(event OrderCreated) ([]byte, error) {
	native := map[string]any{
		"order_id":          event.OrderID.String(),
		"customer_category": categorySymbol(event.CustomerCategory),
		"total_amount":      event.TotalAmount,
		"currency":          event.Currency,
		"total_quantity":    int64(event.TotalQuantity),
		"item_count":        int32(event.ItemCount),
		"created_at":        event.CreatedAt,
	}

	binary, err := e.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("codec.BinaryFromNative: %w", err)
	}

	return binary, nil
}

func (e *Encoder) Decode(data []byte) (OrderCreated, error) {
	var event OrderCreated

	native, _, err := e.codec.NativeFromBinary(data)
	if err != nil {
		return event, fmt.Errorf("codec.NativeFromBinary: %w", err)
	}

	record, ok := native.(map[string]any)
	if !ok {
		return event, fmt.Errorf("unexpected native type %T", native)
	}

	event.OrderID, err = uuid.Parse(record["order_id"].(string))
	if err != nil {
		return event, fmt.Errorf("uuid.Parse: %w", err)
	}

	event.CustomerCategory, err = domain.ToCustomerCategory(strings.ReplaceAll(record["customer_category"].(string), "_", "-"))
	if err != nil {
		return event, fmt.Errorf("domain.ToCustomerCategory: %w", err)
	}

	event.TotalAmount = record["total_amount"].(string)
	event.Currency = record["currency"].(string)
	event.TotalQuantity = int(record["total_quantity"].(int64))
	event.ItemCount = int(record["item_count"].(int32))
	event.CreatedAt = record["created_at"].(time.Time)

	return event, nil
}

// avro enum symbols cannot contain dashes
func categorySymbol(category domain.CustomerCategory) string {
	return strings.ReplaceAll(string(category), "-", "_")
}
