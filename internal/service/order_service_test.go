package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCreateOrder_Success(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderRepository)
	publisher := new(mockPublisher)
	svc := newOrderService(t, orders, publisher)

	order := residentOrder("517646", 2)
	stored := order
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()

	orders.On("InsertOrder", mock.Anything, order).Return(stored.ID, nil).Once()
	orders.On("GetOrder", mock.Anything, stored.ID).Return(stored, nil).Once()
	publisher.On("PublishOrderCreated", mock.Anything, stored).Return(nil).Once()

	actual, err := svc.CreateOrder(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, actual.ID)

	orders.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateOrder_PublishFailureIsNotFatal(t *testing.T) {
	orders := new(mockOrderRepository)
	publisher := new(mockPublisher)
	svc := newOrderService(t, orders, publisher)

	order := residentOrder("517641", 1)
	stored := order
	stored.ID = uuid.New()

	orders.On("InsertOrder", mock.Anything, order).Return(stored.ID, nil).Once()
	orders.On("GetOrder", mock.Anything, stored.ID).Return(stored, nil).Once()
	publisher.On("PublishOrderCreated", mock.Anything, stored).Return(errors.New("broker down")).Once()

	actual, err := svc.CreateOrder(t.Context(), order)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, actual.ID)
}

func TestCreateOrder_NilPublisher(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, err := service.NewOrderService(orders, nil, domain.DefaultRules(), nil)
	require.NoError(t, err)

	order := residentOrder("517646", 1)
	orderID := uuid.New()

	orders.On("InsertOrder", mock.Anything, order).Return(orderID, nil).Once()
	orders.On("GetOrder", mock.Anything, orderID).Return(order, nil).Once()

	_, err = svc.CreateOrder(t.Context(), order)
	require.NoError(t, err)
}

func TestCreateOrder_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		orderFunc  func() domain.Order
		wantFields domain.FieldErrors
	}{
		{
			name:       "pincode outside region",
			orderFunc:  func() domain.Order { return residentOrder("500001", 1) },
			wantFields: domain.FieldErrors{domain.FieldPincode: "Invalid Sri City pincode"},
		},
		{
			name: "club below minimum, client claims enough",
			orderFunc: func() domain.Order {
				o := clubOrder(5)
				o.TotalQuantity = 25
				return o
			},
			wantFields: domain.FieldErrors{domain.FieldQuantity: "Club orders require minimum 20 items"},
		},
		{
			name: "client total does not match items",
			orderFunc: func() domain.Order {
				o := residentOrder("517646", 2)
				o.TotalAmount = inr("1.00")
				return o
			},
			wantFields: domain.FieldErrors{domain.FieldItems: "total amount 1 does not match items 598"},
		},
		{
			name: "missing customer",
			orderFunc: func() domain.Order {
				o := residentOrder("517646", 1)
				o.Customer = nil
				return o
			},
			wantFields: domain.FieldErrors{domain.FieldCustomerType: "Customer type is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(mockOrderRepository)
			publisher := new(mockPublisher)
			svc := newOrderService(t, orders, publisher)

			_, err := svc.CreateOrder(t.Context(), tt.orderFunc())

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantFields, vErr.Fields)

			orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_InsertFailure(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newOrderService(t, orders, nil)

	order := clubOrder(20)
	orders.On("InsertOrder", mock.Anything, order).Return(uuid.Nil, errors.New("connection refused")).Once()

	_, err := svc.CreateOrder(t.Context(), order)
	assert.EqualError(t, err, "orders.InsertOrder: connection refused")
}

func TestListOrders(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderRepository)
	svc := newOrderService(t, orders, nil)

	all := []domain.Order{residentOrder("517646", 1), clubOrder(20)}
	orders.On("ListOrders", mock.Anything).Return(all, nil).Once()

	actual, err := svc.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, actual, 2)

	filter := domain.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderStatusPending}}
	orders.On("SearchOrders", mock.Anything, filter).Return(all[:1], nil).Once()

	actual, err = svc.ListOrders(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, actual, 1)

	orders.AssertExpectations(t)
}

func TestUpdateStatus(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderRepository)
	svc := newOrderService(t, orders, nil)

	order := clubOrder(20)
	order.ID = uuid.New()
	order.Status = domain.OrderStatusProcessing

	orders.On("UpdateOrderStatus", mock.Anything, order.ID, domain.OrderStatusProcessing).Return(nil).Once()
	orders.On("GetOrder", mock.Anything, order.ID).Return(order, nil).Once()

	updated, err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)

	transitionErr := domain.CheckTransition(domain.OrderStatusCompleted, domain.OrderStatusPending)
	orders.On("UpdateOrderStatus", mock.Anything, order.ID, domain.OrderStatusPending).Return(transitionErr).Once()

	_, err = svc.UpdateStatus(ctx, order.ID, domain.OrderStatusPending)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestDeleteOrder(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newOrderService(t, orders, nil)

	orderID := uuid.New()
	orders.On("DeleteOrder", mock.Anything, orderID).Return(domain.ErrNotFound).Once()

	err := svc.DeleteOrder(t.Context(), orderID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewOrderService_InvalidArgs(t *testing.T) {
	_, err := service.NewOrderService(nil, nil, domain.DefaultRules(), nil)
	assert.EqualError(t, err, "order repository is nil")

	_, err = service.NewOrderService(new(mockOrderRepository), nil, domain.Rules{MinClubQuantity: 20}, nil)
	assert.EqualError(t, err, "rules.Check: pincodes are empty")
}

func newOrderService(t *testing.T, orders *mockOrderRepository, publisher *mockPublisher) *service.OrderService {
	t.Helper()

	var (
		svc *service.OrderService
		err error
	)

	// a nil *mockPublisher must not reach the service as a non-nil interface
	if publisher == nil {
		svc, err = service.NewOrderService(orders, nil, domain.DefaultRules(), zaptest.NewLogger(t))
	} else {
		svc, err = service.NewOrderService(orders, publisher, domain.DefaultRules(), zaptest.NewLogger(t))
	}
	require.NoError(t, err)

	return svc
}

func inr(amount string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(amount), Currency: currency.INR}
}

func residentOrder(pincode string, quantity int) domain.Order {
	price := inr("299.00")

	return domain.Order{
		IdempotencyKey: uuid.New(),
		Customer: domain.LocalResident{
			Name:    "Asha Reddy",
			Phone:   "9876543210",
			Address: "12 Lake View Road",
			Pincode: pincode,
		},
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Organic Quinoa", Price: price, Quantity: quantity},
		},
		TotalAmount:   price.Mul(quantity),
		TotalQuantity: quantity,
		Status:        domain.OrderStatusPending,
	}
}

func clubOrder(quantity int) domain.Order {
	price := inr("180.00")

	return domain.Order{
		IdempotencyKey: uuid.New(),
		Customer: domain.BulkClub{
			ClubName:      "Green Campus Club",
			CollegeName:   "IIIT Sri City",
			ContactPerson: "Ravi Kumar",
			Phone:         "8123456789",
			Address:       "630 Gnan Marg",
		},
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Herbal Green Tea", Price: price, Quantity: quantity},
		},
		TotalAmount:   price.Mul(quantity),
		TotalQuantity: quantity,
		Status:        domain.OrderStatusPending,
	}
}
