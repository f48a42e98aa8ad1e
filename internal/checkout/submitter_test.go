package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/checkout"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockOrderCreator struct {
	mock.Mock
}

func (m *mockOrderCreator) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type failingStore struct {
	*session.MemoryStore
	removeErr error
}

func (s failingStore) Remove(ctx context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.MemoryStore.Remove(ctx, key)
}

func TestSubmit_LocalResidentSuccess(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	quinoa := product("299.00")
	sess.Cart().AddItem(quinoa, 1)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	orderID := uuid.New()
	var captured domain.Order
	orders.On("InsertOrder", mock.Anything, mock.AnythingOfType("domain.Order")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.Order)
		}).
		Return(orderID, nil).Once()

	details := resident()

	receipt, err := submitter.Submit(ctx, sess, details)
	require.NoError(t, err)

	assert.Equal(t, orderID, receipt.OrderID)
	assert.Equal(t, 1, receipt.TotalQuantity)
	assert.Equal(t, "299.00", receipt.TotalAmount.Amount.StringFixed(2))

	assert.Equal(t, domain.OrderStatusPending, captured.Status)
	assert.Equal(t, details, captured.Customer)
	assert.NotEqual(t, uuid.Nil, captured.IdempotencyKey)
	require.Len(t, captured.Items, 1)
	assert.Equal(t, quinoa.ID, captured.Items[0].ProductID)
	assert.Equal(t, quinoa.Name, captured.Items[0].ProductName)

	assert.True(t, sess.Cart().IsEmpty())

	_, err = sess.Category(ctx)
	require.ErrorIs(t, err, domain.ErrCategoryNotSelected)

	orders.AssertExpectations(t)
}

func TestSubmit_BulkClubBelowMinimum(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	sess.Cart().AddItem(product("550.00"), 5)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryBulkClub))

	err := submitter.Validate(ctx, sess, club())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Club orders require minimum 20 items", vErr.Fields[domain.FieldQuantity])

	_, err = submitter.Submit(ctx, sess, club())
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FieldErrors{domain.FieldQuantity: "Club orders require minimum 20 items"}, vErr.Fields)

	assert.Equal(t, 5, sess.Cart().TotalItems())
	orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
}

func TestSubmit_BulkClubAtMinimum(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	sess.Cart().AddItem(product("550.00"), 12)
	sess.Cart().AddItem(product("180.00"), 8)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryBulkClub))

	orders.On("InsertOrder", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()

	receipt, err := submitter.Submit(ctx, sess, club())
	require.NoError(t, err)
	assert.Equal(t, 20, receipt.TotalQuantity)
	assert.Equal(t, "8040.00", receipt.TotalAmount.Amount.StringFixed(2))
}

func TestSubmit_Preconditions(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(t *testing.T, sess *checkout.Session)
		details    domain.CustomerDetails
		wantErr    error
		wantFields domain.FieldErrors
	}{
		{
			name: "no category selected: precondition",
			prepare: func(t *testing.T, sess *checkout.Session) {
				sess.Cart().AddItem(product("10.00"), 1)
			},
			details: resident(),
			wantErr: domain.ErrCategoryNotSelected,
		},
		{
			name: "details of the other category: validation",
			prepare: func(t *testing.T, sess *checkout.Session) {
				sess.Cart().AddItem(product("10.00"), 25)
				require.NoError(t, sess.SelectCategory(t.Context(), domain.CategoryLocalResident))
			},
			details: club(),
			wantFields: domain.FieldErrors{
				domain.FieldCustomerType: "Customer details do not match the selected customer type",
			},
		},
		{
			name: "empty cart: validation",
			prepare: func(t *testing.T, sess *checkout.Session) {
				require.NoError(t, sess.SelectCategory(t.Context(), domain.CategoryLocalResident))
			},
			details:    resident(),
			wantFields: domain.FieldErrors{domain.FieldItems: "Cart is empty"},
		},
		{
			name: "empty cart and invalid details: all violations",
			prepare: func(t *testing.T, sess *checkout.Session) {
				require.NoError(t, sess.SelectCategory(t.Context(), domain.CategoryLocalResident))
			},
			details: domain.LocalResident{Phone: "12345", Address: "4 Temple Street", Pincode: "110001"},
			wantFields: domain.FieldErrors{
				domain.FieldItems:   "Cart is empty",
				domain.FieldName:    "Name is required",
				domain.FieldPhone:   "Please enter a valid 10-digit phone number",
				domain.FieldPincode: "Invalid Sri City pincode",
			},
		},
		{
			name: "invalid pincode: validation",
			prepare: func(t *testing.T, sess *checkout.Session) {
				sess.Cart().AddItem(product("10.00"), 1)
				require.NoError(t, sess.SelectCategory(t.Context(), domain.CategoryLocalResident))
			},
			details: func() domain.CustomerDetails {
				d := resident()
				d.Pincode = "110001"
				return d
			}(),
			wantFields: domain.FieldErrors{domain.FieldPincode: "Invalid Sri City pincode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(mockOrderCreator)
			submitter := newSubmitter(t, orders)

			sess := newSession(t)
			tt.prepare(t, sess)

			_, err := submitter.Submit(t.Context(), sess, tt.details)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantFields, vErr.Fields)
			}

			orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_PersistenceFailureKeepsState(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	sess.Cart().AddItem(product("299.00"), 2)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	var keys []uuid.UUID
	orders.On("InsertOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			keys = append(keys, args.Get(1).(domain.Order).IdempotencyKey)
		}).
		Return(uuid.Nil, errors.New("connection refused")).Once()

	_, err := submitter.Submit(ctx, sess, resident())

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.EqualError(t, err, "order submission failed: orders.InsertOrder: connection refused")

	assert.Equal(t, 2, sess.Cart().TotalItems())
	category, err := sess.Category(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryLocalResident, category)

	// retry reuses the idempotency key
	orderID := uuid.New()
	orders.On("InsertOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			keys = append(keys, args.Get(1).(domain.Order).IdempotencyKey)
		}).
		Return(orderID, nil).Once()

	receipt, err := submitter.Submit(ctx, sess, resident())
	require.NoError(t, err)
	assert.Equal(t, orderID, receipt.OrderID)

	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	orders.AssertExpectations(t)
}

func TestSubmit_RetryWithChangedContentGetsNewKey(t *testing.T) {
	tests := []struct {
		name    string
		change  func(sess *checkout.Session, details *domain.LocalResident)
		sameKey bool
	}{
		{
			name:    "nothing changed: same key",
			change:  func(*checkout.Session, *domain.LocalResident) {},
			sameKey: true,
		},
		{
			name: "item added: new key",
			change: func(sess *checkout.Session, _ *domain.LocalResident) {
				sess.Cart().AddItem(product("450.00"), 3)
			},
		},
		{
			name: "quantity changed: new key",
			change: func(sess *checkout.Session, _ *domain.LocalResident) {
				line := sess.Cart().Lines()[0]
				sess.UpdateQuantity(line.ProductID, line.Quantity+1)
			},
		},
		{
			name: "address changed: new key",
			change: func(_ *checkout.Session, details *domain.LocalResident) {
				details.Address = "9 Lake View Road"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			orders := new(mockOrderCreator)
			submitter := newSubmitter(t, orders)

			sess := newSession(t)
			sess.Cart().AddItem(product("299.00"), 1)
			require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

			var sent []domain.Order
			capture := func(args mock.Arguments) {
				sent = append(sent, args.Get(1).(domain.Order))
			}

			orders.On("InsertOrder", mock.Anything, mock.Anything).
				Run(capture).Return(uuid.Nil, errors.New("response lost")).Once()
			orders.On("InsertOrder", mock.Anything, mock.Anything).
				Run(capture).Return(uuid.New(), nil).Once()

			details := resident()

			_, err := submitter.Submit(ctx, sess, details)
			var pErr *domain.PersistenceError
			require.ErrorAs(t, err, &pErr)

			tt.change(sess, &details)

			receipt, err := submitter.Submit(ctx, sess, details)
			require.NoError(t, err)

			require.Len(t, sent, 2)
			assert.Equal(t, tt.sameKey, sent[0].IdempotencyKey == sent[1].IdempotencyKey)
			assert.Equal(t, sent[1].TotalQuantity, receipt.TotalQuantity)
			assert.True(t, sent[1].TotalAmount.Equal(receipt.TotalAmount))
			orders.AssertExpectations(t)
		})
	}
}

func TestSubmit_NewKeyAfterSuccess(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)
	sess := newSession(t)

	var keys []uuid.UUID
	orders.On("InsertOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			keys = append(keys, args.Get(1).(domain.Order).IdempotencyKey)
		}).
		Return(uuid.New(), nil).Twice()

	for i := 0; i < 2; i++ {
		sess.Cart().AddItem(product("45.00"), 1)
		require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

		_, err := submitter.Submit(ctx, sess, resident())
		require.NoError(t, err)
	}

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestSubmit_Timeout(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)

	submitter, err := checkout.NewSubmitter(orders, domain.DefaultRules(), checkout.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	sess := newSession(t)
	sess.Cart().AddItem(product("299.00"), 1)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	orders.On("InsertOrder", mock.Anything, mock.Anything).
		Return(uuid.Nil, context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).Once()

	_, err = submitter.Submit(ctx, sess, resident())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, sess.Cart().IsEmpty())
}

func TestSubmit_InFlightGuard(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	sess.Cart().AddItem(product("299.00"), 1)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	entered := make(chan struct{})
	release := make(chan struct{})

	orders.On("InsertOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(uuid.New(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := submitter.Submit(ctx, sess, resident())
		done <- err
	}()

	<-entered
	_, err := submitter.Submit(ctx, sess, resident())
	require.ErrorIs(t, err, domain.ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)
	orders.AssertExpectations(t)
}

func TestSubmit_ClearCategoryFailureStillSucceeds(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	store := failingStore{MemoryStore: session.NewMemoryStore(), removeErr: errors.New("store down")}
	sess, err := checkout.NewSession(gofakeit.UUID(), domain.NewCart(currency.INR), store, nil)
	require.NoError(t, err)

	sess.Cart().AddItem(product("299.00"), 1)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	orders.On("InsertOrder", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()

	_, err = submitter.Submit(ctx, sess, resident())
	require.NoError(t, err)
	assert.True(t, sess.Cart().IsEmpty())
}

func TestSubmit_EmptyOrderID(t *testing.T) {
	ctx := t.Context()
	orders := new(mockOrderCreator)
	submitter := newSubmitter(t, orders)

	sess := newSession(t)
	sess.Cart().AddItem(product("299.00"), 1)
	require.NoError(t, sess.SelectCategory(ctx, domain.CategoryLocalResident))

	orders.On("InsertOrder", mock.Anything, mock.Anything).Return(uuid.Nil, nil).Once()

	_, err := submitter.Submit(ctx, sess, resident())
	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.False(t, sess.Cart().IsEmpty())
}

func TestNewSubmitter_InvalidArgs(t *testing.T) {
	_, err := checkout.NewSubmitter(nil, domain.DefaultRules())
	require.EqualError(t, err, "order creator is nil")

	_, err = checkout.NewSubmitter(new(mockOrderCreator), domain.Rules{})
	require.EqualError(t, err, "rules.Check: pincodes are empty")
}

func newSubmitter(t *testing.T, orders *mockOrderCreator) *checkout.Submitter {
	t.Helper()

	submitter, err := checkout.NewSubmitter(orders, domain.DefaultRules())
	require.NoError(t, err)

	return submitter
}

func newSession(t *testing.T) *checkout.Session {
	t.Helper()

	sess, err := checkout.NewSession(gofakeit.UUID(), domain.NewCart(currency.INR), session.NewMemoryStore(), nil)
	require.NoError(t, err)

	return sess
}

func product(price string) domain.Product {
	return domain.Product{
		ID:   uuid.MustParse(gofakeit.UUID()),
		Name: gofakeit.ProductName(),
		Price: domain.Money{
			Amount:   decimal.RequireFromString(price),
			Currency: currency.INR,
		},
	}
}

func resident() domain.LocalResident {
	return domain.LocalResident{
		Name:    gofakeit.Name(),
		Phone:   "9876543210",
		Address: "4 Temple Street",
		Pincode: "517646",
	}
}

func club() domain.BulkClub {
	return domain.BulkClub{
		ClubName:      "Eco Club",
		CollegeName:   "Krea University",
		ContactPerson: "Meena",
		Phone:         "8123456789",
		Address:       "5655 Central Expressway",
	}
}
