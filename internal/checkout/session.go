package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"go.uber.org/zap"
)

const categoryKeyPrefix = "customer_category:"

// Session is one browsing session: its cart, the chosen customer category and
// the idempotency key of the order being prepared together with the content of
// the last failed attempt under that key. Cart mutations are not
// synchronized, only one logical caller is expected per session.
type Session struct {
	id     string
	cart   *domain.Cart
	store  port.SessionStore
	logger *zap.Logger

	orderKey      uuid.UUID
	failedAttempt *domain.Order
	submitting    atomic.Bool
}

func NewSession(id string, cart *domain.Cart, store port.SessionStore, logger *zap.Logger) (*Session, error) {
	if id == "" {
		return nil, errors.New("session id is empty")
	}
	if cart == nil {
		return nil, errors.New("cart is nil")
	}
	if store == nil {
		return nil, errors.New("session store is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		id:       id,
		cart:     cart,
		store:    store,
		logger:   logger.With(zap.String("session_id", id)),
		orderKey: uuid.New(),
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Cart() *domain.Cart {
	return s.cart
}

// UpdateQuantity logs and swallows a missing product, it is not an error for the user.
func (s *Session) UpdateQuantity(productID uuid.UUID, quantity int) {
	if err := s.cart.UpdateQuantity(productID, quantity); err != nil {
		s.logger.Debug("cart update ignored", zap.Stringer("product_id", productID), zap.Error(err))
	}
}

func (s *Session) RemoveItem(productID uuid.UUID) {
	if err := s.cart.RemoveItem(productID); err != nil {
		s.logger.Debug("cart remove ignored", zap.Stringer("product_id", productID), zap.Error(err))
	}
}

func (s *Session) SelectCategory(ctx context.Context, category domain.CustomerCategory) error {
	if _, err := domain.ToCustomerCategory(string(category)); err != nil {
		return fmt.Errorf("domain.ToCustomerCategory[%s]: %w", category, err)
	}

	if err := s.store.Set(ctx, s.categoryKey(), string(category)); err != nil {
		return fmt.Errorf("store.Set: %w", err)
	}

	return nil
}

// Category returns ErrCategoryNotSelected when nothing usable is stored.
func (s *Session) Category(ctx context.Context) (domain.CustomerCategory, error) {
	value, found, err := s.store.Get(ctx, s.categoryKey())
	if err != nil {
		return "", fmt.Errorf("store.Get: %w", err)
	}
	if !found {
		return "", domain.ErrCategoryNotSelected
	}

	category, err := domain.ToCustomerCategory(value)
	if err != nil {
		s.logger.Warn("stored customer category is invalid", zap.String("value", value))
		return "", domain.ErrCategoryNotSelected
	}

	return category, nil
}

func (s *Session) ClearCategory(ctx context.Context) error {
	if err := s.store.Remove(ctx, s.categoryKey()); err != nil {
		return fmt.Errorf("store.Remove: %w", err)
	}
	return nil
}

func (s *Session) categoryKey() string {
	return categoryKeyPrefix + s.id
}

func (s *Session) beginSubmit() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *Session) endSubmit() {
	s.submitting.Store(false)
}

// orderKeyFor returns the idempotency key for the order. The key of a failed
// attempt is reused only for identical content, the failed attempt may have
// been stored.
func (s *Session) orderKeyFor(order domain.Order) uuid.UUID {
	if s.failedAttempt != nil && !s.failedAttempt.SameContent(order) {
		s.orderKey = uuid.New()
		s.failedAttempt = nil
	}

	return s.orderKey
}

func (s *Session) attemptFailed(order domain.Order) {
	s.failedAttempt = &order
}

func (s *Session) attemptSucceeded() {
	s.orderKey = uuid.New()
	s.failedAttempt = nil
}
