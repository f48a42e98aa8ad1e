package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const DefaultSubmitTimeout = 10 * time.Second

type Submitter struct {
	orders  port.OrderCreator
	rules   domain.Rules
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Submitter)

func WithTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSubmitter(orders port.OrderCreator, rules domain.Rules, opts ...Option) (*Submitter, error) {
	if orders == nil {
		return nil, errors.New("order creator is nil")
	}
	if err := rules.Check(); err != nil {
		return nil, fmt.Errorf("rules.Check: %w", err)
	}

	s := &Submitter{
		orders:  orders,
		rules:   rules,
		timeout: DefaultSubmitTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Submitter) Rules() domain.Rules {
	return s.rules
}

// Validate runs the same checks Submit runs before any I/O, for form feedback.
func (s *Submitter) Validate(ctx context.Context, sess *Session, details domain.CustomerDetails) error {
	category, err := sess.Category(ctx)
	if err != nil {
		return err
	}

	return s.validate(category, sess.Cart(), details)
}

// Submit validates the session's cart and details and stores the order.
//
// Errors: domain.ErrCategoryNotSelected when no category is stored,
// *domain.ValidationError when a rule fails (nothing is sent),
// domain.ErrSubmissionInProgress when another Submit for the session is running,
// *domain.PersistenceError when the order store fails. After a persistence
// failure the cart, category and idempotency key are kept so a retry cannot
// create a second order. A retry with a changed cart or changed details gets a
// new key.
func (s *Submitter) Submit(ctx context.Context, sess *Session, details domain.CustomerDetails) (domain.OrderReceipt, error) {
	var receipt domain.OrderReceipt

	if sess == nil {
		return receipt, errors.New("session is nil")
	}

	if !sess.beginSubmit() {
		return receipt, domain.ErrSubmissionInProgress
	}
	defer sess.endSubmit()

	category, err := sess.Category(ctx)
	if err != nil {
		return receipt, err
	}

	if err := s.validate(category, sess.Cart(), details); err != nil {
		return receipt, err
	}

	order, err := domain.NewOrder(details, sess.Cart(), uuid.Nil)
	if err != nil {
		return receipt, fmt.Errorf("domain.NewOrder: %w", err)
	}
	order.IdempotencyKey = sess.orderKeyFor(order)

	logger := s.logger.With(
		zap.String("session_id", sess.ID()),
		zap.Stringer("idempotency_key", order.IdempotencyKey),
		zap.String("category", string(category)),
	)

	orderID, err := s.insert(ctx, order)
	if err != nil {
		logger.Warn("order submission failed", zap.Error(err))
		sess.attemptFailed(order)
		return receipt, &domain.PersistenceError{Err: err}
	}

	order.ID = orderID

	sess.Cart().Clear()
	sess.attemptSucceeded()

	if err := sess.ClearCategory(ctx); err != nil {
		// not fatal, the order is already stored
		logger.Error("clear customer category", zap.Error(err))
	}

	logger.Info("order submitted",
		zap.Stringer("order_id", orderID),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("total_quantity", order.TotalQuantity))

	return order.Receipt(), nil
}

// validate collects every violation: the rule checks on the details plus the
// session level checks on category and cart.
func (s *Submitter) validate(category domain.CustomerCategory, cart *domain.Cart, details domain.CustomerDetails) error {
	fields := domain.FieldErrors{}

	if details != nil {
		err := s.rules.Validate(details, cart)

		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			fields = lo.Assign(fields, vErr.Fields)
		case err != nil:
			return err
		}
	}

	if details == nil || details.Category() != category {
		fields[domain.FieldCustomerType] = "Customer details do not match the selected customer type"
	}

	if cart.IsEmpty() {
		fields[domain.FieldItems] = "Cart is empty"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	return nil
}

func (s *Submitter) insert(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orderID, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		return uuid.Nil, fmt.Errorf("orders.InsertOrder: %w", err)
	}
	if orderID == uuid.Nil {
		return uuid.Nil, errors.New("orders.InsertOrder: empty order id")
	}

	return orderID, nil
}
