package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"github.com/samber/lo"
)

var (
	ErrOrderNotFound = fmt.Errorf("order %w", domain.ErrNotFound)
)

const orderColumns = `id, idempotency_key, customer_category, customer_data, total_amount::text, total_currency,
	total_quantity, status, created_at, updated_at`

const searchOrdersQuery = `SELECT ` + orderColumns + ` FROM orders
	WHERE ($1::uuid[] IS NULL OR id = ANY($1))
	  AND ($2::text[] IS NULL OR customer_category = ANY($2))
	  AND ($3::text[] IS NULL OR status = ANY($3))
	  AND ($4::timestamptz IS NULL OR created_at > $4)
	  AND ($5::timestamptz IS NULL OR created_at < $5)
	ORDER BY created_at DESC`

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) (port.OrderRepository, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &orderRepository{db: pool}, nil
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

// InsertOrder stores the order with status pending. A repeated idempotency key
// returns the id of the order stored first and writes nothing, or
// domain.ErrIdempotencyKeyConflict when the stored order has different content.
func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if err := order.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("order.Validate: %w", err)
	}

	customerData, err := domain.MarshalCustomerDetails(order.Customer)
	if err != nil {
		return uuid.Nil, fmt.Errorf("domain.MarshalCustomerDetails: %w", err)
	}

	idempotencyKey := order.IdempotencyKey
	if idempotencyKey == uuid.Nil {
		idempotencyKey = uuid.New()
	}

	orderID, err := withTx(ctx, r.db, func(tx pgx.Tx) (uuid.UUID, error) {
		var orderID uuid.UUID

		err := tx.QueryRow(ctx, `
			INSERT INTO orders (idempotency_key, customer_category, customer_data, total_amount, total_currency, total_quantity, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (idempotency_key) DO NOTHING
			RETURNING id`,
			idempotencyKey,
			string(order.Category()),
			string(customerData),
			order.TotalAmount.Amount.String(),
			order.TotalAmount.Currency.String(),
			order.TotalQuantity,
			string(domain.OrderStatusPending),
		).Scan(&orderID)

		if errors.Is(err, pgx.ErrNoRows) {
			// conflict: the order was stored by an earlier attempt
			return existingOrderID(ctx, tx, idempotencyKey, order)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for idx, item := range order.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, position, product_id, product_name, price_amount, price_currency, quantity)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				orderID,
				idx,
				item.ProductID,
				item.ProductName,
				item.Price.Amount.String(),
				item.Price.Currency.String(),
				item.Quantity,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return uuid.Nil, fmt.Errorf("insert order items: %w", err)
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	orders, err := withTx(ctx, r.db, func(tx pgx.Tx) ([]domain.Order, error) {
		return loadOrders(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	if len(orders) == 0 {
		return o, ErrOrderNotFound
	}

	return orders[0], nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := withTx(ctx, r.db, func(tx pgx.Tx) ([]domain.Order, error) {
		return loadOrders(ctx, tx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	})
	if err != nil {
		return nil, fmt.Errorf("withTx: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	categories := lo.Map(filter.Categories, func(c domain.CustomerCategory, _ int) string { return string(c) })
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string { return string(s) })

	orders, err := withTx(ctx, r.db, func(tx pgx.Tx) ([]domain.Order, error) {
		return loadOrders(ctx, tx, searchOrdersQuery,
			nilSliceIfEmpty(filter.IDs),
			nilSliceIfEmpty(categories),
			nilSliceIfEmpty(statuses),
			createdAfter,
			createdBefore,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("withTx: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}
	if status == "" {
		return fmt.Errorf("status is empty")
	}

	if err := withTxNoResult(ctx, r.db, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("UpdateOrderStatus: %w", ErrOrderNotFound)
		}
		if err != nil {
			return fmt.Errorf("select status: %w", err)
		}

		currentStatus, err := domain.ToOrderStatus(current)
		if err != nil {
			return fmt.Errorf("domain.ToOrderStatus[%s]: %w", current, err)
		}

		if err := domain.CheckTransition(currentStatus, status); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, string(status)); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteOrder: %w", ErrOrderNotFound)
	}

	return nil
}

// existingOrderID returns the id of the order stored under the key, provided it
// has the same content as the order being inserted.
func existingOrderID(ctx context.Context, tx pgx.Tx, idempotencyKey uuid.UUID, order domain.Order) (uuid.UUID, error) {
	existing, err := loadOrders(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, idempotencyKey)
	if err != nil {
		return uuid.Nil, fmt.Errorf("loadOrders[existing]: %w", err)
	}
	if len(existing) == 0 {
		return uuid.Nil, fmt.Errorf("existing order for key %s is not visible", idempotencyKey)
	}

	if !existing[0].SameContent(order) {
		return uuid.Nil, fmt.Errorf("key %s: %w", idempotencyKey, domain.ErrIdempotencyKeyConflict)
	}

	return existing[0].ID, nil
}

// loadOrders runs an orders query and attaches the items of every returned order.
func loadOrders(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]domain.Order, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tx.Query: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows[orders]: %w", err)
	}

	if len(orders) == 0 {
		return nil, nil
	}

	ids := lo.Map(orders, func(o domain.Order, _ int) uuid.UUID { return o.ID })

	itemRows, err := tx.Query(ctx, `
		SELECT order_id, product_id, product_name, price_amount::text, price_currency, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("tx.Query[items]: %w", err)
	}

	type orderItemRow struct {
		orderID uuid.UUID
		item    domain.OrderItem
	}

	items, err := pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (orderItemRow, error) {
		var (
			r              orderItemRow
			amount, curISO string
		)

		if err := row.Scan(&r.orderID, &r.item.ProductID, &r.item.ProductName, &amount, &curISO, &r.item.Quantity); err != nil {
			return r, fmt.Errorf("row.Scan: %w", err)
		}

		price, err := parseMoney(amount, curISO)
		if err != nil {
			return r, fmt.Errorf("parseMoney: %w", err)
		}
		r.item.Price = price

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows[items]: %w", err)
	}

	itemsByOrder := lo.GroupBy(items, func(r orderItemRow) uuid.UUID { return r.orderID })

	for i := range orders {
		orders[i].Items = lo.Map(itemsByOrder[orders[i].ID], func(r orderItemRow, _ int) domain.OrderItem {
			return r.item
		})
	}

	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var (
		o                      domain.Order
		category, status       string
		customerData           []byte
		totalAmount, totalCurr string
	)

	if err := row.Scan(
		&o.ID,
		&o.IdempotencyKey,
		&category,
		&customerData,
		&totalAmount,
		&totalCurr,
		&o.TotalQuantity,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return o, fmt.Errorf("row.Scan: %w", err)
	}

	parsedCategory, err := domain.ToCustomerCategory(category)
	if err != nil {
		return o, fmt.Errorf("domain.ToCustomerCategory[%s]: %w", category, err)
	}

	o.Customer, err = domain.UnmarshalCustomerDetails(parsedCategory, customerData)
	if err != nil {
		return o, fmt.Errorf("domain.UnmarshalCustomerDetails: %w", err)
	}

	o.TotalAmount, err = parseMoney(totalAmount, totalCurr)
	if err != nil {
		return o, fmt.Errorf("parseMoney: %w", err)
	}

	o.Status, err = domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	return o, nil
}
