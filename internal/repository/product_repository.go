package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
)

const productColumns = `id, name, description, price_amount::text, price_currency, image_url, created_at, updated_at`

type productRepository struct {
	db DBTX
}

func NewProduct(pool *pgxpool.Pool) (port.ProductRepository, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &productRepository{db: pool}, nil
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	if err != nil {
		return p, fmt.Errorf("db.Query: %w", err)
	}

	p, err = pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("GetProduct: %w", ErrProductNotFound)
		}
		return p, fmt.Errorf("pgx.CollectExactlyOneRow: %w", err)
	}

	return p, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if err := product.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("product.Validate: %w", err)
	}

	productID, err := insertProduct(ctx, r.db, product)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insertProduct: %w", err)
	}

	return productID, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	var p domain.Product

	if product.ID == uuid.Nil {
		return p, errors.New("productID is empty")
	}
	if err := product.Validate(); err != nil {
		return p, fmt.Errorf("product.Validate: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET name = $2, description = $3, price_amount = $4, price_currency = $5, image_url = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		product.ID,
		product.Name,
		product.Description,
		product.Price.Amount.String(),
		product.Price.Currency.String(),
		product.ImageURL,
	)
	if err != nil {
		return p, fmt.Errorf("db.Query: %w", err)
	}

	p, err = pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("UpdateProduct: %w", ErrProductNotFound)
		}
		return p, fmt.Errorf("pgx.CollectExactlyOneRow: %w", err)
	}

	return p, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return errors.New("productID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteProduct: %w", ErrProductNotFound)
	}

	return nil
}

func (r *productRepository) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	for idx, product := range products {
		if err := product.Validate(); err != nil {
			return fmt.Errorf("product[%d].Validate: %w", idx, err)
		}
	}

	if err := withTxNoResult(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("tx.Exec: %w", err)
		}

		for _, product := range products {
			if _, err := insertProduct(ctx, tx, product); err != nil {
				return fmt.Errorf("insertProduct: %w", err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func insertProduct(ctx context.Context, db DBTX, product domain.Product) (uuid.UUID, error) {
	var productID uuid.UUID

	err := db.QueryRow(ctx, `
		INSERT INTO products (name, description, price_amount, price_currency, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		product.Name,
		product.Description,
		product.Price.Amount.String(),
		product.Price.Currency.String(),
		product.ImageURL,
	).Scan(&productID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("QueryRow.Scan: %w", err)
	}

	return productID, nil
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var (
		p              domain.Product
		amount, curISO string
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&amount,
		&curISO,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return p, fmt.Errorf("row.Scan: %w", err)
	}

	price, err := parseMoney(amount, curISO)
	if err != nil {
		return p, fmt.Errorf("parseMoney: %w", err)
	}
	p.Price = price

	return p, nil
}
