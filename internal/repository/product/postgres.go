package product

import (
	"context"
	"errors"
	"io"
	"log"

	"craftmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, proposed_by::text, name, COALESCE(description, ''), price_cents, sale_price_cents, category_id::text, tags, images, rating, status, reviewed_by::text, created_at`

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category_id::text = $1)
  AND ($2 = '' OR proposed_by::text = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, filter.CategoryID, filter.ProposedBy, filter.Status)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	return r.scanProduct(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (proposed_by, name, description, price_cents, sale_price_cents, category_id, tags, images, status)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
RETURNING ` + productColumns
	created, err := r.scanProduct(r.pool.QueryRow(
		ctx, q,
		p.ProposedBy,
		p.Name,
		p.Description,
		p.PriceCents,
		p.SalePriceCents,
		p.CategoryID,
		p.Tags,
		p.Images,
		p.Status,
	))
	if err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $1,
    description = NULLIF($2, ''),
    price_cents = $3,
    sale_price_cents = $4,
    category_id = $5,
    tags = $6,
    images = $7,
    rating = $8,
    status = $9,
    reviewed_by = $10
WHERE id = $11
RETURNING ` + productColumns
	return r.scanProduct(r.pool.QueryRow(
		ctx, q,
		p.Name,
		p.Description,
		p.PriceCents,
		p.SalePriceCents,
		p.CategoryID,
		p.Tags,
		p.Images,
		p.Rating,
		p.Status,
		p.ReviewedBy,
		p.ID,
	))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	return count, err
}

func (r *postgresRepo) collect(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.ProposedBy,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.SalePriceCents,
		&p.CategoryID,
		&p.Tags,
		&p.Images,
		&p.Rating,
		&p.Status,
		&p.ReviewedBy,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
