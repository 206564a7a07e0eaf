package category

import (
	"context"
	"errors"

	"craftmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const categoryColumns = `id::text, name, COALESCE(description, ''), is_active, custom_name_allowed, created_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, description, is_active, custom_name_allowed)
VALUES ($1, NULLIF($2, ''), $3, $4)
RETURNING ` + categoryColumns
	created, err := r.scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Description, c.IsActive, c.CustomNameAllowed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const q = `
SELECT ` + categoryColumns + `
FROM categories
WHERE id = $1
`
	return r.scanCategory(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	const q = `
SELECT ` + categoryColumns + `
FROM categories
WHERE lower(name) = lower($1)
LIMIT 1
`
	return r.scanCategory(r.pool.QueryRow(ctx, q, name))
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	const q = `
SELECT ` + categoryColumns + `
FROM categories
WHERE NOT $1 OR is_active
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $1,
    description = NULLIF($2, ''),
    is_active = $3,
    custom_name_allowed = $4
WHERE id = $5
RETURNING ` + categoryColumns
	return r.scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Description, c.IsActive, c.CustomNameAllowed, c.ID))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.IsActive,
		&c.CustomNameAllowed,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
