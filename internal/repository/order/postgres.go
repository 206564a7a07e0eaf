package order

import (
	"context"
	"encoding/json"
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

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, user_id::text, guest_details, items, total_cents, shipping_info, payment_method, status, created_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	shipJSON, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return nil, err
	}
	var guestJSON []byte
	if o.GuestDetails != nil {
		if guestJSON, err = json.Marshal(o.GuestDetails); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO orders (user_id, guest_details, items, total_cents, shipping_info, payment_method, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns
	created, err := r.scanOrder(r.pool.QueryRow(ctx, q, o.UserID, guestJSON, itemsJSON, o.TotalCents, shipJSON, o.PaymentMethod, o.Status))
	if err != nil {
		r.logger.Printf("order repo: create error=%v", err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return r.scanOrder(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`
	return r.queryOrders(ctx, q)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	return r.queryOrders(ctx, q, userID)
}

func (r *postgresRepo) ListByContact(ctx context.Context, filter ContactFilter) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1 = '' OR guest_details ->> 'email' = $1)
  AND ($2 = '' OR guest_details ->> 'phone' = $2)
  AND guest_details IS NOT NULL
ORDER BY created_at DESC
`
	return r.queryOrders(ctx, q, filter.Email, filter.Phone)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $1
WHERE id = $2
RETURNING ` + orderColumns
	return r.scanOrder(r.pool.QueryRow(ctx, q, status, id))
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o         domain.Order
		guestJSON []byte
		itemsJSON []byte
		shipJSON  []byte
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&guestJSON,
		&itemsJSON,
		&o.TotalCents,
		&shipJSON,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(guestJSON) > 0 {
		o.GuestDetails = &domain.GuestDetails{}
		if err := json.Unmarshal(guestJSON, o.GuestDetails); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shipJSON, &o.ShippingInfo); err != nil {
		return nil, err
	}
	return &o, nil
}
