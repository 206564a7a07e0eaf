package payment

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

const paymentColumns = `id::text, vendor_name, vendor_email, COALESCE(vendor_bank, ''), amount_cents, method, status, reference, transaction_date, created_at`

func (r *postgresRepo) Create(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	const q = `
INSERT INTO payments (vendor_name, vendor_email, vendor_bank, amount_cents, method, status, reference, transaction_date)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
RETURNING ` + paymentColumns
	created, err := r.scanPayment(r.pool.QueryRow(
		ctx, q,
		p.Vendor.Name,
		p.Vendor.Email,
		p.Vendor.BankAccount,
		p.AmountCents,
		p.Method,
		p.Status,
		p.Reference,
		p.TransactionDate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Payment, error) {
	const q = `
SELECT ` + paymentColumns + `
FROM payments
ORDER BY transaction_date DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.Vendor.Name,
		&p.Vendor.Email,
		&p.Vendor.BankAccount,
		&p.AmountCents,
		&p.Method,
		&p.Status,
		&p.Reference,
		&p.TransactionDate,
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
