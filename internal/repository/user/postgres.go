package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"craftmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const userColumns = `id::text, name, email, password_hash, role, address, phone, status, refresh_tokens, created_at`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	addrJSON, err := json.Marshal(u.Address)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO users (name, email, password_hash, role, address, phone, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	created, err := r.scanUser(r.pool.QueryRow(
		ctx, q,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Role,
		addrJSON,
		nullable(u.Phone),
		u.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: create email=%s error=%v", u.Email, err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.User, error) {
	const q = `
UPDATE users
SET status = $1
WHERE id = $2
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q, status, id))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AppendRefreshToken(ctx context.Context, id, token string, keep int) error {
	// The array stays oldest-first: the LIMIT keeps the newest entries by
	// ordinal and the re-aggregation restores their original order.
	const q = `
UPDATE users
SET refresh_tokens = (
	SELECT COALESCE(array_agg(t ORDER BY ord), '{}')
	FROM (
		SELECT t, ord
		FROM unnest(array_append(refresh_tokens, $1)) WITH ORDINALITY AS u(t, ord)
		ORDER BY ord DESC
		LIMIT $2
	) newest
)
WHERE id = $3
`
	cmd, err := r.pool.Exec(ctx, q, token, keep, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RotateRefreshToken(ctx context.Context, id, old, new string) error {
	const q = `
UPDATE users
SET refresh_tokens = array_append(array_remove(refresh_tokens, $1), $2)
WHERE id = $3 AND $1 = ANY(refresh_tokens)
`
	cmd, err := r.pool.Exec(ctx, q, old, new, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveRefreshToken(ctx context.Context, id, token string) error {
	const q = `
UPDATE users
SET refresh_tokens = array_remove(refresh_tokens, $1)
WHERE id = $2 AND $1 = ANY(refresh_tokens)
`
	cmd, err := r.pool.Exec(ctx, q, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u        domain.User
		addrJSON []byte
		phone    *string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&addrJSON,
		&phone,
		&u.Status,
		&u.RefreshTokens,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &u.Address); err != nil {
			return nil, err
		}
	}
	if phone != nil {
		u.Phone = *phone
	}
	return &u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
