package cart

import (
	"context"
	"errors"

	"craftmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id::text, guest_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, guest_id)
VALUES ($1, $2)
RETURNING ` + cartColumns
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, in.UserID, in.GuestID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.GuestID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cart.Lines = []domain.CartLine{}
	return &cart, nil
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1
`
	return r.fetchCart(ctx, q, userID)
}

func (r *postgresRepo) GetByGuest(ctx context.Context, guestID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE guest_id = $1
`
	return r.fetchCart(ctx, q, guestID)
}

func (r *postgresRepo) UpsertLine(ctx context.Context, cartID string, line domain.CartLine) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO cart_lines (cart_id, product_id, quantity, size, color, custom_name)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (cart_id, product_id, size, color, COALESCE(custom_name, ''))
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, q, cartID, line.ProductID, line.Quantity, line.Size, line.Color, line.CustomName); err != nil {
		return err
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID string, key domain.VariantKey, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE cart_lines
SET quantity = $1
WHERE cart_id = $2 AND product_id = $3 AND size = $4 AND color = $5 AND COALESCE(custom_name, '') = $6
`
	cmd, err := tx.Exec(ctx, q, quantity, cartID, key.ProductID, key.Size, key.Color, key.CustomName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID string, key domain.VariantKey) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2 AND size = $3 AND color = $4 AND COALESCE(custom_name, '') = $5
`
	cmd, err := tx.Exec(ctx, q, cartID, key.ProductID, key.Size, key.Color, key.CustomName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ClearLines(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) AssignUser(ctx context.Context, guestID, userID string) (*domain.Cart, error) {
	const q = `
UPDATE carts
SET user_id = $1,
    guest_id = NULL,
    updated_at = now()
WHERE guest_id = $2
RETURNING id::text
`
	var cartID string
	if err := r.pool.QueryRow(ctx, q, userID, guestID).Scan(&cartID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.fetchCart(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE id = $1
`, cartID)
}

func (r *postgresRepo) ReplaceLinesAndDeleteGuest(ctx context.Context, userCartID, guestCartID string, lines []domain.CartLine) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, userCartID); err != nil {
		return err
	}
	// fetchCart orders lines by created_at, so stagger the timestamps to
	// keep the merged sequence.
	for i, line := range lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, size, color, custom_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now() + $7 * interval '1 microsecond')
`, userCartID, line.ProductID, line.Quantity, line.Size, line.Color, line.CustomName, i); err != nil {
			return err
		}
	}
	// Guest cart lines go with the cart row via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guestCartID); err != nil {
		return err
	}
	if err := touchCart(ctx, tx, userCartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.GuestID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id::text, quantity, size, color, custom_name, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.Quantity,
			&line.Size,
			&line.Color,
			&line.CustomName,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}
