package cart

import (
	"context"

	"craftmarket/internal/domain"
)

// CreateCartInput identifies the owner of a new cart. Exactly one of the
// two fields must be set.
type CreateCartInput struct {
	UserID  *string
	GuestID *string
}

type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByGuest(ctx context.Context, guestID string) (*domain.Cart, error)

	// UpsertLine inserts the line or, when a line with the same variant
	// tuple exists, increments its quantity by line.Quantity.
	UpsertLine(ctx context.Context, cartID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID string, key domain.VariantKey, quantity int) error
	RemoveLine(ctx context.Context, cartID string, key domain.VariantKey) error
	// ClearLines empties the cart without deleting it.
	ClearLines(ctx context.Context, cartID string) error

	// AssignUser re-owns the guest cart by clearing guest_id and setting
	// user_id. Returns domain.ErrNotFound when no guest cart exists.
	AssignUser(ctx context.Context, guestID, userID string) (*domain.Cart, error)
	// ReplaceLinesAndDeleteGuest transactionally rewrites the user cart's
	// lines with the merged set and deletes the guest cart record.
	ReplaceLinesAndDeleteGuest(ctx context.Context, userCartID, guestCartID string, lines []domain.CartLine) error
}
