package order

import (
	"context"

	"craftmarket/internal/domain"
)

// ContactFilter selects guest orders by contact channel. At least one field
// must be set.
type ContactFilter struct {
	Email string
	Phone string
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByContact(ctx context.Context, filter ContactFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}
