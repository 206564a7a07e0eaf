package user

import (
	"context"

	"craftmarket/internal/domain"
)

// Repository persists and fetches user accounts.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// AppendRefreshToken adds token to the user's allow-list, trimming the
	// list to the most recent keep entries.
	AppendRefreshToken(ctx context.Context, id, token string, keep int) error
	// RotateRefreshToken atomically replaces old with new. Returns
	// domain.ErrNotFound when old is not in the allow-list.
	RotateRefreshToken(ctx context.Context, id, old, new string) error
	// RemoveRefreshToken drops exactly the presented token. Returns
	// domain.ErrNotFound when it is not in the allow-list.
	RemoveRefreshToken(ctx context.Context, id, token string) error
}
