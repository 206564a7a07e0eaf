package payment

import (
	"context"

	"craftmarket/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	// List returns ledger entries newest first by transaction date.
	List(ctx context.Context) ([]domain.Payment, error)
}
