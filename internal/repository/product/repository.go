package product

import (
	"context"

	"craftmarket/internal/domain"
)

// ListFilter narrows product listings. Zero values mean no filtering.
type ListFilter struct {
	CategoryID string
	ProposedBy string
	Status     string
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// Search matches the query case-insensitively against name and
	// description, returning at most limit products.
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}
