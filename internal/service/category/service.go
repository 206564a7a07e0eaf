package category

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/domain"
	categoryrepo "craftmarket/internal/repository/category"
)

var (
	// ErrNameTaken is returned when creating a category whose name exists.
	ErrNameTaken = errors.New("category already exists")
	// ErrHasProducts blocks hard deletion of a category still referenced
	// by products.
	ErrHasProducts = errors.New("cannot delete category: it is linked to existing products")
)

type repo interface {
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type productCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

type Service struct {
	repo     repo
	products productCounter
}

func New(repo categoryrepo.Repository, products productCounter) *Service {
	return &Service{repo: repo, products: products}
}

// UpdateInput carries optional category field changes.
type UpdateInput struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	IsActive          *bool   `json:"isActive"`
	CustomNameAllowed *bool   `json:"customNameAllowed"`
}

func (s *Service) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name required")
	}
	created, err := s.repo.Create(ctx, domain.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, ErrNameTaken
	}
	return created, err
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, errors.New("name required")
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.CustomNameAllowed != nil {
		c.CustomNameAllowed = *in.CustomNameAllowed
	}
	return s.repo.Update(ctx, *c)
}

// SoftDelete marks the category inactive without removing it.
func (s *Service) SoftDelete(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = false
	return s.repo.Update(ctx, *c)
}

// HardDelete permanently removes a category, refusing while products still
// reference it.
func (s *Service) HardDelete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasProducts
	}
	return s.repo.Delete(ctx, id)
}
