package product

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/domain"
	productrepo "craftmarket/internal/repository/product"
)

var (
	// ErrInvalidReviewStatus is returned when a proposal review uses a
	// status other than Approved/Rejected.
	ErrInvalidReviewStatus = errors.New("status must be Approved or Rejected")
)

type repo interface {
	List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

type categoryRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

// Service covers the catalog: admin CRUD, client proposals with admin
// review, and text search.
type Service struct {
	repo       repo
	categories categoryRepo
}

func New(repo productrepo.Repository, categories categoryRepo) *Service {
	return &Service{repo: repo, categories: categories}
}

// CreateInput captures fields for admin product creation.
type CreateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  *int64   `json:"priceCents"`
	CategoryID  string   `json:"category"`
	Tags        []string `json:"tags"`
	Images      []string `json:"image"`
}

// UpdateInput carries optional field updates; nil means keep the current value.
type UpdateInput struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	PriceCents     *int64    `json:"priceCents"`
	SalePriceCents *int64    `json:"salePriceCents"`
	CategoryID     *string   `json:"category"`
	Tags           *[]string `json:"tags"`
	Images         *[]string `json:"image"`
}

// List returns products, optionally filtered by category.
func (s *Service) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{CategoryID: categoryID})
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an already-approved product to the catalog (admin path).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if err := s.validateBase(ctx, in.Name, in.CategoryID); err != nil {
		return nil, err
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return nil, errors.New("price must be a non-negative number")
	}
	return s.repo.Create(ctx, domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		CategoryID:  in.CategoryID,
		Tags:        in.Tags,
		Images:      in.Images,
		Status:      domain.ProductApproved,
	})
}

// Propose records a client product proposal. Price is left unset until an
// admin review approves it.
func (s *Service) Propose(ctx context.Context, proposerID string, in CreateInput) (*domain.Product, error) {
	if err := s.validateBase(ctx, in.Name, in.CategoryID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Product{
		ProposedBy:  &proposerID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		Tags:        in.Tags,
		Images:      in.Images,
		Status:      domain.ProductProposed,
	})
}

// Review resolves a proposal: Approved requires a price, Rejected leaves it
// unset. The reviewing admin is recorded.
func (s *Service) Review(ctx context.Context, reviewerID, productID, status string, priceCents *int64) (*domain.Product, error) {
	if status != domain.ProductApproved && status != domain.ProductRejected {
		return nil, ErrInvalidReviewStatus
	}
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if status == domain.ProductApproved {
		if priceCents == nil || *priceCents < 0 {
			return nil, errors.New("approval requires a non-negative price")
		}
		p.PriceCents = priceCents
	}
	p.Status = status
	p.ReviewedBy = &reviewerID
	return s.repo.Update(ctx, *p)
}

// Update applies partial field changes to a product.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, errors.New("name required")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, errors.New("price must be a non-negative number")
		}
		p.PriceCents = in.PriceCents
	}
	if in.SalePriceCents != nil {
		p.SalePriceCents = in.SalePriceCents
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, errors.New("category not found")
			}
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	return s.repo.Update(ctx, *p)
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Search matches the query against product names and descriptions. An empty
// query yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Search(ctx, query, limit)
}

func (s *Service) validateBase(ctx context.Context, name, categoryID string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if categoryID == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return errors.New("missing or invalid fields: " + strings.Join(missing, ", "))
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("category not found")
		}
		return err
	}
	return nil
}
