package product

import (
	"context"
	"errors"
	"testing"

	"craftmarket/internal/domain"
	productrepo "craftmarket/internal/repository/product"
)

type stubRepo struct {
	created     *domain.Product
	updated     *domain.Product
	existing    *domain.Product
	getErr      error
	searchQuery string
	searchLimit int
	searched    bool
}

func (s *stubRepo) List(_ context.Context, _ productrepo.ListFilter) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.existing, nil
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	clone := p
	clone.ID = "prod-1"
	s.created = &clone
	return &clone, nil
}

func (s *stubRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	clone := p
	s.updated = &clone
	return &clone, nil
}

func (s *stubRepo) Delete(_ context.Context, _ string) error {
	return nil
}

func (s *stubRepo) Search(_ context.Context, query string, limit int) ([]domain.Product, error) {
	s.searched = true
	s.searchQuery = query
	s.searchLimit = limit
	return []domain.Product{{ID: "prod-1"}}, nil
}

type stubCategories struct {
	err error
}

func (s *stubCategories) GetByID(_ context.Context, _ string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: "cat-1", Name: "mugs"}, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreate_RequiresPrice(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, categories: &stubCategories{}}

	_, err := svc.Create(context.Background(), CreateInput{Name: "Mug", CategoryID: "cat-1"})
	if err == nil {
		t.Fatalf("expected rejection of priceless product")
	}

	p, err := svc.Create(context.Background(), CreateInput{Name: "Mug", CategoryID: "cat-1", PriceCents: ptr(int64(1200))})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != domain.ProductApproved {
		t.Fatalf("admin-created product should be Approved, got %q", p.Status)
	}
}

func TestCreate_UnknownCategory(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, categories: &stubCategories{err: domain.ErrNotFound}}

	_, err := svc.Create(context.Background(), CreateInput{Name: "Mug", CategoryID: "nope", PriceCents: ptr(int64(100))})
	if err == nil {
		t.Fatalf("expected rejection of unknown category")
	}
}

func TestPropose_LeavesPriceUnset(t *testing.T) {
	repo := &stubRepo{}
	svc := &Service{repo: repo, categories: &stubCategories{}}

	p, err := svc.Propose(context.Background(), "client-1", CreateInput{Name: "Bowl", CategoryID: "cat-1"})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if p.Status != domain.ProductProposed {
		t.Fatalf("expected Proposed, got %q", p.Status)
	}
	if p.PriceCents != nil {
		t.Fatalf("proposal must not carry a price")
	}
	if p.ProposedBy == nil || *p.ProposedBy != "client-1" {
		t.Fatalf("proposer not recorded: %+v", p)
	}
}

func TestReview(t *testing.T) {
	repo := &stubRepo{existing: &domain.Product{ID: "prod-1", Status: domain.ProductProposed}}
	svc := &Service{repo: repo, categories: &stubCategories{}}

	if _, err := svc.Review(context.Background(), "admin-1", "prod-1", "Maybe", nil); !errors.Is(err, ErrInvalidReviewStatus) {
		t.Fatalf("expected ErrInvalidReviewStatus, got %v", err)
	}

	if _, err := svc.Review(context.Background(), "admin-1", "prod-1", domain.ProductApproved, nil); err == nil {
		t.Fatalf("approval without price must fail")
	}

	p, err := svc.Review(context.Background(), "admin-1", "prod-1", domain.ProductApproved, ptr(int64(2500)))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if p.Status != domain.ProductApproved || p.PriceCents == nil || *p.PriceCents != 2500 {
		t.Fatalf("approval not applied: %+v", p)
	}
	if p.ReviewedBy == nil || *p.ReviewedBy != "admin-1" {
		t.Fatalf("reviewer not recorded: %+v", p)
	}

	rejected, err := svc.Review(context.Background(), "admin-1", "prod-1", domain.ProductRejected, nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.ProductRejected {
		t.Fatalf("expected Rejected, got %q", rejected.Status)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := &stubRepo{existing: &domain.Product{
		ID:          "prod-1",
		Name:        "Mug",
		Description: "Original",
		PriceCents:  ptr(int64(1000)),
		CategoryID:  "cat-1",
	}}
	svc := &Service{repo: repo, categories: &stubCategories{}}

	p, err := svc.Update(context.Background(), "prod-1", UpdateInput{Description: ptr("New words")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Description != "New words" {
		t.Fatalf("description not updated: %+v", p)
	}
	if p.Name != "Mug" || *p.PriceCents != 1000 {
		t.Fatalf("untouched fields changed: %+v", p)
	}

	if _, err := svc.Update(context.Background(), "prod-1", UpdateInput{PriceCents: ptr(int64(-1))}); err == nil {
		t.Fatalf("expected rejection of negative price")
	}
	if _, err := svc.Update(context.Background(), "prod-1", UpdateInput{Name: ptr("  ")}); err == nil {
		t.Fatalf("expected rejection of blank name")
	}
}

func TestSearch(t *testing.T) {
	repo := &stubRepo{}
	svc := &Service{repo: repo}

	out, err := svc.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if len(out) != 0 || repo.searched {
		t.Fatalf("empty query must short-circuit, got %v", out)
	}

	if _, err := svc.Search(context.Background(), "mug", 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.searchQuery != "mug" || repo.searchLimit != 5 {
		t.Fatalf("default limit not applied: q=%q limit=%d", repo.searchQuery, repo.searchLimit)
	}
}
