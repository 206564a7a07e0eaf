package cart

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/domain"
	cartrepo "craftmarket/internal/repository/cart"
)

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByGuest(ctx context.Context, guestID string) (*domain.Cart, error)
	UpsertLine(ctx context.Context, cartID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID string, key domain.VariantKey, quantity int) error
	RemoveLine(ctx context.Context, cartID string, key domain.VariantKey) error
	ClearLines(ctx context.Context, cartID string) error
	AssignUser(ctx context.Context, guestID, userID string) (*domain.Cart, error)
	ReplaceLinesAndDeleteGuest(ctx context.Context, userCartID, guestCartID string, lines []domain.CartLine) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns cart reads/writes for both identity kinds and the
// guest-to-user merge.
type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartrepo.Repository, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// AddInput mirrors the add-to-cart payload.
type AddInput struct {
	ProductID  string  `json:"productId"`
	Quantity   int     `json:"quantity"`
	Size       string  `json:"size"`
	Color      string  `json:"color"`
	CustomName *string `json:"customName,omitempty"`
}

// Get returns the cart owned by the resolved identity.
func (s *Service) Get(ctx context.Context, ident domain.Identity) (*domain.Cart, error) {
	return s.lookup(ctx, ident)
}

// Add appends a line to the owner's cart, creating the cart lazily on first
// use. A line with the same variant tuple has its quantity incremented.
func (s *Service) Add(ctx context.Context, ident domain.Identity, in AddInput) (*domain.Cart, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, errors.New("productId required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, errors.New("quantity must be positive")
	}
	if in.Size == "" {
		in.Size = "s"
	}
	if in.Color == "" {
		in.Color = "black"
	}
	if !domain.ValidSize(in.Size) {
		return nil, errors.New("invalid size")
	}
	if !domain.ValidColor(in.Color) {
		return nil, errors.New("invalid color")
	}
	if s.products != nil {
		if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, errors.New("product not found")
			}
			return nil, err
		}
	}

	cart, err := s.lookup(ctx, ident)
	if errors.Is(err, domain.ErrNotFound) {
		cart, err = s.repo.Create(ctx, createInput(ident))
	}
	if err != nil {
		return nil, err
	}

	line := domain.CartLine{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		Size:       in.Size,
		Color:      in.Color,
		CustomName: in.CustomName,
	}
	if err := s.repo.UpsertLine(ctx, cart.ID, line); err != nil {
		return nil, err
	}
	return s.lookup(ctx, ident)
}

// UpdateQuantity sets the quantity of the line with the given variant
// identity; zero or negative removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, ident domain.Identity, key domain.VariantKey, quantity int) (*domain.Cart, error) {
	cart, err := s.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		err = s.repo.RemoveLine(ctx, cart.ID, key)
	} else {
		err = s.repo.SetLineQuantity(ctx, cart.ID, key, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, ident)
}

// Remove deletes the line with the given variant identity.
func (s *Service) Remove(ctx context.Context, ident domain.Identity, key domain.VariantKey) (*domain.Cart, error) {
	cart, err := s.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, key); err != nil {
		return nil, err
	}
	return s.lookup(ctx, ident)
}

// Clear empties the owner's cart without deleting the record. A missing
// cart is not an error.
func (s *Service) Clear(ctx context.Context, ident domain.Identity) error {
	cart, err := s.lookup(ctx, ident)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.ClearLines(ctx, cart.ID)
}

// Merge folds the guest's cart into the user's cart. It is idempotent under
// retry: once the guest cart is gone the whole operation is a no-op.
func (s *Service) Merge(ctx context.Context, userID, guestID string) (*domain.Cart, error) {
	guestCart, err := s.repo.GetByGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	userCart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No user cart yet: re-own the guest cart in place.
			return s.repo.AssignUser(ctx, guestID, userID)
		}
		return nil, err
	}

	merged := mergeLines(userCart.Lines, guestCart.Lines)
	if err := s.repo.ReplaceLinesAndDeleteGuest(ctx, userCart.ID, guestCart.ID, merged); err != nil {
		return nil, err
	}
	return s.repo.GetByUser(ctx, userID)
}

// mergeLines folds guest lines into user lines: equal variant tuples sum
// their quantities, everything else is appended in order.
func mergeLines(user, guest []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(user))
	copy(out, user)

	index := make(map[domain.VariantKey]int, len(out))
	for i, line := range out {
		index[line.Key()] = i
	}

	for _, line := range guest {
		if i, ok := index[line.Key()]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
	}
	return out
}

func (s *Service) lookup(ctx context.Context, ident domain.Identity) (*domain.Cart, error) {
	if ident.IsUser() {
		return s.repo.GetByUser(ctx, ident.User.ID)
	}
	if ident.GuestID == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByGuest(ctx, ident.GuestID)
}

func createInput(ident domain.Identity) cartrepo.CreateCartInput {
	if ident.IsUser() {
		id := ident.User.ID
		return cartrepo.CreateCartInput{UserID: &id}
	}
	guest := ident.GuestID
	return cartrepo.CreateCartInput{GuestID: &guest}
}
