package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"craftmarket/internal/domain"
	orderrepo "craftmarket/internal/repository/order"
)

var (
	// ErrEmptyCart is returned when an order is submitted without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotPending is returned when cancelling an order that already left
	// the Pending state.
	ErrNotPending = errors.New("only pending orders can be cancelled")
	// ErrInvalidTransition is returned for a status change outside the
	// allowed transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// allowedTransitions is the explicit (current → requested) table guarding
// order status updates.
var allowedTransitions = map[string][]string{
	domain.OrderPending: {domain.OrderPaid, domain.OrderCancelled},
	domain.OrderPaid:    {domain.OrderShipped},
	domain.OrderShipped: {domain.OrderDelivered},
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByContact(ctx context.Context, filter orderrepo.ContactFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

// Service validates and persists orders and guards their lifecycle.
type Service struct {
	repo orderRepo
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ItemInput mirrors one submitted order line.
type ItemInput struct {
	ProductID   *string `json:"product,omitempty"`
	CustomImage *string `json:"customImage,omitempty"`
	Quantity    int     `json:"quantity"`
	PriceCents  *int64  `json:"priceAtPurchase,omitempty"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	CustomName  *string `json:"customName,omitempty"`
}

// PlaceInput captures the order placement payload.
type PlaceInput struct {
	Items         []ItemInput          `json:"items"`
	ShippingInfo  domain.ShippingInfo  `json:"shippingInfo"`
	PaymentMethod string               `json:"paymentMethod"`
	GuestDetails  *domain.GuestDetails `json:"guestDetails,omitempty"`
}

// Place validates the submitted item list and shipping payload, computes the
// total, and persists an immutable Pending order. The submitted
// price-at-purchase is trusted as-is; there is no re-pricing against the
// live catalog.
func (s *Service) Place(ctx context.Context, ident domain.Identity, in PlaceInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	var total int64
	for i, it := range in.Items {
		item, err := validateItem(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
		total += item.PriceCents * int64(item.Quantity)
	}

	isGuest := !ident.IsUser()
	if err := validateShipping(in.ShippingInfo, isGuest); err != nil {
		return nil, err
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, errors.New("invalid payment method")
	}

	order := domain.Order{
		Items:         items,
		TotalCents:    total,
		ShippingInfo:  in.ShippingInfo,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.OrderPending,
	}
	if isGuest {
		guest := in.GuestDetails
		if guest == nil || strings.TrimSpace(guest.Name) == "" || (guest.Email == "" && guest.Phone == "") {
			return nil, errors.New("guest details incomplete: name and at least one contact channel required")
		}
		order.GuestDetails = guest
	} else {
		userID := ident.User.ID
		order.UserID = &userID
	}

	return s.repo.Create(ctx, order)
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every order, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// ListByUser returns the buyer's own orders.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListByContact returns guest orders matching an email or phone number.
func (s *Service) ListByContact(ctx context.Context, email, phone string) ([]domain.Order, error) {
	if email == "" && phone == "" {
		return nil, errors.New("email or phone required")
	}
	return s.repo.ListByContact(ctx, orderrepo.ContactFilter{Email: email, Phone: phone})
}

// UpdateStatus applies a lifecycle transition when the allowed-transition
// table permits it.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, errors.New("invalid status value")
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(current.Status, status) {
		return nil, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Cancel moves a Pending order to Cancelled; any other current status is a
// precondition failure and leaves the order unchanged.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.OrderPending {
		return nil, ErrNotPending
	}
	return s.repo.UpdateStatus(ctx, id, domain.OrderCancelled)
}

func transitionAllowed(current, requested string) bool {
	for _, next := range allowedTransitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

func validateItem(it ItemInput) (domain.OrderItem, error) {
	if it.Quantity < 1 {
		return domain.OrderItem{}, errors.New("quantity required")
	}
	if it.Size == "" || it.Color == "" {
		return domain.OrderItem{}, errors.New("size and color required")
	}

	item := domain.OrderItem{
		Quantity:   it.Quantity,
		Size:       it.Size,
		Color:      it.Color,
		CustomName: it.CustomName,
	}
	switch {
	case it.ProductID != nil && *it.ProductID != "":
		if it.PriceCents == nil || *it.PriceCents < 0 {
			return domain.OrderItem{}, errors.New("price missing or negative")
		}
		item.ProductID = it.ProductID
		item.PriceCents = *it.PriceCents
	case it.CustomImage != nil && *it.CustomImage != "":
		item.CustomImage = it.CustomImage
		if it.PriceCents != nil {
			if *it.PriceCents < 0 {
				return domain.OrderItem{}, errors.New("price missing or negative")
			}
			item.PriceCents = *it.PriceCents
		}
	default:
		return domain.OrderItem{}, errors.New("each item needs a product or a custom image")
	}
	return item, nil
}

func validateShipping(info domain.ShippingInfo, isGuest bool) error {
	if info.City == "" || info.Phone == "" {
		return errors.New("shipping info incomplete")
	}
	if isGuest && info.Email == "" {
		return errors.New("shipping info incomplete: email required for guest orders")
	}
	return nil
}
