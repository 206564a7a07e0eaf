package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"craftmarket/internal/domain"
	ordersvc "craftmarket/internal/service/order"
)

const orderBody = `{
	"items":[{"product":"p1","quantity":2,"priceAtPurchase":1500,"size":"m","color":"red"}],
	"shippingInfo":{"city":"Lisbon","phone":"+351 000","email":"buyer@example.com"},
	"paymentMethod":"CreditCard",
	"guestDetails":{"name":"Visitor","email":"visitor@example.com"}
}`

func TestCreateOrderHandler_GuestPlaces(t *testing.T) {
	orders := &stubOrderService{order: &domain.Order{ID: "o1", Status: domain.OrderPending}}
	carts := &stubCartService{}
	router := newTestRouter(t, testDeps(&stubAuthService{}, carts, orders))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(orderBody))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: guestCookie, Value: "guest-9"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if orders.lastIdentity.GuestID != "guest-9" {
		t.Fatalf("guest identity not forwarded: %+v", orders.lastIdentity)
	}
	// Orders are placed from the submitted item list; the live cart is not
	// touched.
	if carts.cleared {
		t.Fatalf("placing an order must not clear the cart")
	}
}

func TestCreateOrderHandler_EmptyCart(t *testing.T) {
	orders := &stubOrderService{placeErr: ordersvc.ErrEmptyCart}
	router := newTestRouter(t, testDeps(&stubAuthService{}, &stubCartService{}, orders))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetOrderHandler_BuyerOwnership(t *testing.T) {
	owner := "u1"
	orders := &stubOrderService{order: &domain.Order{ID: "o1", UserID: &owner}}
	auth := &stubAuthService{ref: domain.UserRef{ID: "u2", Role: domain.RoleClient}}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, orders))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for someone else's order, got %d", rec.Code)
	}

	auth.ref = domain.UserRef{ID: "u1", Role: domain.RoleClient}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected owner to read the order, got %d", rec.Code)
	}
}

func TestGetOrderHandler_AdminReadsAny(t *testing.T) {
	owner := "u1"
	orders := &stubOrderService{order: &domain.Order{ID: "o1", UserID: &owner}}
	auth := &stubAuthService{ref: domain.UserRef{ID: "a1", Role: domain.RoleAdmin}}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, orders))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrdersByContactHandler_RequiresFilter(t *testing.T) {
	auth := &stubAuthService{ref: domain.UserRef{ID: "a1", Role: domain.RoleAdmin}}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/contact", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without filter, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/contact?email=a@b.c", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
