package httpserver

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"craftmarket/internal/domain"
	authsvc "craftmarket/internal/service/auth"
	"github.com/gin-gonic/gin"
)

func TestLoginHandler_SetsCookiesAndMergesGuestCart(t *testing.T) {
	auth := &stubAuthService{
		user: &domain.User{ID: "u1", Email: "ada@example.com", Role: domain.RoleClient},
		pair: authsvc.TokenPair{Access: "acc", Refresh: "ref"},
	}
	carts := &stubCartService{cart: &domain.Cart{ID: "c1"}}
	router := newTestRouter(t, testDeps(auth, carts, &stubOrderService{}))

	body := `{"email":"ada@example.com","password":"Sup3rSecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: guestCookie, Value: "guest-7"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if carts.mergedUser != "u1" || carts.mergedGuest != "guest-7" {
		t.Fatalf("guest cart not merged: user=%q guest=%q", carts.mergedUser, carts.mergedGuest)
	}
	if v, ok := cookieValue(rec, accessCookie); !ok || v != "acc" {
		t.Fatalf("access cookie not set, got %q", v)
	}
	if v, ok := cookieValue(rec, refreshCookie); !ok || v != "ref" {
		t.Fatalf("refresh cookie not set, got %q", v)
	}
	if v, ok := cookieValue(rec, guestCookie); !ok || v != "" {
		t.Fatalf("guest cookie not cleared, value=%q ok=%v", v, ok)
	}
	if !strings.Contains(rec.Body.String(), `"token":"acc"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoginHandler_MergeFailureLoggedNotFatal(t *testing.T) {
	auth := &stubAuthService{
		user: &domain.User{ID: "u1", Email: "ada@example.com", Role: domain.RoleClient},
		pair: authsvc.TokenPair{Access: "acc", Refresh: "ref"},
	}
	carts := &stubCartService{mergeErr: errors.New("carts table on fire")}

	var logged bytes.Buffer
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(log.New(&logged, "", 0), nil, testDeps(auth, carts, &stubOrderService{}), testOptions())
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `{"email":"ada@example.com","password":"Sup3rSecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: guestCookie, Value: "guest-7"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("merge failure must not fail the login, got %d", rec.Code)
	}
	if !strings.Contains(logged.String(), "guest-7") || !strings.Contains(logged.String(), "carts table on fire") {
		t.Fatalf("merge failure not logged, log=%q", logged.String())
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	auth := &stubAuthService{loginErr: authsvc.ErrInvalidCredentials}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	body := `{"email":"ada@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRegisterHandler_Created(t *testing.T) {
	auth := &stubAuthService{
		user: &domain.User{ID: "u1", Email: "ada@example.com", Role: domain.RoleClient},
		pair: authsvc.TokenPair{Access: "acc", Refresh: "ref"},
	}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	body := `{"name":"Ada","email":"ada@example.com","password":"Sup3rSecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"ada@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRegisterHandler_EmailTaken(t *testing.T) {
	auth := &stubAuthService{registerErr: authsvc.ErrEmailTaken}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	body := `{"name":"Ada","email":"ada@example.com","password":"Sup3rSecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRefreshHandler(t *testing.T) {
	auth := &stubAuthService{pair: authsvc.TokenPair{Access: "acc2", Refresh: "ref2"}}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: "ref1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if v, _ := cookieValue(rec, refreshCookie); v != "ref2" {
		t.Fatalf("rotated refresh cookie not set, got %q", v)
	}
}

func TestRefreshHandler_Failures(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"invalid", authsvc.ErrInvalidToken},
		{"expired", authsvc.ErrTokenExpired},
	}
	for _, tc := range cases {
		auth := &stubAuthService{refreshErr: tc.err}
		router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookie, Value: "stale"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, rec.Code)
		}
	}
}

func TestRefreshHandler_NoToken(t *testing.T) {
	router := newTestRouter(t, testDeps(&stubAuthService{}, &stubCartService{}, &stubOrderService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutHandler_RevokesAndClearsCookies(t *testing.T) {
	auth := &stubAuthService{}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: "ref1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "ref1" {
		t.Fatalf("refresh token not revoked: %v", auth.loggedOut)
	}
	if v, ok := cookieValue(rec, accessCookie); !ok || v != "" {
		t.Fatalf("access cookie not cleared")
	}
	if v, ok := cookieValue(rec, refreshCookie); !ok || v != "" {
		t.Fatalf("refresh cookie not cleared")
	}
}

func TestLogoutHandler_WithoutToken(t *testing.T) {
	auth := &stubAuthService{}
	router := newTestRouter(t, testDeps(auth, &stubCartService{}, &stubOrderService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected idempotent 200, got %d", rec.Code)
	}
	if len(auth.loggedOut) != 0 {
		t.Fatalf("nothing should be revoked without a token")
	}
}
