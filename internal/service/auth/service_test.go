package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"craftmarket/internal/domain"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	nextID  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[u.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	clone := u
	clone.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byEmail[clone.Email] = &clone
	r.byID[clone.ID] = &clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepo) AppendRefreshToken(_ context.Context, id, token string, keep int) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, token)
	if len(u.RefreshTokens) > keep {
		u.RefreshTokens = u.RefreshTokens[len(u.RefreshTokens)-keep:]
	}
	return nil
}

func (r *memoryRepo) RotateRefreshToken(_ context.Context, id, old, new string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for i, t := range u.RefreshTokens {
		if t == old {
			u.RefreshTokens[i] = new
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) RemoveRefreshToken(_ context.Context, id, token string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for i, t := range u.RefreshTokens {
		if t == token {
			u.RefreshTokens = append(u.RefreshTokens[:i], u.RefreshTokens[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestService(repo *memoryRepo) *Service {
	return &Service{
		repo: repo,
		tokens: &issuer{
			accessSecret:  []byte("access-secret"),
			refreshSecret: []byte("refresh-secret"),
			accessTTL:     2 * time.Minute,
			refreshTTL:    time.Hour,
		},
		passwordMin: 8,
	}
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Sup3rSecret",
	}
}

func TestRegister_IssuesVerifiableTokens(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	user, pair, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("expected role client, got %q", user.Role)
	}
	if user.PasswordHash == "Sup3rSecret" {
		t.Fatalf("password stored in clear")
	}

	ref, err := svc.VerifyAccess(pair.Access)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if ref.ID != user.ID || ref.Role != domain.RoleClient {
		t.Fatalf("unexpected token identity: %+v", ref)
	}

	stored := repo.byID[user.ID].RefreshTokens
	if len(stored) != 1 || stored[0] != pair.Refresh {
		t.Fatalf("refresh token not in allow-list: %v", stored)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	if _, _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		in := validInput()
		in.Password = password
		if _, _, err := svc.Register(context.Background(), in); err == nil {
			t.Fatalf("expected rejection for password %q", password)
		}
	}
}

func TestLogin(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	if _, _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, pair, err := svc.Login(context.Background(), "ada@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected token pair")
	}
	if got := len(repo.byID[user.ID].RefreshTokens); got != 2 {
		t.Fatalf("expected 2 allow-listed tokens after register+login, got %d", got)
	}

	if _, _, err := svc.Login(context.Background(), "ada@example.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "Sup3rSecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefresh_RotatesSingleUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	user, pair, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.Refresh == pair.Refresh {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := svc.VerifyAccess(next.Access); err != nil {
		t.Fatalf("verify rotated access: %v", err)
	}

	// The redeemed token left the allow-list and cannot be replayed.
	if _, err := svc.Refresh(context.Background(), pair.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on replay, got %v", err)
	}

	stored := repo.byID[user.ID].RefreshTokens
	if len(stored) != 1 || stored[0] != next.Refresh {
		t.Fatalf("allow-list not rotated: %v", stored)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, pair, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	user, first, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, second, err := svc.Login(context.Background(), "ada@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), first.Refresh); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Only the presented session is revoked.
	if _, err := svc.Refresh(context.Background(), first.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), second.Refresh); err != nil {
		t.Fatalf("other session should survive logout: %v", err)
	}

	// Logout is idempotent and shrugs off garbage.
	if err := svc.Logout(context.Background(), first.Refresh); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("garbage logout: %v", err)
	}

	if got := len(repo.byID[user.ID].RefreshTokens); got != 1 {
		t.Fatalf("expected 1 remaining session, got %d", got)
	}
}

func TestAllowListCapped(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	user, _, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < refreshTokensKept+5; i++ {
		if _, _, err := svc.Login(context.Background(), "ada@example.com", "Sup3rSecret"); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	if got := len(repo.byID[user.ID].RefreshTokens); got != refreshTokensKept {
		t.Fatalf("expected allow-list capped at %d, got %d", refreshTokensKept, got)
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	svc.tokens.accessTTL = -time.Minute

	_, pair, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.VerifyAccess(pair.Access); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
