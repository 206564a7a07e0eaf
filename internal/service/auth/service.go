package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"craftmarket/internal/domain"
	userrepo "craftmarket/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated
	// or is no longer in the refresh allow-list.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a token that verified structurally but is
	// past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("user already exists")
)

// refreshTokensKept bounds the per-user refresh allow-list; the oldest
// entries are evicted first.
const refreshTokensKept = 10

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	AppendRefreshToken(ctx context.Context, id, token string, keep int) error
	RotateRefreshToken(ctx context.Context, id, old, new string) error
	RemoveRefreshToken(ctx context.Context, id, token string) error
}

// Config carries the secrets and lifetimes for the token issuer.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service handles registration, login, and the refresh-token lifecycle.
type Service struct {
	repo        userRepo
	tokens      *issuer
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo userrepo.Repository, cfg Config) *Service {
	return &Service{
		repo: repo,
		tokens: &issuer{
			accessSecret:  []byte(cfg.AccessSecret),
			refreshSecret: []byte(cfg.RefreshSecret),
			accessTTL:     cfg.AccessTTL,
			refreshTTL:    cfg.RefreshTTL,
		},
		passwordMin: 8,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Address  domain.Address `json:"address"`
	Phone    string         `json:"phone"`
}

// Register creates a new client account and issues its first token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, TokenPair{}, errors.New("email required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, TokenPair{}, errors.New("name required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, TokenPair{}, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user, err := s.repo.Create(ctx, domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleClient,
		Address:      in.Address,
		Phone:        strings.TrimSpace(in.Phone),
		Status:       domain.UserStatusInactive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login validates credentials and returns the user plus a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh credential: the presented token must verify and
// still be in the user's allow-list; it is replaced by the new one in a
// single statement so a token can be redeemed at most once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	ref, err := s.tokens.verifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.tokens.signAccess(ref)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.signRefresh(ref)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.repo.RotateRefreshToken(ctx, ref.ID, refreshToken, refresh); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout removes exactly the presented refresh token from the allow-list.
// Other sessions stay valid. Unknown tokens are ignored so logout is
// idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	ref, err := s.tokens.verifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.repo.RemoveRefreshToken(ctx, ref.ID, refreshToken); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// VerifyAccess checks an access token and returns the identity it carries.
func (s *Service) VerifyAccess(token string) (domain.UserRef, error) {
	return s.tokens.verifyAccess(token)
}

// Profile returns the account bound to the given user id, for handlers
// serving the authenticated user's own data.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.tokens.accessTTL.Seconds())
}

// RefreshTTLSeconds exposes the refresh token lifetime in seconds.
func (s *Service) RefreshTTLSeconds() int {
	return int(s.tokens.refreshTTL.Seconds())
}

func (s *Service) issuePair(ctx context.Context, user *domain.User) (TokenPair, error) {
	ref := domain.UserRef{ID: user.ID, Role: user.Role}
	access, err := s.tokens.signAccess(ref)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.signRefresh(ref)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.AppendRefreshToken(ctx, user.ID, refresh, refreshTokensKept); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
