package auth

import (
	"errors"
	"time"

	"craftmarket/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair carries a freshly minted access/refresh credential pair.
type TokenPair struct {
	Access  string
	Refresh string
}

type tokenClaims struct {
	User domain.UserRef `json:"user"`
	jwt.RegisteredClaims
}

// issuer signs and verifies HS256 tokens. Access and refresh credentials
// use distinct secrets so one kind can never stand in for the other.
type issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func (i *issuer) signAccess(u domain.UserRef) (string, error) {
	return i.sign(u, i.accessSecret, i.accessTTL)
}

func (i *issuer) signRefresh(u domain.UserRef) (string, error) {
	return i.sign(u, i.refreshSecret, i.refreshTTL)
}

func (i *issuer) sign(u domain.UserRef, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		User: u,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per token so two credentials minted in the same
			// second never collide in the allow-list.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *issuer) verifyAccess(token string) (domain.UserRef, error) {
	return i.verify(token, i.accessSecret)
}

func (i *issuer) verifyRefresh(token string) (domain.UserRef, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *issuer) verify(token string, secret []byte) (domain.UserRef, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.UserRef{}, ErrTokenExpired
		}
		return domain.UserRef{}, ErrInvalidToken
	}
	if !parsed.Valid || claims.User.ID == "" {
		return domain.UserRef{}, ErrInvalidToken
	}
	return claims.User, nil
}
