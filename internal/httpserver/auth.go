package httpserver

import (
	"errors"
	"log"
	"net/http"

	authsvc "craftmarket/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func registerHandler(logger *log.Logger, deps Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in authsvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		user, pair, err := deps.Auth.Register(c.Request.Context(), in)
		if err != nil {
			// Registration failures are caller mistakes (taken email, weak
			// password, missing fields) and surface with their message.
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		mergeGuestCart(c, logger, deps, user.ID, opts)
		setAuthCookies(c, pair, deps, opts)
		c.JSON(http.StatusCreated, gin.H{"token": pair.Access, "user": user})
	}
}

func loginHandler(logger *log.Logger, deps Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		user, pair, err := deps.Auth.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}

		mergeGuestCart(c, logger, deps, user.ID, opts)
		setAuthCookies(c, pair, deps, opts)
		c.JSON(http.StatusOK, gin.H{"token": pair.Access, "user": user})
	}
}

func refreshHandler(deps Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := presentedRefreshToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token required"})
			return
		}

		pair, err := deps.Auth.Refresh(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, authsvc.ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			case errors.Is(err, authsvc.ErrInvalidToken):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			}
			return
		}

		setAuthCookies(c, pair, deps, opts)
		c.JSON(http.StatusOK, gin.H{"token": pair.Access})
	}
}

func logoutHandler(deps Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := presentedRefreshToken(c); token != "" {
			if err := deps.Auth.Logout(c.Request.Context(), token); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
				return
			}
		}
		clearCookie(c, accessCookie, opts.CrossSiteCookies)
		clearCookie(c, refreshCookie, opts.CrossSiteCookies)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// mergeGuestCart folds a residual guest cart into the just-identified user's
// cart and drops the guest cookie. Merge failures are logged but never fail
// the auth flow.
func mergeGuestCart(c *gin.Context, logger *log.Logger, deps Deps, userID string, opts Options) {
	guestID, err := c.Cookie(guestCookie)
	if err != nil || guestID == "" {
		guestID = residualGuestID(c)
	}
	if guestID == "" {
		return
	}
	if _, err := deps.Carts.Merge(c.Request.Context(), userID, guestID); err != nil {
		logger.Printf("merge guest cart %s into user %s: %v", guestID, userID, err)
	}
	clearCookie(c, guestCookie, opts.CrossSiteCookies)
}

func setAuthCookies(c *gin.Context, pair authsvc.TokenPair, deps Deps, opts Options) {
	setCookie(c, accessCookie, pair.Access, deps.Auth.AccessTTLSeconds(), opts.CrossSiteCookies)
	setCookie(c, refreshCookie, pair.Refresh, deps.Auth.RefreshTTLSeconds(), opts.CrossSiteCookies)
}

func presentedRefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		return token
	}
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err == nil {
		return in.RefreshToken
	}
	return ""
}
