package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"craftmarket/internal/domain"
	authsvc "craftmarket/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey      = "identity"
	residualGuestKey = "residualGuestId"

	accessCookie  = "token"
	refreshCookie = "refreshToken"
	guestCookie   = "guestId"
)

// Options controls cookie behaviour of the identity resolver.
type Options struct {
	AllowedOrigins []string
	// CrossSiteCookies switches SameSite=Strict to SameSite=None; Secure.
	CrossSiteCookies bool
	GuestTTL         time.Duration
}

// identify resolves every request to exactly one identity kind: a verified
// user token attaches the user (and clears any leftover guest cookie), and
// everything else becomes a guest with a stable cookie-carried identifier.
// Verification failures never fail the request here.
func identify(auth AuthService, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFromRequest(c); token != "" {
			if ref, err := auth.VerifyAccess(token); err == nil {
				attachUser(c, ref, opts)
				c.Next()
				return
			}
			// Invalid token downgrades silently to guest.
		}

		guestID, err := c.Cookie(guestCookie)
		if err != nil || guestID == "" {
			guestID = uuid.NewString()
			setCookie(c, guestCookie, guestID, int(opts.GuestTTL.Seconds()), opts.CrossSiteCookies)
		}
		c.Set(identityKey, domain.Identity{GuestID: guestID})
		c.Next()
	}
}

// requireAuth fails closed: no valid access token means 401, with expired
// tokens called out separately.
func requireAuth(auth AuthService, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		ref, err := auth.VerifyAccess(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, authsvc.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		attachUser(c, ref, opts)
		c.Next()
	}
}

// requireAdmin must run after requireAuth.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := identityFromContext(c)
		if !ident.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func attachUser(c *gin.Context, ref domain.UserRef, opts Options) {
	c.Set(identityKey, domain.Identity{User: &ref})
	// The user/guest duality collapses in favor of the user: remember the
	// residual guest id for an opportunistic cart merge, then drop the cookie.
	if guestID, err := c.Cookie(guestCookie); err == nil && guestID != "" {
		c.Set(residualGuestKey, guestID)
		clearCookie(c, guestCookie, opts.CrossSiteCookies)
	}
}

func identityFromContext(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(domain.Identity); ok {
			return ident
		}
	}
	return domain.Identity{}
}

func residualGuestID(c *gin.Context) string {
	if v, ok := c.Get(residualGuestKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// tokenFromRequest prefers the cookie, then the Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(accessCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func setCookie(c *gin.Context, name, value string, maxAge int, crossSite bool) {
	if crossSite {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(name, value, maxAge, "/", "", crossSite, true)
}

func clearCookie(c *gin.Context, name string, crossSite bool) {
	setCookie(c, name, "", -1, crossSite)
}
