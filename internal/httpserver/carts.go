package httpserver

import (
	"errors"
	"log"
	"net/http"

	"craftmarket/internal/domain"
	cartsvc "craftmarket/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type cartLineRequest struct {
	ProductID  string  `json:"productId"`
	Quantity   int     `json:"quantity"`
	Size       string  `json:"size"`
	Color      string  `json:"color"`
	CustomName *string `json:"customName"`
}

func (r cartLineRequest) key() domain.VariantKey {
	k := domain.VariantKey{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
	if r.CustomName != nil {
		k.CustomName = *r.CustomName
	}
	return k
}

func getCartHandler(logger *log.Logger, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := identityFromContext(c)
		if cart := opportunisticMerge(c, logger, deps, ident); cart != nil {
			c.JSON(http.StatusOK, cart)
			return
		}

		cart, err := deps.Carts.Get(c.Request.Context(), ident)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusOK, emptyCart(ident))
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addToCartHandler(logger *log.Logger, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.AddInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		ident := identityFromContext(c)
		opportunisticMerge(c, logger, deps, ident)

		cart, err := deps.Carts.Add(c.Request.Context(), ident, in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func updateCartLineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartLineRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		ident := identityFromContext(c)
		cart, err := deps.Carts.UpdateQuantity(c.Request.Context(), ident, in.key(), in.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeFromCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartLineRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		ident := identityFromContext(c)
		cart, err := deps.Carts.Remove(c.Request.Context(), ident, in.key())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := identityFromContext(c)
		if err := deps.Carts.Clear(c.Request.Context(), ident); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}

// opportunisticMerge folds a leftover guest cart into the user's cart when a
// token-bearing request still carries a guest cookie. Returns the merged cart
// or nil when no merge happened.
func opportunisticMerge(c *gin.Context, logger *log.Logger, deps Deps, ident domain.Identity) *domain.Cart {
	if !ident.IsUser() {
		return nil
	}
	guestID := residualGuestID(c)
	if guestID == "" {
		return nil
	}
	cart, err := deps.Carts.Merge(c.Request.Context(), ident.User.ID, guestID)
	if err != nil {
		logger.Printf("merge guest cart %s into user %s: %v", guestID, ident.User.ID, err)
		return nil
	}
	return cart
}

func emptyCart(ident domain.Identity) *domain.Cart {
	cart := &domain.Cart{Lines: []domain.CartLine{}}
	if ident.IsUser() {
		cart.UserID = &ident.User.ID
	}
	return cart
}
