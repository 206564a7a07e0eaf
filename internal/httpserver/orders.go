package httpserver

import (
	"errors"
	"net/http"

	"craftmarket/internal/domain"
	ordersvc "craftmarket/internal/service/order"
	"github.com/gin-gonic/gin"
)

func createOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.PlaceInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		ident := identityFromContext(c)
		order, err := deps.Orders.Place(c.Request.Context(), ident, in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

func listOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := deps.Orders.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func ordersByContactHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		phone := c.Query("phone")
		if email == "" && phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email or phone required"})
			return
		}

		orders, err := deps.Orders.ListByContact(c.Request.Context(), email, phone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func buyerOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := identityFromContext(c)
		orders, err := deps.Orders.ListByUser(c.Request.Context(), ident.User.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func getOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := deps.Orders.Get(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}

		// Buyers can only read their own orders; admins can read any.
		ident := identityFromContext(c)
		if !ident.IsAdmin() {
			if order.UserID == nil || *order.UserID != ident.User.ID {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}
		c.JSON(http.StatusOK, order)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in orderStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
			return
		}

		order, err := deps.Orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), in.Status)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.Is(err, ordersvc.ErrInvalidTransition):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func cancelOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := deps.Orders.Cancel(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.Is(err, ordersvc.ErrNotPending):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
