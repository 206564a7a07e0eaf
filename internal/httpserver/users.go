package httpserver

import (
	"errors"
	"net/http"

	"craftmarket/internal/domain"
	"github.com/gin-gonic/gin"
)

func profileHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := identityFromContext(c)
		user, err := deps.Auth.Profile(c.Request.Context(), ident.User.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func listUsersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := deps.Users.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

type userStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateUserStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in userStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
			return
		}
		if in.Status != domain.UserStatusActive && in.Status != domain.UserStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be Active or Inactive"})
			return
		}

		user, err := deps.Users.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func deleteUserHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}
