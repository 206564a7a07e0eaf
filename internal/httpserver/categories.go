package httpserver

import (
	"errors"
	"net/http"

	"craftmarket/internal/domain"
	categorysvc "craftmarket/internal/service/category"
	"github.com/gin-gonic/gin"
)

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func listCategoriesHandler(deps Deps, activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := deps.Categories.List(c.Request.Context(), activeOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func createCategoryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in createCategoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		category, err := deps.Categories.Create(c.Request.Context(), in.Name, in.Description)
		if err != nil {
			if errors.Is(err, categorysvc.ErrNameTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func updateCategoryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categorysvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		category, err := deps.Categories.Update(c.Request.Context(), c.Param("categoryId"), in)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			case errors.Is(err, categorysvc.ErrNameTaken):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func softDeleteCategoryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := deps.Categories.SoftDelete(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deactivated", "category": category})
	}
}

func hardDeleteCategoryHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := deps.Categories.HardDelete(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			case errors.Is(err, categorysvc.ErrHasProducts):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}
