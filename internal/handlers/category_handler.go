package handlers

import (
	"net/http"

	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryHandler handles HTTP requests related to categories
type CategoryHandler struct {
	categoryRepository repositories.CategoryRepository
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryRepo repositories.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categoryRepository: categoryRepo}
}

// RegisterCategoryRoutes registers category-related routes
func (h *CategoryHandler) RegisterCategoryRoutes(g *echo.Group) {
	g.GET("/categories", h.GetCategories)
	g.POST("/categories", h.CreateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)
}

// GetCategories retrieves all categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryRepository.GetAllCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "categories": categories})
}

// CreateCategory opens a new submission category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	req := new(models.CreateCategoryRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	category := &models.Category{Title: req.Title, Description: req.Description}
	if err := h.categoryRepository.CreateCategory(c.Request().Context(), category); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "category": category})
}

// DeleteCategory deletes a category by ID
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	if err := h.categoryRepository.DeleteCategory(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	return c.NoContent(http.StatusNoContent)
}
