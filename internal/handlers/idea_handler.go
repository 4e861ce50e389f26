package handlers

import (
	"net/http"

	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdeaHandler handles HTTP requests related to ideas
type IdeaHandler struct {
	ideaRepository     repositories.IdeaRepository
	reactionRepository repositories.ReactionRepository
	commentRepository  repositories.CommentRepository
	baseURL            string
}

// NewIdeaHandler creates a new IdeaHandler
func NewIdeaHandler(ideaRepo repositories.IdeaRepository, reactionRepo repositories.ReactionRepository, commentRepo repositories.CommentRepository, baseURL string) *IdeaHandler {
	return &IdeaHandler{
		ideaRepository:     ideaRepo,
		reactionRepository: reactionRepo,
		commentRepository:  commentRepo,
		baseURL:            baseURL,
	}
}

// RegisterIdeaRoutes registers idea-related routes
func (h *IdeaHandler) RegisterIdeaRoutes(g *echo.Group) {
	g.GET("/ideas", h.GetIdeas)
	g.GET("/ideas/:id", h.GetIdea)
	g.POST("/ideas", h.CreateIdea)
	g.PUT("/ideas/:id", h.UpdateIdea)
	g.DELETE("/ideas/:id", h.DeleteIdea)
}

// GetIdeas returns the recency-sorted idea feed with author summaries
func (h *IdeaHandler) GetIdeas(c echo.Context) error {
	summaries, err := h.ideaRepository.GetIdeaSummaries(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "ideas": summaries})
}

// GetIdea retrieves a single idea by ID
func (h *IdeaHandler) GetIdea(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid idea ID")
	}
	idea, err := h.ideaRepository.GetIdeaByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Idea not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "idea": idea})
}

// CreateIdea posts a new idea
func (h *IdeaHandler) CreateIdea(c echo.Context) error {
	req := new(models.CreateIdeaRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	// the share url embeds the id, so the id is assigned before the insert
	idea := &models.Idea{
		ID:           primitive.NewObjectID(),
		Title:        req.Title,
		Description:  req.Description,
		UserID:       userID,
		CategoryID:   categoryID,
		AcademicYear: req.AcademicYear,
		Anonymous:    req.Anonymous,
	}
	idea.URL = h.baseURL + "/api/v1/ideas/" + idea.ID.Hex()
	if err := h.ideaRepository.CreateIdea(c.Request().Context(), idea); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "idea": idea})
}

// UpdateIdea edits an idea and restamps its LastEdition
func (h *IdeaHandler) UpdateIdea(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid idea ID")
	}
	req := new(models.UpdateIdeaRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if err := h.ideaRepository.UpdateIdea(c.Request().Context(), id, req); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Idea not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteIdea removes an idea together with its reactions and comments
func (h *IdeaHandler) DeleteIdea(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid idea ID")
	}
	ctx := c.Request().Context()
	if err := h.ideaRepository.DeleteIdea(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Idea not found")
	}
	if err := h.reactionRepository.DeleteByIdeaID(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.commentRepository.DeleteByIdeaID(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
