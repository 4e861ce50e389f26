package handlers

import (
	"net/http"

	"github.com/hdngo/ideahive/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments. Comment
// mutations go through the realtime gateway; the REST surface only reads.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	ideaRepository    repositories.IdeaRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, ideaRepo repositories.IdeaRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		ideaRepository:    ideaRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/ideas/:id/comments", h.GetCommentsForIdea)
}

// GetCommentsForIdea retrieves the comments of an idea, most recent first
func (h *CommentHandler) GetCommentsForIdea(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid idea ID")
	}

	// verify the idea exists
	if _, err := h.ideaRepository.GetIdeaByID(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Idea not found")
	}

	comments, err := h.commentRepository.GetCommentsByIdeaID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "comments": comments})
}
