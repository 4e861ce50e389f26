package realtime

import (
	"github.com/goccy/go-json"

	"github.com/hdngo/ideahive/backend/internal/models"
)

// Inbound event names
const (
	EventView          = "view"
	EventLike          = "like"
	EventDislike       = "dislike"
	EventNotification  = "notification"
	EventAddComment    = "addComment"
	EventUpdateComment = "updateComment"
	EventDeleteComment = "deleteComment"
)

// Outbound event names. Reaction aggregates reuse the inbound names; the
// comment events answer with the idea's feed position.
const (
	EventNotificationDept = "notificationdepartment"
	EventCommentAdded     = "addCmt"
	EventError            = "error"
)

// Envelope is one decoded inbound frame. The payload stays raw until the
// event type selects the concrete shape.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Message is one outbound frame
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ReactionPayload carries a view/like/dislike event
type ReactionPayload struct {
	UserID string `json:"userId"`
	IdeaID string `json:"ideaId"`
	State  string `json:"state,omitempty"`
}

// SubscribePayload carries a notification subscribe event
type SubscribePayload struct {
	Department string `json:"department"`
}

// AddCommentPayload carries a new comment event
type AddCommentPayload struct {
	Content   string `json:"Content" validate:"required,min=1,max=2000"`
	UserID    string `json:"UserId" validate:"required"`
	IdeaID    string `json:"IdeaId" validate:"required"`
	Anonymous bool   `json:"Anonymous"`
}

// UpdateCommentPayload carries a comment edit event
type UpdateCommentPayload struct {
	CommentID   string `json:"commentId" validate:"required"`
	Content     string `json:"Content" validate:"required,min=1,max=2000"`
	IsAnonymous bool   `json:"isAnonymous"`
	IdeaID      string `json:"IdeaId" validate:"required"`
}

// DeleteCommentPayload carries a comment delete event
type DeleteCommentPayload struct {
	CommentID string `json:"commentId" validate:"required"`
	IdeaID    string `json:"IdeaId" validate:"required"`
}

// ReactionCounts is the aggregate broadcast for one reaction kind of an idea
type ReactionCounts struct {
	IdeaID string             `json:"ideaId"`
	Users  []models.UserCount `json:"users"`
}

// CommentPosition is the broadcast answering a comment mutation: the idea it
// belongs to and the idea's current feed rank, -1 when the idea vanished.
type CommentPosition struct {
	IdeaID   string `json:"ideaId"`
	Position int    `json:"position"`
}
