package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionKind is the kind of engagement a user can have with an idea
type ReactionKind string

const (
	ReactionView    ReactionKind = "view"
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// IsDisposition reports whether the kind is a toggleable like/dislike state
func (k ReactionKind) IsDisposition() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Opposite returns the mutually exclusive disposition for like/dislike.
// Other kinds return themselves.
func (k ReactionKind) Opposite() ReactionKind {
	switch k {
	case ReactionLike:
		return ReactionDislike
	case ReactionDislike:
		return ReactionLike
	default:
		return k
	}
}

// Reaction represents one user's single engagement fact on one idea.
// At most one view row exists per (user, idea) and at most one of
// like/dislike at any time.
type Reaction struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	IdeaID   primitive.ObjectID `bson:"ideaId" json:"ideaId"`
	State    ReactionKind       `bson:"state" json:"state"`
	CreateAt time.Time          `bson:"createAt" json:"createAt"`
}

// UserCount is one row of a per-user aggregate for a reaction kind
type UserCount struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Count  int                `bson:"count" json:"count"`
}
