package engagement

import (
	"context"

	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot holds the per-user engagement aggregates of one idea
type Snapshot struct {
	IdeaID   primitive.ObjectID
	Views    []models.UserCount
	Likes    []models.UserCount
	Dislikes []models.UserCount
}

// ViewCount returns the total number of view rows
func (s *Snapshot) ViewCount() int { return total(s.Views) }

// LikeCount returns the total number of like rows
func (s *Snapshot) LikeCount() int { return total(s.Likes) }

// DislikeCount returns the total number of dislike rows
func (s *Snapshot) DislikeCount() int { return total(s.Dislikes) }

func total(counts []models.UserCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}

// Aggregator recomputes engagement aggregates from the reaction store.
// Pure reads, recomputed on every call so broadcasts always reflect the
// state after the triggering mutation.
type Aggregator struct {
	reactions repositories.ReactionRepository
}

// NewAggregator creates a new Aggregator
func NewAggregator(reactions repositories.ReactionRepository) *Aggregator {
	return &Aggregator{reactions: reactions}
}

// UsersFor returns the per-user counts of one reaction kind for an idea
func (a *Aggregator) UsersFor(ctx context.Context, ideaID primitive.ObjectID, kind models.ReactionKind) ([]models.UserCount, error) {
	return a.reactions.CountsByUser(ctx, ideaID, kind)
}

// CountsFor recomputes all three aggregates of an idea
func (a *Aggregator) CountsFor(ctx context.Context, ideaID primitive.ObjectID) (*Snapshot, error) {
	views, err := a.reactions.CountsByUser(ctx, ideaID, models.ReactionView)
	if err != nil {
		return nil, err
	}
	likes, err := a.reactions.CountsByUser(ctx, ideaID, models.ReactionLike)
	if err != nil {
		return nil, err
	}
	dislikes, err := a.reactions.CountsByUser(ctx, ideaID, models.ReactionDislike)
	if err != nil {
		return nil, err
	}
	return &Snapshot{IdeaID: ideaID, Views: views, Likes: likes, Dislikes: dislikes}, nil
}
