package feed

import (
	"context"
	"errors"
	"sort"

	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when an idea is absent from the feed, e.g. deleted
// while the event that referenced it was in flight.
var ErrNotFound = errors.New("idea not in feed")

// Resolver computes the 0-based rank of an idea within the recency-sorted
// feed. Clients use the rank to patch one row of a locally cached feed
// without refetching the whole list. The full recompute per call mirrors the
// feed's refresh semantics; an incrementally maintained rank index would be
// a performance refinement, not a behavior change.
type Resolver struct {
	ideas repositories.IdeaRepository
}

// NewResolver creates a new feed position resolver
func NewResolver(ideas repositories.IdeaRepository) *Resolver {
	return &Resolver{ideas: ideas}
}

// IndexOf returns the rank of ideaID in the feed ordered by LastEdition
// descending, ties broken by id for a stable order
func (r *Resolver) IndexOf(ctx context.Context, ideaID primitive.ObjectID) (int, error) {
	ideas, err := r.ideas.GetAllIdeas(ctx)
	if err != nil {
		return 0, err
	}
	SortByRecency(ideas)
	for i, idea := range ideas {
		if idea.ID == ideaID {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// SortByRecency orders ideas by LastEdition descending, ties broken by
// ascending id. The same order backs the notification feed broadcast.
func SortByRecency(ideas []models.Idea) {
	sort.SliceStable(ideas, func(i, j int) bool {
		if ideas[i].LastEdition.Equal(ideas[j].LastEdition) {
			return ideas[i].ID.Hex() < ideas[j].ID.Hex()
		}
		return ideas[i].LastEdition.After(ideas[j].LastEdition)
	})
}
