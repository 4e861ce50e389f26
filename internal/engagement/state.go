package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// maxConflictRetries bounds how often a reaction event is replayed after a
// duplicate key conflict before it degrades to a plain store error.
const maxConflictRetries = 3

// AppliedDelta reports which reaction rows an event inserted or deleted so
// the caller can decide what to recompute.
type AppliedDelta struct {
	InsertedView bool
	Inserted     models.ReactionKind
	Deleted      models.ReactionKind
}

// Changed reports whether the event mutated the store at all
func (d AppliedDelta) Changed() bool {
	return d.InsertedView || d.Inserted != "" || d.Deleted != ""
}

// Engine enforces the toggle and override rules for view/like/dislike per
// (user, idea) pair. The check-then-act sequence of a reaction is a critical
// section, so the engine serializes events per pair through a lock table;
// events for different pairs proceed in parallel.
type Engine struct {
	reactions repositories.ReactionRepository
	locks     *keyLock
	logger    zerolog.Logger
}

// NewEngine creates a new reaction engine
func NewEngine(reactions repositories.ReactionRepository, logger zerolog.Logger) *Engine {
	return &Engine{
		reactions: reactions,
		locks:     newKeyLock(),
		logger:    logger.With().Str("component", "engagement").Logger(),
	}
}

func pairKey(userID, ideaID primitive.ObjectID) string {
	return userID.Hex() + "/" + ideaID.Hex()
}

// ApplyReaction applies a like or dislike event for a (user, idea) pair:
//
//	no view, no disposition   -> insert view, insert the requested kind
//	viewed, no disposition    -> insert the requested kind
//	opposite disposition held -> delete it, insert the requested kind
//	same disposition held     -> delete it (toggle off)
//
// A duplicate key conflict from the store means another writer won the race
// for the same pair; the event is re-evaluated against the fresh state.
func (e *Engine) ApplyReaction(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) (AppliedDelta, error) {
	if !kind.IsDisposition() {
		return AppliedDelta{}, fmt.Errorf("%q is not a like or dislike", kind)
	}

	key := pairKey(userID, ideaID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	var delta AppliedDelta
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		delta, err = e.applyReactionOnce(ctx, userID, ideaID, kind)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			return delta, err
		}
		e.logger.Warn().
			Str("userId", userID.Hex()).
			Str("ideaId", ideaID.Hex()).
			Int("attempt", attempt+1).
			Msg("reaction conflict, retrying")
	}
	return AppliedDelta{}, fmt.Errorf("reaction conflict retries exhausted: %w", err)
}

func (e *Engine) applyReactionOnce(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) (AppliedDelta, error) {
	opposite := kind.Opposite()

	hasView, err := e.reactions.HasReaction(ctx, userID, ideaID, models.ReactionView)
	if err != nil {
		return AppliedDelta{}, err
	}
	hasKind, err := e.reactions.HasReaction(ctx, userID, ideaID, kind)
	if err != nil {
		return AppliedDelta{}, err
	}
	hasOpposite, err := e.reactions.HasReaction(ctx, userID, ideaID, opposite)
	if err != nil {
		return AppliedDelta{}, err
	}

	var delta AppliedDelta
	switch {
	case !hasView && !hasKind && !hasOpposite:
		// first engagement with the idea counts as a view
		if err := e.insert(ctx, userID, ideaID, kind); err != nil {
			return AppliedDelta{}, err
		}
		if err := e.insert(ctx, userID, ideaID, models.ReactionView); err != nil {
			return AppliedDelta{}, err
		}
		delta.Inserted = kind
		delta.InsertedView = true

	case !hasKind && !hasOpposite:
		if err := e.insert(ctx, userID, ideaID, kind); err != nil {
			return AppliedDelta{}, err
		}
		delta.Inserted = kind

	case hasOpposite:
		if err := e.reactions.DeleteReaction(ctx, userID, ideaID, opposite); err != nil {
			return AppliedDelta{}, err
		}
		if err := e.insert(ctx, userID, ideaID, kind); err != nil {
			return AppliedDelta{}, err
		}
		delta.Deleted = opposite
		delta.Inserted = kind

	default: // hasKind: toggle off
		if err := e.reactions.DeleteReaction(ctx, userID, ideaID, kind); err != nil {
			return AppliedDelta{}, err
		}
		delta.Deleted = kind
	}
	return delta, nil
}

// RecordView inserts a view row for the pair unless one already exists.
// Views are never retracted and repeating the event is a no-op.
func (e *Engine) RecordView(ctx context.Context, userID, ideaID primitive.ObjectID) (AppliedDelta, error) {
	key := pairKey(userID, ideaID)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	hasView, err := e.reactions.HasReaction(ctx, userID, ideaID, models.ReactionView)
	if err != nil {
		return AppliedDelta{}, err
	}
	if hasView {
		return AppliedDelta{}, nil
	}
	if err := e.insert(ctx, userID, ideaID, models.ReactionView); err != nil {
		// a concurrent writer inserted the view first; the row exists, done
		if mongo.IsDuplicateKeyError(err) {
			return AppliedDelta{}, nil
		}
		return AppliedDelta{}, err
	}
	return AppliedDelta{InsertedView: true}, nil
}

func (e *Engine) insert(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) error {
	return e.reactions.CreateReaction(ctx, &models.Reaction{
		UserID:   userID,
		IdeaID:   ideaID,
		State:    kind,
		CreateAt: time.Now(),
	})
}
