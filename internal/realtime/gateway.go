package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hdngo/ideahive/backend/internal/engagement"
	"github.com/hdngo/ideahive/backend/internal/feed"
	"github.com/hdngo/ideahive/backend/internal/models"
	"github.com/hdngo/ideahive/backend/internal/repositories"
)

// Broadcaster fans one event out to every open connection
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// Notifier delivers an out-of-band notification. Failures are the caller's
// to log; delivery is never retried here.
type Notifier interface {
	Notify(address, subject, body string) error
}

// Gateway turns decoded inbound events into store mutations and broadcasts.
// Every handler is fire-and-forget: nothing is answered on the triggering
// connection, all results travel through the broadcaster.
type Gateway struct {
	broadcaster Broadcaster
	engine      *engagement.Engine
	aggregator  *engagement.Aggregator
	resolver    *feed.Resolver
	comments    repositories.CommentRepository
	ideas       repositories.IdeaRepository
	users       repositories.UserRepository
	notifier    Notifier
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewGateway creates a new Gateway
func NewGateway(
	broadcaster Broadcaster,
	engine *engagement.Engine,
	aggregator *engagement.Aggregator,
	resolver *feed.Resolver,
	comments repositories.CommentRepository,
	ideas repositories.IdeaRepository,
	users repositories.UserRepository,
	notifier Notifier,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		broadcaster: broadcaster,
		engine:      engine,
		aggregator:  aggregator,
		resolver:    resolver,
		comments:    comments,
		ideas:       ideas,
		users:       users,
		notifier:    notifier,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "realtime-gateway").Logger(),
	}
}

// Dispatch routes one inbound envelope to its handler. Unknown or malformed
// events are logged and skipped; a single bad event never tears down a
// connection or the gateway.
func (g *Gateway) Dispatch(ctx context.Context, env Envelope) {
	switch env.Type {
	case EventView:
		var p ReactionPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnView(ctx, p.UserID, p.IdeaID)
	case EventLike:
		var p ReactionPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnLike(ctx, p.UserID, p.IdeaID)
	case EventDislike:
		var p ReactionPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnDislike(ctx, p.UserID, p.IdeaID)
	case EventNotification:
		var p SubscribePayload
		if !g.decode(env, &p) {
			return
		}
		g.OnSubscribeNotifications(ctx, p.Department)
	case EventAddComment:
		var p AddCommentPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnAddComment(ctx, p)
	case EventUpdateComment:
		var p UpdateCommentPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnUpdateComment(ctx, p)
	case EventDeleteComment:
		var p DeleteCommentPayload
		if !g.decode(env, &p) {
			return
		}
		g.OnDeleteComment(ctx, p)
	default:
		g.logger.Warn().Str("event", env.Type).Msg("unknown inbound event")
	}
}

// OnView records a view for the pair and rebroadcasts the idea's aggregates
func (g *Gateway) OnView(ctx context.Context, userID, ideaID string) {
	user, idea, ok := g.parsePair(userID, ideaID)
	if !ok {
		return
	}
	if _, err := g.engine.RecordView(ctx, user, idea); err != nil {
		g.logger.Error().Err(err).Str("ideaId", ideaID).Msg("failed to record view")
		return
	}
	g.broadcastAggregates(ctx, idea, models.ReactionView)
}

// OnLike applies a like event and rebroadcasts the idea's aggregates, also
// when the event toggled the like off
func (g *Gateway) OnLike(ctx context.Context, userID, ideaID string) {
	g.onDisposition(ctx, userID, ideaID, models.ReactionLike)
}

// OnDislike applies a dislike event and rebroadcasts the idea's aggregates
func (g *Gateway) OnDislike(ctx context.Context, userID, ideaID string) {
	g.onDisposition(ctx, userID, ideaID, models.ReactionDislike)
}

func (g *Gateway) onDisposition(ctx context.Context, userID, ideaID string, kind models.ReactionKind) {
	user, idea, ok := g.parsePair(userID, ideaID)
	if !ok {
		return
	}
	if _, err := g.engine.ApplyReaction(ctx, user, idea, kind); err != nil {
		// store failures stay silent toward clients, logged only
		g.logger.Error().Err(err).Str("ideaId", ideaID).Str("kind", string(kind)).Msg("failed to apply reaction")
		return
	}
	g.broadcastAggregates(ctx, idea, kind)
}

// OnAddComment appends a comment, broadcasts the idea's feed position and
// notifies the idea's author out of band
func (g *Gateway) OnAddComment(ctx context.Context, p AddCommentPayload) {
	if err := g.validate.Struct(p); err != nil {
		g.broadcastError(commentValidationMessage(err))
		return
	}
	user, idea, ok := g.parsePair(p.UserID, p.IdeaID)
	if !ok {
		return
	}

	comment := &models.Comment{
		Content:   p.Content,
		UserID:    user,
		IdeaID:    idea,
		Anonymous: p.Anonymous,
	}
	if err := g.comments.CreateComment(ctx, comment); err != nil {
		g.logger.Error().Err(err).Str("ideaId", p.IdeaID).Msg("failed to create comment")
		return
	}

	g.broadcastPosition(ctx, EventCommentAdded, idea)

	// author notification is best effort and must never delay the broadcast
	go g.notifyIdeaAuthor(context.Background(), idea, user, p.Content)
}

// OnUpdateComment edits a comment and rebroadcasts the idea's feed position
func (g *Gateway) OnUpdateComment(ctx context.Context, p UpdateCommentPayload) {
	if p.Content == "" {
		g.broadcastError("Content is required!")
		return
	}
	commentID, err := primitive.ObjectIDFromHex(p.CommentID)
	if err != nil {
		g.broadcastError("Updating is invalid")
		return
	}
	idea, err := primitive.ObjectIDFromHex(p.IdeaID)
	if err != nil {
		g.broadcastError("Invalid idea reference")
		return
	}
	if _, err := g.comments.GetCommentByID(ctx, commentID); err != nil {
		g.broadcastError("Updating is invalid")
		return
	}
	if err := g.comments.UpdateComment(ctx, commentID, p.Content, p.IsAnonymous); err != nil {
		g.logger.Error().Err(err).Str("commentId", p.CommentID).Msg("failed to update comment")
		g.broadcastError("Please try again")
		return
	}
	g.broadcastPosition(ctx, EventUpdateComment, idea)
}

// OnDeleteComment removes a comment and rebroadcasts the idea's feed position
func (g *Gateway) OnDeleteComment(ctx context.Context, p DeleteCommentPayload) {
	commentID, err := primitive.ObjectIDFromHex(p.CommentID)
	if err != nil {
		g.broadcastError("Comment not found")
		return
	}
	idea, err := primitive.ObjectIDFromHex(p.IdeaID)
	if err != nil {
		g.broadcastError("Invalid idea reference")
		return
	}
	if _, err := g.comments.GetCommentByID(ctx, commentID); err != nil {
		g.broadcastError("Comment not found")
		return
	}
	if err := g.comments.DeleteComment(ctx, commentID); err != nil {
		g.logger.Error().Err(err).Str("commentId", p.CommentID).Msg("failed to delete comment")
		return
	}
	g.broadcastPosition(ctx, EventDeleteComment, idea)
}

// OnSubscribeNotifications pushes the full recency-sorted feed to every
// connection, then a department-narrowed subset as a second broadcast. Any
// connection may locally ignore the department list.
func (g *Gateway) OnSubscribeNotifications(ctx context.Context, department string) {
	summaries, err := g.ideas.GetIdeaSummaries(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to load idea feed")
		return
	}

	filtered := []models.IdeaSummary{}
	for _, summary := range summaries {
		if summary.User.Department == department {
			filtered = append(filtered, summary)
		}
	}

	g.broadcaster.Broadcast(EventNotification, summaries)
	g.broadcaster.Broadcast(EventNotificationDept, filtered)
}

// broadcastAggregates recomputes and fans out all three per-user aggregates
// of an idea, leading with the kind that triggered the event
func (g *Gateway) broadcastAggregates(ctx context.Context, ideaID primitive.ObjectID, leading models.ReactionKind) {
	snap, err := g.aggregator.CountsFor(ctx, ideaID)
	if err != nil {
		g.logger.Error().Err(err).Str("ideaId", ideaID.Hex()).Msg("failed to recompute aggregates")
		return
	}

	counts := map[models.ReactionKind][]models.UserCount{
		models.ReactionView:    snap.Views,
		models.ReactionLike:    snap.Likes,
		models.ReactionDislike: snap.Dislikes,
	}
	order := []models.ReactionKind{leading}
	for _, kind := range []models.ReactionKind{models.ReactionLike, models.ReactionDislike, models.ReactionView} {
		if kind != leading {
			order = append(order, kind)
		}
	}
	for _, kind := range order {
		g.broadcaster.Broadcast(string(kind), ReactionCounts{IdeaID: ideaID.Hex(), Users: counts[kind]})
	}
}

// broadcastPosition resolves the idea's feed rank and fans it out. A
// concurrently deleted idea broadcasts rank -1.
func (g *Gateway) broadcastPosition(ctx context.Context, event string, ideaID primitive.ObjectID) {
	position, err := g.resolver.IndexOf(ctx, ideaID)
	if err != nil {
		if err != feed.ErrNotFound {
			g.logger.Error().Err(err).Str("ideaId", ideaID.Hex()).Msg("failed to resolve feed position")
			return
		}
		position = -1
	}
	g.broadcaster.Broadcast(event, CommentPosition{IdeaID: ideaID.Hex(), Position: position})
}

// notifyIdeaAuthor emails the idea's author about a new comment. Failures
// are logged and swallowed.
func (g *Gateway) notifyIdeaAuthor(ctx context.Context, ideaID, commenterID primitive.ObjectID, content string) {
	idea, err := g.ideas.GetIdeaByID(ctx, ideaID)
	if err != nil {
		g.logger.Warn().Err(err).Str("ideaId", ideaID.Hex()).Msg("skipping author notification")
		return
	}
	author, err := g.users.GetUserByID(ctx, idea.UserID)
	if err != nil {
		g.logger.Warn().Err(err).Str("ideaId", ideaID.Hex()).Msg("skipping author notification")
		return
	}
	commenter, err := g.users.GetUserByID(ctx, commenterID)
	if err != nil {
		g.logger.Warn().Err(err).Str("userId", commenterID.Hex()).Msg("skipping author notification")
		return
	}

	subject := fmt.Sprintf("%s uploaded 1 new comment", commenter.Name)
	body := "Content is: " + content
	if err := g.notifier.Notify(author.Email, subject, body); err != nil {
		g.logger.Warn().Err(err).Str("ideaId", ideaID.Hex()).Msg("author notification failed")
	}
}

func (g *Gateway) decode(env Envelope, out interface{}) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		g.logger.Warn().Err(err).Str("event", env.Type).Msg("discarding malformed payload")
		return false
	}
	return true
}

// parsePair parses the hex ids of a (user, idea) reference; malformed ids
// surface as a validation error broadcast
func (g *Gateway) parsePair(userID, ideaID string) (primitive.ObjectID, primitive.ObjectID, bool) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		g.broadcastError("Invalid user reference")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	idea, err := primitive.ObjectIDFromHex(ideaID)
	if err != nil {
		g.broadcastError("Invalid idea reference")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return user, idea, true
}

func (g *Gateway) broadcastError(message string) {
	g.broadcaster.Broadcast(EventError, message)
}

// commentValidationMessage names the field that failed payload validation
func commentValidationMessage(err error) string {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		switch fields[0].Field() {
		case "Content":
			return "Content is required!"
		case "UserID":
			return "Invalid user reference"
		case "IdeaID":
			return "Invalid idea reference"
		}
	}
	return "Please try again"
}
