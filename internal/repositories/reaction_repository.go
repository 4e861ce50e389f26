package repositories

import (
	"context"
	"fmt"

	"github.com/hdngo/ideahive/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) error
	HasReaction(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) (bool, error)
	CountsByUser(ctx context.Context, ideaID primitive.ObjectID, kind models.ReactionKind) ([]models.UserCount, error)
	DeleteByIdeaID(ctx context.Context, ideaID primitive.ObjectID) error
}

// MongoReactionRepository implements ReactionRepository for MongoDB
type MongoReactionRepository struct {
	collection *mongo.Collection
}

// NewMongoReactionRepository creates a new MongoReactionRepository
func NewMongoReactionRepository(db *mongo.Database) *MongoReactionRepository {
	return &MongoReactionRepository{collection: db.Collection("states")}
}

// EnsureIndexes creates the unique index backing the one-row-per-kind
// invariant. Concurrent duplicate inserts surface as duplicate key errors
// which the engagement engine retries.
func (r *MongoReactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "ideaId", Value: 1},
			{Key: "state", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create reaction index: %w", err)
	}
	return nil
}

// CreateReaction inserts a new reaction row in MongoDB
func (r *MongoReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	reaction.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, reaction)
	return err
}

// DeleteReaction deletes the reaction row of the given kind for a (user, idea) pair
func (r *MongoReactionRepository) DeleteReaction(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "ideaId": ideaID, "state": kind})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reaction not found")
	}
	return nil
}

// HasReaction checks whether a reaction row of the given kind exists for a (user, idea) pair
func (r *MongoReactionRepository) HasReaction(ctx context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "ideaId": ideaID, "state": kind})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountsByUser aggregates reaction rows of one kind for an idea, grouped by user
func (r *MongoReactionRepository) CountsByUser(ctx context.Context, ideaID primitive.ObjectID, kind models.ReactionKind) ([]models.UserCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"state": kind, "ideaId": ideaID}}},
		{{Key: "$group", Value: bson.M{"_id": "$userId", "count": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "userId": "$_id", "count": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []models.UserCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteByIdeaID removes every reaction row of an idea (cascade on idea deletion)
func (r *MongoReactionRepository) DeleteByIdeaID(ctx context.Context, ideaID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"ideaId": ideaID})
	return err
}
