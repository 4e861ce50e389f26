package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/hdngo/ideahive/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIdeaID(ctx context.Context, ideaID primitive.ObjectID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, content string, anonymous bool) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteByIdeaID(ctx context.Context, ideaID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("commentideas")}
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.LastEdition = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByIdeaID retrieves the comments of an idea, most recent first
func (r *MongoCommentRepository) GetCommentsByIdeaID(ctx context.Context, ideaID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "LastEdition", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"IdeaId": ideaID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment replaces the content and anonymity flag of a comment
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, content string, anonymous bool) error {
	update := bson.M{"$set": bson.M{"Content": content, "Anonymous": anonymous}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// DeleteComment deletes a comment by ID from MongoDB
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// DeleteByIdeaID removes every comment of an idea (cascade on idea deletion)
func (r *MongoCommentRepository) DeleteByIdeaID(ctx context.Context, ideaID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"IdeaId": ideaID})
	return err
}
