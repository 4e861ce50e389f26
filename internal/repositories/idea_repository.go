package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/hdngo/ideahive/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IdeaRepository defines the interface for idea data operations
type IdeaRepository interface {
	CreateIdea(ctx context.Context, idea *models.Idea) error
	GetIdeaByID(ctx context.Context, id primitive.ObjectID) (*models.Idea, error)
	GetAllIdeas(ctx context.Context) ([]models.Idea, error)
	GetIdeaSummaries(ctx context.Context) ([]models.IdeaSummary, error)
	UpdateIdea(ctx context.Context, id primitive.ObjectID, req *models.UpdateIdeaRequest) error
	DeleteIdea(ctx context.Context, id primitive.ObjectID) error
}

// MongoIdeaRepository implements IdeaRepository for MongoDB
type MongoIdeaRepository struct {
	collection *mongo.Collection
}

// NewMongoIdeaRepository creates a new MongoIdeaRepository
func NewMongoIdeaRepository(db *mongo.Database) *MongoIdeaRepository {
	return &MongoIdeaRepository{collection: db.Collection("ideas")}
}

// CreateIdea creates a new idea in MongoDB. The caller may pre-assign the
// id, e.g. to derive the share url before the insert.
func (r *MongoIdeaRepository) CreateIdea(ctx context.Context, idea *models.Idea) error {
	if idea.ID.IsZero() {
		idea.ID = primitive.NewObjectID()
	}
	idea.LastEdition = time.Now()
	_, err := r.collection.InsertOne(ctx, idea)
	return err
}

// GetIdeaByID retrieves an idea by ID from MongoDB
func (r *MongoIdeaRepository) GetIdeaByID(ctx context.Context, id primitive.ObjectID) (*models.Idea, error) {
	var idea models.Idea
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&idea)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("idea not found")
		}
		return nil, err
	}
	return &idea, nil
}

// GetAllIdeas retrieves every idea. Ordering is left to the caller; the
// feed resolver owns the recency sort.
func (r *MongoIdeaRepository) GetAllIdeas(ctx context.Context) ([]models.Idea, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ideas := []models.Idea{}
	if err = cursor.All(ctx, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// GetIdeaSummaries returns the recency-sorted feed with author info joined
// from the users collection
func (r *MongoIdeaRepository) GetIdeaSummaries(ctx context.Context) ([]models.IdeaSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "UserId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         1,
			"Title":       1,
			"LastEdition": 1,
			"Url":         1,
			"User": bson.M{"$arrayElemAt": bson.A{
				bson.M{"$map": bson.M{
					"input": "$user",
					"as":    "user",
					"in": bson.M{
						"name":       "$$user.Name",
						"avatar":     "$$user.Avatar",
						"department": "$$user.Department",
					},
				}},
				0,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "LastEdition", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []models.IdeaSummary{}
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// UpdateIdea updates an idea's editable fields and restamps LastEdition
func (r *MongoIdeaRepository) UpdateIdea(ctx context.Context, id primitive.ObjectID, req *models.UpdateIdeaRequest) error {
	update := bson.M{"$set": bson.M{
		"Title":       req.Title,
		"Description": req.Description,
		"Anonymous":   req.Anonymous,
		"LastEdition": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("idea not found")
	}
	return nil
}

// DeleteIdea deletes an idea by ID from MongoDB
func (r *MongoIdeaRepository) DeleteIdea(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("idea not found")
	}
	return nil
}
