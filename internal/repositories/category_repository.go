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

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// MongoCategoryRepository implements CategoryRepository for MongoDB
type MongoCategoryRepository struct {
	collection *mongo.Collection
}

// NewMongoCategoryRepository creates a new MongoCategoryRepository
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection("categories")}
}

// CreateCategory creates a new category in MongoDB
func (r *MongoCategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	category.ID = primitive.NewObjectID()
	category.DateInnitiated = time.Now()
	if category.Status == "" {
		category.Status = models.CategoryOpening
	}
	_, err := r.collection.InsertOne(ctx, category)
	return err
}

// GetAllCategories retrieves every category from MongoDB
func (r *MongoCategoryRepository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory deletes a category by ID from MongoDB
func (r *MongoCategoryRepository) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}
