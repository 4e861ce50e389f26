package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category statuses
const (
	CategoryOpening = "Opening"
	CategoryClosed  = "Closed"
)

// Category groups ideas under a submission topic
type Category struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"Title" json:"Title"`
	Description    string             `bson:"Description,omitempty" json:"Description,omitempty"`
	DateInnitiated time.Time          `bson:"DateInnitiated" json:"DateInnitiated"`
	Status         string             `bson:"Status" json:"Status"`
}

// CreateCategoryRequest defines the request body for opening a new category
type CreateCategoryRequest struct {
	Title       string `json:"Title" validate:"required,min=1,max=100"`
	Description string `json:"Description" validate:"max=1000"`
}
