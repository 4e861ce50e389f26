package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Idea represents an idea shared on the platform
type Idea struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"Title" json:"Title"`
	Description  string             `bson:"Description,omitempty" json:"Description,omitempty"`
	LastEdition  time.Time          `bson:"LastEdition" json:"LastEdition"`
	UserID       primitive.ObjectID `bson:"UserId" json:"UserId"`
	CategoryID   primitive.ObjectID `bson:"CategoryId" json:"CategoryId"`
	AcademicYear string             `bson:"AcademicYear" json:"AcademicYear"`
	URL          string             `bson:"Url" json:"Url"`
	Anonymous    bool               `bson:"Anonymous" json:"Anonymous"`
}

// IdeaAuthor is the author info embedded in feed summaries
type IdeaAuthor struct {
	Name       string `bson:"name" json:"name"`
	Avatar     string `bson:"avatar" json:"avatar"`
	Department string `bson:"department" json:"department"`
}

// IdeaSummary is one row of the recency-sorted feed pushed to clients
type IdeaSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"Title" json:"Title"`
	LastEdition time.Time          `bson:"LastEdition" json:"LastEdition"`
	URL         string             `bson:"Url" json:"Url"`
	User        IdeaAuthor         `bson:"User" json:"User"`
}

// CreateIdeaRequest defines the request body for posting a new idea
type CreateIdeaRequest struct {
	Title        string `json:"Title" validate:"required,min=1,max=200"`
	Description  string `json:"Description" validate:"max=5000"`
	UserID       string `json:"UserId" validate:"required"`
	CategoryID   string `json:"CategoryId" validate:"required"`
	AcademicYear string `json:"AcademicYear" validate:"required"`
	Anonymous    bool   `json:"Anonymous"`
}

// UpdateIdeaRequest defines the request body for editing an idea
type UpdateIdeaRequest struct {
	Title       string `json:"Title" validate:"required,min=1,max=200"`
	Description string `json:"Description" validate:"max=5000"`
	Anonymous   bool   `json:"Anonymous"`
}
