package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment left on an idea
type Comment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content     string             `bson:"Content" json:"Content"`
	LastEdition time.Time          `bson:"LastEdition" json:"LastEdition"`
	UserID      primitive.ObjectID `bson:"UserId" json:"UserId"`
	IdeaID      primitive.ObjectID `bson:"IdeaId" json:"IdeaId"`
	Anonymous   bool               `bson:"Anonymous" json:"Anonymous"`
}
