package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the profile of a platform member
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"Name" json:"Name"`
	Email       string             `bson:"Email" json:"Email"`
	Gender      string             `bson:"Gender,omitempty" json:"Gender,omitempty"`
	PhoneNumber string             `bson:"PhoneNumber,omitempty" json:"PhoneNumber,omitempty"`
	DoB         *time.Time         `bson:"DoB,omitempty" json:"DoB,omitempty"`
	Avatar      string             `bson:"Avatar,omitempty" json:"Avatar,omitempty"`
	Department  string             `bson:"Department,omitempty" json:"Department,omitempty"`
}

// ToAuthor reduces a user to the author info embedded in feed summaries
func (u *User) ToAuthor() IdeaAuthor {
	return IdeaAuthor{Name: u.Name, Avatar: u.Avatar, Department: u.Department}
}
