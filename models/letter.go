package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Letter is one saved note attached to an album.
type Letter struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AlbumName string             `json:"albumName" bson:"albumName"`
	Body      string             `json:"body" bson:"body"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// LetterRequest model for saving a new letter
type LetterRequest struct {
	Body string `json:"body" validate:"required"`
}
