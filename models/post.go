package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media kinds as rendered by the client.
const (
	KindImage = "image"
	KindVideo = "video"
	KindPDF   = "pdf"
)

// MediaItem is one durably hosted file inside a post. Immutable once the
// owning post is committed.
type MediaItem struct {
	URL          string `json:"url" bson:"url"`
	PublicID     string `json:"publicId" bson:"publicId"`
	ResourceType string `json:"resourceType" bson:"resourceType"` // "image", "video" or "raw"
	MimeType     string `json:"mimeType" bson:"mimeType"`
	Kind         string `json:"kind" bson:"kind"`
	OriginalName string `json:"originalName" bson:"originalName"`
}

// Post model for published album entries
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AlbumName string             `json:"albumName" bson:"albumName"`
	Caption   string             `json:"caption,omitempty" bson:"caption,omitempty"`
	Media     []MediaItem        `json:"media" bson:"media"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// KindFrom derives the display kind from the original MIME type and the
// host-reported resource type.
func KindFrom(mimeType, resourceType string) string {
	if mimeType == "application/pdf" {
		return KindPDF
	}
	if resourceType == "video" {
		return KindVideo
	}
	return KindImage
}

// Preview is a locally served stand-in for one selected file, alive until
// the selection is replaced or the batch is submitted.
type Preview struct {
	Name         string `json:"name"`
	MimeType     string `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// SubmitRequest model for publishing the pending batch
type SubmitRequest struct {
	AlbumName string `json:"albumName" validate:"required"`
	Caption   string `json:"caption,omitempty"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
