// Package post implements marketplace listings: the post document model,
// its MongoDB store, and the service orchestrating validation, content
// moderation and photo uploads.
package post

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/latroca/latroca-api/internal/user"
)

// StatusActive marks a published listing visible to other users.
const StatusActive = "activo"

// MaxPhotos is the per-listing photo upload limit.
const MaxPhotos = 3

// Post is the document stored in the posts collection.
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	PhotoURLs   []string           `bson:"photoUrl" json:"photoUrls"`
	Location    *user.Location     `bson:"location,omitempty" json:"location,omitempty"`
	Need        string             `bson:"need" json:"need"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	Status      string             `bson:"status" json:"status"`
}

// OwnerInfo is the listing owner's public summary embedded in responses.
type OwnerInfo struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	ProfilePicURL string `json:"profilePicUrl"`
}

// Response is a post enriched with its owner's public info.
type Response struct {
	Post
	Owner *OwnerInfo `json:"userInfo,omitempty"`
}
