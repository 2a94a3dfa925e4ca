// Package user defines the user document model and its MongoDB store.
package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account status values.
const (
	StatusActive      = "active"
	StatusDeactivated = "deactivated"
)

// Roles. Role strings are stored uppercase.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether role (already uppercased) is a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Location is a user-provided position, either device coordinates or a
// manually entered place name.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Manual    string  `bson:"manual" json:"manual"`
}

// Reputation aggregates review stars for a user.
type Reputation struct {
	Stars   float64 `bson:"stars" json:"stars"`
	Reviews int     `bson:"reviews" json:"reviews"`
}

// User is the document stored in the users collection.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	Role          string             `bson:"role" json:"role"`
	Bio           string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicURL string             `bson:"profilePicUrl,omitempty" json:"profilePicUrl,omitempty"`
	Location      *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Reputation    *Reputation        `bson:"reputation,omitempty" json:"reputation,omitempty"`
	FCMToken      string             `bson:"fcmToken,omitempty" json:"-"`
	TermsAccepted bool               `bson:"termsAccepted" json:"termsAccepted"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	Status        string             `bson:"status" json:"status"`
}

// Active reports whether the account may log in and act.
func (u *User) Active() bool {
	return u.Status == StatusActive
}
