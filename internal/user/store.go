package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages user documents in MongoDB.
type Store struct {
	col *mongo.Collection
}

// NewStore creates a Store over the users collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("users")}
}

// Create inserts a new user and fills in its generated ID and timestamps.
func (s *Store) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = StatusActive
	}

	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// ErrDuplicateEmail is returned by Create when the email is already taken,
// backed by the unique index on the email field.
var ErrDuplicateEmail = errors.New("user: duplicate email")

// ByEmail returns the user with the given email, or (nil, nil) if absent.
func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user: find by email: %w", err)
	}
	return &u, nil
}

// ByID returns the user with the given hex ID, or (nil, nil) if absent or
// the ID is not a valid ObjectID.
func (s *Store) ByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var u User
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user: find by id: %w", err)
	}
	return &u, nil
}

// Update replaces the stored document for u and bumps its updatedAt.
func (s *Store) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("user: update: %w", err)
	}
	return nil
}

// SetFCMToken stores the push notification token on the user document.
func (s *Store) SetFCMToken(ctx context.Context, id string, token string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user: set fcm token: invalid id %q", id)
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"fcmToken":  token,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("user: set fcm token: %w", err)
	}
	return nil
}

// ClearFCMToken removes the push notification token (logout).
func (s *Store) ClearFCMToken(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user: clear fcm token: invalid id %q", id)
	}
	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$unset": bson.M{"fcmToken": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("user: clear fcm token: %w", err)
	}
	return nil
}

// All returns every user, newest first. Admin use only.
func (s *Store) All(ctx context.Context) ([]User, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("user: decode list: %w", err)
	}
	return users, nil
}
