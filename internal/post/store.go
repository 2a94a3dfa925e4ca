package post

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

// Store manages post documents in MongoDB.
type Store struct {
	col *mongo.Collection
}

// NewStore creates a Store over the posts collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("posts")}
}

// Insert stores a new post and fills in its generated ID.
func (s *Store) Insert(ctx context.Context, p *Post) error {
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("post: insert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// ByID returns the post with the given hex ID, or (nil, nil) if absent.
func (s *Store) ByID(ctx context.Context, id string) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var p Post
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("post: find by id: %w", err)
	}
	return &p, nil
}

// ByUserID returns all posts created by the given user, newest first.
func (s *Store) ByUserID(ctx context.Context, userID string) ([]Post, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	return s.find(ctx, bson.M{"userId": oid})
}

// All returns every post, newest first.
func (s *Store) All(ctx context.Context) ([]Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]Post, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("post: find: %w", err)
	}
	defer cur.Close(ctx)

	var posts []Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("post: decode list: %w", err)
	}
	return posts, nil
}

// Replace overwrites the stored document for p and bumps its updatedAt.
func (s *Store) Replace(ctx context.Context, p *Post) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("post: replace: %w", err)
	}
	return nil
}

// Delete removes the post with the given hex ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("post: delete: %w", err)
	}
	return nil
}
