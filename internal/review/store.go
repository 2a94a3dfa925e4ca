// Package review persists moderation rejections for the admin review queue.
// Flags arrive asynchronously over NATS; the worker in cmd/moderator consumes
// them and writes through this store.
package review

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/latroca/latroca-api/internal/moderation"
)

const defaultLimit = 100

// Flag is one rejected piece of content awaiting admin review.
type Flag struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	UserID    string                  `bson:"userId" json:"userId"`
	Field     string                  `bson:"field" json:"field"`
	Category  moderation.RiskCategory `bson:"category" json:"category"`
	Excerpt   string                  `bson:"excerpt" json:"excerpt"`
	CreatedAt time.Time               `bson:"createdAt" json:"createdAt"`
}

// Store manages flag documents in MongoDB.
type Store struct {
	col *mongo.Collection
}

// NewStore creates a Store over the flagged_content collection of db.
func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("flagged_content")}
}

// Insert stores a flag built from ev.
func (s *Store) Insert(ctx context.Context, ev moderation.FlaggedEvent) error {
	f := Flag{
		UserID:    ev.UserID,
		Field:     ev.Field,
		Category:  ev.Category,
		Excerpt:   ev.Excerpt,
		CreatedAt: time.Unix(ev.Ts, 0).UTC(),
	}
	if ev.Ts == 0 {
		f.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("review: insert flag: %w", err)
	}
	return nil
}

// Recent returns the newest flags, most recent first. A non-positive limit
// falls back to the default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Flag, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("review: find flags: %w", err)
	}
	defer cur.Close(ctx)

	var flags []Flag
	if err := cur.All(ctx, &flags); err != nil {
		return nil, fmt.Errorf("review: decode flags: %w", err)
	}
	return flags, nil
}
