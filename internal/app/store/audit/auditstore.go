// internal/app/store/audit/auditstore.go
package auditstore

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RematchRecord preserves a published formation result that was cleared by
// an explicit re-match. Published results are immutable audit records; the
// clear is recorded, never silently overwritten.
type RematchRecord struct {
	ID             primitive.ObjectID    `bson:"_id" json:"id"`
	SessionID      primitive.ObjectID    `bson:"session_id" json:"session_id"`
	Actor          primitive.ObjectID    `bson:"actor" json:"actor"`
	Reason         string                `bson:"reason,omitempty" json:"reason,omitempty"`
	PreviousGroups []models.MatchedGroup `bson:"previous_groups" json:"previous_groups"`
	ClearedAt      time.Time             `bson:"cleared_at" json:"cleared_at"`
}

// Store manages re-match audit records.
type Store struct {
	c *mongo.Collection
}

// New creates an audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("match_audit")}
}

// EnsureIndexes creates the audit indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "cleared_at", Value: -1}},
			Options: options.Index().SetName("idx_match_audit_session"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// RecordRematch writes the audit record for a cleared result.
func (s *Store) RecordRematch(ctx context.Context, sessionID, actor primitive.ObjectID, reason string, previous []models.MatchedGroup) error {
	rec := RematchRecord{
		ID:             primitive.NewObjectID(),
		SessionID:      sessionID,
		Actor:          actor,
		Reason:         reason,
		PreviousGroups: previous,
		ClearedAt:      time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert rematch record: %w", err)
	}
	return nil
}

// ListBySession returns a session's re-match history, newest first.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]RematchRecord, error) {
	cursor, err := s.c.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "cleared_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []RematchRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
