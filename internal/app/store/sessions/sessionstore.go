// internal/app/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no session exists for the given id.
	ErrNotFound = errors.New("session not found")

	// ErrConflict is returned by AtomicUpdate when a concurrent writer
	// changed the session between load and write. Retryable.
	ErrConflict = errors.New("session modified concurrently")

	// ErrInvalidCapacity rejects sessions whose player bounds are malformed.
	ErrInvalidCapacity = errors.New("session requires minPlayers >= 2 and maxPlayers >= minPlayers")
)

// maxAtomicRetries bounds optimistic-concurrency retries inside AtomicUpdate.
// Writers for the same session are already serialized in-process; retries
// only absorb cross-process contention.
const maxAtomicRetries = 5

// Store manages session documents.
type Store struct {
	c *mongo.Collection
}

// New creates a sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the indexes the store and lifecycle worker rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Lifecycle worker scans by status and window bounds.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "time_window.start", Value: 1}},
			Options: options.Index().SetName("idx_sessions_status_start"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "time_window.end", Value: 1}},
			Options: options.Index().SetName("idx_sessions_status_end"),
		},
		// Organizer listings.
		{
			Keys:    bson.D{{Key: "organizer", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_organizer"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new session in draft status with defaults applied.
func (s *Store) Create(ctx context.Context, sess models.Session) (models.Session, error) {
	if sess.MinPlayers < 2 || sess.MaxPlayers < sess.MinPlayers {
		return models.Session{}, ErrInvalidCapacity
	}

	now := time.Now().UTC()
	sess.ID = primitive.NewObjectID()
	sess.TitleCI = text.Fold(sess.Title)
	if sess.Status == "" {
		sess.Status = models.StatusDraft
	}
	if sess.MaxGroups <= 0 {
		sess.MaxGroups = models.DefaultMaxGroups
	}
	if sess.Participants == nil {
		sess.Participants = []primitive.ObjectID{}
	}
	sess.Version = 1
	sess.CreatedAt = now
	sess.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetByID loads a session.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, err
	}
	return sess, nil
}

// AtomicUpdate loads the session, applies mutate, and writes the result back
// only if no other writer has touched the document since the load (version
// compare-and-swap). A mutate error aborts the update and is returned as-is,
// so callers can surface typed domain outcomes through it. Persistent version
// mismatch surfaces as ErrConflict.
func (s *Store) AtomicUpdate(ctx context.Context, id primitive.ObjectID, mutate func(*models.Session) error) (models.Session, error) {
	for attempt := 0; attempt < maxAtomicRetries; attempt++ {
		sess, err := s.GetByID(ctx, id)
		if err != nil {
			return models.Session{}, err
		}

		loadedVersion := sess.Version
		if err := mutate(&sess); err != nil {
			return models.Session{}, err
		}
		sess.Version = loadedVersion + 1
		sess.UpdatedAt = time.Now().UTC()

		res, err := s.c.ReplaceOne(ctx,
			bson.M{"_id": id, "version": loadedVersion},
			sess,
		)
		if err != nil {
			return models.Session{}, fmt.Errorf("update session: %w", err)
		}
		if res.MatchedCount == 1 {
			return sess, nil
		}
		// Version moved underneath us; reload and retry.
	}
	return models.Session{}, ErrConflict
}

// StartDue flips open sessions whose window has started to in_progress.
// Returns the number of sessions transitioned.
func (s *Store) StartDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":            models.StatusOpen,
			"time_window.start": bson.M{"$lte": now},
		},
		bson.M{
			"$set": bson.M{"status": models.StatusInProgress, "updated_at": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CompleteDue flips in-progress sessions whose window has ended to completed.
// Returns the number of sessions transitioned.
func (s *Store) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":          models.StatusInProgress,
			"time_window.end": bson.M{"$lte": now},
		},
		bson.M{
			"$set": bson.M{"status": models.StatusCompleted, "updated_at": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListByOrganizer returns the organizer's sessions, newest first.
func (s *Store) ListByOrganizer(ctx context.Context, organizer primitive.ObjectID) ([]models.Session, error) {
	cursor, err := s.c.Find(ctx,
		bson.M{"organizer": organizer},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
