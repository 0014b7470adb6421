// internal/app/store/participants/participantstore.go
package participantstore

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
	// ErrNotFound is returned when no user exists for the given id.
	ErrNotFound = errors.New("user not found")

	// ErrMissingAttributes is returned when an enrolled user's profile has
	// disappeared between enrollment and a formation run.
	ErrMissingAttributes = errors.New("user attributes missing for enrolled participant")
)

// Store is the participant directory: it supplies the immutable matching
// attributes (skill, age, gender, availability) for user ids. User accounts
// themselves are owned by the surrounding system.
type Store struct {
	c *mongo.Collection
}

// New creates a participants Store over the users collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the directory's indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a user profile. Used by seeding and tests; production
// profiles arrive through the surrounding system.
func (s *Store) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.UserProfile{}, fmt.Errorf("insert user profile: %w", err)
	}
	return p, nil
}

// GetAttributes resolves a single user's matching attributes.
func (s *Store) GetAttributes(ctx context.Context, id primitive.ObjectID) (models.UserProfile, error) {
	var p models.UserProfile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

// GetAttributesBatch resolves attributes for a session roster, preserving the
// requested order so join order survives the lookup. Every id must resolve;
// a missing profile is an ErrMissingAttributes.
func (s *Store) GetAttributesBatch(ctx context.Context, ids []primitive.ObjectID) ([]models.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[primitive.ObjectID]models.UserProfile, len(ids))
	for cursor.Next(ctx) {
		var p models.UserProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	participants := make([]models.Participant, 0, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAttributes, id.Hex())
		}
		participants = append(participants, models.ParticipantFromProfile(p, i))
	}
	return participants, nil
}
