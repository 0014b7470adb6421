package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUserProfile inserts a test user with the given matching attributes.
// Returns the created profile with its generated ID.
func (f *Fixtures) CreateUserProfile(ctx context.Context, name string, skill, age int, gender models.Gender) models.UserProfile {
	f.t.Helper()

	now := time.Now().UTC()
	profile := models.UserProfile{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		SkillLevel: skill,
		Age:        age,
		Gender:     gender,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, profile); err != nil {
		f.t.Fatalf("failed to create test user profile: %v", err)
	}

	return profile
}

// CreateSession inserts an open session with the given player bounds.
// The time window starts an hour from now and runs for two hours.
func (f *Fixtures) CreateSession(ctx context.Context, title string, minPlayers, maxPlayers int) models.Session {
	f.t.Helper()

	now := time.Now().UTC()
	sess := models.Session{
		ID:           primitive.NewObjectID(),
		Title:        title,
		TitleCI:      text.Fold(title),
		ActivityType: "pickup",
		SkillLevel:   5,
		TimeWindow: models.TimeWindow{
			Start: now.Add(time.Hour),
			End:   now.Add(3 * time.Hour),
		},
		MinPlayers:   minPlayers,
		MaxPlayers:   maxPlayers,
		MaxGroups:    models.DefaultMaxGroups,
		Organizer:    primitive.NewObjectID(),
		Status:       models.StatusOpen,
		Participants: []primitive.ObjectID{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("sessions").InsertOne(ctx, sess); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}

	return sess
}
