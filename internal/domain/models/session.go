// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusDraft      SessionStatus = "draft"
	StatusOpen       SessionStatus = "open"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// transitions is the session lifecycle table. Completed and cancelled are
// terminal.
var transitions = map[SessionStatus][]SessionStatus{
	StatusDraft:      {StatusOpen, StatusCancelled},
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from to the given status is allowed.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// TimeWindow bounds when the activity takes place.
type TimeWindow struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// AgeRange is an inclusive age band for the age-fit soft constraint.
type AgeRange struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// Contains reports whether age falls inside the band.
func (r AgeRange) Contains(age int) bool { return age >= r.Min && age <= r.Max }

// Preferences is the closed set of per-session matching preferences. The
// original system stored these as free-form JSON; here every field is
// enumerated so the evaluator can be exhaustively tested.
type Preferences struct {
	AgeRange             *AgeRange        `bson:"age_range,omitempty" json:"age_range,omitempty"`
	GenderPreference     GenderPreference `bson:"gender_preference,omitempty" json:"gender_preference,omitempty"`
	AvailabilityRequired bool             `bson:"availability_required,omitempty" json:"availability_required,omitempty"`
}

// MatchedGroup is one formed group, members in join order.
type MatchedGroup struct {
	Members []primitive.ObjectID `bson:"members" json:"members"`
}

// DefaultMaxGroups caps how many groups a session may grow to when the
// organizer does not set one. Capacity is enforced at enrollment time as
// maxPlayers * maxGroups.
const DefaultMaxGroups = 10

// Session is a bounded-time activity instance that enrolls participants and
// is partitioned into matched groups once.
type Session struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	TitleCI      string             `bson:"title_ci" json:"title_ci"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	ActivityType string             `bson:"activity_type" json:"activity_type"`
	SkillLevel   int                `bson:"skill_level" json:"skill_level"`
	LocationRef  string             `bson:"location_ref,omitempty" json:"location_ref,omitempty"`
	TimeWindow   TimeWindow         `bson:"time_window" json:"time_window"`

	MinPlayers int `bson:"min_players" json:"min_players"`
	MaxPlayers int `bson:"max_players" json:"max_players"`
	MaxGroups  int `bson:"max_groups" json:"max_groups"`

	AutoMatch   bool               `bson:"auto_match" json:"auto_match"`
	Organizer   primitive.ObjectID `bson:"organizer" json:"organizer"`
	Status      SessionStatus      `bson:"status" json:"status"`
	Preferences Preferences        `bson:"preferences" json:"preferences"`

	// Participants is append-only; insertion order is join order and is the
	// tie-break basis for formation runs.
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`

	// MatchedGroups is empty until a formation result is published, then
	// write-once (cleared only by an audited re-match).
	MatchedGroups []MatchedGroup       `bson:"matched_groups,omitempty" json:"matched_groups,omitempty"`
	Unmatched     []primitive.ObjectID `bson:"unmatched,omitempty" json:"unmatched,omitempty"`
	MatchedAt     *time.Time           `bson:"matched_at,omitempty" json:"matched_at,omitempty"`

	// Version backs optimistic-concurrency updates in the session store.
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CapacityCeiling is the hard enrollment cap: maxPlayers * maxGroups.
func (s *Session) CapacityCeiling() int {
	groups := s.MaxGroups
	if groups <= 0 {
		groups = DefaultMaxGroups
	}
	return s.MaxPlayers * groups
}

// HasParticipant reports whether the user is already enrolled.
func (s *Session) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Matched reports whether a formation result has been published.
func (s *Session) Matched() bool { return len(s.MatchedGroups) > 0 }

// MatchAllowed reports whether a formation run may execute in the current
// status. Formation is permitted while open or in progress.
func (s *Session) MatchAllowed() bool {
	return s.Status == StatusOpen || s.Status == StatusInProgress
}
