// internal/domain/models/participant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender identifies a participant's gender for compatibility scoring.
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderNonBinary   Gender = "nonbinary"
	GenderUnspecified Gender = "unspecified"
)

// GenderPreference expresses an exclusive grouping constraint. "same" means
// the holder may only be grouped with participants of the same gender;
// "any" (or empty) imposes no constraint.
type GenderPreference string

const (
	GenderPrefAny  GenderPreference = "any"
	GenderPrefSame GenderPreference = "same"
)

// Exclusive reports whether the preference rules out cross-gender grouping.
func (p GenderPreference) Exclusive() bool { return p == GenderPrefSame }

// Skill levels span 1 (novice) through 10 (expert). SkillLevelRange is the
// widest possible distance between two levels and normalizes skill scoring.
const (
	SkillLevelMin   = 1
	SkillLevelMax   = 10
	SkillLevelRange = SkillLevelMax - SkillLevelMin
)

// AvailabilitySlot is a recurring weekly window, minutes from midnight.
// End is exclusive; a slot never crosses midnight.
type AvailabilitySlot struct {
	Day   time.Weekday `bson:"day" json:"day"`
	Start int          `bson:"start" json:"start"`
	End   int          `bson:"end" json:"end"`
}

// Minutes returns the slot's length.
func (s AvailabilitySlot) Minutes() int {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Overlap returns the number of shared minutes between two slots.
func (s AvailabilitySlot) Overlap(o AvailabilitySlot) int {
	if s.Day != o.Day {
		return 0
	}
	start := s.Start
	if o.Start > start {
		start = o.Start
	}
	end := s.End
	if o.End < end {
		end = o.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// UserProfile is the stored user document the participant directory reads.
// Only the attributes relevant to matching live here; account and identity
// concerns belong to the surrounding system.
type UserProfile struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Name             string             `bson:"name" json:"name"`
	NameCI           string             `bson:"name_ci" json:"name_ci"`
	SkillLevel       int                `bson:"skill_level" json:"skill_level"`
	Age              int                `bson:"age" json:"age"`
	Gender           Gender             `bson:"gender" json:"gender"`
	GenderPreference GenderPreference   `bson:"gender_preference,omitempty" json:"gender_preference,omitempty"`
	Availability     []AvailabilitySlot `bson:"availability,omitempty" json:"availability,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Participant is the resolved, immutable view of an enrolled user that the
// formation engine scores. JoinOrder is the zero-based position in the
// session's participant list at the moment the roster was snapshotted; it is
// the deterministic tie-break basis and is not stored.
type Participant struct {
	ID               primitive.ObjectID
	SkillLevel       int
	Age              int
	Gender           Gender
	GenderPreference GenderPreference
	Availability     []AvailabilitySlot
	JoinOrder        int
}

// ParticipantFromProfile builds the engine's view of a user at a given
// position in the join order.
func ParticipantFromProfile(p UserProfile, joinOrder int) Participant {
	return Participant{
		ID:               p.ID,
		SkillLevel:       p.SkillLevel,
		Age:              p.Age,
		Gender:           p.Gender,
		GenderPreference: p.GenderPreference,
		Availability:     p.Availability,
		JoinOrder:        joinOrder,
	}
}
