// internal/app/events/events.go
package events

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain event types emitted by the matchmaking core. Delivery to users
// (push, email) is the notification system's concern, not ours.
const (
	TypeSessionMatched   = "session_matched"
	TypeSessionCancelled = "session_cancelled"
)

// Event is a fire-and-forget domain event.
type Event struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	SessionID  string     `json:"session_id"`
	Groups     [][]string `json:"groups,omitempty"`
	Unmatched  []string   `json:"unmatched,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewSessionMatched builds the event raised when a formation result is
// published for a session.
func NewSessionMatched(sessionID primitive.ObjectID, groups [][]primitive.ObjectID, unmatched []primitive.ObjectID) Event {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       TypeSessionMatched,
		SessionID:  sessionID.Hex(),
		OccurredAt: time.Now().UTC(),
	}
	for _, g := range groups {
		evt.Groups = append(evt.Groups, hexIDs(g))
	}
	evt.Unmatched = hexIDs(unmatched)
	return evt
}

// NewSessionCancelled builds the event raised when a session is cancelled.
func NewSessionCancelled(sessionID primitive.ObjectID) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeSessionCancelled,
		SessionID:  sessionID.Hex(),
		OccurredAt: time.Now().UTC(),
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
