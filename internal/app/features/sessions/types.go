// internal/app/features/sessions/types.go
package sessions

import (
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
)

// errorResponse is the JSON error envelope for all session endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// createSessionRequest is the payload for POST /sessions.
type createSessionRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	ActivityType string              `json:"activity_type"`
	SkillLevel   int                 `json:"skill_level"`
	LocationRef  string              `json:"location_ref,omitempty"`
	TimeWindow   models.TimeWindow   `json:"time_window"`
	MinPlayers   int                 `json:"min_players"`
	MaxPlayers   int                 `json:"max_players"`
	MaxGroups    int                 `json:"max_groups,omitempty"`
	AutoMatch    bool                `json:"auto_match"`
	Organizer    string              `json:"organizer"`
	Preferences  *models.Preferences `json:"preferences,omitempty"`
}

// enrollRequest is the payload for POST /sessions/{id}/enroll.
type enrollRequest struct {
	UserID string `json:"user_id"`
}

// rematchRequest is the payload for POST /sessions/{id}/rematch. Reason is
// recorded in the audit trail alongside the cleared result.
type rematchRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// listResponse wraps organizer session listings.
type listResponse struct {
	Sessions []models.Session `json:"sessions"`
}
