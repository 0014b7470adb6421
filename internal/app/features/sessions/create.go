// internal/app/features/sessions/create.go
package sessions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/htmlsanitize"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Create handles POST /sessions. Sessions are created in draft status; the
// organizer opens them for enrollment explicitly.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	title := htmlsanitize.Sanitize(req.Title)
	if title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.ActivityType == "" {
		respondError(w, http.StatusBadRequest, "activity_type is required")
		return
	}
	organizer, err := primitive.ObjectIDFromHex(req.Organizer)
	if err != nil {
		respondError(w, http.StatusBadRequest, "organizer must be a valid id")
		return
	}
	if !req.TimeWindow.End.After(req.TimeWindow.Start) {
		respondError(w, http.StatusBadRequest, "time_window end must be after start")
		return
	}

	maxGroups := req.MaxGroups
	if maxGroups <= 0 {
		maxGroups = h.DefaultMaxGroups
	}

	sess := models.Session{
		Title:        title,
		Description:  htmlsanitize.Sanitize(req.Description),
		ActivityType: req.ActivityType,
		SkillLevel:   req.SkillLevel,
		LocationRef:  req.LocationRef,
		TimeWindow:   req.TimeWindow,
		MinPlayers:   req.MinPlayers,
		MaxPlayers:   req.MaxPlayers,
		MaxGroups:    maxGroups,
		AutoMatch:    req.AutoMatch,
		Organizer:    organizer,
		Status:       models.StatusDraft,
	}
	if req.Preferences != nil {
		sess.Preferences = *req.Preferences
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Sessions.Create(ctx, sess)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /sessions?organizer=<id>, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	organizer, err := primitive.ObjectIDFromHex(r.URL.Query().Get("organizer"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "organizer query parameter must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Sessions.ListByOrganizer(ctx, organizer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Session{}
	}
	respondJSON(w, http.StatusOK, listResponse{Sessions: list})
}
