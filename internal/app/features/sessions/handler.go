// internal/app/features/sessions/handler.go
package sessions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/enrollment"
	participantstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/participants"
	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"go.uber.org/zap"
)

// Handler provides the JSON API for session management, enrollment, and
// matching.
type Handler struct {
	Sessions *sessionstore.Store
	Gate     *enrollment.Gate
	Log      *zap.Logger

	// DefaultMaxGroups applies when a create request leaves max_groups unset.
	DefaultMaxGroups int
}

// NewHandler creates a new sessions Handler.
func NewHandler(store *sessionstore.Store, gate *enrollment.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: store,
		Gate:     gate,
		Log:      logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionstore.ErrNotFound),
		errors.Is(err, participantstore.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sessionstore.ErrInvalidCapacity):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, enrollment.ErrDuplicateEnrollment),
		errors.Is(err, enrollment.ErrCapacityExceeded),
		errors.Is(err, enrollment.ErrSessionClosed),
		errors.Is(err, enrollment.ErrInvalidTransition),
		errors.Is(err, sessionstore.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, participantstore.ErrMissingAttributes):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.Log.Error("sessions: request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
