// internal/app/features/sessions/view.go
package sessions

import (
	"context"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sessionID extracts and validates the {sessionID} route parameter. It writes
// a 400 response and returns false when the parameter is not a valid id.
func sessionID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "session id must be a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// Get handles GET /sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sess, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}
