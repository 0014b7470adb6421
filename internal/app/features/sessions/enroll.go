// internal/app/features/sessions/enroll.go
package sessions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enroll handles POST /sessions/{sessionID}/enroll. When the enrollment
// crosses the auto-match threshold the formation result is included in the
// response.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "user_id must be a valid id")
		return
	}

	// Long: an enrollment may trigger a full formation run.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Gate.Enroll(ctx, id, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
