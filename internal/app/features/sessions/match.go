// internal/app/features/sessions/match.go
package sessions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/htmlsanitize"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TriggerMatch handles POST /sessions/{sessionID}/match. The call is
// idempotent: if a result is already published it is returned unchanged.
func (h *Handler) TriggerMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Gate.TriggerMatch(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetMatch handles GET /sessions/{sessionID}/match.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	state, err := h.Gate.GetMatchState(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Rematch handles POST /sessions/{sessionID}/rematch. The existing result is
// recorded in the audit trail before it is cleared and recomputed.
func (h *Handler) Rematch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req rematchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	actor, err := primitive.ObjectIDFromHex(req.Actor)
	if err != nil {
		respondError(w, http.StatusBadRequest, "actor must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Gate.Rematch(ctx, id, actor, htmlsanitize.Sanitize(req.Reason))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
