// internal/app/features/sessions/lifecycle.go
package sessions

import (
	"context"
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
)

// Open handles POST /sessions/{sessionID}/open, moving a draft session into
// the open status so participants can enroll.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusOpen)
}

// Cancel handles POST /sessions/{sessionID}/cancel. Cancellation discards any
// in-flight formation run for the session.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusCancelled)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, to models.SessionStatus) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sess, err := h.Gate.Transition(ctx, id, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}
