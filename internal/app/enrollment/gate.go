// internal/app/enrollment/gate.go
package enrollment

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/events"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/matching"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
)

var (
	// ErrSessionClosed is returned when enrollment or matching is attempted
	// outside the statuses that allow it.
	ErrSessionClosed = errors.New("session is not accepting this operation")

	// ErrDuplicateEnrollment is returned when the user is already enrolled.
	// Callers that retry may treat it as idempotent success.
	ErrDuplicateEnrollment = errors.New("user already enrolled in session")

	// ErrCapacityExceeded is returned when the session's capacity ceiling
	// (maxPlayers * maxGroups) has been reached.
	ErrCapacityExceeded = errors.New("session enrollment capacity exceeded")

	// ErrInvalidTransition is returned for a lifecycle move the state table
	// does not allow.
	ErrInvalidTransition = errors.New("invalid session status transition")

	// errPublishSuperseded aborts a publish whose one-shot guard lost.
	errPublishSuperseded = errors.New("formation result already published")
)

// MatchStatus describes the outcome of a formation trigger.
type MatchStatus string

const (
	// MatchComputed: a fresh partition was computed and published.
	MatchComputed MatchStatus = "computed"
	// MatchAlreadyMatched: a result already existed; it is returned as-is.
	MatchAlreadyMatched MatchStatus = "already_matched"
	// MatchInsufficient: fewer than minPlayers enrolled; nothing persisted.
	MatchInsufficient MatchStatus = "insufficient_participants"
	// MatchDiscarded: the session left a matchable status while the
	// partition was being computed; the result was thrown away.
	MatchDiscarded MatchStatus = "discarded"
)

// MatchResult is the outcome of TriggerMatch / an auto-match trigger.
type MatchResult struct {
	Status    MatchStatus           `json:"status"`
	Groups    []models.MatchedGroup `json:"groups,omitempty"`
	Unmatched []primitive.ObjectID  `json:"unmatched,omitempty"`
}

// EnrollmentResult is the synchronous outcome of Enroll. Match is set when
// this enrollment crossed the auto-match threshold and a formation run was
// carried out before returning.
type EnrollmentResult struct {
	Session   models.Session `json:"session"`
	Triggered bool           `json:"triggered"`
	Match     *MatchResult   `json:"match,omitempty"`
}

// MatchState is the caller-facing view of a session's matching state.
type MatchState struct {
	Status    models.SessionStatus  `json:"status"`
	Groups    []models.MatchedGroup `json:"groups,omitempty"`
	Unmatched []primitive.ObjectID  `json:"unmatched,omitempty"`
	MatchedAt *time.Time            `json:"matched_at,omitempty"`
}

// SessionRepository is the session persistence boundary. AtomicUpdate must
// apply the mutator against a fresh load and write it back only if no
// concurrent writer intervened; a mutator error aborts the write and is
// returned unchanged.
type SessionRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error)
	AtomicUpdate(ctx context.Context, id primitive.ObjectID, mutate func(*models.Session) error) (models.Session, error)
}

// ParticipantDirectory supplies matching attributes for user ids.
type ParticipantDirectory interface {
	GetAttributes(ctx context.Context, id primitive.ObjectID) (models.UserProfile, error)
	GetAttributesBatch(ctx context.Context, ids []primitive.ObjectID) ([]models.Participant, error)
}

// AuditRecorder preserves cleared formation results during a re-match.
type AuditRecorder interface {
	RecordRematch(ctx context.Context, sessionID, actor primitive.ObjectID, reason string, previous []models.MatchedGroup) error
}

// Gate guards admission into sessions and owns the one-shot matching
// trigger. All check-then-act sequences for a session run inside a
// per-session critical section; formation itself runs outside any lock on a
// roster snapshot, and the publish step re-validates the one-shot guard
// before writing.
type Gate struct {
	sessions  SessionRepository
	directory ParticipantDirectory
	audit     AuditRecorder
	bus       events.Bus
	engine    *matching.Engine
	log       *zap.Logger
	locks     *keyedLocks
}

// NewGate wires a Gate over its collaborators.
func NewGate(sessions SessionRepository, directory ParticipantDirectory, audit AuditRecorder, bus events.Bus, engine *matching.Engine, logger *zap.Logger) *Gate {
	return &Gate{
		sessions:  sessions,
		directory: directory,
		audit:     audit,
		bus:       bus,
		engine:    engine,
		log:       logger,
		locks:     newKeyedLocks(),
	}
}

// Enroll atomically admits userID into the session: the status check,
// duplicate check, capacity check, and append happen as one unit with
// respect to other enrollments for the same session. If this enrollment
// satisfies the auto-match trigger (autoMatch on, roster at or past
// maxPlayers, no result published yet), a formation run executes before
// returning.
//
// The enrollment itself stands even if the triggered formation run fails;
// such failures are logged and the trigger can be repeated via TriggerMatch.
func (g *Gate) Enroll(ctx context.Context, sessionID, userID primitive.ObjectID) (EnrollmentResult, error) {
	// Resolve the user first so a missing profile fails before touching
	// session state.
	if _, err := g.directory.GetAttributes(ctx, userID); err != nil {
		return EnrollmentResult{}, err
	}

	release := g.locks.acquire(sessionID.Hex())
	var triggered bool
	updated, err := g.sessions.AtomicUpdate(ctx, sessionID, func(s *models.Session) error {
		if s.Status != models.StatusOpen {
			return ErrSessionClosed
		}
		if s.HasParticipant(userID) {
			return ErrDuplicateEnrollment
		}
		if len(s.Participants) >= s.CapacityCeiling() {
			return ErrCapacityExceeded
		}
		s.Participants = append(s.Participants, userID)
		triggered = s.AutoMatch && len(s.Participants) >= s.MaxPlayers && !s.Matched()
		return nil
	})
	release()
	if err != nil {
		return EnrollmentResult{}, err
	}

	result := EnrollmentResult{Session: updated, Triggered: triggered}
	if !triggered {
		return result, nil
	}

	match, err := g.runMatch(ctx, sessionID)
	if err != nil {
		g.log.Error("auto-match after enrollment failed",
			zap.String("session_id", sessionID.Hex()),
			zap.Error(err))
		return result, nil
	}
	result.Match = &match
	return result, nil
}

// TriggerMatch runs group formation for the session. Idempotent: an already
// published result is returned with MatchAlreadyMatched. Calling it before
// minPlayers enrolled yields MatchInsufficient with everyone unmatched, and
// persists nothing so a later trigger can still run.
func (g *Gate) TriggerMatch(ctx context.Context, sessionID primitive.ObjectID) (MatchResult, error) {
	return g.runMatch(ctx, sessionID)
}

// GetMatchState reports the session's status and current matching state.
func (g *Gate) GetMatchState(ctx context.Context, sessionID primitive.ObjectID) (MatchState, error) {
	sess, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return MatchState{}, err
	}
	return MatchState{
		Status:    sess.Status,
		Groups:    sess.MatchedGroups,
		Unmatched: sess.Unmatched,
		MatchedAt: sess.MatchedAt,
	}, nil
}

// Rematch clears a published result and runs formation again. The previous
// groups are captured while clearing and written to the audit log only after
// the clear has committed, under the same critical section, so a refused
// clear never leaves a stray audit entry. A session that was never matched
// degrades to a plain TriggerMatch.
func (g *Gate) Rematch(ctx context.Context, sessionID, actor primitive.ObjectID, reason string) (MatchResult, error) {
	sess, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return MatchResult{}, err
	}
	if !sess.MatchAllowed() {
		return MatchResult{}, ErrSessionClosed
	}

	if sess.Matched() {
		release := g.locks.acquire(sessionID.Hex())
		var previous []models.MatchedGroup
		_, err = g.sessions.AtomicUpdate(ctx, sessionID, func(s *models.Session) error {
			if !s.MatchAllowed() {
				return ErrSessionClosed
			}
			previous = s.MatchedGroups
			s.MatchedGroups = nil
			s.Unmatched = nil
			s.MatchedAt = nil
			return nil
		})
		if err == nil && len(previous) > 0 {
			err = g.audit.RecordRematch(ctx, sessionID, actor, reason, previous)
		}
		release()
		if err != nil {
			return MatchResult{}, err
		}

		g.log.Info("published match cleared for re-match",
			zap.String("session_id", sessionID.Hex()),
			zap.String("actor", actor.Hex()),
			zap.String("reason", reason))
	}

	return g.runMatch(ctx, sessionID)
}

// Transition moves the session's lifecycle status. Cancelling clears nothing
// that was already published (published results are immutable audit records)
// but causes any in-flight formation run to discard its result at publish
// time.
func (g *Gate) Transition(ctx context.Context, sessionID primitive.ObjectID, to models.SessionStatus) (models.Session, error) {
	release := g.locks.acquire(sessionID.Hex())
	updated, err := g.sessions.AtomicUpdate(ctx, sessionID, func(s *models.Session) error {
		if !s.Status.CanTransition(to) {
			return ErrInvalidTransition
		}
		s.Status = to
		return nil
	})
	release()
	if err != nil {
		return models.Session{}, err
	}

	if to == models.StatusCancelled {
		g.bus.Publish(ctx, events.NewSessionCancelled(sessionID))
	}
	return updated, nil
}

// runMatch snapshots the roster, forms groups outside any lock, and
// publishes the result under the one-shot guard.
func (g *Gate) runMatch(ctx context.Context, sessionID primitive.ObjectID) (MatchResult, error) {
	snap, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return MatchResult{}, err
	}
	if !snap.MatchAllowed() {
		return MatchResult{}, ErrSessionClosed
	}
	if snap.Matched() {
		return MatchResult{
			Status:    MatchAlreadyMatched,
			Groups:    snap.MatchedGroups,
			Unmatched: snap.Unmatched,
		}, nil
	}

	participants, err := g.directory.GetAttributesBatch(ctx, snap.Participants)
	if err != nil {
		return MatchResult{}, err
	}

	if len(participants) < snap.MinPlayers {
		return MatchResult{
			Status:    MatchInsufficient,
			Unmatched: snap.Participants,
		}, nil
	}

	// CPU-bound and side-effect free; deliberately outside the critical
	// section.
	groups, unmatchedParts := g.engine.FormGroups(participants, snap.Preferences, snap.MinPlayers, snap.MaxPlayers)

	matched := make([]models.MatchedGroup, len(groups))
	groupIDs := make([][]primitive.ObjectID, len(groups))
	for i, grp := range groups {
		ids := grp.MemberIDs()
		matched[i] = models.MatchedGroup{Members: ids}
		groupIDs[i] = ids
	}
	unmatchedIDs := make([]primitive.ObjectID, len(unmatchedParts))
	for i, p := range unmatchedParts {
		unmatchedIDs[i] = p.ID
	}

	return g.publish(ctx, sessionID, matched, groupIDs, unmatchedIDs)
}

// publish writes the partition under a re-acquired critical section,
// re-validating the one-shot guard and the session status so a concurrent
// trigger or a cancellation while computing cannot corrupt state. Either a
// full valid partition lands or nothing does.
func (g *Gate) publish(ctx context.Context, sessionID primitive.ObjectID, matched []models.MatchedGroup, groupIDs [][]primitive.ObjectID, unmatchedIDs []primitive.ObjectID) (MatchResult, error) {
	release := g.locks.acquire(sessionID.Hex())
	var existing MatchResult
	_, err := g.sessions.AtomicUpdate(ctx, sessionID, func(s *models.Session) error {
		if s.Matched() {
			existing = MatchResult{
				Status:    MatchAlreadyMatched,
				Groups:    s.MatchedGroups,
				Unmatched: s.Unmatched,
			}
			return errPublishSuperseded
		}
		if !s.MatchAllowed() {
			return ErrSessionClosed
		}
		now := time.Now().UTC()
		s.MatchedGroups = matched
		s.Unmatched = unmatchedIDs
		s.MatchedAt = &now
		return nil
	})
	release()

	switch {
	case errors.Is(err, errPublishSuperseded):
		return existing, nil
	case errors.Is(err, ErrSessionClosed):
		g.log.Info("formation result discarded: session left matchable status",
			zap.String("session_id", sessionID.Hex()))
		return MatchResult{Status: MatchDiscarded}, nil
	case err != nil:
		return MatchResult{}, err
	}

	g.bus.Publish(ctx, events.NewSessionMatched(sessionID, groupIDs, unmatchedIDs))
	g.log.Info("session matched",
		zap.String("session_id", sessionID.Hex()),
		zap.Int("groups", len(matched)),
		zap.Int("unmatched", len(unmatchedIDs)))

	return MatchResult{
		Status:    MatchComputed,
		Groups:    matched,
		Unmatched: unmatchedIDs,
	}, nil
}
