// Package workers holds background loops that run alongside the HTTP server.
package workers

import (
	"context"
	"sync"
	"time"

	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// SessionLifecycle is a background worker that advances sessions through
// their time windows: open sessions whose window has started move to
// in_progress, and in_progress sessions whose window has ended move to
// completed.
type SessionLifecycle struct {
	sessions *sessionstore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSessionLifecycle creates a lifecycle worker that ticks at the given
// interval.
func NewSessionLifecycle(store *sessionstore.Store, logger *zap.Logger, interval time.Duration) *SessionLifecycle {
	return &SessionLifecycle{
		sessions: store,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background lifecycle loop.
func (w *SessionLifecycle) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session lifecycle worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *SessionLifecycle) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("session lifecycle worker stopped")
}

func (w *SessionLifecycle) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.advance()
		}
	}
}

func (w *SessionLifecycle) advance() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	now := time.Now().UTC()

	started, err := w.sessions.StartDue(ctx, now)
	if err != nil {
		w.log.Error("failed to start due sessions", zap.Error(err))
	} else if started > 0 {
		w.log.Info("started due sessions", zap.Int64("count", started))
	}

	completed, err := w.sessions.CompleteDue(ctx, now)
	if err != nil {
		w.log.Error("failed to complete due sessions", zap.Error(err))
	} else if completed > 0 {
		w.log.Info("completed due sessions", zap.Int64("count", completed))
	}
}
