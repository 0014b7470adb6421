package workers_test

import (
	"testing"
	"time"

	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/workers"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestSessionLifecycle_AdvancesDueSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx := testutil.TestContext(t)

	now := time.Now().UTC()
	due := models.Session{
		Title:        "Due",
		ActivityType: "pickup",
		TimeWindow:   models.TimeWindow{Start: now.Add(-time.Minute), End: now.Add(time.Hour)},
		MinPlayers:   2,
		MaxPlayers:   4,
		Organizer:    primitive.NewObjectID(),
		Status:       models.StatusOpen,
	}
	created, err := store.Create(ctx, due)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	worker := workers.NewSessionLifecycle(store, zap.NewNop(), 10*time.Millisecond)
	worker.Start()
	defer worker.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		loaded, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if loaded.Status == models.StatusInProgress {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("worker did not advance the due session in time")
}

func TestSessionLifecycle_StopTerminates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)

	worker := workers.NewSessionLifecycle(store, zap.NewNop(), 10*time.Millisecond)
	worker.Start()

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
