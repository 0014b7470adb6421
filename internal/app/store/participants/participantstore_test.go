package participantstore_test

import (
	"errors"
	"testing"

	participantstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/participants"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGetAttributes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	ctx := testutil.TestContext(t)

	created, err := store.Create(ctx, models.UserProfile{
		Name:       "Jordan Reyes",
		SkillLevel: 7,
		Age:        29,
		Gender:     models.GenderNonBinary,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected folded name to be set")
	}

	loaded, err := store.GetAttributes(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAttributes failed: %v", err)
	}
	if loaded.SkillLevel != 7 || loaded.Age != 29 {
		t.Errorf("unexpected attributes: %+v", loaded)
	}

	_, err = store.GetAttributes(ctx, primitive.NewObjectID())
	if !errors.Is(err, participantstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetAttributesBatch_PreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	ctx := testutil.TestContext(t)

	var ids []primitive.ObjectID
	for i := 0; i < 4; i++ {
		p, err := store.Create(ctx, models.UserProfile{
			Name:       "Player",
			SkillLevel: i + 1,
			Age:        20 + i,
			Gender:     models.GenderFemale,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, p.ID)
	}

	// Request in reverse to confirm the roster order, not the query order,
	// drives the result.
	reversed := []primitive.ObjectID{ids[3], ids[2], ids[1], ids[0]}
	participants, err := store.GetAttributesBatch(ctx, reversed)
	if err != nil {
		t.Fatalf("GetAttributesBatch failed: %v", err)
	}
	if len(participants) != 4 {
		t.Fatalf("expected 4 participants, got %d", len(participants))
	}
	for i, p := range participants {
		if p.ID != reversed[i] {
			t.Errorf("position %d: got %s, want %s", i, p.ID.Hex(), reversed[i].Hex())
		}
		if p.JoinOrder != i {
			t.Errorf("position %d: JoinOrder %d", i, p.JoinOrder)
		}
	}
}

func TestStore_GetAttributesBatch_MissingProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	ctx := testutil.TestContext(t)

	p, err := store.Create(ctx, models.UserProfile{Name: "Known", SkillLevel: 5, Age: 30, Gender: models.GenderMale})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.GetAttributesBatch(ctx, []primitive.ObjectID{p.ID, primitive.NewObjectID()})
	if !errors.Is(err, participantstore.ErrMissingAttributes) {
		t.Fatalf("expected ErrMissingAttributes, got %v", err)
	}
}

func TestStore_GetAttributesBatch_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	ctx := testutil.TestContext(t)

	participants, err := store.GetAttributesBatch(ctx, nil)
	if err != nil {
		t.Fatalf("GetAttributesBatch failed: %v", err)
	}
	if participants != nil {
		t.Errorf("expected nil for empty roster, got %+v", participants)
	}
}
