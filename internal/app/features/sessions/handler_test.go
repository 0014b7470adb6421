package sessions_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/enrollment"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/events"
	sessionsfeature "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/features/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/matching"
	auditstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/audit"
	participantstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/participants"
	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testAPI struct {
	router   http.Handler
	sessions *sessionstore.Store
	audit    *auditstore.Store
	fixtures *testutil.Fixtures
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.SetupTestDB(t)

	sessions := sessionstore.New(db)
	participants := participantstore.New(db)
	audit := auditstore.New(db)
	bus := events.NewInProcBus(zap.NewNop())
	engine := matching.NewEngine(matching.NewEvaluator(matching.DefaultWeights))
	gate := enrollment.NewGate(sessions, participants, audit, bus, engine, zap.NewNop())

	handler := sessionsfeature.NewHandler(sessions, gate, zap.NewNop())
	handler.DefaultMaxGroups = models.DefaultMaxGroups

	return &testAPI{
		router:   sessionsfeature.Routes(handler),
		sessions: sessions,
		audit:    audit,
		fixtures: testutil.NewFixtures(t, db),
	}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func createPayload() map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"title":         "Friday Pickup",
		"activity_type": "basketball",
		"skill_level":   5,
		"time_window": map[string]any{
			"start": now.Add(time.Hour).Format(time.RFC3339),
			"end":   now.Add(3 * time.Hour).Format(time.RFC3339),
		},
		"min_players": 2,
		"max_players": 2,
		"organizer":   primitive.NewObjectID().Hex(),
	}
}

func TestCreate_Session(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, "POST", "/", createPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if created.Status != models.StatusDraft {
		t.Errorf("status: got %q, want draft", created.Status)
	}
	if created.MaxGroups != models.DefaultMaxGroups {
		t.Errorf("max_groups: got %d, want default", created.MaxGroups)
	}
}

func TestCreate_SanitizesTitle(t *testing.T) {
	api := setupAPI(t)

	payload := createPayload()
	payload["title"] = "Friday <script>alert('x')</script>Pickup"
	rec := api.do(t, "POST", "/", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var created models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if created.Title != "Friday Pickup" {
		t.Errorf("title: got %q, want markup stripped", created.Title)
	}
}

func TestCreate_Validation(t *testing.T) {
	api := setupAPI(t)

	missingTitle := createPayload()
	missingTitle["title"] = "<script>only markup</script>"
	if rec := api.do(t, "POST", "/", missingTitle); rec.Code != http.StatusBadRequest {
		t.Errorf("markup-only title: got %d, want 400", rec.Code)
	}

	badOrganizer := createPayload()
	badOrganizer["organizer"] = "not-an-id"
	if rec := api.do(t, "POST", "/", badOrganizer); rec.Code != http.StatusBadRequest {
		t.Errorf("bad organizer: got %d, want 400", rec.Code)
	}

	badBounds := createPayload()
	badBounds["min_players"] = 1
	if rec := api.do(t, "POST", "/", badBounds); rec.Code != http.StatusBadRequest {
		t.Errorf("min_players 1: got %d, want 400", rec.Code)
	}

	badWindow := createPayload()
	badWindow["time_window"] = map[string]any{
		"start": time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		"end":   time.Now().UTC().Format(time.RFC3339),
	}
	if rec := api.do(t, "POST", "/", badWindow); rec.Code != http.StatusBadRequest {
		t.Errorf("inverted window: got %d, want 400", rec.Code)
	}
}

func TestGet_NotFound(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, "GET", "/"+primitive.NewObjectID().Hex(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}

}

func TestGet_MalformedID(t *testing.T) {
	// The id check fires before any store access, so a bare handler works.
	handler := sessionsfeature.NewHandler(nil, nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/sessions/not-an-id", nil)
	req = testutil.WithChiURLParam(req, "sessionID", "not-an-id")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestEnrollMatchFlow(t *testing.T) {
	api := setupAPI(t)
	ctx := testutil.TestContext(t)

	rec := api.do(t, "POST", "/", createPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d (%s)", rec.Code, rec.Body.String())
	}
	var sess models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	base := "/" + sess.ID.Hex()

	// Enrollment before opening is rejected.
	user1 := api.fixtures.CreateUserProfile(ctx, "One", 5, 25, models.GenderFemale)
	if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": user1.ID.Hex()}); rec.Code != http.StatusConflict {
		t.Errorf("enroll before open: got %d, want 409", rec.Code)
	}

	if rec := api.do(t, "POST", base+"/open", nil); rec.Code != http.StatusOK {
		t.Fatalf("open: %d (%s)", rec.Code, rec.Body.String())
	}

	if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": user1.ID.Hex()}); rec.Code != http.StatusOK {
		t.Fatalf("enroll: %d (%s)", rec.Code, rec.Body.String())
	}
	// Duplicate enrollment conflicts.
	if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": user1.ID.Hex()}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate enroll: got %d, want 409", rec.Code)
	}

	user2 := api.fixtures.CreateUserProfile(ctx, "Two", 5, 26, models.GenderFemale)
	if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": user2.ID.Hex()}); rec.Code != http.StatusOK {
		t.Fatalf("enroll: %d (%s)", rec.Code, rec.Body.String())
	}

	rec = api.do(t, "POST", base+"/match", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("match: %d (%s)", rec.Code, rec.Body.String())
	}
	var result enrollment.MatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse match result: %v", err)
	}
	if result.Status != enrollment.MatchComputed {
		t.Fatalf("match status: got %q, want computed", result.Status)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Members) != 2 {
		t.Fatalf("expected one group of two, got %+v", result.Groups)
	}

	rec = api.do(t, "GET", base+"/match", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get match: %d", rec.Code)
	}
	var state enrollment.MatchState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("parse match state: %v", err)
	}
	if len(state.Groups) != 1 || state.MatchedAt == nil {
		t.Errorf("unexpected match state: %+v", state)
	}
}

func TestRematch_RecordsAudit(t *testing.T) {
	api := setupAPI(t)
	ctx := testutil.TestContext(t)

	rec := api.do(t, "POST", "/", createPayload())
	var sess models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	base := "/" + sess.ID.Hex()
	api.do(t, "POST", base+"/open", nil)

	for i := 0; i < 2; i++ {
		u := api.fixtures.CreateUserProfile(ctx, fmt.Sprintf("Player %d", i), 5, 25, models.GenderFemale)
		if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": u.ID.Hex()}); rec.Code != http.StatusOK {
			t.Fatalf("enroll: %d", rec.Code)
		}
	}
	if rec := api.do(t, "POST", base+"/match", nil); rec.Code != http.StatusOK {
		t.Fatalf("match: %d", rec.Code)
	}

	actor := primitive.NewObjectID()
	rec = api.do(t, "POST", base+"/rematch", map[string]string{"actor": actor.Hex(), "reason": "uneven teams"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rematch: %d (%s)", rec.Code, rec.Body.String())
	}

	records, err := api.audit.ListBySession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(records))
	}
	if records[0].Actor != actor || records[0].Reason != "uneven teams" {
		t.Errorf("unexpected audit record: %+v", records[0])
	}
}

func TestCancel_StopsEnrollment(t *testing.T) {
	api := setupAPI(t)
	ctx := testutil.TestContext(t)

	rec := api.do(t, "POST", "/", createPayload())
	var sess models.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	base := "/" + sess.ID.Hex()
	api.do(t, "POST", base+"/open", nil)

	if rec := api.do(t, "POST", base+"/cancel", nil); rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d (%s)", rec.Code, rec.Body.String())
	}
	// Cancelled is terminal.
	if rec := api.do(t, "POST", base+"/open", nil); rec.Code != http.StatusConflict {
		t.Errorf("reopen cancelled: got %d, want 409", rec.Code)
	}

	u := api.fixtures.CreateUserProfile(ctx, "Late", 5, 25, models.GenderMale)
	if rec := api.do(t, "POST", base+"/enroll", map[string]string{"user_id": u.ID.Hex()}); rec.Code != http.StatusConflict {
		t.Errorf("enroll after cancel: got %d, want 409", rec.Code)
	}
}
