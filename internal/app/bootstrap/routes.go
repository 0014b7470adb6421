// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/enrollment"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/events"
	healthfeature "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/features/health"
	sessionsfeature "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/features/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/matching"
	auditstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/audit"
	participantstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/participants"
	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The matchmaker wires its stores, the
// formation engine, the enrollment gate, and the event bus here, then mounts
// the health and session feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	sessions := sessionstore.New(deps.MongoDatabase)
	participants := participantstore.New(deps.MongoDatabase)
	audit := auditstore.New(deps.MongoDatabase)

	bus := events.NewInProcBus(logger)

	weights := matching.Weights{
		Skill:        float64(appCfg.WeightSkill) / 100.0,
		Age:          float64(appCfg.WeightAge) / 100.0,
		Availability: float64(appCfg.WeightAvailability) / 100.0,
	}
	engine := matching.NewEngine(matching.NewEvaluator(weights))

	gate := enrollment.NewGate(sessions, participants, audit, bus, engine, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Session management, enrollment, and matching API
	sessionsHandler := sessionsfeature.NewHandler(sessions, gate, logger)
	sessionsHandler.DefaultMaxGroups = appCfg.DefaultMaxGroups
	r.Mount("/sessions", sessionsfeature.Routes(sessionsHandler))

	return r, nil
}
