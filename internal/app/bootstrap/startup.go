// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	sessionstore "github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/store/sessions"
	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// lifecycleWorker is started here and stopped in Shutdown.
var lifecycleWorker *workers.SessionLifecycle

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. The
// session lifecycle worker begins scanning here so time-window transitions
// apply even before the first request arrives.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	store := sessionstore.New(deps.MongoDatabase)
	lifecycleWorker = workers.NewSessionLifecycle(store, logger, appCfg.LifecycleInterval)
	lifecycleWorker.Start()
	return nil
}
