// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the matchmaker.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, weight_skill, etc.
//   - Environment variables: MATCHMAKER_MONGO_URI, MATCHMAKER_WEIGHT_SKILL, etc.
//   - Command-line flags: --mongo_uri, --weight_skill, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "matchmaker", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Compatibility scoring weights as integer percentages; must sum to 100.
	{Name: "weight_skill", Default: 50, Desc: "Skill proximity weight (percent)"},
	{Name: "weight_age", Default: 25, Desc: "Age fit weight (percent)"},
	{Name: "weight_availability", Default: 25, Desc: "Availability overlap weight (percent)"},

	{Name: "default_max_groups", Default: models.DefaultMaxGroups, Desc: "Groups per session when the organizer sets none"},
	{Name: "lifecycle_interval", Default: "1m", Desc: "Session lifecycle worker scan interval (e.g., 30s, 1m)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have access
// to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MATCHMAKER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MATCHMAKER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		WeightSkill:        appValues.Int("weight_skill"),
		WeightAge:          appValues.Int("weight_age"),
		WeightAvailability: appValues.Int("weight_availability"),

		DefaultMaxGroups:  appValues.Int("default_max_groups"),
		LifecycleInterval: appValues.Duration("lifecycle_interval", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format and the weight sum are checked here so
// configuration mistakes surface before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	sum := appCfg.WeightSkill + appCfg.WeightAge + appCfg.WeightAvailability
	if sum != 100 {
		return fmt.Errorf("matching weights must sum to 100, got %d", sum)
	}
	if appCfg.WeightSkill < 0 || appCfg.WeightAge < 0 || appCfg.WeightAvailability < 0 {
		return fmt.Errorf("matching weights must be non-negative")
	}

	if appCfg.DefaultMaxGroups < 1 {
		return fmt.Errorf("default_max_groups must be at least 1")
	}
	if appCfg.LifecycleInterval < time.Second {
		return fmt.Errorf("lifecycle_interval must be at least 1s")
	}

	return nil
}
