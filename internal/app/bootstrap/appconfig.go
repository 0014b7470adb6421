// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports, TLS,
// logging level, and request limits. AppConfig is where everything specific
// to the matchmaker lives: database connection details, matching weights,
// and worker cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Matching weights as integer percentages; the three must sum to 100.
	WeightSkill        int
	WeightAge          int
	WeightAvailability int

	// DefaultMaxGroups caps groups per session when the organizer sets none.
	DefaultMaxGroups int

	// LifecycleInterval is how often the session lifecycle worker scans for
	// sessions whose time window has started or ended.
	LifecycleInterval time.Duration
}
