// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to ActivityHub lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token configuration
	JWTSecret        string        // Secret key for signing access tokens (must be strong in production)
	JWTExpiry        time.Duration // Access token lifetime
	RefreshCookieName string       // Cookie name for the refresh token
	RefreshCookieKey  string       // Secret key for signing the refresh cookie

	// Admin bootstrap
	AdminEmail    string // Email of the admin user (promotes/creates on startup)
	AdminPassword string // Initial password when the admin user has to be created

	// Static assets
	StaticDir string // Frontend directory (index page at /, assets under /static)
}
