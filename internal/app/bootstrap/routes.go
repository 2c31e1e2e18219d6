// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"path/filepath"

	activitiesfeature "github.com/dalemusser/activityhub/internal/app/features/activities"
	healthfeature "github.com/dalemusser/activityhub/internal/app/features/health"
	usersfeature "github.com/dalemusser/activityhub/internal/app/features/users"
	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/store/audit"
	membershipstore "github.com/dalemusser/activityhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/activityhub/internal/app/store/users"
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"github.com/dalemusser/activityhub/internal/app/system/lifecycle"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ActivityHub builds the stores over the key-value view, wires the
// enrollment coordinator and lifecycle service on top of them, and
// mounts the user and activity routers behind the token middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTExpiry,
		appCfg.RefreshCookieName, appCfg.RefreshCookieKey, secure, logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores over the key-value view.
	activities := activitystore.New(deps.KV)
	users := userstore.New(deps.KV)
	memberships := membershipstore.New(deps.KV)
	auditLog := audit.New(deps.KV)

	// The coordinator is the only writer of rosters and the membership
	// index; the lifecycle service delegates deletion to it.
	coordinator := enroll.New(activities, memberships, auditLog, logger)
	lifecycleSvc := lifecycle.New(activities, coordinator, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the token user into context if the
	// request carries a valid Bearer token. This makes the current user
	// available to all handlers via auth.CurrentUser(r).
	r.Use(authMgr.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static frontend: index page at the root, assets under /static with
	// pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", appCfg.StaticDir))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(appCfg.StaticDir, "index.html"))
	})

	// Accounts and the signed-in user's activity list
	usersHandler := usersfeature.NewHandler(users, authMgr, coordinator, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Activity browsing, lifecycle, and enrollment
	activitiesHandler := activitiesfeature.NewHandler(activities, lifecycleSvc, coordinator, logger)
	r.Mount("/activities", activitiesfeature.Routes(activitiesHandler))

	return r, nil
}
