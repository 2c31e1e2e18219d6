// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/activityhub/internal/app/store/users"
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// ActivityHub uses it to guarantee an admin account exists: an existing
// user matching admin_email is promoted, otherwise one is created when
// admin_password is provided.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}

	users := userstore.New(deps.KV)

	u, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	switch {
	case err == nil:
		if u.IsAdmin() {
			return nil
		}
		if _, err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin user: %w", err)
		}
		logger.Info("promoted existing user to admin",
			zap.String("user_id", u.ID),
			zap.String("email", appCfg.AdminEmail))
		return nil

	case errors.Is(err, userstore.ErrNotFound):
		if appCfg.AdminPassword == "" {
			logger.Warn("admin user does not exist and admin_password is not set; skipping creation",
				zap.String("email", appCfg.AdminEmail))
			return nil
		}
		hash, err := auth.HashPassword(appCfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		created, err := users.Create(ctx, "admin", appCfg.AdminEmail, hash, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		logger.Info("created admin user",
			zap.String("user_id", created.ID),
			zap.String("email", appCfg.AdminEmail))
		return nil

	default:
		return fmt.Errorf("look up admin user: %w", err)
	}
}
