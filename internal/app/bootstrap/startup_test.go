package bootstrap

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/activityhub/internal/app/store/kv"
	userstore "github.com/dalemusser/activityhub/internal/app/store/users"
	"github.com/dalemusser/activityhub/internal/domain/models"
)

func testDeps() DBDeps {
	return DBDeps{KV: kv.NewMemory()}
}

func TestStartup_NoAdminEmail_NoOp(t *testing.T) {
	deps := testDeps()

	err := Startup(context.Background(), nil, AppConfig{}, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("Startup: %v", err)
	}
}

func TestStartup_CreatesAdminUser(t *testing.T) {
	deps := testDeps()
	cfg := AppConfig{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-pass1",
	}

	if err := Startup(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	users := userstore.New(deps.KV)
	u, err := users.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("expected admin user to exist: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", u.Role, models.RoleAdmin)
	}
}

func TestStartup_PromotesExistingUser(t *testing.T) {
	deps := testDeps()
	users := userstore.New(deps.KV)

	existing, err := users.Create(context.Background(), "carol", "carol@example.com", "hash", models.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	cfg := AppConfig{AdminEmail: "carol@example.com"}
	if err := Startup(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	u, err := users.GetByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", u.Role, models.RoleAdmin)
	}
}

func TestStartup_MissingPassword_SkipsCreation(t *testing.T) {
	deps := testDeps()
	cfg := AppConfig{AdminEmail: "admin@example.com"}

	if err := Startup(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	users := userstore.New(deps.KV)
	if _, err := users.GetByEmail(context.Background(), "admin@example.com"); err == nil {
		t.Error("expected no admin user to be created without a password")
	}
}

func TestStartup_AdminAlreadyAdmin_NoOp(t *testing.T) {
	deps := testDeps()
	users := userstore.New(deps.KV)

	if _, err := users.Create(context.Background(), "root", "root@example.com", "hash", models.RoleAdmin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	cfg := AppConfig{AdminEmail: "root@example.com"}
	if err := Startup(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
}
