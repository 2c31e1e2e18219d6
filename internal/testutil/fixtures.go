package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/store/kv"
	membershipstore "github.com/dalemusser/activityhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/activityhub/internal/app/store/users"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data over an
// in-memory key-value store.
type Fixtures struct {
	db *kv.Memory
	t  *testing.T

	Activities  *activitystore.Store
	Users       *userstore.Store
	Memberships *membershipstore.Store
}

// NewFixtures creates a Fixtures instance backed by a fresh in-memory
// store.
func NewFixtures(t *testing.T) *Fixtures {
	t.Helper()
	db := kv.NewMemory()
	return &Fixtures{
		db:          db,
		t:           t,
		Activities:  activitystore.New(db),
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
	}
}

// DB returns the underlying store for direct access in tests.
func (f *Fixtures) DB() *kv.Memory {
	return f.db
}

// CreateActivity creates a test activity dated a week out with the given
// title and capacity.
func (f *Fixtures) CreateActivity(ctx context.Context, title string, maxParticipants int) models.Activity {
	f.t.Helper()
	a, err := f.Activities.Create(ctx, title, "test description", "Test Hall",
		time.Now().Add(7*24*time.Hour).UTC(), maxParticipants)
	if err != nil {
		f.t.Fatalf("create activity %q: %v", title, err)
	}
	return a
}

// CreatePastActivity creates a test activity whose date is already in
// the past, so registration and cancellation are locked.
func (f *Fixtures) CreatePastActivity(ctx context.Context, title string, maxParticipants int) models.Activity {
	f.t.Helper()
	a, err := f.Activities.Create(ctx, title, "test description", "Test Hall",
		time.Now().Add(-48*time.Hour).UTC(), maxParticipants)
	if err != nil {
		f.t.Fatalf("create past activity %q: %v", title, err)
	}
	return a
}

// CreateUser creates a test user with the given username and role. The
// email is derived from the username; the stored hash is a placeholder,
// so login-path tests should mint their own hash.
func (f *Fixtures) CreateUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()
	u, err := f.Users.Create(ctx, username, username+"@test.com", "not-a-real-hash", role)
	if err != nil {
		f.t.Fatalf("create user %q: %v", username, err)
	}
	return u
}
