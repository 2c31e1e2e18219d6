package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/store/kv"
	membershipstore "github.com/dalemusser/activityhub/internal/app/store/memberships"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"go.uber.org/zap"
)

type testEnv struct {
	activities  *activitystore.Store
	memberships *membershipstore.Store
	coordinator *enroll.Coordinator
	service     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := kv.NewMemory()
	activities := activitystore.New(db)
	memberships := membershipstore.New(db)
	coordinator := enroll.New(activities, memberships, nil, zap.NewNop())
	return &testEnv{
		activities:  activities,
		memberships: memberships,
		coordinator: coordinator,
		service:     New(activities, coordinator, zap.NewNop()),
	}
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.service.Create(context.Background(), CreateInput{
		Title:           "  Chess Club  ",
		Description:     "weekly games",
		Location:        "Room 12",
		Date:            "2030-05-01",
		MaxParticipants: 8,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Title != "Chess Club" {
		t.Errorf("Title = %q, want trimmed %q", a.Title, "Chess Club")
	}
	if a.Date.Year() != 2030 || a.Date.Month() != time.May || a.Date.Day() != 1 {
		t.Errorf("Date = %v, want 2030-05-01", a.Date)
	}
	if len(a.Participants) != 0 {
		t.Errorf("roster = %v, want empty", a.Participants)
	}
}

func TestCreate_SanitizesMarkup(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.service.Create(context.Background(), CreateInput{
		Title:           `Movie Night <script>alert("x")</script>`,
		MaxParticipants: 5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Title != "Movie Night" {
		t.Errorf("Title = %q, want script stripped", a.Title)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"rfc3339", "2030-05-01T10:00:00Z"},
		{"datetime-local", "2030-05-01T10:00"},
		{"date only", "2030-05-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeDate(tt.raw)
			if got.Year() != 2030 || got.Month() != time.May || got.Day() != 1 {
				t.Errorf("normalizeDate(%q) = %v, want 2030-05-01", tt.raw, got)
			}
		})
	}
}

func TestNormalizeDate_FallbackToTomorrow(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-date", "31/12/2030"} {
		got := normalizeDate(raw)
		if !got.After(time.Now()) {
			t.Errorf("normalizeDate(%q) = %v, want a future time", raw, got)
		}
	}
}

func TestEdit_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Title: "Old", Location: "Hall A", MaxParticipants: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "New"
	got, err := env.service.Edit(ctx, a.ID, EditInput{Title: &title})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.Title != "New" {
		t.Errorf("Title = %q, want %q", got.Title, "New")
	}
	if got.Location != "Hall A" {
		t.Errorf("Location = %q, want untouched %q", got.Location, "Hall A")
	}
}

func TestEdit_NotFound(t *testing.T) {
	env := newTestEnv(t)

	title := "x"
	_, err := env.service.Edit(context.Background(), "99999", EditInput{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEdit_RejectsCapacityBelowEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Title: "Full", MaxParticipants: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, u := range []string{"u-1", "u-2"} {
		if _, err := env.coordinator.Register(ctx, a.ID, u); err != nil {
			t.Fatalf("Register %s: %v", u, err)
		}
	}

	one := 1
	_, err = env.service.Edit(ctx, a.ID, EditInput{MaxParticipants: &one})
	if !errors.Is(err, ErrCapacityBelowEnrollment) {
		t.Errorf("err = %v, want ErrCapacityBelowEnrollment", err)
	}

	// Lowering to exactly the enrollment is allowed.
	two := 2
	got, err := env.service.Edit(ctx, a.ID, EditInput{MaxParticipants: &two})
	if err != nil {
		t.Fatalf("Edit to enrollment count: %v", err)
	}
	if got.MaxParticipants != 2 {
		t.Errorf("MaxParticipants = %d, want 2", got.MaxParticipants)
	}
}

func TestDelete_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Title: "Doomed", MaxParticipants: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.coordinator.Register(ctx, a.ID, "u-1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := env.service.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.activities.Get(ctx, a.ID); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if ok, _ := env.memberships.Exists(ctx, "u-1", a.ID); ok {
		t.Error("membership entry survived the delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.Delete(context.Background(), "99999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.service.Create(ctx, CreateInput{Title: "Roster", MaxParticipants: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, u := range []string{"u-2", "u-1"} {
		if _, err := env.coordinator.Register(ctx, a.ID, u); err != nil {
			t.Fatalf("Register %s: %v", u, err)
		}
	}

	roster, err := env.service.Participants(ctx, a.ID)
	if err != nil {
		t.Fatalf("Participants: %v", err)
	}
	if len(roster) != 2 || roster[0] != "u-2" || roster[1] != "u-1" {
		t.Errorf("roster = %v, want [u-2 u-1]", roster)
	}

	if _, err := env.service.Participants(ctx, "99999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
