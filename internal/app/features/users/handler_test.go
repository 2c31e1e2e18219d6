package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	usersfeature "github.com/dalemusser/activityhub/internal/app/features/users"
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"github.com/dalemusser/activityhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*testutil.Fixtures, *auth.Manager, chi.Router) {
	t.Helper()
	f := testutil.NewFixtures(t)
	mgr, err := auth.NewManager(
		"test-jwt-secret-must-be-32-chars-long!!",
		time.Hour,
		"test-refresh",
		"test-cookie-key-must-be-32-chars-long!!!",
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}
	coordinator := enroll.New(f.Activities, f.Memberships, nil, zap.NewNop())
	h := usersfeature.NewHandler(f.Users, mgr, coordinator, zap.NewNop())
	return f, mgr, usersfeature.Routes(h)
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegister_CreatesUserAndReturnsToken(t *testing.T) {
	_, mgr, router := newTestHandler(t)

	rec := postJSON(t, router, "/register",
		`{"username":"alice","email":"alice@example.com","password":"password1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Role != "user" {
		t.Errorf("role = %q, want %q", resp.User.Role, "user")
	}

	// The token is usable.
	u, err := mgr.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("token username = %q, want %q", u.Username, "alice")
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","email":"a@b.com","password":"password1"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"password1"}`},
		{"weak password", `{"username":"alice","email":"a@b.com","password":"short"}`},
		{"no digits", `{"username":"alice","email":"a@b.com","password":"passwords"}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, router := newTestHandler(t)
			rec := postJSON(t, router, "/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, _, router := newTestHandler(t)

	first := postJSON(t, router, "/register",
		`{"username":"alice","email":"alice@example.com","password":"password1"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", first.Code)
	}

	second := postJSON(t, router, "/register",
		`{"username":"alice2","email":"alice@example.com","password":"password1"}`)
	if second.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", second.Code, http.StatusConflict)
	}
}

func TestLogin_EmailAndUsername(t *testing.T) {
	_, _, router := newTestHandler(t)

	rec := postJSON(t, router, "/register",
		`{"username":"bob","email":"bob@example.com","password":"password1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	for _, identifier := range []string{"bob@example.com", "bob", "BOB"} {
		rec := postJSON(t, router, "/login",
			`{"identifier":"`+identifier+`","password":"password1"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("login with %q: status = %d, want %d", identifier, rec.Code, http.StatusOK)
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	_, _, router := newTestHandler(t)

	rec := postJSON(t, router, "/register",
		`{"username":"carol","email":"carol@example.com","password":"password1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	wrongPass := postJSON(t, router, "/login",
		`{"identifier":"carol","password":"wrong-pass1"}`)
	if wrongPass.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want %d", wrongPass.Code, http.StatusUnauthorized)
	}

	noUser := postJSON(t, router, "/login",
		`{"identifier":"nobody","password":"password1"}`)
	if noUser.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want %d", noUser.Code, http.StatusUnauthorized)
	}

	// Both failures look identical to the caller.
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Error("expected identical bodies for unknown user and wrong password")
	}
}

func TestRefreshToken(t *testing.T) {
	_, _, router := newTestHandler(t)

	reg := postJSON(t, router, "/register",
		`{"username":"dave","email":"dave@example.com","password":"password1"}`)
	if reg.Code != http.StatusCreated {
		t.Fatalf("register status = %d", reg.Code)
	}
	cookies := reg.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a refresh cookie from register")
	}

	req := httptest.NewRequest("POST", "/refresh-token", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a fresh token")
	}
}

func TestRefreshToken_NoCookie(t *testing.T) {
	_, _, router := newTestHandler(t)

	req := httptest.NewRequest("POST", "/refresh-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLogout_ClearsRefreshCookie(t *testing.T) {
	_, _, router := newTestHandler(t)

	rec := postJSON(t, router, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("expected an expired refresh cookie, got %v", cookies)
	}
}

func TestMyActivities(t *testing.T) {
	f, _, router := newTestHandler(t)
	ctx := context.Background()

	a := f.CreateActivity(ctx, "Chess Club", 5)
	coordinator := enroll.New(f.Activities, f.Memberships, nil, zap.NewNop())
	if _, err := coordinator.Register(ctx, a.ID, "u-member"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	req := httptest.NewRequest("GET", "/activities", nil)
	req = testutil.AsUser(req, testutil.RegularUser())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var got []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("activities = %v, want [%s]", got, a.ID)
	}
}

func TestMyActivities_RequiresAuth(t *testing.T) {
	_, _, router := newTestHandler(t)

	req := httptest.NewRequest("GET", "/activities", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
