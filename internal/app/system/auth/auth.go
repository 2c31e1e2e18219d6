// internal/app/system/auth/auth.go

// Package auth provides stateless Bearer-token authentication: JWT
// mint/verify, the request-context user, the route gates, and the signed
// refresh-token cookie. Password hashing lives here too so the hash
// parameters have one home.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/activityhub/internal/app/system/normalize"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what a verified token resolves to and what we inject
// into r.Context(). IDs and roles are normalized once at parse time so
// downstream code can compare them verbatim.
type SessionUser struct {
	ID       string
	Username string
	Role     string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context without a token.
// Test use only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Token manager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

const refreshCookieMaxAge = 30 * 24 * time.Hour

// Manager mints and verifies access tokens and manages the refresh
// cookie. Safe for concurrent use.
type Manager struct {
	secret     []byte
	expiry     time.Duration
	cookieName string
	cookies    *securecookie.SecureCookie
	secure     bool
	log        *zap.Logger
}

// NewManager builds a Manager. jwtSecret signs access tokens (HS256);
// cookieKey signs the refresh cookie; both must be ≥32 random chars.
func NewManager(jwtSecret string, expiry time.Duration, cookieName, cookieKey string, secure bool, logger *zap.Logger) (*Manager, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥32 random chars")
	}
	if len(jwtSecret) < 32 {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(jwtSecret)))
	}
	if cookieKey == "" {
		return nil, fmt.Errorf("refresh cookie key is empty; provide ≥32 random chars")
	}
	if cookieName == "" {
		cookieName = "activityhub-refresh"
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Manager{
		secret:     []byte(jwtSecret),
		expiry:     expiry,
		cookieName: cookieName,
		cookies:    securecookie.New([]byte(cookieKey), nil),
		secure:     secure,
		log:        logger,
	}, nil
}

// Token mints a signed access token for the user.
func (m *Manager) Token(u models.User) (string, error) {
	now := time.Now()
	c := claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Parse verifies a token string and returns the user it names.
func (m *Manager) Parse(tokenString string) (*SessionUser, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &SessionUser{
		ID:       normalize.UserID(c.Subject),
		Username: c.Username,
		Role:     normalize.Role(c.Role),
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Refresh-token cookie                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

const refreshCookiePath = "/users/refresh-token"

// IssueRefreshCookie sets a signed, HttpOnly cookie naming the user. The
// refresh endpoint reads it back to mint a fresh access token.
func (m *Manager) IssueRefreshCookie(w http.ResponseWriter, userID string) error {
	encoded, err := m.cookies.Encode(m.cookieName, userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     refreshCookiePath,
		MaxAge:   int(refreshCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ReadRefreshCookie returns the user id carried by a valid refresh cookie.
func (m *Manager) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", err
	}
	var userID string
	if err := m.cookies.Decode(m.cookieName, cookie.Value, &userID); err != nil {
		return "", err
	}
	return normalize.UserID(userID), nil
}

// ClearRefreshCookie expires the refresh cookie.
func (m *Manager) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadTokenUser injects the user into context when the request carries a
// valid Bearer token. Requests without one continue anonymously; the
// Require* gates decide what that means per route.
func (m *Manager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			u, err := m.Parse(strings.TrimPrefix(header, "Bearer "))
			if err == nil {
				r = withUser(r, u)
			} else {
				m.log.Debug("bearer token rejected", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func denyJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RequireSignedIn ensures there is a user in context (set by LoadTokenUser).
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			denyJSON(w, http.StatusUnauthorized, "authentication token missing or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the user in context holds one of the allowed roles.
// Missing user → 401; signed in but wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "authentication token missing or invalid")
				return
			}
			if _, has := set[normalize.Role(u.Role)]; !has {
				denyJSON(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Passwords                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

const bcryptCost = 10

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
