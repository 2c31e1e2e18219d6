// internal/app/features/users/handler.go

// Package users serves account endpoints: registration, login, logout,
// token refresh, and the signed-in user's activity list.
package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/activityhub/internal/app/store/users"
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"github.com/dalemusser/activityhub/internal/app/system/httpjson"
	"github.com/dalemusser/activityhub/internal/app/system/inputval"
	"github.com/dalemusser/activityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/activityhub/internal/app/system/timeouts"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies for the user endpoints.
type Handler struct {
	Users       *userstore.Store
	Auth        *auth.Manager
	Coordinator *enroll.Coordinator
	Limits      *ratelimit.LoginLimiter
	Log         *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(users *userstore.Store, authManager *auth.Manager, coordinator *enroll.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Auth:        authManager,
		Coordinator: coordinator,
		Limits:      ratelimit.NewLoginLimiter(),
		Log:         logger,
	}
}

// userView is the user shape returned to clients. The password hash
// never leaves the store layer.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func viewOf(u models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Register handles POST /users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if !inputval.IsValidUsername(body.Username) {
		httpjson.Error(w, http.StatusBadRequest, "username must be 3-30 letters, digits, underscores, or hyphens")
		return
	}
	if !inputval.IsValidEmail(body.Email) {
		httpjson.Error(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if !inputval.IsValidPassword(body.Password) {
		httpjson.Error(w, http.StatusBadRequest, "password must be at least 8 characters with a letter and a number")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, body.Username, body.Email, hash, models.RoleUser)
	if errors.Is(err, userstore.ErrDuplicate) {
		httpjson.Error(w, http.StatusConflict, "email or username already in use")
		return
	}
	if err != nil {
		h.Log.Error("user create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := h.Auth.Token(u)
	if err != nil {
		h.Log.Error("token mint failed", zap.String("user_id", u.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := h.Auth.IssueRefreshCookie(w, u.ID); err != nil {
		h.Log.Warn("refresh cookie issue failed", zap.String("user_id", u.ID), zap.Error(err))
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	httpjson.Respond(w, http.StatusCreated, authResponse{Token: token, User: viewOf(u)})
}

// Login handles POST /users/login. The identifier may be an email or a
// username. Bad identifier and bad password return the same message so
// the endpoint does not confirm which accounts exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if ok, msg := h.Limits.Check(r, body.Identifier); !ok {
		httpjson.Error(w, http.StatusTooManyRequests, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByIdentifier(ctx, body.Identifier)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("user lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, body.Password) {
		httpjson.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.Limits.ResetIdentifier(body.Identifier)

	token, err := h.Auth.Token(u)
	if err != nil {
		h.Log.Error("token mint failed", zap.String("user_id", u.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err := h.Auth.IssueRefreshCookie(w, u.ID); err != nil {
		h.Log.Warn("refresh cookie issue failed", zap.String("user_id", u.ID), zap.Error(err))
	}

	h.Log.Info("user logged in", zap.String("user_id", u.ID))
	httpjson.Respond(w, http.StatusOK, authResponse{Token: token, User: viewOf(u)})
}

// Logout handles POST /users/logout. Access tokens are stateless, so
// logout clears the refresh cookie and lets the access token age out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearRefreshCookie(w)
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RefreshToken handles POST /users/refresh-token, minting a fresh access
// token from the signed refresh cookie.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Auth.ReadRefreshCookie(r)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "refresh token missing or invalid")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		h.Auth.ClearRefreshCookie(w)
		httpjson.Error(w, http.StatusUnauthorized, "refresh token missing or invalid")
		return
	}
	if err != nil {
		h.Log.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "token refresh failed")
		return
	}

	token, err := h.Auth.Token(u)
	if err != nil {
		h.Log.Error("token mint failed", zap.String("user_id", u.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "token refresh failed")
		return
	}

	httpjson.Respond(w, http.StatusOK, authResponse{Token: token, User: viewOf(u)})
}

// MyActivities handles GET /users/activities, returning the activities
// the signed-in user is registered for.
func (h *Handler) MyActivities(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication token missing or invalid")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	activities, err := h.Coordinator.UserActivities(ctx, u.ID)
	if err != nil {
		h.Log.Error("user activities lookup failed", zap.String("user_id", u.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activities")
		return
	}
	httpjson.Respond(w, http.StatusOK, activities)
}
