// internal/app/features/activities/handler.go

// Package activities serves the activity endpoints: browsing, the admin
// lifecycle (create, edit, delete), and enrollment (register, cancel,
// roster).
package activities

import (
	"context"
	"errors"
	"net/http"

	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"github.com/dalemusser/activityhub/internal/app/system/httpjson"
	"github.com/dalemusser/activityhub/internal/app/system/inputval"
	"github.com/dalemusser/activityhub/internal/app/system/lifecycle"
	"github.com/dalemusser/activityhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds dependencies for the activity endpoints.
type Handler struct {
	Activities  *activitystore.Store
	Lifecycle   *lifecycle.Service
	Coordinator *enroll.Coordinator
	Log         *zap.Logger
}

// NewHandler constructs an activities Handler.
func NewHandler(activities *activitystore.Store, lifecycleService *lifecycle.Service, coordinator *enroll.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Activities:  activities,
		Lifecycle:   lifecycleService,
		Coordinator: coordinator,
		Log:         logger,
	}
}

// enrollStatus maps a coordinator error to its HTTP status. Admission
// refusals are client errors; only unexpected store failures are 500s.
func enrollStatus(err error) int {
	switch {
	case errors.Is(err, enroll.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, enroll.ErrAlreadyStarted),
		errors.Is(err, enroll.ErrAlreadyRegistered),
		errors.Is(err, enroll.ErrNotRegistered),
		errors.Is(err, enroll.ErrNoCapacity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// List handles GET /activities.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	activities, err := h.Activities.List(ctx)
	if err != nil {
		h.Log.Error("activity list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activities")
		return
	}
	httpjson.Respond(w, http.StatusOK, activities)
}

// Get handles GET /activities/{activityID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "activityID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Activities.Get(ctx, id)
	if errors.Is(err, activitystore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "activity not found")
		return
	}
	if err != nil {
		h.Log.Error("activity get failed", zap.String("activity_id", id), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load activity")
		return
	}
	httpjson.Respond(w, http.StatusOK, a)
}

type activityBody struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	MaxParticipants int    `json:"maxParticipants"`
}

// Create handles POST /activities (admin only).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body activityBody
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if !inputval.IsValidActivityTitle(body.Title) {
		httpjson.Error(w, http.StatusBadRequest, "title is required and must be at most 200 characters")
		return
	}
	if !inputval.IsValidActivityText(body.Description) || !inputval.IsValidActivityText(body.Location) {
		httpjson.Error(w, http.StatusBadRequest, "description and location must be at most 2000 characters")
		return
	}
	if !inputval.IsValidMaxParticipants(body.MaxParticipants) {
		httpjson.Error(w, http.StatusBadRequest, "maxParticipants must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Lifecycle.Create(ctx, lifecycle.CreateInput{
		Title:           body.Title,
		Description:     body.Description,
		Location:        body.Location,
		Date:            body.Date,
		MaxParticipants: body.MaxParticipants,
	})
	if err != nil {
		h.Log.Error("activity create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create activity")
		return
	}
	httpjson.Respond(w, http.StatusCreated, a)
}

type editBody struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Location        *string `json:"location"`
	Date            *string `json:"date"`
	MaxParticipants *int    `json:"maxParticipants"`
}

// Edit handles PUT /activities/{activityID} (admin only). Absent fields
// are left unchanged.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "activityID")

	var body editBody
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.Title != nil && !inputval.IsValidActivityTitle(*body.Title) {
		httpjson.Error(w, http.StatusBadRequest, "title is required and must be at most 200 characters")
		return
	}
	if body.MaxParticipants != nil && !inputval.IsValidMaxParticipants(*body.MaxParticipants) {
		httpjson.Error(w, http.StatusBadRequest, "maxParticipants must be at least 1")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Lifecycle.Edit(ctx, id, lifecycle.EditInput{
		Title:           body.Title,
		Description:     body.Description,
		Location:        body.Location,
		Date:            body.Date,
		MaxParticipants: body.MaxParticipants,
	})
	if errors.Is(err, lifecycle.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "activity not found")
		return
	}
	if errors.Is(err, lifecycle.ErrCapacityBelowEnrollment) {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("activity edit failed", zap.String("activity_id", id), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update activity")
		return
	}
	httpjson.Respond(w, http.StatusOK, a)
}

// Delete handles DELETE /activities/{activityID} (admin only). Removes
// the activity and every membership entry referencing it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "activityID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.Lifecycle.Delete(ctx, id)
	if errors.Is(err, lifecycle.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "activity not found")
		return
	}
	if err != nil {
		h.Log.Error("activity delete failed", zap.String("activity_id", id), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete activity")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "activity deleted"})
}

// Register handles POST /activities/{activityID}/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication token missing or invalid")
		return
	}
	id := chi.URLParam(r, "activityID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Coordinator.Register(ctx, id, u.ID)
	if err != nil {
		status := enrollStatus(err)
		if status == http.StatusInternalServerError {
			h.Log.Error("registration failed",
				zap.String("activity_id", id),
				zap.String("user_id", u.ID),
				zap.Error(err))
			httpjson.Error(w, status, "registration failed")
			return
		}
		httpjson.Error(w, status, err.Error())
		return
	}
	httpjson.Respond(w, http.StatusOK, a)
}

// Cancel handles DELETE /activities/{activityID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication token missing or invalid")
		return
	}
	id := chi.URLParam(r, "activityID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Coordinator.Cancel(ctx, id, u.ID)
	if err != nil {
		status := enrollStatus(err)
		if status == http.StatusInternalServerError {
			h.Log.Error("cancellation failed",
				zap.String("activity_id", id),
				zap.String("user_id", u.ID),
				zap.Error(err))
			httpjson.Error(w, status, "cancellation failed")
			return
		}
		httpjson.Error(w, status, err.Error())
		return
	}
	httpjson.Respond(w, http.StatusOK, a)
}

// Participants handles GET /activities/{activityID}/participants (admin
// only), returning the roster in registration order.
func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "activityID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	roster, err := h.Lifecycle.Participants(ctx, id)
	if errors.Is(err, lifecycle.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "activity not found")
		return
	}
	if err != nil {
		h.Log.Error("participants lookup failed", zap.String("activity_id", id), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load participants")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{"participants": roster})
}
