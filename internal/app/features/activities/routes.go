// internal/app/features/activities/routes.go
package activities

import (
	"github.com/dalemusser/activityhub/internal/app/system/auth"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the activity endpoints, mounted under
// /activities. Browsing is public; the lifecycle and roster are admin
// only; enrollment requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{activityID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Post("/", h.Create)
		r.Put("/{activityID}", h.Edit)
		r.Delete("/{activityID}", h.Delete)
		r.Get("/{activityID}/participants", h.Participants)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/{activityID}/register", h.Register)
		r.Delete("/{activityID}/cancel", h.Cancel)
	})

	return r
}
