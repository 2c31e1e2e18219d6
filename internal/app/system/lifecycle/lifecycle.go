// internal/app/system/lifecycle/lifecycle.go

// Package lifecycle owns activity creation, editing, and deletion.
// Registration-affecting work (the deletion cascade) is delegated to the
// enrollment coordinator; this service never touches a roster itself.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/system/enroll"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the referenced activity does not exist.
	ErrNotFound = errors.New("activity not found")
	// ErrCapacityBelowEnrollment is returned when an edit would lower
	// maxParticipants below the number already registered.
	ErrCapacityBelowEnrollment = errors.New("maxParticipants cannot be lower than the current number of participants")
)

// Service is the thin orchestration layer over the activity store and the
// enrollment coordinator.
type Service struct {
	activities  *activitystore.Store
	coordinator *enroll.Coordinator
	sanitize    *bluemonday.Policy
	log         *zap.Logger
}

// New constructs a lifecycle Service. Text fields are sanitized with a
// strict policy before storage: titles and descriptions come from
// browsers and are rendered back into them.
func New(activities *activitystore.Store, coordinator *enroll.Coordinator, logger *zap.Logger) *Service {
	return &Service{
		activities:  activities,
		coordinator: coordinator,
		sanitize:    bluemonday.StrictPolicy(),
		log:         logger,
	}
}

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// normalizeDate parses the submitted date. An absent or unparseable date
// falls back to this time tomorrow, keeping a new activity open for
// registration rather than instantly locked.
func normalizeDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().Add(24 * time.Hour).UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().Add(24 * time.Hour).UTC()
}

func (s *Service) clean(text string) string {
	return s.sanitize.Sanitize(strings.TrimSpace(text))
}

// CreateInput carries the submitted fields for a new activity. Field
// presence/format validation happens at the HTTP boundary; this layer
// sanitizes and normalizes.
type CreateInput struct {
	Title           string
	Description     string
	Location        string
	Date            string
	MaxParticipants int
}

// Create persists a new activity with an empty roster.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Activity, error) {
	a, err := s.activities.Create(ctx,
		s.clean(in.Title),
		s.clean(in.Description),
		s.clean(in.Location),
		normalizeDate(in.Date),
		in.MaxParticipants,
	)
	if err != nil {
		return models.Activity{}, err
	}
	s.log.Info("activity created",
		zap.String("activity_id", a.ID),
		zap.String("title", a.Title),
		zap.Int("max_participants", a.MaxParticipants))
	return a, nil
}

// EditInput carries the fields an edit may change; nil fields are left
// untouched. The roster and id can never be changed through an edit.
type EditInput struct {
	Title           *string
	Description     *string
	Location        *string
	Date            *string
	MaxParticipants *int
}

// Edit merges the changes into the stored activity.
//
// The merge runs under the coordinator's per-activity lock: an edit
// rewrites the whole record, and outside the lock it could clobber a
// roster committed by a concurrent registration. Lowering
// maxParticipants below the current enrollment is rejected: admitting
// it would leave the roster permanently over capacity.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (models.Activity, error) {
	upd := activitystore.Update{MaxParticipants: in.MaxParticipants}
	if in.Title != nil {
		t := s.clean(*in.Title)
		upd.Title = &t
	}
	if in.Description != nil {
		d := s.clean(*in.Description)
		upd.Description = &d
	}
	if in.Location != nil {
		l := s.clean(*in.Location)
		upd.Location = &l
	}
	if in.Date != nil {
		d := normalizeDate(*in.Date)
		upd.Date = &d
	}

	a, err := s.coordinator.ApplyUpdate(ctx, id, upd)
	if errors.Is(err, enroll.ErrNotFound) {
		return models.Activity{}, ErrNotFound
	}
	if errors.Is(err, enroll.ErrCapacityBelowEnrollment) {
		return models.Activity{}, ErrCapacityBelowEnrollment
	}
	if err != nil {
		return models.Activity{}, err
	}
	s.log.Info("activity updated", zap.String("activity_id", a.ID))
	return a, nil
}

// Delete removes the activity via the coordinator's cascade, cleaning up
// every membership entry that references it.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.coordinator.CascadeDelete(ctx, id)
	if errors.Is(err, enroll.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("activity deleted", zap.String("activity_id", id))
	return nil
}

// Participants returns the activity's roster in registration order.
func (s *Service) Participants(ctx context.Context, id string) ([]string, error) {
	a, err := s.activities.Get(ctx, id)
	if errors.Is(err, activitystore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a.Participants, nil
}
