// internal/app/system/enroll/coordinator.go

// Package enroll implements the registration protocol that keeps an
// activity's roster and the user-to-activities membership index mutually
// consistent on a store with no transactions.
package enroll

import (
	"context"
	"errors"
	"time"

	activitystore "github.com/dalemusser/activityhub/internal/app/store/activities"
	"github.com/dalemusser/activityhub/internal/app/store/audit"
	membershipstore "github.com/dalemusser/activityhub/internal/app/store/memberships"
	"github.com/dalemusser/activityhub/internal/app/system/normalize"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"go.uber.org/zap"
)

// Admission and state-machine violations. Each maps to a distinct
// caller-visible condition; the HTTP layer switches on these with
// errors.Is, never on message text.
var (
	ErrNotFound                = errors.New("activity not found")
	ErrAlreadyStarted          = errors.New("activity has already started")
	ErrAlreadyRegistered       = errors.New("user is already registered for this activity")
	ErrNotRegistered           = errors.New("user is not registered for this activity")
	ErrNoCapacity              = errors.New("no seats available")
	ErrCapacityBelowEnrollment = errors.New("maxParticipants cannot be lower than the current number of participants")
)

// Coordinator owns the protocol that mutates rosters and the membership
// index. It holds no state of its own beyond the per-activity lock table.
//
// Concurrency: a keyed mutex serializes the fetch-check-write sequence
// per activity id, closing the window where two registrations could both
// pass the capacity check; operations on different activities do not
// contend. The coordinator must be the only writer of participants;
// whole-record edits route through ApplyUpdate since they rewrite the
// roster bytes along with everything else.
//
// Ordering: within one operation the roster write happens-before the
// index write, never the reverse. A crash in between leaves a roster
// entry without its index entry — the roster is authoritative, and
// UserActivities re-checks it, so the gap is invisible to readers.
//
// Temporal policy: an activity counts as started once its calendar day
// (server-local) has passed. An activity dated today is still open for
// both registration and cancellation; the roster locks when the day
// rolls over.
type Coordinator struct {
	activities  *activitystore.Store
	memberships *membershipstore.Store
	audit       *audit.Store
	log         *zap.Logger
	locks       *keyedMutex
}

// New constructs a Coordinator. The audit store may be nil to disable
// event recording.
func New(activities *activitystore.Store, memberships *membershipstore.Store, auditStore *audit.Store, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		activities:  activities,
		memberships: memberships,
		audit:       auditStore,
		log:         logger,
		locks:       newKeyedMutex(),
	}
}

// started reports whether the activity's calendar day has passed.
func started(a models.Activity, now time.Time) bool {
	if a.Date.IsZero() {
		return false
	}
	d := a.Date.Local()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return day.Before(today)
}

func (c *Coordinator) record(ctx context.Context, eventType, activityID, userID, details string) {
	if c.audit == nil {
		return
	}
	err := c.audit.Record(ctx, audit.Event{
		EventType:  eventType,
		ActivityID: activityID,
		UserID:     userID,
		Details:    details,
	})
	if err != nil {
		c.log.Warn("audit record failed",
			zap.String("event", eventType),
			zap.String("activity_id", activityID),
			zap.Error(err))
	}
}

// Register enrolls userID in the activity.
//
// The record is re-read under the activity's lock immediately before the
// write, so every check runs against the current roster. Checks run in a
// fixed order so the caller always learns the most fundamental violation
// first: existence, then eligibility window, then duplicate, then
// capacity.
func (c *Coordinator) Register(ctx context.Context, activityID, userID string) (models.Activity, error) {
	activityID = normalize.ActivityID(activityID)
	userID = normalize.UserID(userID)

	unlock := c.locks.lock(activityID)
	defer unlock()

	a, err := c.activities.Get(ctx, activityID)
	if errors.Is(err, activitystore.ErrNotFound) {
		return models.Activity{}, ErrNotFound
	}
	if err != nil {
		return models.Activity{}, err
	}

	if started(a, time.Now()) {
		return models.Activity{}, ErrAlreadyStarted
	}
	if a.HasParticipant(userID) {
		return models.Activity{}, ErrAlreadyRegistered
	}
	if len(a.Participants) >= a.MaxParticipants {
		return models.Activity{}, ErrNoCapacity
	}

	roster := append(append([]string{}, a.Participants...), userID)
	updated, err := c.activities.SetParticipants(ctx, activityID, roster)
	if err != nil {
		return models.Activity{}, err
	}

	// Roster is committed; the index write follows. If it fails the
	// roster stays authoritative and readers re-check it.
	if err := c.memberships.Add(ctx, userID, activityID); err != nil {
		c.log.Error("membership index add failed after roster write",
			zap.String("activity_id", activityID),
			zap.String("user_id", userID),
			zap.Error(err))
		return models.Activity{}, err
	}

	c.record(ctx, audit.EventRegister, activityID, userID, "")
	return updated, nil
}

// Cancel removes userID from the activity's roster.
func (c *Coordinator) Cancel(ctx context.Context, activityID, userID string) (models.Activity, error) {
	activityID = normalize.ActivityID(activityID)
	userID = normalize.UserID(userID)

	unlock := c.locks.lock(activityID)
	defer unlock()

	a, err := c.activities.Get(ctx, activityID)
	if errors.Is(err, activitystore.ErrNotFound) {
		return models.Activity{}, ErrNotFound
	}
	if err != nil {
		return models.Activity{}, err
	}

	if !a.HasParticipant(userID) {
		return models.Activity{}, ErrNotRegistered
	}
	if started(a, time.Now()) {
		return models.Activity{}, ErrAlreadyStarted
	}

	roster := make([]string, 0, len(a.Participants))
	for _, p := range a.Participants {
		if p != userID {
			roster = append(roster, p)
		}
	}
	updated, err := c.activities.SetParticipants(ctx, activityID, roster)
	if err != nil {
		return models.Activity{}, err
	}

	if err := c.memberships.Remove(ctx, userID, activityID); err != nil {
		c.log.Error("membership index remove failed after roster write",
			zap.String("activity_id", activityID),
			zap.String("user_id", userID),
			zap.Error(err))
		return models.Activity{}, err
	}

	c.record(ctx, audit.EventCancel, activityID, userID, "")
	return updated, nil
}

// ApplyUpdate merges an edit into the stored record under the
// activity's lock. An edit rewrites the whole record, roster included,
// so running it outside the lock could overwrite a roster committed by
// a concurrent Register or Cancel; holding the lock also pins the
// enrollment the capacity check runs against.
func (c *Coordinator) ApplyUpdate(ctx context.Context, activityID string, upd activitystore.Update) (models.Activity, error) {
	activityID = normalize.ActivityID(activityID)

	unlock := c.locks.lock(activityID)
	defer unlock()

	a, err := c.activities.Get(ctx, activityID)
	if errors.Is(err, activitystore.ErrNotFound) {
		return models.Activity{}, ErrNotFound
	}
	if err != nil {
		return models.Activity{}, err
	}

	if upd.MaxParticipants != nil && *upd.MaxParticipants < len(a.Participants) {
		return models.Activity{}, ErrCapacityBelowEnrollment
	}

	updated, err := c.activities.ApplyUpdate(ctx, activityID, upd)
	if err != nil {
		return models.Activity{}, err
	}
	return updated, nil
}

// CascadeDelete removes every membership entry referencing the activity,
// then deletes the record itself. Index cleanup is best-effort per
// participant: one stale entry must not block the deletion, so failures
// are logged and the cascade continues.
func (c *Coordinator) CascadeDelete(ctx context.Context, activityID string) error {
	activityID = normalize.ActivityID(activityID)

	unlock := c.locks.lock(activityID)
	defer unlock()

	a, err := c.activities.Get(ctx, activityID)
	if errors.Is(err, activitystore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	for _, userID := range a.Participants {
		if err := c.memberships.Remove(ctx, userID, activityID); err != nil {
			c.log.Warn("membership cleanup failed during activity delete",
				zap.String("activity_id", activityID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	if err := c.activities.Delete(ctx, activityID); err != nil {
		if errors.Is(err, activitystore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	c.record(ctx, audit.EventCascadeDelete, activityID, "", "")
	return nil
}

// UserActivities resolves the membership index into activity records.
// The roster is the source of truth: entries whose activity is gone, or
// whose roster no longer lists the user, are skipped and repaired in the
// background of the read.
func (c *Coordinator) UserActivities(ctx context.Context, userID string) ([]models.Activity, error) {
	userID = normalize.UserID(userID)

	ids, err := c.memberships.ListActivityIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Activity, 0, len(ids))
	for _, id := range ids {
		a, err := c.activities.Get(ctx, id)
		if errors.Is(err, activitystore.ErrNotFound) {
			c.repairIndexEntry(ctx, userID, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !a.HasParticipant(userID) {
			c.repairIndexEntry(ctx, userID, id)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Coordinator) repairIndexEntry(ctx context.Context, userID, activityID string) {
	if err := c.memberships.Remove(ctx, userID, activityID); err != nil {
		c.log.Warn("stale membership entry repair failed",
			zap.String("activity_id", activityID),
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	c.log.Info("removed stale membership entry",
		zap.String("activity_id", activityID),
		zap.String("user_id", userID))
}
