// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/activityhub/internal/app/store/kv"
	"github.com/dalemusser/activityhub/internal/app/system/normalize"
	"github.com/dalemusser/activityhub/internal/domain/models"
)

const keyPrefix = "membership:"

// Store owns the reverse index from a user to the activities they are
// enrolled in. Keys are "membership:<userID>:<activityID>" so one prefix
// scan answers "list my activities"; the value carries the registration
// timestamp as metadata.
//
// The index is the inverse of each activity's participants roster. The
// roster is authoritative; index writes are sequenced after roster writes
// by the enrollment coordinator, never the other way around.
type Store struct {
	db kv.Store
}

// New returns a membership Store over the given key-value store.
func New(db kv.Store) *Store {
	return &Store{db: db}
}

func entryKey(userID, activityID string) string {
	return keyPrefix + normalize.UserID(userID) + ":" + normalize.ActivityID(activityID)
}

// Add records that userID is enrolled in activityID. Adding a pair that
// is already present is a no-op, not an error.
func (s *Store) Add(ctx context.Context, userID, activityID string) error {
	k := entryKey(userID, activityID)
	if _, err := s.db.Get(ctx, k); err == nil {
		return nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return err
	}
	m := models.Membership{
		UserID:       normalize.UserID(userID),
		ActivityID:   normalize.ActivityID(activityID),
		RegisteredAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode membership: %w", err)
	}
	return s.db.Put(ctx, k, raw)
}

// Remove deletes the (userID, activityID) entry. Removing an absent pair
// is a no-op.
func (s *Store) Remove(ctx context.Context, userID, activityID string) error {
	return s.db.Delete(ctx, entryKey(userID, activityID))
}

// Exists reports whether the (userID, activityID) entry is present.
func (s *Store) Exists(ctx context.Context, userID, activityID string) (bool, error) {
	_, err := s.db.Get(ctx, entryKey(userID, activityID))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListActivityIDsForUser returns the ids of every activity the user is
// enrolled in, in index-key order.
func (s *Store) ListActivityIDsForUser(ctx context.Context, userID string) ([]string, error) {
	prefix := keyPrefix + normalize.UserID(userID) + ":"
	entries, err := s.db.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimPrefix(e.Key, prefix))
	}
	return ids, nil
}

// RemoveAllForActivity deletes every membership entry referencing the
// activity, regardless of user. Used by the deletion cascade; individual
// delete failures are collected so the caller can log them without
// aborting the sweep — a stale index entry is preferable to a blocked
// deletion.
func (s *Store) RemoveAllForActivity(ctx context.Context, activityID string) error {
	activityID = normalize.ActivityID(activityID)
	entries, err := s.db.Scan(ctx, keyPrefix)
	if err != nil {
		return err
	}
	var failed []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Key, ":"+activityID) {
			continue
		}
		if err := s.db.Delete(ctx, e.Key); err != nil {
			failed = append(failed, e.Key)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("remove memberships for activity %s: %d entries failed (%s)",
			activityID, len(failed), strings.Join(failed, ", "))
	}
	return nil
}
