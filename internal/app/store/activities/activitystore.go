// internal/app/store/activities/activitystore.go
package activitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/activityhub/internal/app/store/kv"
	"github.com/dalemusser/activityhub/internal/domain/models"
)

const keyPrefix = "activity:"

// ErrNotFound is returned when the referenced activity does not exist.
var ErrNotFound = errors.New("activity not found")

// Store owns activity records in the key-value store. Records are JSON
// under "activity:<id>"; ids are derived from creation time in
// milliseconds and strictly increase, so a full-prefix scan yields
// activities in creation order.
//
// SetParticipants is the only roster mutation and must be called solely
// by the enrollment coordinator, which serializes access per activity.
type Store struct {
	db kv.Store

	mu     sync.Mutex
	lastMS int64
}

// New returns an activity Store over the given key-value store.
func New(db kv.Store) *Store {
	return &Store{db: db}
}

// nextID derives a fresh id from the current time, bumping by one
// millisecond when two creations land in the same tick.
func (s *Store) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := time.Now().UnixMilli()
	if ms <= s.lastMS {
		ms = s.lastMS + 1
	}
	s.lastMS = ms
	return fmt.Sprintf("%d", ms)
}

// key maps an activity id to its storage key. Full keys are tolerated so
// callers holding "activity:<id>" round-trip cleanly.
func key(id string) string {
	if strings.HasPrefix(id, keyPrefix) {
		return id
	}
	return keyPrefix + id
}

func decode(raw []byte) (models.Activity, error) {
	var a models.Activity
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.Activity{}, fmt.Errorf("decode activity: %w", err)
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	return a, nil
}

func (s *Store) put(ctx context.Context, a models.Activity) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	return s.db.Put(ctx, key(a.ID), raw)
}

// Create persists a new activity with a fresh id and an empty roster.
func (s *Store) Create(ctx context.Context, title, description, location string, date time.Time, maxParticipants int) (models.Activity, error) {
	now := time.Now().UTC()
	a := models.Activity{
		ID:              s.nextID(),
		Title:           title,
		Description:     description,
		Location:        location,
		Date:            date,
		MaxParticipants: maxParticipants,
		Participants:    []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.put(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// Get loads one activity. Returns ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id string) (models.Activity, error) {
	raw, err := s.db.Get(ctx, key(id))
	if errors.Is(err, kv.ErrNotFound) {
		return models.Activity{}, ErrNotFound
	}
	if err != nil {
		return models.Activity{}, err
	}
	return decode(raw)
}

// List returns every activity in creation order.
func (s *Store) List(ctx context.Context) ([]models.Activity, error) {
	entries, err := s.db.Scan(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Activity, 0, len(entries))
	for _, e := range entries {
		a, err := decode(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Update holds the fields an edit may change. Nil fields are left as-is;
// ID, Participants, and CreatedAt are always preserved.
type Update struct {
	Title           *string
	Description     *string
	Location        *string
	Date            *time.Time
	MaxParticipants *int
}

// ApplyUpdate merges the update into the stored record and persists it.
// Returns ErrNotFound when the id does not exist.
func (s *Store) ApplyUpdate(ctx context.Context, id string, upd Update) (models.Activity, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Activity{}, err
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Location != nil {
		a.Location = *upd.Location
	}
	if upd.Date != nil {
		a.Date = *upd.Date
	}
	if upd.MaxParticipants != nil {
		a.MaxParticipants = *upd.MaxParticipants
	}
	a.UpdatedAt = time.Now().UTC()
	if err := s.put(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// SetParticipants replaces the roster in a single key write and returns
// the updated record. Returns ErrNotFound when the id does not exist.
//
// Replacing the whole roster here (rather than read-modify-write at the
// caller) keeps the write atomic at this store; serializing the
// read-check-write sequence around it is the coordinator's job.
func (s *Store) SetParticipants(ctx context.Context, id string, participants []string) (models.Activity, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Activity{}, err
	}
	if participants == nil {
		participants = []string{}
	}
	a.Participants = participants
	a.UpdatedAt = time.Now().UTC()
	if err := s.put(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// Delete removes the record. Returns ErrNotFound when absent. It does not
// touch the membership index; cascading cleanup belongs to the
// enrollment coordinator.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.Delete(ctx, key(id))
}
