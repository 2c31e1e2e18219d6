// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/activityhub/internal/app/store/kv"
)

// Event types for enrollment tracking.
const (
	EventRegister      = "register"       // User registered for an activity
	EventCancel        = "cancel"         // User cancelled a registration
	EventCascadeDelete = "cascade_delete" // Activity deleted with roster cleanup
)

// Event records one enrollment action. Entries are append-only under
// "audit:<unix-nano>" so a prefix scan replays them in time order.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id,omitempty"`
	Details    string    `json:"details,omitempty"`
}

// Store manages enrollment audit events.
type Store struct {
	db kv.Store

	mu     sync.Mutex
	lastNS int64
}

// New creates a new audit Store.
func New(db kv.Store) *Store {
	return &Store{db: db}
}

const keyPrefix = "audit:"

func (s *Store) nextKey(ts time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := ts.UnixNano()
	if ns <= s.lastNS {
		ns = s.lastNS + 1
	}
	s.lastNS = ns
	return fmt.Sprintf("%s%020d", keyPrefix, ns)
}

// Record appends a new event. Callers treat failures as best-effort; an
// unrecorded event never blocks the enrollment operation itself.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.db.Put(ctx, s.nextKey(event.Timestamp), raw)
}

// ListByActivity returns every recorded event for the activity in time
// order.
func (s *Store) ListByActivity(ctx context.Context, activityID string) ([]Event, error) {
	entries, err := s.db.Scan(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range entries {
		var ev Event
		if err := json.Unmarshal(e.Value, &ev); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", e.Key, err)
		}
		if strings.TrimSpace(activityID) == "" || ev.ActivityID == activityID {
			out = append(out, ev)
		}
	}
	return out, nil
}
