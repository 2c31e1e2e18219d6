// internal/domain/models/membership.go
package models

import "time"

// Membership is the reverse index from a user to one activity they are
// enrolled in. Exactly one entry per (user_id, activity_id); it exists to
// answer "list my activities" without scanning every activity record.
//
// Entries are created when a registration succeeds and destroyed when a
// cancellation succeeds or the activity is deleted.
type Membership struct {
	UserID       string    `json:"user_id"`
	ActivityID   string    `json:"activity_id"`
	RegisteredAt time.Time `json:"registered_at"`
}
