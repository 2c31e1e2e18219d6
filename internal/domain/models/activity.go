// internal/domain/models/activity.go
package models

import "time"

// Activity is an event with a capacity-limited roster.
//
// Participants holds normalized user IDs in registration order with no
// duplicates, and len(Participants) never exceeds MaxParticipants. The
// roster is mutated only through the enrollment coordinator; every entry
// has a matching membership-index record (the roster is authoritative
// when the two disagree).
type Activity struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	Date            time.Time `json:"date"`
	MaxParticipants int       `json:"maxParticipants"`
	Participants    []string  `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasParticipant reports whether the normalized user ID is on the roster.
func (a Activity) HasParticipant(userID string) bool {
	for _, p := range a.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// SeatsLeft returns the number of open seats (never negative).
func (a Activity) SeatsLeft() int {
	n := a.MaxParticipants - len(a.Participants)
	if n < 0 {
		return 0
	}
	return n
}
