// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: the opaque id that uniquely identifies a
//     user record and appears on rosters and in the membership index
//   - Email / Username: the human-readable strings users type to log in

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/activityhub/internal/app/store/kv"
	"github.com/dalemusser/activityhub/internal/app/system/normalize"
	"github.com/dalemusser/activityhub/internal/domain/models"
	"github.com/google/uuid"
)

// Key layout. The record lives under the id key; email and username keys
// hold the id so either login identifier resolves without a scan. The kv
// store has no unique constraints, so Create checks both alias keys first
// (two sign-ups racing the same email is accepted as last-writer-wins,
// matching the engine underneath).
const (
	idPrefix       = "user:id:"
	emailPrefix    = "user:email:"
	usernamePrefix = "user:name:"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when the email or username is already taken.
	ErrDuplicate = errors.New("email or username already in use")

	errBadRole = errors.New(`role must be "user" or "admin"`)
)

// Store owns user records in the key-value store.
type Store struct {
	db kv.Store
}

// New returns a user Store over the given key-value store.
func New(db kv.Store) *Store {
	return &Store{db: db}
}

func (s *Store) put(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(struct {
		models.User
		PasswordHash string `json:"password_hash"`
	}{u, u.PasswordHash})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.db.Put(ctx, idPrefix+u.ID, raw)
}

func decode(raw []byte) (models.User, error) {
	var rec struct {
		models.User
		PasswordHash string `json:"password_hash"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	u := rec.User
	u.PasswordHash = rec.PasswordHash
	return u, nil
}

// Create inserts a new user after normalizing identifiers and validating
// the role. The password must already be hashed by the caller.
func (s *Store) Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error) {
	username = normalize.Username(username)
	email = normalize.Email(email)
	role = normalize.Role(role)

	switch role {
	case models.RoleUser, models.RoleAdmin:
		// ok
	default:
		return models.User{}, errBadRole
	}

	// Reject a taken email or username up front.
	if _, err := s.db.Get(ctx, emailPrefix+email); err == nil {
		return models.User{}, ErrDuplicate
	} else if !errors.Is(err, kv.ErrNotFound) {
		return models.User{}, err
	}
	if _, err := s.db.Get(ctx, usernamePrefix+username); err == nil {
		return models.User{}, ErrDuplicate
	} else if !errors.Is(err, kv.ErrNotFound) {
		return models.User{}, err
	}

	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: passwordHash,
	}
	if err := s.put(ctx, u); err != nil {
		return models.User{}, err
	}
	// Record first, aliases after: a crash in between leaves a record no
	// login can reach, which startup seeding or re-registration repairs;
	// an alias pointing at nothing would break login outright.
	if err := s.db.Put(ctx, emailPrefix+email, []byte(u.ID)); err != nil {
		return models.User{}, err
	}
	if err := s.db.Put(ctx, usernamePrefix+username, []byte(u.ID)); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by id. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	raw, err := s.db.Get(ctx, idPrefix+normalize.UserID(id))
	if errors.Is(err, kv.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return decode(raw)
}

func (s *Store) getByAlias(ctx context.Context, aliasKey string) (models.User, error) {
	id, err := s.db.Get(ctx, aliasKey)
	if errors.Is(err, kv.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return s.GetByID(ctx, string(id))
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getByAlias(ctx, emailPrefix+normalize.Email(email))
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getByAlias(ctx, usernamePrefix+normalize.Username(username))
}

// GetByIdentifier resolves a login identifier that may be an email or a
// username, in that order (the login form has a single field).
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	u, err := s.GetByEmail(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}
	return s.GetByUsername(ctx, identifier)
}

// SetRole updates a user's role in place.
func (s *Store) SetRole(ctx context.Context, id, role string) (models.User, error) {
	role = normalize.Role(role)
	switch role {
	case models.RoleUser, models.RoleAdmin:
		// ok
	default:
		return models.User{}, errBadRole
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	u.Role = role
	if err := s.put(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
