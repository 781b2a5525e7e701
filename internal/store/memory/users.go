// Package memory provides in-process user and course stores. The server
// falls back to them when no database is configured; tests use them as
// fakes.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/coursehub"
)

// Users is a coursehub.UserStore kept in a map. Email uniqueness is
// enforced case-insensitively, like the Postgres index.
type Users struct {
	mu   sync.RWMutex
	byID map[string]*coursehub.User
	now  func() time.Time
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*coursehub.User), now: time.Now}
}

func (s *Users) findLocked(email string) *coursehub.User {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Users) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(email) != nil, nil
}

func (s *Users) UserByEmail(ctx context.Context, email string) (*coursehub.User, error) {
	u, err := s.UserByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Users) UserByEmailWithPassword(_ context.Context, email string) (*coursehub.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.findLocked(email)
	if u == nil {
		return nil, coursehub.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Users) UserByID(_ context.Context, id string) (*coursehub.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, coursehub.ErrUserNotFound
	}
	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (s *Users) PasswordHash(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return "", coursehub.ErrUserNotFound
	}
	return u.PasswordHash, nil
}

func (s *Users) CreateUser(_ context.Context, user *coursehub.User) (*coursehub.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(user.Email) != nil {
		return nil, coursehub.ErrDuplicateEmail
	}
	stored := *user
	stored.Email = strings.ToLower(strings.TrimSpace(stored.Email))
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *Users) UpdateProfile(_ context.Context, id string, update coursehub.ProfileUpdate) (*coursehub.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, coursehub.ErrUserNotFound
	}
	if update.Email != nil {
		if other := s.findLocked(*update.Email); other != nil && other.ID != id {
			return nil, coursehub.ErrDuplicateEmail
		}
		u.Email = strings.ToLower(*update.Email)
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	u.UpdatedAt = s.now().UTC()

	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (s *Users) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return coursehub.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Users) UpdateAvatar(_ context.Context, id string, avatar coursehub.Avatar) (*coursehub.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, coursehub.ErrUserNotFound
	}
	u.Avatar = avatar
	u.UpdatedAt = s.now().UTC()

	out := *u
	out.PasswordHash = ""
	return &out, nil
}

// SetRole changes a user's role. It exists for seeding admins in
// development and tests.
func (s *Users) SetRole(_ context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return coursehub.ErrUserNotFound
	}
	u.Role = role
	return nil
}
