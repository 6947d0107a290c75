// Package session ties the externally supplied identity to the local
// store: user-scoped operations require a started session, and the last
// logged-in user is remembered globally.
package session

import (
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/repository"
	"linecal/internal/storage"
)

// Session is the lifecycle object created at login and torn down at
// logout. It owns nothing but the profile and the store handle.
type Session struct {
	store   storage.KV
	profile model.Profile
}

// Start validates the profile and records the last-user pointer. A missing
// user id means "not logged in" and refuses the session.
func Start(store storage.KV, profile model.Profile) (*Session, error) {
	if profile.UserID == "" {
		return nil, repository.ErrNotAuthenticated
	}
	if err := store.Set(repository.KeyLastUser, profile.UserID); err != nil {
		// The pointer is a convenience; login proceeds without it.
		log.Error("record last user failed", err)
	}
	log.Info("session started", "user", profile.UserID, "name", profile.DisplayName)
	return &Session{store: store, profile: profile}, nil
}

// LastUser returns the most recently logged-in user id, if any.
func LastUser(store storage.KV) (string, bool) {
	var id string
	if err := store.Get(repository.KeyLastUser, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// UserID returns the logged-in user's id.
func (s *Session) UserID() string { return s.profile.UserID }

// Profile returns the identity supplied at login.
func (s *Session) Profile() model.Profile { return s.profile }

// End clears the identity. Stored data, including preferences, is kept
// for the next login.
func (s *Session) End() {
	log.Info("session ended", "user", s.profile.UserID)
	s.profile = model.Profile{}
}

// ClearUserData removes every per-user key for the session's user.
func (s *Session) ClearUserData() error {
	for _, key := range repository.UserKeys(s.profile.UserID) {
		if err := s.store.Remove(key); err != nil {
			return err
		}
	}
	log.Info("user data cleared", "user", s.profile.UserID)
	return nil
}

// Stats reports store usage.
func (s *Session) Stats() (storage.Stats, error) {
	return s.store.Stats()
}
