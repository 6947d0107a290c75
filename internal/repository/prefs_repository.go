package repository

import (
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/storage"
)

// PrefsRepository persists a user's preferences. Stored values are merged
// over defaults on load so partially-saved preferences from older versions
// keep sane values.
type PrefsRepository struct {
	store  storage.KV
	userID string
	prefs  model.Preferences
}

func NewPrefsRepository(store storage.KV, userID string) (*PrefsRepository, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	r := &PrefsRepository{store: store, userID: userID, prefs: model.DefaultPreferences()}
	// Unmarshal into the defaults: fields absent from the stored JSON
	// keep their default values, including nested notification settings.
	err := store.Get(PrefsKey(userID), &r.prefs)
	if err != nil && err != storage.ErrNotFound {
		return nil, &StorageError{Op: "load preferences", Err: err}
	}
	return r, nil
}

// Get returns the current preferences.
func (r *PrefsRepository) Get() model.Preferences {
	return r.prefs
}

// Set replaces the preferences and persists them.
func (r *PrefsRepository) Set(p model.Preferences) error {
	r.prefs = p
	return r.persist()
}

// SetDefaultView persists the preferred calendar view.
func (r *PrefsRepository) SetDefaultView(mode model.ViewMode) error {
	if !model.ValidViewMode(mode) {
		return &ValidationError{Field: "defaultView", Reason: "unknown view mode"}
	}
	r.prefs.DefaultView = mode
	return r.persist()
}

// SetWeekStartsOn persists the first weekday (0=Sunday..6=Saturday).
func (r *PrefsRepository) SetWeekStartsOn(day int) error {
	if day < 0 || day > 6 {
		return &ValidationError{Field: "weekStartsOn", Reason: "must be 0..6"}
	}
	r.prefs.WeekStartsOn = day
	return r.persist()
}

// UpdateNotifications merges settings over the notification sub-record.
func (r *PrefsRepository) UpdateNotifications(n model.NotificationPrefs) error {
	r.prefs.Notifications = n
	return r.persist()
}

// Reset restores the defaults and persists them.
func (r *PrefsRepository) Reset() error {
	r.prefs = model.DefaultPreferences()
	return r.persist()
}

func (r *PrefsRepository) persist() error {
	if err := r.store.Set(PrefsKey(r.userID), r.prefs); err != nil {
		log.Error("persist preferences failed", err, "user", r.userID)
		return &StorageError{Op: "save preferences", Err: err}
	}
	return nil
}
