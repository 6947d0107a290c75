package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linecal/internal/model"
	"linecal/internal/storage"
)

func newPrefsRepo(t *testing.T, store storage.KV) *PrefsRepository {
	t.Helper()
	repo, err := NewPrefsRepository(store, "user-1")
	require.NoError(t, err)
	return repo
}

func TestPrefs_DefaultsOnFreshUser(t *testing.T) {
	repo := newPrefsRepo(t, storage.NewMemory())
	assert.Equal(t, model.DefaultPreferences(), repo.Get())
}

func TestPrefs_PartialStoredValuesMergeOverDefaults(t *testing.T) {
	store := storage.NewMemory()
	// Simulate a save from an older version missing most fields.
	require.NoError(t, store.Set(PrefsKey("user-1"), map[string]any{
		"defaultView": "week",
	}))

	repo := newPrefsRepo(t, store)
	got := repo.Get()

	assert.Equal(t, model.ViewWeek, got.DefaultView)
	assert.Equal(t, "24h", got.TimeFormat)
	assert.Equal(t, "ja", got.Language)
	assert.True(t, got.Notifications.Enabled)
	assert.Equal(t, 15, got.Notifications.DefaultReminderTime)
}

func TestPrefs_SetDefaultView(t *testing.T) {
	store := storage.NewMemory()
	repo := newPrefsRepo(t, store)

	require.NoError(t, repo.SetDefaultView(model.ViewList))
	assert.Equal(t, model.ViewList, repo.Get().DefaultView)

	var verr *ValidationError
	err := repo.SetDefaultView(model.ViewMode("spiral"))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, model.ViewList, repo.Get().DefaultView, "invalid mode leaves prefs untouched")

	reloaded := newPrefsRepo(t, store)
	assert.Equal(t, model.ViewList, reloaded.Get().DefaultView)
}

func TestPrefs_SetWeekStartsOn(t *testing.T) {
	repo := newPrefsRepo(t, storage.NewMemory())

	require.NoError(t, repo.SetWeekStartsOn(1))
	assert.Equal(t, 1, repo.Get().WeekStartsOn)

	var verr *ValidationError
	require.ErrorAs(t, repo.SetWeekStartsOn(7), &verr)
	require.ErrorAs(t, repo.SetWeekStartsOn(-1), &verr)
}

func TestPrefs_UpdateNotificationsAndReset(t *testing.T) {
	repo := newPrefsRepo(t, storage.NewMemory())

	require.NoError(t, repo.UpdateNotifications(model.NotificationPrefs{
		Enabled:             false,
		DefaultReminderTime: 60,
		Sound:               false,
	}))
	assert.False(t, repo.Get().Notifications.Enabled)
	assert.Equal(t, 60, repo.Get().Notifications.DefaultReminderTime)

	require.NoError(t, repo.Reset())
	assert.Equal(t, model.DefaultPreferences(), repo.Get())
}

func TestPrefs_PersistFailure(t *testing.T) {
	store := storage.NewMemory()
	store.MaxValueBytes = 5
	repo := newPrefsRepo(t, store)

	var serr *StorageError
	err := repo.SetWeekStartsOn(1)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, repo.Get().WeekStartsOn, "in-memory change survives the failed save")
}
