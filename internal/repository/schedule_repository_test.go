package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linecal/internal/model"
	"linecal/internal/storage"
)

var testNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T, store storage.KV) *ScheduleRepository {
	t.Helper()
	seq := 0
	repo, err := NewScheduleRepository(store, "user-1",
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	require.NoError(t, err)
	return repo
}

func TestNewScheduleRepository_RequiresUser(t *testing.T) {
	_, err := NewScheduleRepository(storage.NewMemory(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreate_Validation(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())

	var verr *ValidationError

	_, err := repo.Create(ScheduleInput{StartDate: "2026-09-01"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = repo.Create(ScheduleInput{Title: "   ", StartDate: "2026-09-01"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = repo.Create(ScheduleInput{Title: "meeting"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "startDate", verr.Field)

	_, err = repo.Create(ScheduleInput{Title: "meeting", StartDate: "bogus"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "startDate", verr.Field)
}

func TestCreate_FillsDefaults(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())

	s, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-09-01"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "00:00", s.StartTime)
	assert.Equal(t, "2026-09-01", s.EndDate)
	assert.Equal(t, "00:00", s.EndTime)
	assert.Equal(t, model.FallbackCategoryID, s.Category)
	assert.Equal(t, []string{}, s.Tags)
	assert.Equal(t, model.DefaultColor, s.Color)
	assert.Equal(t, model.DefaultReminder, s.Reminder)
	assert.Equal(t, testNow.Format(time.RFC3339), s.CreatedAt)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
	assert.False(t, s.IsCompleted)
	assert.False(t, s.IsDeleted)
}

func TestCreate_EndTimeFollowsStartTime(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())

	s, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-09-01", StartTime: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, "14:00", s.EndTime)
}

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	created, err := repo.Create(ScheduleInput{
		Title:       "meeting",
		Description: "sync with team",
		StartDate:   "2026-09-01",
		StartTime:   "14:00",
	})
	require.NoError(t, err)

	newTitle := "standup"
	updated, err := repo.Update(created.ID, ScheduleUpdate{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "standup", updated.Title)
	assert.Equal(t, "sync with team", updated.Description)
	assert.Equal(t, "14:00", updated.StartTime)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdate_ReplacesReminderWhole(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	created, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-09-01"})
	require.NoError(t, err)

	updated, err := repo.Update(created.ID, ScheduleUpdate{
		Reminder: &model.Reminder{Enabled: true, Time: 30},
	})
	require.NoError(t, err)

	// The sub-record is replaced, not merged: unset fields go to zero.
	assert.Equal(t, model.Reminder{Enabled: true, Time: 30}, updated.Reminder)
}

func TestUpdate_UnknownID(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	title := "x"
	_, err := repo.Update("missing", ScheduleUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDelete_HiddenFromQueriesButRetained(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	created, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-08-31"})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(created.ID))

	assert.Empty(t, repo.Active())
	assert.Empty(t, repo.ByDate(testNow))
	assert.Empty(t, repo.Today())

	// Still present raw and retrievable by id.
	assert.Len(t, repo.All(), 1)
	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestHardDelete(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	created, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-08-31"})
	require.NoError(t, err)

	require.NoError(t, repo.HardDelete(created.ID))
	assert.Empty(t, repo.All())
	assert.ErrorIs(t, repo.HardDelete(created.ID), ErrNotFound)
}

func TestToggleComplete(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	created, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-08-31"})
	require.NoError(t, err)

	s, err := repo.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.True(t, s.IsCompleted)

	s, err = repo.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.False(t, s.IsCompleted)
}

func TestLoad_DropsExpiredSoftDeletes(t *testing.T) {
	store := storage.NewMemory()

	fresh := testNow.Add(-29 * 24 * time.Hour).Format(time.RFC3339)
	stale := testNow.Add(-31 * 24 * time.Hour).Format(time.RFC3339)
	seed := []model.Schedule{
		{ID: "keep-active", Title: "a", StartDate: "2026-08-01", UpdatedAt: stale},
		{ID: "keep-deleted", Title: "b", StartDate: "2026-08-01", IsDeleted: true, UpdatedAt: fresh},
		{ID: "drop-deleted", Title: "c", StartDate: "2026-08-01", IsDeleted: true, UpdatedAt: stale},
		{ID: "drop-bad-ts", Title: "d", StartDate: "2026-08-01", IsDeleted: true, UpdatedAt: "garbage"},
	}
	require.NoError(t, store.Set(SchedulesKey("user-1"), seed))

	repo := newTestRepo(t, store)

	ids := make([]string, 0)
	for _, s := range repo.All() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"keep-active", "keep-deleted"}, ids)
}

func TestPersist_TruncatesAtCap(t *testing.T) {
	store := storage.NewMemory()
	repo := newTestRepo(t, store)

	many := make([]model.Schedule, MaxSchedules+5)
	for i := range many {
		many[i] = model.Schedule{
			ID:        fmt.Sprintf("s-%d", i),
			Title:     "t",
			StartDate: "2026-08-01",
			UpdatedAt: testNow.Format(time.RFC3339),
		}
	}
	require.NoError(t, repo.ReplaceAll(many))

	reloaded := newTestRepo(t, store)
	assert.Len(t, reloaded.All(), MaxSchedules)
}

func TestPersistFailure_KeepsInMemoryChange(t *testing.T) {
	store := storage.NewMemory()
	store.MaxValueBytes = 10

	repo, err := NewScheduleRepository(store, "user-1",
		WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	created, err := repo.Create(ScheduleInput{Title: "meeting", StartDate: "2026-09-01"})

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// The record is returned and survives in memory.
	assert.NotEmpty(t, created.ID)
	assert.Len(t, repo.All(), 1)
}

func TestQueries(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())

	mk := func(title, date, tm, category string, tags ...string) model.Schedule {
		s, err := repo.Create(ScheduleInput{
			Title: title, StartDate: date, StartTime: tm, Category: category, Tags: tags,
		})
		require.NoError(t, err)
		return s
	}

	mk("breakfast", "2026-08-31", "08:00", "personal")
	mk("standup", "2026-08-31", "10:00", "work", "daily")
	mk("dentist", "2026-09-02", "15:00", "health")
	mk("far away", "2026-09-20", "09:00", "work")
	done := mk("review", "2026-09-03", "11:00", "work")
	_, err := repo.ToggleComplete(done.ID)
	require.NoError(t, err)

	t.Run("ByDate", func(t *testing.T) {
		assert.Len(t, repo.ByDate(testNow), 2)
	})

	t.Run("ByRange inclusive", func(t *testing.T) {
		lo := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
		hi := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
		assert.Len(t, repo.ByRange(lo, hi), 3)
	})

	t.Run("ByCategory", func(t *testing.T) {
		assert.Len(t, repo.ByCategory("work"), 3)
	})

	t.Run("Today sorted by start time", func(t *testing.T) {
		today := repo.Today()
		require.Len(t, today, 2)
		assert.Equal(t, "breakfast", today[0].Title)
		assert.Equal(t, "standup", today[1].Title)
	})

	t.Run("Upcoming excludes today, completed and far dates", func(t *testing.T) {
		up := repo.Upcoming()
		require.Len(t, up, 1)
		assert.Equal(t, "dentist", up[0].Title)
	})

	t.Run("Filtered by category and query", func(t *testing.T) {
		assert.Len(t, repo.Filtered("work", ""), 3)
		assert.Len(t, repo.Filtered("", "stand"), 1)
		assert.Len(t, repo.Filtered("", "DAILY"), 1, "tag match is case-insensitive")
		assert.Len(t, repo.Filtered("health", "stand"), 0)
	})

	t.Run("CountOn", func(t *testing.T) {
		assert.Equal(t, 2, repo.CountOn(testNow))
	})
}

func TestAppendAll(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	_, err := repo.Create(ScheduleInput{Title: "existing", StartDate: "2026-08-31"})
	require.NoError(t, err)

	require.NoError(t, repo.AppendAll([]model.Schedule{
		{ID: "imported", Title: "imported", StartDate: "2026-09-01", UpdatedAt: testNow.Format(time.RFC3339)},
	}))
	assert.Len(t, repo.All(), 2)
}

func TestGet_UnknownID(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemory())
	_, err := repo.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}
