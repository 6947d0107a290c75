package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linecal/internal/model"
	"linecal/internal/repository"
	"linecal/internal/storage"
)

var viewNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

func newTestState(t *testing.T) (*State, *repository.PrefsRepository) {
	t.Helper()
	prefs, err := repository.NewPrefsRepository(storage.NewMemory(), "user-1")
	require.NoError(t, err)
	return New(prefs, WithClock(func() time.Time { return viewNow })), prefs
}

func TestNew_StartsOnTodayInPreferredMode(t *testing.T) {
	s, _ := newTestState(t)

	assert.Equal(t, model.ViewMonth, s.Mode())
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), s.CurrentDate())
	_, selected := s.SelectedDate()
	assert.False(t, selected)
}

func TestSetViewMode(t *testing.T) {
	s, prefs := newTestState(t)

	assert.True(t, s.SetViewMode(model.ViewWeek))
	assert.Equal(t, model.ViewWeek, s.Mode())
	assert.Equal(t, model.ViewWeek, prefs.Get().DefaultView, "mode change is persisted")

	assert.False(t, s.SetViewMode(model.ViewMode("spiral")))
	assert.Equal(t, model.ViewWeek, s.Mode(), "unknown mode is a no-op")
}

func TestStepping(t *testing.T) {
	s, _ := newTestState(t)

	t.Run("month", func(t *testing.T) {
		s.SetCurrentDate(time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
		s.GoNext()
		// Day clamps at the shorter month's end.
		assert.Equal(t, "2026-09-30", s.CurrentDate().Format("2006-01-02"))
		s.GoPrev()
		s.GoPrev()
		assert.Equal(t, "2026-07-30", s.CurrentDate().Format("2006-01-02"))
	})

	t.Run("week", func(t *testing.T) {
		s.SetViewMode(model.ViewWeek)
		s.SetCurrentDate(time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
		s.GoNext()
		assert.Equal(t, "2026-09-07", s.CurrentDate().Format("2006-01-02"))
		s.GoPrev()
		assert.Equal(t, "2026-08-31", s.CurrentDate().Format("2006-01-02"))
	})

	t.Run("day", func(t *testing.T) {
		s.SetViewMode(model.ViewDay)
		s.SetCurrentDate(time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
		s.GoNext()
		assert.Equal(t, "2026-09-01", s.CurrentDate().Format("2006-01-02"))
	})

	t.Run("list steps like month", func(t *testing.T) {
		s.SetViewMode(model.ViewList)
		s.SetCurrentDate(time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC))
		s.GoNext()
		assert.Equal(t, "2026-09-15", s.CurrentDate().Format("2006-01-02"))
	})
}

func TestGoToday(t *testing.T) {
	s, _ := newTestState(t)
	s.SetCurrentDate(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))

	s.GoToday()

	today := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, s.CurrentDate())
	selected, ok := s.SelectedDate()
	require.True(t, ok)
	assert.Equal(t, today, selected)
}

func TestSelection(t *testing.T) {
	s, _ := newTestState(t)

	s.SelectDate(time.Date(2026, time.September, 5, 18, 30, 0, 0, time.UTC))
	selected, ok := s.SelectedDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC), selected,
		"selection is normalized to the calendar day")

	s.ClearSelection()
	_, ok = s.SelectedDate()
	assert.False(t, ok)
}

func TestGrid_SizePerMode(t *testing.T) {
	s, _ := newTestState(t)

	assert.Len(t, s.Grid(), 42)

	s.SetViewMode(model.ViewWeek)
	assert.Len(t, s.Grid(), 7)

	s.SetViewMode(model.ViewDay)
	grid := s.Grid()
	require.Len(t, grid, 1)
	assert.Equal(t, "2026-08-31", grid[0].Date)

	s.SetViewMode(model.ViewList)
	assert.Len(t, s.Grid(), 42)
}

func TestHeaderText(t *testing.T) {
	s, prefs := newTestState(t)
	s.SetCurrentDate(time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026年8月", s.HeaderText())

	s.SetViewMode(model.ViewWeek)
	require.NoError(t, prefs.SetWeekStartsOn(1))
	assert.Equal(t, "2026年8月31日 〜 2026年9月6日", s.HeaderText())

	s.SetViewMode(model.ViewDay)
	assert.Equal(t, "2026年8月31日", s.HeaderText())

	s.SetViewMode(model.ViewList)
	assert.Equal(t, "2026年8月", s.HeaderText())
}
