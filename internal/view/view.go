// Package view holds the calendar view state machine: the active mode,
// the date being viewed and the user's selection. Grids and header text
// are derived on demand, never cached.
package view

import (
	"time"

	"linecal/internal/dateutil"
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/repository"
)

// State is the calendar navigation state for one user.
type State struct {
	prefs *repository.PrefsRepository
	now   func() time.Time

	mode         model.ViewMode
	currentDate  time.Time
	selectedDate *time.Time
}

// Option customizes a State.
type Option func(*State)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// New starts on today in the user's preferred view.
func New(prefs *repository.PrefsRepository, opts ...Option) *State {
	s := &State{
		prefs: prefs,
		now:   time.Now,
		mode:  prefs.Get().DefaultView,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.currentDate = dateutil.StartOfDay(s.now())
	return s
}

// Mode returns the active view mode.
func (s *State) Mode() model.ViewMode { return s.mode }

// CurrentDate returns the date the view is anchored on.
func (s *State) CurrentDate() time.Time { return s.currentDate }

// SelectedDate returns the user's selection, if any.
func (s *State) SelectedDate() (time.Time, bool) {
	if s.selectedDate == nil {
		return time.Time{}, false
	}
	return *s.selectedDate, true
}

// SetViewMode switches modes and persists the preference. Unknown modes
// are a no-op.
func (s *State) SetViewMode(mode model.ViewMode) bool {
	if !model.ValidViewMode(mode) {
		return false
	}
	s.mode = mode
	if err := s.prefs.SetDefaultView(mode); err != nil {
		log.Error("persist view mode failed", err)
	}
	return true
}

// GoNext advances the current date by one unit of the active mode. List
// mode steps like Month.
func (s *State) GoNext() { s.step(1) }

// GoPrev moves the current date back by one unit of the active mode.
func (s *State) GoPrev() { s.step(-1) }

func (s *State) step(n int) {
	switch s.mode {
	case model.ViewWeek:
		s.currentDate = dateutil.AddWeeks(s.currentDate, n)
	case model.ViewDay:
		s.currentDate = dateutil.AddDays(s.currentDate, n)
	default:
		s.currentDate = dateutil.AddMonths(s.currentDate, n)
	}
}

// GoToday resets the view to today and selects it.
func (s *State) GoToday() {
	today := dateutil.StartOfDay(s.now())
	s.currentDate = today
	s.selectedDate = &today
}

// SelectDate sets the selection independently of the current date.
func (s *State) SelectDate(d time.Time) {
	day := dateutil.StartOfDay(d)
	s.selectedDate = &day
}

// ClearSelection drops the selection.
func (s *State) ClearSelection() {
	s.selectedDate = nil
}

// SetCurrentDate moves the view anchor without touching the selection.
func (s *State) SetCurrentDate(d time.Time) {
	s.currentDate = dateutil.StartOfDay(d)
}

// Grid returns the cells of the active view: 42 for Month (and List,
// which borrows the month layout), 7 for Week, 1 for Day.
func (s *State) Grid() []model.GridCell {
	weekStart := s.prefs.Get().WeekStartsOn
	now := s.now()
	switch s.mode {
	case model.ViewWeek:
		return dateutil.WeekGrid(s.currentDate, weekStart, now)
	case model.ViewDay:
		grid := dateutil.WeekGrid(s.currentDate, weekStart, now)
		for _, cell := range grid {
			if cell.Date == dateutil.FormatISO(s.currentDate) {
				return []model.GridCell{cell}
			}
		}
		return nil
	default:
		return dateutil.MonthGrid(s.currentDate, weekStart, now)
	}
}

// HeaderText derives the header for the active mode: "YYYY年M月" for
// Month and List, the week's first and last day for Week, the full date
// for Day.
func (s *State) HeaderText() string {
	switch s.mode {
	case model.ViewWeek:
		weekStart := s.prefs.Get().WeekStartsOn
		first := dateutil.StartOfWeek(s.currentDate, weekStart)
		last := dateutil.EndOfWeek(s.currentDate, weekStart)
		return dateutil.FormatDisplay(first) + " 〜 " + dateutil.FormatDisplay(last)
	case model.ViewDay:
		return dateutil.FormatDisplay(s.currentDate)
	default:
		return dateutil.MonthYearDisplay(s.currentDate)
	}
}
