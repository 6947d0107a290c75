package repository

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"linecal/internal/dateutil"
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/storage"
)

const (
	// MaxSchedules caps the persisted list; records beyond it are
	// truncated on save, oldest-inserted first.
	MaxSchedules = 1000

	// deletedRetention is how long soft-deleted records survive past
	// their last update before being dropped on load.
	deletedRetention = 30 * 24 * time.Hour

	// upcomingWindow bounds the Upcoming query.
	upcomingWindow = 7 * 24 * time.Hour
)

// ScheduleInput carries the fields accepted when creating a schedule.
// Title and StartDate are required; everything else is defaulted.
type ScheduleInput struct {
	Title       string
	Description string
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	IsAllDay    bool
	Category    string
	Tags        []string
	Color       string
	Reminder    *model.Reminder
	Recurrence  *model.Recurrence
}

// ScheduleUpdate is a partial schedule; nil fields are left unchanged.
// A non-nil Reminder replaces the whole reminder sub-record.
type ScheduleUpdate struct {
	Title       *string
	Description *string
	StartDate   *string
	StartTime   *string
	EndDate     *string
	EndTime     *string
	IsAllDay    *bool
	Category    *string
	Tags        *[]string
	Color       *string
	Reminder    *model.Reminder
	Recurrence  *model.Recurrence
	IsCompleted *bool
	IsDeleted   *bool
}

// ScheduleRepository owns a user's schedule list. The in-memory list is
// authoritative between saves; every mutation persists the full list
// before returning.
type ScheduleRepository struct {
	store  storage.KV
	userID string
	now    func() time.Time
	newID  func() string

	schedules []model.Schedule
}

// ScheduleOption customizes a repository, mainly for tests.
type ScheduleOption func(*ScheduleRepository)

// WithClock injects the time source.
func WithClock(now func() time.Time) ScheduleOption {
	return func(r *ScheduleRepository) { r.now = now }
}

// WithIDGenerator injects the id source.
func WithIDGenerator(gen func() string) ScheduleOption {
	return func(r *ScheduleRepository) { r.newID = gen }
}

// NewScheduleRepository loads the user's schedules, dropping soft-deleted
// records older than the retention window.
func NewScheduleRepository(store storage.KV, userID string, opts ...ScheduleOption) (*ScheduleRepository, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	r := &ScheduleRepository{
		store:  store,
		userID: userID,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ScheduleRepository) load() error {
	var stored []model.Schedule
	err := r.store.Get(SchedulesKey(r.userID), &stored)
	if err != nil && err != storage.ErrNotFound {
		return &StorageError{Op: "load schedules", Err: err}
	}

	cutoff := r.now().Add(-deletedRetention)
	kept := make([]model.Schedule, 0, len(stored))
	for _, s := range stored {
		if s.IsDeleted {
			updated, err := time.Parse(time.RFC3339, s.UpdatedAt)
			if err != nil || !updated.After(cutoff) {
				continue
			}
		}
		kept = append(kept, s)
	}
	r.schedules = kept
	return nil
}

// persist writes the full list, enforcing the record cap. On failure the
// in-memory change is kept and a *StorageError returned.
func (r *ScheduleRepository) persist(op string) error {
	toSave := r.schedules
	if len(toSave) > MaxSchedules {
		log.Info("schedule limit exceeded, truncating", "count", len(toSave), "max", MaxSchedules)
		toSave = toSave[:MaxSchedules]
	}
	if err := r.store.Set(SchedulesKey(r.userID), toSave); err != nil {
		log.Error("persist schedules failed", err, "user", r.userID)
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

// Create validates input, fills defaults and appends a new schedule.
func (r *ScheduleRepository) Create(input ScheduleInput) (model.Schedule, error) {
	if strings.TrimSpace(input.Title) == "" {
		return model.Schedule{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if input.StartDate == "" {
		return model.Schedule{}, &ValidationError{Field: "startDate", Reason: "must not be empty"}
	}
	if _, err := dateutil.ParseDate(input.StartDate); err != nil {
		return model.Schedule{}, &ValidationError{Field: "startDate", Reason: err.Error()}
	}

	nowStr := r.now().Format(time.RFC3339)
	s := model.Schedule{
		ID:          r.newID(),
		UserID:      r.userID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		StartTime:   input.StartTime,
		EndDate:     input.EndDate,
		EndTime:     input.EndTime,
		IsAllDay:    input.IsAllDay,
		Category:    input.Category,
		Tags:        input.Tags,
		Color:       input.Color,
		Reminder:    model.DefaultReminder,
		Recurrence:  model.Recurrence{},
		CreatedAt:   nowStr,
		UpdatedAt:   nowStr,
	}
	if s.StartTime == "" {
		s.StartTime = "00:00"
	}
	if s.EndDate == "" {
		s.EndDate = s.StartDate
	}
	if s.EndTime == "" {
		s.EndTime = s.StartTime
	}
	if s.Category == "" {
		s.Category = model.FallbackCategoryID
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Color == "" {
		s.Color = model.DefaultColor
	}
	if input.Reminder != nil {
		s.Reminder = *input.Reminder
	}
	if input.Recurrence != nil {
		s.Recurrence = *input.Recurrence
	}

	r.schedules = append(r.schedules, s)
	if err := r.persist("create"); err != nil {
		return s, err
	}
	log.Info("schedule created", "id", s.ID, "user", r.userID)
	return s, nil
}

// Update shallow-merges upd over the existing record and bumps UpdatedAt.
func (r *ScheduleRepository) Update(id string, upd ScheduleUpdate) (model.Schedule, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return model.Schedule{}, ErrNotFound
	}

	s := &r.schedules[idx]
	if upd.Title != nil {
		s.Title = *upd.Title
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	if upd.StartDate != nil {
		s.StartDate = *upd.StartDate
	}
	if upd.StartTime != nil {
		s.StartTime = *upd.StartTime
	}
	if upd.EndDate != nil {
		s.EndDate = *upd.EndDate
	}
	if upd.EndTime != nil {
		s.EndTime = *upd.EndTime
	}
	if upd.IsAllDay != nil {
		s.IsAllDay = *upd.IsAllDay
	}
	if upd.Category != nil {
		s.Category = *upd.Category
	}
	if upd.Tags != nil {
		s.Tags = *upd.Tags
	}
	if upd.Color != nil {
		s.Color = *upd.Color
	}
	if upd.Reminder != nil {
		s.Reminder = *upd.Reminder
	}
	if upd.Recurrence != nil {
		s.Recurrence = *upd.Recurrence
	}
	if upd.IsCompleted != nil {
		s.IsCompleted = *upd.IsCompleted
	}
	if upd.IsDeleted != nil {
		s.IsDeleted = *upd.IsDeleted
	}
	s.UpdatedAt = r.now().Format(time.RFC3339)

	if err := r.persist("update"); err != nil {
		return *s, err
	}
	log.Info("schedule updated", "id", id, "user", r.userID)
	return *s, nil
}

// SoftDelete flags the record deleted; it stays stored for the retention
// window.
func (r *ScheduleRepository) SoftDelete(id string) error {
	deleted := true
	_, err := r.Update(id, ScheduleUpdate{IsDeleted: &deleted})
	return err
}

// HardDelete removes the record permanently.
func (r *ScheduleRepository) HardDelete(id string) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.schedules = append(r.schedules[:idx], r.schedules[idx+1:]...)
	return r.persist("hard delete")
}

// ToggleComplete flips the completion flag.
func (r *ScheduleRepository) ToggleComplete(id string) (model.Schedule, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return model.Schedule{}, ErrNotFound
	}
	toggled := !r.schedules[idx].IsCompleted
	return r.Update(id, ScheduleUpdate{IsCompleted: &toggled})
}

// Get returns the record with the given id, deleted or not.
func (r *ScheduleRepository) Get(id string) (model.Schedule, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return model.Schedule{}, ErrNotFound
	}
	return r.schedules[idx], nil
}

// All returns a copy of the raw list, soft-deleted records included.
func (r *ScheduleRepository) All() []model.Schedule {
	out := make([]model.Schedule, len(r.schedules))
	copy(out, r.schedules)
	return out
}

// Active returns all non-deleted records.
func (r *ScheduleRepository) Active() []model.Schedule {
	return r.filter(func(s model.Schedule) bool { return true })
}

// ByDate returns active records starting on the same calendar day as date.
func (r *ScheduleRepository) ByDate(date time.Time) []model.Schedule {
	return r.filter(func(s model.Schedule) bool {
		d, err := dateutil.ParseDate(s.StartDate)
		return err == nil && dateutil.IsSameDay(d, date)
	})
}

// ByRange returns active records whose start date lies within
// [startOfDay(start), endOfDay(end)].
func (r *ScheduleRepository) ByRange(start, end time.Time) []model.Schedule {
	lo := dateutil.StartOfDay(start)
	hi := dateutil.EndOfDay(end)
	return r.filter(func(s model.Schedule) bool {
		d, err := dateutil.ParseDate(s.StartDate)
		return err == nil && !d.Before(lo) && !d.After(hi)
	})
}

// ByCategory returns active records in the given category.
func (r *ScheduleRepository) ByCategory(categoryID string) []model.Schedule {
	return r.filter(func(s model.Schedule) bool { return s.Category == categoryID })
}

// Upcoming returns active, uncompleted records starting strictly after now
// and strictly before now plus seven days, ascending by start date.
func (r *ScheduleRepository) Upcoming() []model.Schedule {
	now := r.now()
	limit := now.Add(upcomingWindow)
	out := r.filter(func(s model.Schedule) bool {
		if s.IsCompleted {
			return false
		}
		d, err := dateutil.ParseDate(s.StartDate)
		return err == nil && d.After(now) && d.Before(limit)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// Today returns active records starting today, ascending by start time.
func (r *ScheduleRepository) Today() []model.Schedule {
	out := r.ByDate(r.now())
	sort.SliceStable(out, func(i, j int) bool {
		return startTimeOrDefault(out[i]) < startTimeOrDefault(out[j])
	})
	return out
}

func startTimeOrDefault(s model.Schedule) string {
	if s.StartTime == "" {
		return "00:00"
	}
	return s.StartTime
}

// Filtered returns active records, optionally restricted to one category
// and optionally substring-matched (case-insensitive) against title,
// description or any tag.
func (r *ScheduleRepository) Filtered(categoryID, query string) []model.Schedule {
	query = strings.ToLower(query)
	return r.filter(func(s model.Schedule) bool {
		if categoryID != "" && s.Category != categoryID {
			return false
		}
		if query == "" {
			return true
		}
		if strings.Contains(strings.ToLower(s.Title), query) {
			return true
		}
		if strings.Contains(strings.ToLower(s.Description), query) {
			return true
		}
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				return true
			}
		}
		return false
	})
}

// CountOn returns the number of active records starting on date, used for
// calendar badges.
func (r *ScheduleRepository) CountOn(date time.Time) int {
	return len(r.ByDate(date))
}

// ReplaceAll swaps the full list, used by import with merge=false.
func (r *ScheduleRepository) ReplaceAll(schedules []model.Schedule) error {
	r.schedules = append([]model.Schedule(nil), schedules...)
	return r.persist("replace all")
}

// AppendAll appends imported records without de-duplication, used by
// import with merge=true.
func (r *ScheduleRepository) AppendAll(schedules []model.Schedule) error {
	r.schedules = append(r.schedules, schedules...)
	return r.persist("append all")
}

func (r *ScheduleRepository) indexOf(id string) int {
	for i := range r.schedules {
		if r.schedules[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ScheduleRepository) filter(keep func(model.Schedule) bool) []model.Schedule {
	out := make([]model.Schedule, 0)
	for _, s := range r.schedules {
		if s.IsDeleted {
			continue
		}
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
