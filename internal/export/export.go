// Package export moves a user's data in and out of the app: a JSON
// snapshot for backup and restore, and an ICS rendition for other
// calendar clients.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"linecal/internal/dateutil"
	"linecal/internal/model"
	"linecal/internal/repository"
)

// Version tags the snapshot format.
const Version = "1.0"

// CategoryData is the category portion of a snapshot.
type CategoryData struct {
	Custom []model.Category `json:"custom"`
	Tags   []string         `json:"tags"`
}

// Snapshot is the full JSON backup of one user.
type Snapshot struct {
	Version    string           `json:"version"`
	UserID     string           `json:"userId"`
	ExportedAt string           `json:"exportedAt"`
	Schedules  []model.Schedule `json:"schedules"`
	Categories CategoryData     `json:"categories"`
}

// Exporter bundles the repositories a snapshot reads from and writes to.
type Exporter struct {
	userID     string
	schedules  *repository.ScheduleRepository
	categories *repository.CategoryRepository
	now        func() time.Time
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func New(userID string, schedules *repository.ScheduleRepository, categories *repository.CategoryRepository, opts ...Option) *Exporter {
	e := &Exporter{
		userID:     userID,
		schedules:  schedules,
		categories: categories,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// JSON serializes everything, soft-deleted records included, so a
// restore reproduces the store exactly.
func (e *Exporter) JSON() ([]byte, error) {
	snap := Snapshot{
		Version:    Version,
		UserID:     e.userID,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Schedules:  e.schedules.All(),
		Categories: CategoryData{
			Custom: e.categories.Custom(),
			Tags:   e.categories.Tags(),
		},
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Import restores a snapshot. With merge false the schedule list is
// replaced wholesale; with merge true imported schedules are appended.
// Categories and tags are overwritten either way.
func (e *Exporter) Import(data []byte, merge bool) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Version == "" || snap.Schedules == nil {
		return fmt.Errorf("snapshot missing version or schedules")
	}

	if merge {
		if err := e.schedules.AppendAll(snap.Schedules); err != nil {
			return fmt.Errorf("merge schedules: %w", err)
		}
	} else {
		if err := e.schedules.ReplaceAll(snap.Schedules); err != nil {
			return fmt.Errorf("replace schedules: %w", err)
		}
	}

	if err := e.categories.ReplaceData(snap.Categories.Custom, snap.Categories.Tags); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	return nil
}

// ICS renders the active schedules as a VCALENDAR. Soft-deleted records
// are left out; completed ones are kept, marked via STATUS.
func (e *Exporter) ICS() (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//linecal//calendar//JA")

	now := e.now()
	for _, s := range e.schedules.Active() {
		if err := addEvent(cal, s, now); err != nil {
			return "", err
		}
	}
	return cal.Serialize(), nil
}

func addEvent(cal *ics.Calendar, s model.Schedule, now time.Time) error {
	start, err := dateutil.ParseDateTime(s.StartDate, s.StartTime)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", s.ID, err)
	}
	endDate := s.EndDate
	if endDate == "" {
		endDate = s.StartDate
	}
	endTime := s.EndTime
	if endTime == "" {
		endTime = s.StartTime
	}
	end, err := dateutil.ParseDateTime(endDate, endTime)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", s.ID, err)
	}

	ev := cal.AddEvent(s.ID + "@linecal")
	ev.SetDtStampTime(now)
	ev.SetSummary(s.Title)
	if s.Description != "" {
		ev.SetDescription(s.Description)
	}
	if cat, ok := model.BuiltinCategory(s.Category); ok {
		ev.SetProperty(ics.ComponentPropertyCategories, cat.NameEn)
	} else if s.Category != "" {
		ev.SetProperty(ics.ComponentPropertyCategories, s.Category)
	}
	if s.IsCompleted {
		ev.SetStatus(ics.ObjectStatusCompleted)
	}

	if s.IsAllDay {
		ev.SetAllDayStartAt(start)
		// DTEND on all-day events is exclusive.
		ev.SetAllDayEndAt(dateutil.AddDays(end, 1))
		return nil
	}
	ev.SetStartAt(start)
	if !end.After(start) {
		end = start
	}
	ev.SetEndAt(end)
	return nil
}
