// Package scheduler arms reminder timers for schedules and fires them
// through a Notifier. Timers follow a suspend-and-fire model: one pending
// timer per schedule at most, armed only within a 24-hour horizon, with a
// reconciliation pass to pick up reminders further out.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"linecal/internal/dateutil"
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/notify"
)

// DefaultHorizon bounds how far ahead a timer may be armed. Reminders
// beyond it are left to a later reconciliation pass.
const DefaultHorizon = 24 * time.Hour

// Results counts the outcome of a batch arming pass.
type Results struct {
	Armed   int
	Skipped int
	Failed  int
}

// Scheduler owns the pending-timer set. All methods are safe for
// concurrent use; timer callbacks run on their own goroutine and
// re-enter through the same lock.
type Scheduler struct {
	notifier notify.Notifier
	now      func() time.Time
	horizon  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithHorizon overrides the arming horizon.
func WithHorizon(h time.Duration) Option {
	return func(s *Scheduler) { s.horizon = h }
}

func New(notifier notify.Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: notifier,
		now:      time.Now,
		horizon:  DefaultHorizon,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FireAt computes the instant a schedule's reminder should fire: the
// start minus the configured offset.
func FireAt(s model.Schedule) (time.Time, error) {
	start, err := dateutil.ParseDateTime(s.StartDate, s.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule %s: %w", s.ID, err)
	}
	return start.Add(-reminderOffset(s.Reminder)), nil
}

func reminderOffset(r model.Reminder) time.Duration {
	n := time.Duration(r.Time)
	switch r.Unit {
	case model.UnitHours:
		return n * time.Hour
	case model.UnitDays:
		return n * 24 * time.Hour
	default:
		return n * time.Minute
	}
}

// Arm schedules a timer for s. A pending timer for the same schedule is
// canceled first. Returns false without error when the reminder is
// disabled, permission is not granted, the fire time has passed, or it
// lies beyond the horizon.
func (s *Scheduler) Arm(sched model.Schedule) bool {
	s.Cancel(sched.ID)

	if !sched.Reminder.Enabled {
		return false
	}
	if s.notifier.Permission() != notify.PermissionGranted {
		log.Debug("reminder skipped, no permission", "id", sched.ID)
		return false
	}

	fireAt, err := FireAt(sched)
	if err != nil {
		log.Error("reminder fire time", err, "id", sched.ID)
		return false
	}

	delay := fireAt.Sub(s.now())
	switch {
	case delay <= 0:
		// Already passed; no backfill.
		log.Debug("reminder time passed", "id", sched.ID, "title", sched.Title)
		return false
	case delay > s.horizon:
		log.Debug("reminder beyond horizon", "id", sched.ID, "in", delay)
		return false
	}

	s.mu.Lock()
	s.pending[sched.ID] = time.AfterFunc(delay, func() { s.fire(sched) })
	s.mu.Unlock()

	log.Info("reminder armed", "id", sched.ID, "title", sched.Title, "in", delay.Round(time.Second))
	return true
}

func (s *Scheduler) fire(sched model.Schedule) {
	s.mu.Lock()
	delete(s.pending, sched.ID)
	s.mu.Unlock()

	body := timeUntilText(sched.Reminder)
	if sched.Description != "" {
		body = sched.Description + "\n\n" + body
	}
	s.notifier.Show(sched.Title, body, notify.Metadata{
		ScheduleID: sched.ID,
		Date:       sched.StartDate,
		Time:       sched.StartTime,
	})
}

func timeUntilText(r model.Reminder) string {
	unit := "分"
	switch r.Unit {
	case model.UnitHours:
		unit = "時間"
	case model.UnitDays:
		unit = "日"
	}
	if r.Time == 0 {
		return "まもなく開始"
	}
	return fmt.Sprintf("%d%s後に開始", r.Time, unit)
}

// Cancel stops the pending timer for a schedule id. Canceling an absent,
// fired or already-canceled timer is a safe no-op.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.pending[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.pending, id)
	return true
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
}

// HasPending reports whether a timer is armed for the schedule id.
func (s *Scheduler) HasPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// PendingCount returns the number of armed timers.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingIDs returns the armed schedule ids.
func (s *Scheduler) PendingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	return ids
}

// ArmAll arms a batch, counting disabled reminders as skipped and
// out-of-window or failed ones as failed. One failure never aborts the
// rest of the batch.
func (s *Scheduler) ArmAll(schedules []model.Schedule) Results {
	var res Results
	for _, sched := range schedules {
		if !sched.Reminder.Enabled {
			res.Skipped++
			continue
		}
		if s.Arm(sched) {
			res.Armed++
		} else {
			res.Failed++
		}
	}
	return res
}

// ReconcileAll cancels every pending timer and re-arms timers for all
// non-deleted, non-completed schedules whose fire time falls within the
// horizon. Run at startup and periodically so long-horizon reminders
// eventually arm.
func (s *Scheduler) ReconcileAll(schedules []model.Schedule) Results {
	s.CancelAll()

	eligible := make([]model.Schedule, 0, len(schedules))
	for _, sched := range schedules {
		if sched.IsDeleted || sched.IsCompleted {
			continue
		}
		eligible = append(eligible, sched)
	}

	res := s.ArmAll(eligible)
	log.Info("reminders reconciled", "armed", res.Armed, "skipped", res.Skipped, "failed", res.Failed)
	return res
}
