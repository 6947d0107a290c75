// Package dateutil holds the pure calendar math used by the rest of the
// application: date parsing and formatting, calendar-aware arithmetic and
// the month/week grid generation. Every function is deterministic; the
// ones that depend on "now" take it as an argument.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutISO is the canonical storage form for calendar dates.
	LayoutISO = "2006-01-02"
	// LayoutDisplay is the localized display form.
	LayoutDisplay = "2006年1月2日"
	// LayoutTime is the storage form for times of day.
	LayoutTime = "15:04"
	// LayoutDateTime combines date and time as stored on schedules.
	LayoutDateTime = "2006-01-02 15:04"
)

// ErrInvalidDate is returned when no known format matches the input.
var ErrInvalidDate = errors.New("invalid date")

// WeekdaysShort are single-character weekday labels, Sunday first.
var WeekdaysShort = []string{"日", "月", "火", "水", "木", "金", "土"}

// WeekdaysFull are full weekday labels, Sunday first.
var WeekdaysFull = []string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

// parseFormats is the ordered list tried by ParseDate before falling back
// to lenient parsing.
var parseFormats = []string{
	LayoutISO,
	LayoutDisplay,
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
}

// lenientFormats are tried last, matching loosely written inputs.
var lenientFormats = []string{
	time.RFC3339,
	"2006-1-2",
	"2006/1/2",
}

// ParseDate parses a date string, trying a fixed ordered list of formats
// first. The result is normalized to midnight UTC. Callers must check the
// error before using the date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range parseFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return StartOfDay(t), nil
		}
	}
	for _, layout := range lenientFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return StartOfDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseDateTime parses a date plus an HH:mm time of day. An empty time
// defaults to 00:00.
func ParseDateTime(date, hm string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if hm == "" {
		return day, nil
	}
	t, err := time.Parse(LayoutTime, hm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidDate, hm)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// FormatISO renders t as YYYY-MM-DD.
func FormatISO(t time.Time) string { return t.Format(LayoutISO) }

// FormatDisplay renders t in the localized display form.
func FormatDisplay(t time.Time) string { return t.Format(LayoutDisplay) }

// MonthYearDisplay renders t as "YYYY年M月".
func MonthYearDisplay(t time.Time) string { return t.Format("2006年1月") }

// YearDisplay renders t as "YYYY年".
func YearDisplay(t time.Time) string { return t.Format("2006年") }

// FormatTimeOfDay renders an HH:mm string either as-is (24h) or in the
// 午前/午後 12-hour form.
func FormatTimeOfDay(hm string, use24Hour bool) string {
	if hm == "" {
		return ""
	}
	if use24Hour {
		return hm
	}
	t, err := time.Parse(LayoutTime, hm)
	if err != nil {
		return hm
	}
	h := t.Hour()
	period := "午前"
	if h >= 12 {
		period = "午後"
	}
	display := h
	switch {
	case h == 0:
		display = 12
	case h > 12:
		display = h - 12
	}
	return fmt.Sprintf("%s %d:%02d", period, display, t.Minute())
}

// StartOfDay truncates t to midnight UTC, the canonical form for a
// calendar date.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// IsSameDay reports whether a and b fall on the same calendar day.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether t falls on now's calendar day.
func IsToday(t, now time.Time) bool { return IsSameDay(t, now) }

// IsPast reports whether t's day is strictly before now's day.
func IsPast(t, now time.Time) bool { return StartOfDay(t).Before(StartOfDay(now)) }

// IsFuture reports whether t's day is strictly after now's day.
func IsFuture(t, now time.Time) bool { return StartOfDay(t).After(StartOfDay(now)) }

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Sunday || wd == time.Saturday
}

// IsSameWeek reports whether a and b fall in the same week given the
// configured first weekday.
func IsSameWeek(a, b time.Time, weekStartsOn int) bool {
	return StartOfWeek(a, weekStartsOn).Equal(StartOfWeek(b, weekStartsOn))
}

// IsSameMonth reports whether a and b fall in the same calendar month.
func IsSameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Weekday returns the day of week as 0 (Sunday) through 6 (Saturday).
func Weekday(t time.Time) int { return int(t.Weekday()) }

// WeekdayShort returns the short label for t's weekday.
func WeekdayShort(t time.Time) string { return WeekdaysShort[Weekday(t)] }

// WeekdayFull returns the full label for t's weekday.
func WeekdayFull(t time.Time) string { return WeekdaysFull[Weekday(t)] }

// AddDays returns t shifted by n calendar days.
func AddDays(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }

// AddWeeks returns t shifted by n weeks.
func AddWeeks(t time.Time, n int) time.Time { return t.AddDate(0, 0, n*7) }

// AddMonths returns t shifted by n months, clamping the day to the length
// of the target month (Jan 31 + 1 month = Feb 28/29, never Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if limit := DaysInMonth(first); d > limit {
		d = limit
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	// Move to the next month, roll back a day.
	return StartOfMonth(t).AddDate(0, 1, -1).Day()
}

// StartOfWeek returns the first occurrence of weekStartsOn's weekday on or
// before t. weekStartsOn is 0 (Sunday) through 6 (Saturday).
func StartOfWeek(t time.Time, weekStartsOn int) time.Time {
	diff := (Weekday(t) - weekStartsOn + 7) % 7
	return StartOfDay(t).AddDate(0, 0, -diff)
}

// EndOfWeek returns the last day of the week containing t.
func EndOfWeek(t time.Time, weekStartsOn int) time.Time {
	return StartOfWeek(t, weekStartsOn).AddDate(0, 0, 6)
}

// DaysDiff returns the number of whole calendar days from b to a.
func DaysDiff(a, b time.Time) int {
	return int(StartOfDay(a).Sub(StartOfDay(b)) / (24 * time.Hour))
}

// Compare orders two dates by calendar day: -1, 0 or 1.
func Compare(a, b time.Time) int {
	switch {
	case StartOfDay(a).Before(StartOfDay(b)):
		return -1
	case StartOfDay(a).After(StartOfDay(b)):
		return 1
	}
	return 0
}

// DateRange enumerates every date from start through end inclusive, in
// ISO form. An inverted range yields nil.
func DateRange(start, end time.Time) []string {
	var dates []string
	for cur := StartOfDay(start); !cur.After(StartOfDay(end)); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, FormatISO(cur))
	}
	return dates
}

// RelativeDate describes t relative to now: 今日, 明日, 昨日, N日後 or
// N日前 within a week, otherwise the display form.
func RelativeDate(t, now time.Time) string {
	diff := DaysDiff(t, now)
	switch {
	case diff == 0:
		return "今日"
	case diff == 1:
		return "明日"
	case diff == -1:
		return "昨日"
	case diff > 1 && diff <= 7:
		return fmt.Sprintf("%d日後", diff)
	case diff < -1 && diff >= -7:
		return fmt.Sprintf("%d日前", -diff)
	}
	return FormatDisplay(t)
}
