package model

// ReminderUnit is the unit of a reminder offset.
type ReminderUnit string

const (
	UnitMinutes ReminderUnit = "minutes"
	UnitHours   ReminderUnit = "hours"
	UnitDays    ReminderUnit = "days"
)

// Reminder is the notification sub-record of a schedule. Updates replace
// it whole, never field by field.
type Reminder struct {
	Enabled bool         `json:"enabled"`
	Type    string       `json:"type"`
	Time    int          `json:"time"`
	Unit    ReminderUnit `json:"unit"`
}

// Recurrence is carried on the record but not expanded into occurrences.
type Recurrence struct {
	Enabled bool `json:"enabled"`
}

// DefaultColor is the display color used when none is given.
const DefaultColor = "#B0B0B0"

// DefaultReminder is the reminder applied to new schedules.
var DefaultReminder = Reminder{Enabled: false, Type: "local", Time: 15, Unit: UnitMinutes}

// ReminderOption is one preset offered when enabling a reminder.
type ReminderOption struct {
	Label string       `json:"label"`
	Time  int          `json:"time"`
	Unit  ReminderUnit `json:"unit"`
}

// ReminderOptions are the selectable reminder presets.
var ReminderOptions = []ReminderOption{
	{Label: "開始時", Time: 0, Unit: UnitMinutes},
	{Label: "5分前", Time: 5, Unit: UnitMinutes},
	{Label: "15分前", Time: 15, Unit: UnitMinutes},
	{Label: "30分前", Time: 30, Unit: UnitMinutes},
	{Label: "1時間前", Time: 1, Unit: UnitHours},
	{Label: "1日前", Time: 1, Unit: UnitDays},
}

// Schedule is the calendar entry. Dates are "YYYY-MM-DD", times "HH:MM",
// timestamps RFC3339. Soft-deleted records keep their data until the
// retention pass drops them.
type Schedule struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   string     `json:"startDate"`
	StartTime   string     `json:"startTime"`
	EndDate     string     `json:"endDate"`
	EndTime     string     `json:"endTime"`
	IsAllDay    bool       `json:"isAllDay"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Color       string     `json:"color"`
	Reminder    Reminder   `json:"reminder"`
	Recurrence  Recurrence `json:"recurrence"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
	IsCompleted bool       `json:"isCompleted"`
	IsDeleted   bool       `json:"isDeleted"`
}
