package model

// ViewMode selects how the calendar is displayed.
type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewDay   ViewMode = "day"
	ViewList  ViewMode = "list"
)

// ValidViewMode reports whether m is one of the known view modes.
func ValidViewMode(m ViewMode) bool {
	switch m {
	case ViewMonth, ViewWeek, ViewDay, ViewList:
		return true
	}
	return false
}

// GridCell is one derived day cell of a calendar grid. It is computed
// fresh per request and never persisted.
type GridCell struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
	IsWeekend      bool   `json:"isWeekend"`
	IsPast         bool   `json:"isPast"`
	IsFuture       bool   `json:"isFuture"`
	Weekday        int    `json:"weekday"`
	WeekdayShort   string `json:"weekdayShort"`
	WeekdayFull    string `json:"weekdayFull"`
}
