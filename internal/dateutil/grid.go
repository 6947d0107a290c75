package dateutil

import (
	"time"

	"linecal/internal/model"
)

// MonthGridSize is the fixed cell count of a month grid: 6 full weeks.
const MonthGridSize = 42

// MonthGrid returns the 42-cell grid for the month containing date. The
// first cell is the first occurrence of weekStartsOn's weekday on or
// before the 1st of the month; cells outside the month are fully populated
// but flagged IsCurrentMonth=false.
func MonthGrid(date time.Time, weekStartsOn int, now time.Time) []model.GridCell {
	first := StartOfMonth(date)
	offset := (Weekday(first) - weekStartsOn + 7) % 7
	cur := first.AddDate(0, 0, -offset)

	grid := make([]model.GridCell, 0, MonthGridSize)
	for i := 0; i < MonthGridSize; i++ {
		cell := newCell(cur, now)
		cell.IsCurrentMonth = cur.Month() == first.Month()
		grid = append(grid, cell)
		cur = cur.AddDate(0, 0, 1)
	}
	return grid
}

// WeekGrid returns the 7 cells of the week containing date, starting on
// weekStartsOn's weekday.
func WeekGrid(date time.Time, weekStartsOn int, now time.Time) []model.GridCell {
	cur := StartOfWeek(date, weekStartsOn)

	grid := make([]model.GridCell, 0, 7)
	for i := 0; i < 7; i++ {
		cell := newCell(cur, now)
		cell.IsCurrentMonth = IsSameMonth(cur, date)
		grid = append(grid, cell)
		cur = cur.AddDate(0, 0, 1)
	}
	return grid
}

func newCell(day, now time.Time) model.GridCell {
	wd := Weekday(day)
	return model.GridCell{
		Date:         FormatISO(day),
		Day:          day.Day(),
		Month:        int(day.Month()),
		Year:         day.Year(),
		IsToday:      IsToday(day, now),
		IsWeekend:    IsWeekend(day),
		IsPast:       IsPast(day, now),
		IsFuture:     IsFuture(day, now),
		Weekday:      wd,
		WeekdayShort: WeekdaysShort[wd],
		WeekdayFull:  WeekdaysFull[wd],
	}
}
