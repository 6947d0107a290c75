// Package report builds the daily summary text pushed through the
// notifier: today's schedules followed by the upcoming week.
package report

import (
	"fmt"
	"strings"
	"time"

	"linecal/internal/dateutil"
	"linecal/internal/model"
)

// CategoryResolver maps a category id to its display record.
type CategoryResolver interface {
	ByID(id string) model.Category
}

// DailySummary renders a digest of today's and upcoming schedules.
func DailySummary(today, upcoming []model.Schedule, categories CategoryResolver, now time.Time) string {
	var b strings.Builder
	b.WriteString("📋 今日の予定\n")
	b.WriteString(fmt.Sprintf("🗓 %s (%s)\n\n", dateutil.FormatDisplay(now), dateutil.WeekdayShort(now)))

	if len(today) == 0 {
		b.WriteString("今日の予定はありません\n")
	} else {
		for _, s := range today {
			b.WriteString(formatEntry(s, categories))
		}
	}

	b.WriteString("\n🔜 今後7日間\n")
	if len(upcoming) == 0 {
		b.WriteString("直近の予定はありません\n")
	} else {
		for _, s := range upcoming {
			b.WriteString(formatUpcoming(s, categories, now))
		}
	}

	return strings.TrimSpace(b.String())
}

func formatEntry(s model.Schedule, categories CategoryResolver) string {
	var b strings.Builder
	icon := "🟢"
	if s.IsCompleted {
		icon = "✅"
	}
	b.WriteString(fmt.Sprintf("%s %s", icon, strings.TrimSpace(s.Title)))
	if !s.IsAllDay && s.StartTime != "" {
		b.WriteString(" " + s.StartTime)
	}
	if cat := categories.ByID(s.Category); cat.ID != model.FallbackCategoryID || s.Category == model.FallbackCategoryID {
		b.WriteString(fmt.Sprintf(" (%s)", cat.Name))
	}
	if s.Description != "" {
		b.WriteString("\n   📝 " + strings.TrimSpace(s.Description))
	}
	b.WriteByte('\n')
	return b.String()
}

func formatUpcoming(s model.Schedule, categories CategoryResolver, now time.Time) string {
	var b strings.Builder
	b.WriteString("• " + strings.TrimSpace(s.Title))
	if d, err := dateutil.ParseDate(s.StartDate); err == nil {
		b.WriteString(" " + dateutil.RelativeDate(d, now))
	}
	if cat := categories.ByID(s.Category); cat.Name != "" {
		b.WriteString(fmt.Sprintf(" (%s)", cat.Name))
	}
	b.WriteByte('\n')
	return b.String()
}
