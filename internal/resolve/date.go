// Package resolve computes the target week and the artifact name for a run.
// Everything here is pure apart from logging; the capture pipeline depends
// on the exact semantics of these helpers for both portal navigation and
// file naming.
package resolve

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const dateLayout = "20060102"

// MondayOfISOWeek returns the Monday of the given ISO week. Week 1 is the
// week containing January 4th.
func MondayOfISOWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.Local)
	// time.Weekday counts from Sunday; ISO weekdays count from Monday.
	offset := (int(jan4.Weekday()) + 6) % 7
	mondayWeek1 := jan4.AddDate(0, 0, -offset)
	return mondayWeek1.AddDate(0, 0, 7*(week-1))
}

// WeekLabel derives the "S<n>" week label from a YYYYMMDD date string,
// or "S--" when the date cannot be parsed.
func WeekLabel(dateStr string) string {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return "S--"
	}
	_, week := t.ISOWeek()
	return fmt.Sprintf("S%d", week)
}

// WeekInputs are the candidate week selectors, in priority order.
type WeekInputs struct {
	TargetWeek  string // ISO week number of the current year
	TargetDate  string // explicit date, YYYYMMDD
	WeeksOffset string // signed offset in weeks from now
}

// TargetDate resolves the date identifying the target week. Only the first
// input present is used; invalid numeric input is logged and the chain
// proceeds to the next candidate. The current date is the default.
func TargetDate(in WeekInputs, now time.Time) string {
	if in.TargetWeek != "" {
		if week, err := strconv.Atoi(in.TargetWeek); err == nil {
			date := MondayOfISOWeek(now.Year(), week).Format(dateLayout)
			slog.Info("Using TARGET_WEEK", "week", in.TargetWeek, "date", date)
			return date
		}
		slog.Warn("Invalid TARGET_WEEK value", "value", in.TargetWeek)
	}

	if in.TargetDate != "" {
		slog.Info("Using TARGET_DATE", "date", in.TargetDate)
		return in.TargetDate
	}

	if in.WeeksOffset != "" {
		if offset, err := strconv.Atoi(in.WeeksOffset); err == nil {
			date := now.AddDate(0, 0, 7*offset).Format(dateLayout)
			slog.Info("Using WEEKS_OFFSET", "offset", in.WeeksOffset, "date", date)
			return date
		}
		slog.Warn("Invalid WEEKS_OFFSET value", "value", in.WeeksOffset)
	}

	date := now.Format(dateLayout)
	slog.Info("Using current date", "date", date)
	return date
}
