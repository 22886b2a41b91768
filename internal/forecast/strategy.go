// Package forecast projects account balances forward from recurring events.
//
// Each frequency has its own occurrence strategy, looked up through a
// registry so new frequencies can be added without touching the projection.
package forecast

import (
	"fmt"

	"findash/internal/core"
)

// Occurrence decides whether an event that started on start happens on day.
// Callers guarantee day is not before start.
type Occurrence interface {
	Occurs(day, start core.Date) bool
}

// DailyOccurrence happens every day.
type DailyOccurrence struct{}

func (DailyOccurrence) Occurs(_, _ core.Date) bool { return true }

// WeeklyOccurrence happens on the start date's weekday.
type WeeklyOccurrence struct{}

func (WeeklyOccurrence) Occurs(day, start core.Date) bool {
	return day.Weekday() == start.Weekday()
}

// BiWeeklyOccurrence happens every 14 days counted from the start date.
type BiWeeklyOccurrence struct{}

func (BiWeeklyOccurrence) Occurs(day, start core.Date) bool {
	return day.DaysSince(start)%14 == 0
}

// MonthlyOccurrence happens on the start date's day of month. Months that
// are too short use their last day.
type MonthlyOccurrence struct{}

func (MonthlyOccurrence) Occurs(day, start core.Date) bool {
	return day.Day() == clampDay(start.Day(), day)
}

// YearlyOccurrence happens on the start date's month and day, with
// 29 February falling back to the 28th outside leap years.
type YearlyOccurrence struct{}

func (YearlyOccurrence) Occurs(day, start core.Date) bool {
	return day.Month() == start.Month() && day.Day() == clampDay(start.Day(), day)
}

func clampDay(target int, in core.Date) int {
	return min(target, in.LastDayOfMonth())
}

var occurrences = map[core.Frequency]Occurrence{
	core.Daily:    DailyOccurrence{},
	core.Weekly:   WeeklyOccurrence{},
	core.BiWeekly: BiWeeklyOccurrence{},
	core.Monthly:  MonthlyOccurrence{},
	core.Yearly:   YearlyOccurrence{},
}

// GetOccurrence returns the strategy registered for a frequency.
func GetOccurrence(frequency core.Frequency) (Occurrence, error) {
	o, ok := occurrences[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return o, nil
}

// RegisterOccurrence adds or replaces the strategy for a frequency. It is
// not safe to call concurrently with projections.
func RegisterOccurrence(frequency core.Frequency, o Occurrence) {
	occurrences[frequency] = o
}
