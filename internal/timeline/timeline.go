// Package timeline maps hierarchical tasks with optional date ranges onto a
// month-and-week grid for Gantt rendering. Everything here is pure: the same
// task snapshot and reference day always produce the same layout, so callers
// may cache results and invoke it concurrently.
package timeline

import (
	"time"

	"commit-tracker/internal/model"
)

// defaultWindowDays is the span rendered when no task carries any date.
const defaultWindowDays = 90

// minWeeksPerMonth guarantees a minimum visual width even for short months.
const minWeeksPerMonth = 5

// MonthBucket is one calendar month on the axis and the number of
// Sunday-aligned weeks it spans.
type MonthBucket struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Weeks int        `json:"weeks"`
}

// Bar is a task's horizontal placement in percent of the full axis.
type Bar struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Layout is the derived grid plus per-task bar geometry. Tasks missing a
// start or end date have no entry in Bars.
type Layout struct {
	Months     []MonthBucket `json:"months"`
	TotalWeeks int           `json:"total_weeks"`
	Bars       map[uint]Bar  `json:"bars"`
}

// Build computes the timeline for a task forest. today anchors the default
// window used when the forest carries no dates at all.
func Build(tasks []model.Task, today time.Time) Layout {
	min, max := dateRange(tasks, today)
	months := monthBuckets(min, max)

	totalWeeks := 0
	for _, m := range months {
		totalWeeks += m.Weeks
	}

	l := Layout{Months: months, TotalWeeks: totalWeeks, Bars: map[uint]Bar{}}
	var walk func(ts []model.Task)
	walk = func(ts []model.Task) {
		for _, t := range ts {
			if bar, ok := l.barFor(t); ok {
				l.Bars[t.ID] = bar
			}
			walk(t.Children)
		}
	}
	walk(tasks)
	return l
}

// dateRange finds the smallest and largest date across the forest. With no
// dates present the window defaults to [today, today+90d]. A non-default
// lower bound is clamped to the first day of its month and the upper bound
// to the last day of its month.
func dateRange(tasks []model.Task, today time.Time) (time.Time, time.Time) {
	var dates []time.Time
	var collect func(ts []model.Task)
	collect = func(ts []model.Task) {
		for _, t := range ts {
			for _, d := range []*time.Time{t.StartDate, t.EndDate, t.DueDate} {
				if d != nil {
					dates = append(dates, *d)
				}
			}
			collect(t.Children)
		}
	}
	collect(tasks)

	if len(dates) == 0 {
		start := midnight(today)
		return start, start.AddDate(0, 0, defaultWindowDays)
	}

	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}

	minClamped := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
	maxClamped := time.Date(max.Year(), max.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
	return minClamped, maxClamped
}

// monthBuckets iterates calendar months from min's month to max's month
// inclusive.
func monthBuckets(min, max time.Time) []MonthBucket {
	var buckets []MonthBucket
	current := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := midnight(max)
	for !current.After(end) {
		buckets = append(buckets, MonthBucket{
			Year:  current.Year(),
			Month: current.Month(),
			Weeks: weeksInMonth(current.Year(), current.Month()),
		})
		current = current.AddDate(0, 1, 0)
	}
	return buckets
}

// weeksInMonth counts the Sunday-to-Sunday spans covering the month, from
// the Sunday on/before the 1st to the Sunday on/before the last day,
// inclusive, with a floor of 5.
func weeksInMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	firstSunday := sundayOnOrBefore(first)
	lastSunday := sundayOnOrBefore(last)

	weeks := int(lastSunday.Sub(firstSunday)/(7*24*time.Hour)) + 1
	if weeks < minWeeksPerMonth {
		weeks = minWeeksPerMonth
	}
	return weeks
}

// weekIndex maps a date to its zero-based position on the global week axis:
// the week-of-month within the date's bucket plus the cumulative weeks of
// every preceding bucket.
func (l Layout) weekIndex(date time.Time) int {
	d := midnight(date)
	monthStart := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstSunday := sundayOnOrBefore(monthStart)
	weekInMonth := int(d.Sub(firstSunday) / (7 * 24 * time.Hour))

	offset := 0
	for _, b := range l.Months {
		if b.Year == d.Year() && b.Month == d.Month() {
			break
		}
		offset += b.Weeks
	}
	return offset + weekInMonth
}

// barFor computes a task's bar. Tasks missing either endpoint render no bar.
// An inverted range (end before start) still yields the minimum one-week
// duration rather than an error.
func (l Layout) barFor(task model.Task) (Bar, bool) {
	if task.StartDate == nil || task.EndDate == nil || l.TotalWeeks == 0 {
		return Bar{}, false
	}

	startWeek := l.weekIndex(*task.StartDate)
	endWeek := l.weekIndex(*task.EndDate)
	duration := endWeek - startWeek + 1
	if duration < 1 {
		duration = 1
	}

	return Bar{
		Left:  float64(startWeek) / float64(l.TotalWeeks) * 100,
		Width: float64(duration) / float64(l.TotalWeeks) * 100,
	}, true
}

// sundayOnOrBefore returns the Sunday of t's week at midnight UTC.
func sundayOnOrBefore(t time.Time) time.Time {
	d := midnight(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// midnight normalizes to a date-only value in UTC so week arithmetic never
// crosses DST boundaries.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
