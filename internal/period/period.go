// Package period holds the time-window helpers shared by the assignment
// lifecycle engine and the analytics engine: named period tokens, trailing
// day/week buckets and the percentage rounding used across all rollups.
package period

import (
	"math"
	"time"
)

// Token names a relative reporting window.
type Token string

const (
	TokenWeek    Token = "week"
	TokenMonth   Token = "month"
	TokenQuarter Token = "quarter"
	TokenYear    Token = "year"
)

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// FromToken derives an explicit [now-N days, now] window from a named
// period token. Unknown or empty tokens fall back to week (7 days).
func FromToken(token Token, now time.Time) Window {
	days := 7
	switch token {
	case TokenMonth:
		days = 30
	case TokenQuarter:
		days = 90
	case TokenYear:
		days = 365
	case TokenWeek:
		days = 7
	}
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Bucket is one aggregation slot of a day or week series.
type Bucket struct {
	Start time.Time
	End   time.Time
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBuckets returns the trailing n calendar days as [dayStart, dayStart+1d)
// buckets, ordered chronologically oldest first. The last bucket is today.
func DayBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := StartOfDay(now.AddDate(0, 0, -i))
		buckets = append(buckets, Bucket{Start: start, End: start.AddDate(0, 0, 1)})
	}
	return buckets
}

// WeekBuckets returns n trailing non-overlapping 7-day buckets ending at
// now, ordered oldest first.
func WeekBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	for i := n; i >= 1; i-- {
		buckets = append(buckets, Bucket{
			Start: now.AddDate(0, 0, -7*i),
			End:   now.AddDate(0, 0, -7*(i-1)),
		})
	}
	return buckets
}

// Round1 rounds to one decimal place, half away from zero. Every percentage
// the engines return goes through this so a single response never mixes
// rounding modes.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percentage computes completed/total as a percentage rounded to one
// decimal. A zero denominator yields 0, never NaN.
func Percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(completed) / float64(total) * 100)
}

// WholeDays returns the number of whole days from a to b.
func WholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
