package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromToken(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		token Token
		days  int
	}{
		{TokenWeek, 7},
		{TokenMonth, 30},
		{TokenQuarter, 90},
		{TokenYear, 365},
		{Token("bogus"), 7},
		{Token(""), 7},
	}
	for _, tc := range tests {
		w := FromToken(tc.token, now)
		assert.Equal(t, now.AddDate(0, 0, -tc.days), w.Start, "token %q", tc.token)
		assert.Equal(t, now, w.End, "token %q", tc.token)
	}
}

func TestWindowContains(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	w := FromToken(TokenWeek, now)

	assert.True(t, w.Contains(now.AddDate(0, 0, -3)))
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End)) // half-open
	assert.False(t, w.Contains(now.AddDate(0, 0, -8)))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 16, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), StartOfDay(in))

	// Non-UTC inputs normalize to the UTC calendar day.
	loc := time.FixedZone("UTC+3", 3*3600)
	in = time.Date(2026, 3, 17, 1, 30, 0, 0, loc) // 22:30 UTC on the 16th
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestDayBuckets(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	buckets := DayBuckets(now, 7)
	require.Len(t, buckets, 7)

	// Oldest first, last bucket is today.
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), buckets[6].Start)
	assert.True(t, buckets[6].Contains(now))
	assert.False(t, buckets[5].Contains(now))

	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].End, buckets[i].Start)
	}
}

func TestWeekBuckets(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	buckets := WeekBuckets(now, 4)
	require.Len(t, buckets, 4)

	assert.Equal(t, now.AddDate(0, 0, -28), buckets[0].Start)
	assert.Equal(t, now, buckets[3].End)
	assert.True(t, buckets[3].Contains(now.AddDate(0, 0, -1)))
	assert.False(t, buckets[3].Contains(now))

	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].End, buckets[i].Start)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(66.666))
	assert.Equal(t, 33.3, Round1(33.333))
	assert.Equal(t, 50.0, Round1(50.0))
	assert.Equal(t, 0.1, Round1(0.05))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 70.0, Percentage(7, 10))
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 0.0, Percentage(0, 0)) // never NaN
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 100.0, Percentage(3, 3))
}

func TestWholeDays(t *testing.T) {
	a := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, WholeDays(a, a.AddDate(0, 0, 14)))
	assert.Equal(t, 0, WholeDays(a, a.Add(23*time.Hour)))
	assert.Equal(t, -2, WholeDays(a, a.AddDate(0, 0, -2)))
}
