package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)

	// 20:30 UTC on May 31 is already June 1 in Taipei
	now := time.Date(2025, 5, 31, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Today(now, taipei))
	assert.Equal(t, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), Today(now, time.UTC))
}

func TestDaysBetween(t *testing.T) {
	d := func(m time.Month, day int) time.Time { return time.Date(2025, m, day, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 0, DaysBetween(d(6, 1), d(6, 1)))
	assert.Equal(t, 90, DaysBetween(d(6, 1), d(8, 30)))
	assert.Equal(t, -1, DaysBetween(d(6, 2), d(6, 1)))
}
