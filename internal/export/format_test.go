package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalTime_FixedOffset(t *testing.T) {
	ts := time.Date(2024, 12, 31, 20, 30, 15, 0, time.UTC)
	assert.Equal(t, "2025-01-01 03:30:15", LocalTime(ts))

	// A non-UTC input is normalised first.
	ny := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2025-01-01 03:30:15", LocalTime(ts.In(ny)))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "roof--1-sensor", Slug("Roof #1 Sensor"))
	assert.Equal(t, "caf--", Slug("Café!"))
	assert.Equal(t, "abc123", Slug("ABC123"))
}

func TestFilename(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"sensor-export-bangkok-office-2024-05-01T00:00:00.000Z-to-2024-05-02T12:00:00.000Z.csv",
		Filename("Bangkok Office", start, end))
}
