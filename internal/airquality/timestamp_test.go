package airquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-05-01T07:00:00+07:00",
		"2024-05-01T00:00:00.000Z",
		"1714521600",
		"1714521600000",
	} {
		ts, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, ts, in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
