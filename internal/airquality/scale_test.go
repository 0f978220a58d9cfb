package airquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor_Breakpoints(t *testing.T) {
	cases := []struct {
		pm25 float64
		want Tier
	}{
		{-1, TierGood},
		{0, TierGood},
		{12, TierGood},
		{12.01, TierModerate},
		{35.4, TierModerate},
		{35.41, TierUnhealthy},
		{55.4, TierUnhealthy},
		{55.41, TierHazardous},
		{500, TierHazardous},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.pm25), "pm25=%v", tc.pm25)
	}
}

func TestColorFor_ConstantWithinTier(t *testing.T) {
	assert.Equal(t, ColorFor(1), ColorFor(11.9))
	assert.Equal(t, ColorFor(13), ColorFor(35))
	assert.Equal(t, ColorFor(36), ColorFor(55))
	assert.Equal(t, ColorFor(56), ColorFor(300))

	assert.NotEqual(t, ColorFor(12), ColorFor(12.1))
	assert.NotEqual(t, ColorFor(35.4), ColorFor(35.5))
	assert.NotEqual(t, ColorFor(55.4), ColorFor(55.5))

	assert.Equal(t, ColorGreen, ColorFor(5))
	assert.Equal(t, ColorYellow, ColorFor(20))
	assert.Equal(t, ColorOrange, ColorFor(40))
	assert.Equal(t, ColorRed, ColorFor(80))
}

func TestLookupTimeRange(t *testing.T) {
	r, err := LookupTimeRange("7d")
	require.NoError(t, err)
	assert.Equal(t, 168, r.SinceHours)
	assert.Equal(t, 60, r.AggMinutes)

	r, err = LookupTimeRange("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeRange, r)

	_, err = LookupTimeRange("2y")
	assert.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("co2_ppm")
	require.NoError(t, err)
	assert.Equal(t, MetricCO2, m)

	_, err = ParseMetric("ozone")
	assert.Error(t, err)
}

func TestDeviceOnlineUsesBackendFlag(t *testing.T) {
	d := Device{IsOnline: true}
	assert.True(t, d.Online())
	d.IsOnline = false
	assert.False(t, d.Online())
}
