package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airquality-dashboard/internal/route"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("HISTORY_BASE_URL", "https://api.example.com/")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.HistoryBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.PlaybackBaseInterval)
	assert.Equal(t, 15*time.Minute, cfg.PlaybackIdleTTL)
	assert.False(t, cfg.SyntheticFallback)
	assert.Equal(t, route.DefaultCenter, cfg.MapFallback)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HISTORY_BASE_URL", "http://localhost:9000")
	t.Setenv("PORT", "3000")
	t.Setenv("SYNTHETIC_FALLBACK", "true")
	t.Setenv("PLAYBACK_BASE_INTERVAL", "250ms")
	t.Setenv("STORE_MAX_HISTORY", "10")
	t.Setenv("PLAYBACK_IDLE_TTL", "0")
	t.Setenv("MAP_FALLBACK_LAT", "18.79")
	t.Setenv("MAP_FALLBACK_LNG", "98.98")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.True(t, cfg.SyntheticFallback)
	assert.Equal(t, 250*time.Millisecond, cfg.PlaybackBaseInterval)
	assert.Equal(t, 10, cfg.StoreMaxHistory)
	assert.Equal(t, time.Duration(0), cfg.PlaybackIdleTTL)
	assert.Equal(t, route.LatLng{Lat: 18.79, Lng: 98.98}, cfg.MapFallback)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("HISTORY_BASE_URL", "")
	_, err := fromEnv()
	assert.Error(t, err)

	t.Setenv("HISTORY_BASE_URL", "http://localhost")
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err = fromEnv()
	assert.ErrorContains(t, err, "HTTP_TIMEOUT")

	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("MAP_FALLBACK_LAT", "north")
	_, err = fromEnv()
	assert.ErrorContains(t, err, "MAP_FALLBACK_LAT")
}
