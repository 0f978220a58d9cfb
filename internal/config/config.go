package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/airquality-dashboard/internal/route"
)

type AppConfig struct {
	Port string

	// HistoryBaseURL is the root of the backend serving /history and /devices.
	HistoryBaseURL string
	HTTPTimeout    time.Duration

	// RefreshInterval controls how often the device list and latest
	// readings are pulled from the backend.
	RefreshInterval time.Duration

	// PlaybackBaseInterval is the route playback tick at speed 1.
	PlaybackBaseInterval time.Duration

	// PlaybackIdleTTL closes playback views nobody touched for this long
	// (0 = never).
	PlaybackIdleTTL time.Duration

	// SyntheticFallback serves generated data when the backend has none.
	SyntheticFallback bool

	DBPath         string
	AuthSecret     string
	SessionTTL     time.Duration
	GeocoderAPIKey string

	// In-memory reading cache retention.
	StoreMaxHistory int           // max number of snapshots per device (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// MapFallback centers empty routes.
	MapFallback route.LatLng
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.HistoryBaseURL = strings.TrimRight(os.Getenv("HISTORY_BASE_URL"), "/")
	if cfg.HistoryBaseURL == "" {
		return nil, fmt.Errorf("HISTORY_BASE_URL is required")
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	if cfg.PlaybackBaseInterval, err = getenvDuration("PLAYBACK_BASE_INTERVAL", "500ms"); err != nil {
		return nil, err
	}
	if cfg.PlaybackBaseInterval <= 0 {
		return nil, fmt.Errorf("invalid PLAYBACK_BASE_INTERVAL: must be positive")
	}

	if cfg.PlaybackIdleTTL, err = getenvDuration("PLAYBACK_IDLE_TTL", "15m"); err != nil {
		return nil, err
	}

	cfg.SyntheticFallback = getenvBool("SYNTHETIC_FALLBACK", false)
	cfg.DBPath = getenvDefault("DB_PATH", "airquality.db")
	cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "12h"); err != nil {
		return nil, err
	}
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 60) // one hour at the default refresh interval
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.MapFallback = route.DefaultCenter
	if v := os.Getenv("MAP_FALLBACK_LAT"); v != "" {
		if cfg.MapFallback.Lat, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid MAP_FALLBACK_LAT: %w", err)
		}
	}
	if v := os.Getenv("MAP_FALLBACK_LNG"); v != "" {
		if cfg.MapFallback.Lng, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid MAP_FALLBACK_LNG: %w", err)
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
