package airquality

import (
	"errors"
	"fmt"
	"time"
)

// Metric is one named measured quantity reported by a device.
type Metric string

const (
	MetricPM1         Metric = "pm1"
	MetricPM25        Metric = "pm25"
	MetricPM10        Metric = "pm10"
	MetricParticle0p3 Metric = "particle_0p3"
	MetricCO2         Metric = "co2_ppm"
	MetricTemperature Metric = "temperature_c"
	MetricHumidity    Metric = "humidity_rh"
	MetricTVOC        Metric = "tvoc_ppb"
	MetricTVOCRawLogR Metric = "tvoc_raw_logr"
	MetricTVOCIndex   Metric = "tvoc_index"
	MetricNOxIndex    Metric = "nox_index"
	MetricNOxRawLogR  Metric = "nox_raw_logr"
)

// MetricAll is the history selector that requests every metric at once.
const MetricAll = "All"

// Metrics lists the closed set of metrics in a stable order.
var Metrics = []Metric{
	MetricPM1,
	MetricPM25,
	MetricPM10,
	MetricParticle0p3,
	MetricCO2,
	MetricTemperature,
	MetricHumidity,
	MetricTVOC,
	MetricTVOCRawLogR,
	MetricTVOCIndex,
	MetricNOxIndex,
	MetricNOxRawLogR,
}

// ParseMetric validates a metric name against the closed set.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// DeviceType distinguishes stationary from moving sensors.
type DeviceType string

const (
	DeviceFixed  DeviceType = "fixed"
	DeviceMobile DeviceType = "mobile"
)

// Device is a physical unit reporting environmental metrics.
// Code is the identifier the history backend knows the device by.
type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	Type         DeviceType `json:"type"`
	LocationType string     `json:"locationType"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     time.Time  `json:"lastSeen,omitzero"`
}

// IsMobile reports whether the device carries geotagged readings.
func (d Device) IsMobile() bool {
	return d.Type == DeviceMobile
}

// Online returns the device's connectivity status. The backend's is_online
// flag is the only authority; no local staleness window is applied.
func (d Device) Online() bool {
	return d.IsOnline
}

// Sample is one sensor reading at an instant.
type Sample struct {
	Timestamp string   `json:"timestamp"`
	Metric    Metric   `json:"metric"`
	Value     *float64 `json:"value"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// Point is one entry of a per-metric history series.
type Point struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	SpeedKph  *float64 `json:"speedKph,omitempty"`
}

// Series is the history backend's answer for a single metric.
type Series struct {
	Metric  Metric   `json:"metric"`
	Average *float64 `json:"average,omitempty"`
	Points  []Point  `json:"points"`
}

// Samples flattens the series into per-metric samples in series order.
func (s Series) Samples() []Sample {
	out := make([]Sample, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, Sample{
			Timestamp: p.Timestamp,
			Metric:    s.Metric,
			Value:     p.Value,
			Lat:       p.Lat,
			Lng:       p.Lng,
		})
	}
	return out
}

// CountPoints returns the total number of points across all series.
func CountPoints(series []Series) int {
	n := 0
	for _, s := range series {
		n += len(s.Points)
	}
	return n
}

// Snapshot is the latest known set of values for a device, keyed by metric.
type Snapshot struct {
	DeviceID  string             `json:"deviceId"`
	Timestamp time.Time          `json:"timestamp"` // always UTC
	Values    map[Metric]float64 `json:"values"`
	Synthetic bool               `json:"synthetic,omitempty"`
}

// Float returns a pointer to v; handy for building optional readings.
func Float(v float64) *float64 {
	return &v
}

// ErrMissingDeviceCode is returned before any network call when a device has
// no code the history service could look it up by.
var ErrMissingDeviceCode = errors.New("selected sensor does not have a sensor code")
