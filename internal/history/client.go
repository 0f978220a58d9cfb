package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/session"
)

// DefaultTimeout is the ceiling for a single history request.
const DefaultTimeout = 30 * time.Second

// isoMillis is the timestamp layout the history service speaks.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Query selects a history window for one device. Either SinceHours or the
// explicit From/To pair is sent, never both; From/To wins when set.
type Query struct {
	DeviceCode string
	Metric     string
	SinceHours int
	From       time.Time
	To         time.Time
	AggMinutes int
}

// Explicit reports whether the query carries an explicit {from, to} range.
func (q Query) Explicit() bool {
	return !q.From.IsZero() && !q.To.IsZero()
}

// Values encodes the query string sent to the history service.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("device_code", q.DeviceCode)
	metric := q.Metric
	if metric == "" {
		metric = airquality.MetricAll
	}
	v.Set("metric", metric)
	if q.Explicit() {
		v.Set("from", q.From.UTC().Format(isoMillis))
		v.Set("to", q.To.UTC().Format(isoMillis))
	} else {
		v.Set("hours", strconv.Itoa(q.SinceHours))
	}
	if q.AggMinutes > 0 {
		v.Set("agg_minutes", strconv.Itoa(q.AggMinutes))
	}
	return v
}

// Result is the answer to a history query. Synthetic is set only when the
// series were generated locally instead of coming from the service.
type Result struct {
	Series    []airquality.Series
	Synthetic bool
}

// Points returns the total number of points in the result.
func (r Result) Points() int {
	return airquality.CountPoints(r.Series)
}

// Source is anything that can answer a history query.
type Source interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Client talks to the external history service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient builds a history client. A zero timeout uses DefaultTimeout.
func NewClient(client *http.Client, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newCircuitBreaker("history"),
	}
}

type pointPayload struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	SpeedKph  *float64 `json:"speedKph"`
}

type seriesPayload struct {
	MetricName string         `json:"metricName"`
	Average    *float64       `json:"average"`
	Points     []pointPayload `json:"points"`
}

type devicePayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Type         string `json:"type"`
	LocationType string `json:"locationType"`
	IsOnline     bool   `json:"is_online"`
	LastSeen     string `json:"last_seen"`
}

// Fetch issues exactly one GET to /history. Any failure is a *TransportError.
func (c *Client) Fetch(ctx context.Context, q Query) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []seriesPayload
	if err := c.getJSON(ctx, "/history", q.Values(), &payload); err != nil {
		return Result{}, transportErr("fetch", err)
	}

	series := make([]airquality.Series, 0, len(payload))
	for _, sp := range payload {
		metric, err := airquality.ParseMetric(sp.MetricName)
		if err != nil {
			log.Printf("DEBUG: history: skipping series for %s: %v", q.DeviceCode, err)
			continue
		}
		s := airquality.Series{
			Metric:  metric,
			Average: sp.Average,
			Points:  make([]airquality.Point, 0, len(sp.Points)),
		}
		for _, p := range sp.Points {
			s.Points = append(s.Points, airquality.Point{
				Timestamp: p.Timestamp,
				Value:     p.Value,
				Lat:       p.Lat,
				Lng:       p.Lng,
				SpeedKph:  p.SpeedKph,
			})
		}
		series = append(series, s)
	}

	return Result{Series: series}, nil
}

// ListDevices returns every device the history service knows about.
func (c *Client) ListDevices(ctx context.Context) ([]airquality.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []devicePayload
	if err := c.getJSON(ctx, "/devices", nil, &payload); err != nil {
		return nil, transportErr("list devices", err)
	}

	devices := make([]airquality.Device, 0, len(payload))
	for _, d := range payload {
		dev := airquality.Device{
			ID:           d.ID,
			Name:         d.Name,
			Code:         d.Code,
			Type:         airquality.DeviceFixed,
			LocationType: d.LocationType,
			IsOnline:     d.IsOnline,
		}
		if d.Type == string(airquality.DeviceMobile) {
			dev.Type = airquality.DeviceMobile
		}
		if ts, err := time.Parse(time.RFC3339, d.LastSeen); err == nil {
			dev.LastSeen = ts.UTC()
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := c.baseURL + path
		if len(values) > 0 {
			u = fmt.Sprintf("%s?%s", u, values.Encode())
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if s, ok := session.FromContext(ctx); ok && s.Token != "" {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}
		return req, nil
	}

	resp, err := doRequest(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
