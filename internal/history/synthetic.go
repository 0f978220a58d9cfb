package history

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// Synthetic generates deterministic readings for demos and offline use.
// It is only ever consulted through Fallback, and only when enabled by config.
type Synthetic struct {
	OriginLat float64
	OriginLng float64
	Now       func() time.Time
}

// NewSynthetic returns a generator whose mobile track circles the origin.
func NewSynthetic(originLat, originLng float64) *Synthetic {
	return &Synthetic{
		OriginLat: originLat,
		OriginLng: originLng,
		Now:       time.Now,
	}
}

// Fetch fills every requested metric with one point per aggregation bucket.
func (s *Synthetic) Fetch(_ context.Context, q Query) (Result, error) {
	from, to := q.From.UTC(), q.To.UTC()
	if !q.Explicit() {
		to = s.Now().UTC().Truncate(time.Minute)
		from = to.Add(-time.Duration(q.SinceHours) * time.Hour)
	}
	step := time.Duration(q.AggMinutes) * time.Minute
	if step <= 0 {
		step = time.Minute
	}

	metrics := airquality.Metrics
	if q.Metric != "" && q.Metric != airquality.MetricAll {
		m, err := airquality.ParseMetric(q.Metric)
		if err != nil {
			return Result{}, err
		}
		metrics = []airquality.Metric{m}
	}

	series := make([]airquality.Series, 0, len(metrics))
	for mi, m := range metrics {
		sr := airquality.Series{Metric: m}
		i := 0
		for ts := from; !ts.After(to); ts = ts.Add(step) {
			phase := float64(i)/12 + float64(mi)
			angle := float64(i) * math.Pi / 90
			sr.Points = append(sr.Points, airquality.Point{
				Timestamp: ts.Format(isoMillis),
				Value:     airquality.Float(syntheticValue(m, phase)),
				Lat:       airquality.Float(s.OriginLat + 0.01*math.Sin(angle)),
				Lng:       airquality.Float(s.OriginLng + 0.01*math.Cos(angle)),
				SpeedKph:  airquality.Float(18 + 6*math.Sin(phase)),
			})
			i++
		}
		series = append(series, sr)
	}

	return Result{Series: series, Synthetic: true}, nil
}

func syntheticValue(m airquality.Metric, phase float64) float64 {
	wave := math.Sin(phase)
	var v float64
	switch m {
	case airquality.MetricPM1:
		v = 8 + 4*wave
	case airquality.MetricPM25:
		v = 25 + 20*wave
	case airquality.MetricPM10:
		v = 40 + 25*wave
	case airquality.MetricParticle0p3:
		v = 1500 + 600*wave
	case airquality.MetricCO2:
		v = 650 + 150*wave
	case airquality.MetricTemperature:
		v = 30 + 4*wave
	case airquality.MetricHumidity:
		v = 65 + 15*wave
	case airquality.MetricTVOC:
		v = 120 + 60*wave
	case airquality.MetricTVOCIndex, airquality.MetricNOxIndex:
		v = 100 + 40*wave
	default:
		v = 30000 + 2000*wave
	}
	return math.Round(v*10) / 10
}

// Fallback serves Primary and switches to Synthetic only when Primary
// answered successfully with zero points and the fallback is enabled.
// The two are never mixed in a single result.
type Fallback struct {
	Primary   Source
	Synthetic Source
	Enabled   bool
}

// Fetch implements Source.
func (f *Fallback) Fetch(ctx context.Context, q Query) (Result, error) {
	res, err := f.Primary.Fetch(ctx, q)
	if err != nil {
		return Result{}, err
	}
	if res.Points() > 0 || !f.Enabled || f.Synthetic == nil {
		return res, nil
	}

	log.Printf("INFO: history returned no points for %s; using synthetic fallback", q.DeviceCode)
	syn, err := f.Synthetic.Fetch(ctx, q)
	if err != nil {
		return Result{}, err
	}
	syn.Synthetic = true
	return syn, nil
}
