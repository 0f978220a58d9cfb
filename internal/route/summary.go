package route

import (
	"time"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Summary describes a route as a whole.
type Summary struct {
	Points      int           `json:"points"`
	DistanceKm  float64       `json:"distanceKm"`
	Duration    time.Duration `json:"duration"`
	AvgSpeedKph float64       `json:"avgSpeedKph"`
	MaxSpeedKph float64       `json:"maxSpeedKph"`
	MaxPM25     float64       `json:"maxPm25"`
	Start       *Point        `json:"start,omitempty"`
	End         *Point        `json:"end,omitempty"`
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	pa := s2.LatLngFromDegrees(a.Lat, a.Lng)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return pa.Distance(pb).Radians() * EarthRadiusKm
}

// Summarize walks the route once. A point's reported speed is preferred;
// otherwise the speed is derived from the leg leading into it.
func Summarize(points []Point) Summary {
	s := Summary{Points: len(points)}
	if len(points) == 0 {
		return s
	}

	first, last := points[0], points[len(points)-1]
	s.Start, s.End = &first, &last
	s.Duration = last.At.Sub(first.At)

	for i, p := range points {
		if v := pm25(p); v > s.MaxPM25 {
			s.MaxPM25 = v
		}

		var speed float64
		if i > 0 {
			leg := DistanceKm(points[i-1], p)
			s.DistanceKm += leg
			if dt := p.At.Sub(points[i-1].At).Hours(); dt > 0 {
				speed = leg / dt
			}
		}
		if p.SpeedKph != nil {
			speed = *p.SpeedKph
		}
		if speed > s.MaxSpeedKph {
			s.MaxSpeedKph = speed
		}
	}

	if h := s.Duration.Hours(); h > 0 {
		s.AvgSpeedKph = s.DistanceKm / h
	}
	return s
}
