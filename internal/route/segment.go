package route

import (
	"sort"
	"time"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is one geotagged reading of a mobile device.
type Point struct {
	Timestamp string    `json:"timestamp"`
	At        time.Time `json:"-"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	PM25      *float64  `json:"pm25"`
	SpeedKph  *float64  `json:"speedKph,omitempty"`
}

// Segment is the line between two consecutive points, colored by the
// average PM2.5 of its endpoints.
type Segment struct {
	Start   Point            `json:"start"`
	End     Point            `json:"end"`
	AvgPM25 float64          `json:"avgPm25"`
	Tier    airquality.Tier  `json:"tier"`
	Color   airquality.Color `json:"color"`
}

// FromSeries builds the route from the PM2.5 series of a history result.
// Points without coordinates or with unparseable timestamps are skipped and
// the rest are ordered by time.
func FromSeries(series []airquality.Series) []Point {
	var points []Point
	for _, s := range series {
		if s.Metric != airquality.MetricPM25 {
			continue
		}
		for _, p := range s.Points {
			if p.Lat == nil || p.Lng == nil {
				continue
			}
			at, err := airquality.ParseTimestamp(p.Timestamp)
			if err != nil {
				continue
			}
			points = append(points, Point{
				Timestamp: p.Timestamp,
				At:        at,
				Lat:       *p.Lat,
				Lng:       *p.Lng,
				PM25:      p.Value,
				SpeedKph:  p.SpeedKph,
			})
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].At.Before(points[j].At)
	})
	return points
}

// Visible returns the prefix of points up to and including index.
func Visible(points []Point, index int) []Point {
	if len(points) == 0 {
		return nil
	}
	return points[:clamp(index, 0, len(points)-1)+1]
}

// Segmentize pairs consecutive points; n points yield max(0, n-1) segments.
// A missing PM2.5 reading counts as zero.
func Segmentize(points []Point) []Segment {
	if len(points) < 2 {
		return []Segment{}
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		avg := (pm25(a) + pm25(b)) / 2
		tier := airquality.TierFor(avg)
		segs = append(segs, Segment{
			Start:   a,
			End:     b,
			AvgPM25: avg,
			Tier:    tier,
			Color:   tier.Color(),
		})
	}
	return segs
}

func pm25(p Point) float64 {
	if p.PM25 == nil {
		return 0
	}
	return *p.PM25
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
