package export

import (
	"log"
	"sort"
	"time"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// Row is every metric value that shares one exact timestamp string.
type Row struct {
	Timestamp string
	At        time.Time
	Values    map[airquality.Metric]*float64
	Lat       *float64
	Lng       *float64
}

// Value returns the metric's value, or nil when the row has none.
func (r Row) Value(m airquality.Metric) *float64 {
	return r.Values[m]
}

// HeatIndex derives the heat index from the row's temperature and humidity.
func (r Row) HeatIndex() *float64 {
	return heatIndex(r.Value(airquality.MetricTemperature), r.Value(airquality.MetricHumidity))
}

// MergeRows joins all series into one row per distinct timestamp string.
// Timestamps are compared as strings with no snapping; points outside
// [start, end] or with unparseable timestamps are dropped. When a metric is
// reported twice for the same timestamp the later point wins. Rows come
// back in chronological order.
func MergeRows(series []airquality.Series, start, end time.Time) []Row {
	byTS := make(map[string]*Row)

	for _, s := range series {
		for _, smp := range s.Samples() {
			at, err := airquality.ParseTimestamp(smp.Timestamp)
			if err != nil {
				log.Printf("DEBUG: export: dropping point for %s: %v", smp.Metric, err)
				continue
			}
			if at.Before(start) || at.After(end) {
				continue
			}

			row, ok := byTS[smp.Timestamp]
			if !ok {
				row = &Row{
					Timestamp: smp.Timestamp,
					At:        at,
					Values:    make(map[airquality.Metric]*float64),
				}
				byTS[smp.Timestamp] = row
			}
			row.Values[smp.Metric] = smp.Value
			if smp.Lat != nil && smp.Lng != nil {
				row.Lat, row.Lng = smp.Lat, smp.Lng
			}
		}
	}

	rows := make([]Row, 0, len(byTS))
	for _, r := range byTS {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].At.Equal(rows[j].At) {
			return rows[i].Timestamp < rows[j].Timestamp
		}
		return rows[i].At.Before(rows[j].At)
	})
	return rows
}
