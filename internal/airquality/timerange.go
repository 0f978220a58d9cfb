package airquality

import "fmt"

// TimeRange is a named lookback window together with the aggregation width
// the history backend should use for it.
type TimeRange struct {
	ID         string `json:"id"`
	SinceHours int    `json:"sinceHours"`
	AggMinutes int    `json:"aggMinutes"`
	Label      string `json:"label"`
}

// TimeRanges are the presets offered by the dashboard.
var TimeRanges = []TimeRange{
	{ID: "1h", SinceHours: 1, AggMinutes: 1, Label: "Last hour"},
	{ID: "24h", SinceHours: 24, AggMinutes: 5, Label: "Last 24 hours"},
	{ID: "7d", SinceHours: 24 * 7, AggMinutes: 60, Label: "Last 7 days"},
	{ID: "30d", SinceHours: 24 * 30, AggMinutes: 240, Label: "Last 30 days"},
}

// DefaultTimeRange is used when a caller does not pick one.
var DefaultTimeRange = TimeRanges[1]

// LookupTimeRange resolves a preset by id. An empty id yields the default.
func LookupTimeRange(id string) (TimeRange, error) {
	if id == "" {
		return DefaultTimeRange, nil
	}
	for _, r := range TimeRanges {
		if r.ID == id {
			return r, nil
		}
	}
	return TimeRange{}, fmt.Errorf("unknown time range %q", id)
}
