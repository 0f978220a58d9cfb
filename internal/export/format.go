package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// localOffset is the fixed shift applied for the "local" column. No DST,
	// no zone database lookup.
	localOffset = 7 * time.Hour

	localLayout = "2006-01-02 15:04:05"
	isoLayout   = "2006-01-02T15:04:05.000Z07:00"

	// Missing is rendered for every absent value.
	Missing = "-"
)

// LocalTime renders ts shifted by the fixed +7h offset.
func LocalTime(ts time.Time) string {
	return ts.UTC().Add(localOffset).Format(localLayout)
}

// ISO renders ts the way browsers serialize dates: UTC with milliseconds.
func ISO(ts time.Time) string {
	return ts.UTC().Format(isoLayout)
}

// Slug lower-cases name and replaces every non-alphanumeric rune with '-'.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Filename derives the download name for an export.
func Filename(deviceName string, start, end time.Time) string {
	return fmt.Sprintf("sensor-export-%s-%s-to-%s.csv", Slug(deviceName), ISO(start), ISO(end))
}

func formatValue(v *float64) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatText(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
