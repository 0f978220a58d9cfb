package export

import (
	"encoding/csv"
	"io"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// baseHeader is written for every device; mobile devices append mobileHeader.
var baseHeader = []string{
	"Location Name",
	"Location Type",
	"Sensor ID",
	"Local Date/Time",
	"UTC Date/Time",
	"PM2.5 raw",
	"PM2.5 corrected",
	"CO2 raw",
	"CO2 corrected",
	"Temperature raw",
	"Temperature corrected",
	"Heat Index",
	"Humidity raw",
	"Humidity corrected",
	"TVOC",
	"TVOC index",
	"PM1",
	"PM10",
}

var mobileHeader = []string{"Latitude", "Longitude"}

// Header returns the column names for device.
func Header(device airquality.Device) []string {
	h := append([]string(nil), baseHeader...)
	if device.IsMobile() {
		h = append(h, mobileHeader...)
	}
	return h
}

// Record renders one row. Raw and corrected columns carry the same value
// since no calibration step exists.
func Record(device airquality.Device, r Row) []string {
	pm25 := formatValue(r.Value(airquality.MetricPM25))
	co2 := formatValue(r.Value(airquality.MetricCO2))
	temp := formatValue(r.Value(airquality.MetricTemperature))
	hum := formatValue(r.Value(airquality.MetricHumidity))

	utc := r.Timestamp
	if !looksISO(r.Timestamp) {
		utc = ISO(r.At)
	}

	rec := []string{
		formatText(device.Name),
		formatText(device.LocationType),
		formatText(device.Code),
		LocalTime(r.At),
		utc,
		pm25,
		pm25,
		co2,
		co2,
		temp,
		temp,
		formatValue(r.HeatIndex()),
		hum,
		hum,
		formatValue(r.Value(airquality.MetricTVOC)),
		formatValue(r.Value(airquality.MetricTVOCIndex)),
		formatValue(r.Value(airquality.MetricPM1)),
		formatValue(r.Value(airquality.MetricPM10)),
	}
	if device.IsMobile() {
		rec = append(rec, formatValue(r.Lat), formatValue(r.Lng))
	}
	return rec
}

// WriteCSV writes the header and every row to w with "\n" line endings.
// Fields holding a comma, quote or newline are quoted, quotes doubled.
func WriteCSV(w io.Writer, device airquality.Device, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(device)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Record(device, r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// looksISO distinguishes ISO-8601 strings from epoch numbers.
func looksISO(s string) bool {
	return len(s) >= 10 && s[4] == '-' && s[7] == '-'
}
