package export

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/history"
)

// ErrMissingDeviceCode is returned before any network call when the device
// has no code the history service could look up.
var ErrMissingDeviceCode = airquality.ErrMissingDeviceCode

// GenerationError wraps any failure that prevented a document from being
// produced. No partial document accompanies it.
type GenerationError struct {
	Device string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("export for %s failed: %v", e.Device, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Document is a finished CSV export ready for download.
type Document struct {
	Filename  string
	Body      string
	Rows      int
	Synthetic bool
}

// Aggregator turns device history into CSV exports.
type Aggregator struct {
	source history.Source
}

// NewAggregator creates an Aggregator reading from source.
func NewAggregator(source history.Source) *Aggregator {
	return &Aggregator{source: source}
}

// GenerateExport fetches every metric for device over [start, end] at the
// given bucket width and renders it as CSV. The caller guarantees start <= end
// and bucketMinutes >= 1. An empty history yields a header-only document.
func (a *Aggregator) GenerateExport(ctx context.Context, device airquality.Device, start, end time.Time, bucketMinutes int) (*Document, error) {
	if strings.TrimSpace(device.Code) == "" {
		return nil, ErrMissingDeviceCode
	}

	start, end = start.UTC(), end.UTC()
	res, err := a.source.Fetch(ctx, history.Query{
		DeviceCode: device.Code,
		Metric:     airquality.MetricAll,
		From:       start,
		To:         end,
		AggMinutes: bucketMinutes,
	})
	if err != nil {
		return nil, &GenerationError{Device: device.Code, Err: err}
	}

	rows := MergeRows(res.Series, start, end)
	if len(rows) == 0 {
		log.Printf("INFO: export for %s has no data between %s and %s", device.Code, ISO(start), ISO(end))
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, device, rows); err != nil {
		return nil, &GenerationError{Device: device.Code, Err: err}
	}

	return &Document{
		Filename:  Filename(device.Name, start, end),
		Body:      buf.String(),
		Rows:      len(rows),
		Synthetic: res.Synthetic,
	}, nil
}
