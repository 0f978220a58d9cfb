package scheduler

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/history"
)

// DeviceLister returns the devices known to the backend.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]airquality.Device, error)
}

// Registry persists the device list.
type Registry interface {
	Upsert(ctx context.Context, devices ...airquality.Device) error
}

// Cache keeps the most recent snapshot per device.
type Cache interface {
	Save(snapshot airquality.Snapshot)
}

// Refresher periodically syncs the device list and caches each device's
// latest readings.
type Refresher struct {
	scheduler *gocron.Scheduler
	devices   DeviceLister
	source    history.Source
	registry  Registry
	cache     Cache
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Refresher.
func New(devices DeviceLister, source history.Source, registry Registry, cache Cache, interval time.Duration) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Refresher{
		scheduler: s,
		devices:   devices,
		source:    source,
		registry:  registry,
		cache:     cache,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (r *Refresher) Start() error {
	interval := r.interval
	if interval <= 0 {
		interval = time.Minute
	}

	_, err := r.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("ERROR: scheduler: refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// RunOnce syncs devices into the registry, then fetches the last hour for
// every device with a code. Per-device failures are logged and skipped.
func (r *Refresher) RunOnce(ctx context.Context) error {
	log.Println("INFO: scheduler: running device refresh job")

	devices, err := r.devices.ListDevices(ctx)
	if err != nil {
		return err
	}
	if err := r.registry.Upsert(ctx, devices...); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, d := range devices {
		if strings.TrimSpace(d.Code) == "" {
			continue
		}
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()

			rng := airquality.TimeRanges[0]
			res, err := r.source.Fetch(ctx, history.Query{
				DeviceCode: d.Code,
				Metric:     airquality.MetricAll,
				SinceHours: rng.SinceHours,
				AggMinutes: rng.AggMinutes,
			})
			if err != nil {
				log.Printf("ERROR: scheduler: fetch failed for %s: %v", d.Code, err)
				return
			}
			if snap, ok := LatestSnapshot(d.ID, res); ok {
				r.cache.Save(snap)
			}
		}()
	}
	wg.Wait()

	log.Printf("INFO: scheduler: refreshed %d devices", len(devices))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

// LatestSnapshot collapses a history result into the newest value of each
// metric. The snapshot timestamp is the newest parseable point timestamp.
func LatestSnapshot(deviceID string, res history.Result) (airquality.Snapshot, bool) {
	snap := airquality.Snapshot{
		DeviceID:  deviceID,
		Values:    make(map[airquality.Metric]float64),
		Synthetic: res.Synthetic,
	}

	for _, s := range res.Series {
		var newest time.Time
		for _, p := range s.Points {
			if p.Value == nil {
				continue
			}
			at, err := airquality.ParseTimestamp(p.Timestamp)
			if err != nil || at.Before(newest) {
				continue
			}
			newest = at
			snap.Values[s.Metric] = *p.Value
		}
		if newest.After(snap.Timestamp) {
			snap.Timestamp = newest
		}
	}

	if len(snap.Values) == 0 {
		return airquality.Snapshot{}, false
	}
	snap.Timestamp = snap.Timestamp.UTC()
	return snap, true
}
