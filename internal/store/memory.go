package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

var (
	// ErrNotFound is returned when no data is available for a given device.
	ErrNotFound = errors.New("no readings for device")
)

// snapshotHistory holds a time-ordered list of snapshots for a device.
type snapshotHistory struct {
	snapshots []airquality.Snapshot
}

// ReadingCache is a concurrency-safe in-memory cache of recent device snapshots.
type ReadingCache struct {
	mu sync.RWMutex

	// key: device id
	data map[string]*snapshotHistory

	maxHistory int           // max number of snapshots per device
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewReadingCache creates a cache with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewReadingCache(maxHistory int, maxAge time.Duration) *ReadingCache {
	return &ReadingCache{
		data:       make(map[string]*snapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a snapshot for its device and enforces retention.
// Snapshots not newer than the latest stored one are ignored.
func (s *ReadingCache) Save(snapshot airquality.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snapshot.DeviceID]
	if !ok {
		history = &snapshotHistory{}
		s.data[snapshot.DeviceID] = history
	}

	if n := len(history.snapshots); n > 0 && !snapshot.Timestamp.After(history.snapshots[n-1].Timestamp) {
		return
	}
	history.snapshots = append(history.snapshots, snapshot)

	if s.maxHistory > 0 && len(history.snapshots) > s.maxHistory {
		over := len(history.snapshots) - s.maxHistory
		history.snapshots = history.snapshots[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.snapshots); i++ {
			if !history.snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.snapshots = history.snapshots[i:]
	}
}

// Latest returns the most recent snapshot for a device.
func (s *ReadingCache) Latest(deviceID string) (airquality.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[deviceID]
	if !ok || len(history.snapshots) == 0 {
		return airquality.Snapshot{}, ErrNotFound
	}
	return history.snapshots[len(history.snapshots)-1], nil
}

// Range returns all snapshots for a device between from and to (inclusive).
func (s *ReadingCache) Range(deviceID string, from, to time.Time) ([]airquality.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[deviceID]
	if !ok || len(history.snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []airquality.Snapshot
	for _, snap := range history.snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
