package playback

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/history"
	"github.com/i474232898/airquality-dashboard/internal/route"
)

// ErrViewNotFound is returned for an unknown view id.
var ErrViewNotFound = errors.New("playback view not found")

// Manager owns every open route view.
type Manager struct {
	source   history.Source
	base     time.Duration
	fallback route.LatLng

	mu      sync.Mutex
	views   map[string]*View
	access  map[string]time.Time
	now     func() time.Time
	janitor *gocron.Scheduler
}

// NewManager creates a Manager. base is the playback tick period at speed 1.
func NewManager(source history.Source, base time.Duration, fallback route.LatLng) *Manager {
	return &Manager{
		source:   source,
		base:     base,
		fallback: fallback,
		views:    make(map[string]*View),
		access:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Open loads a route for device and registers a new view for it. On failure
// the view is torn down and never registered.
func (m *Manager) Open(ctx context.Context, device airquality.Device, rng airquality.TimeRange) (*View, error) {
	v := newView(device, m.source, m.base, m.fallback)
	if err := v.Reload(ctx, rng); err != nil {
		v.Close()
		return nil, err
	}

	m.mu.Lock()
	m.views[v.ID] = v
	m.access[v.ID] = m.now()
	m.mu.Unlock()

	log.Printf("INFO: playback: opened view %s for %s", v.ID, device.Code)
	return v, nil
}

// Get returns an open view and marks it as recently used.
func (m *Manager) Get(id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	m.access[id] = m.now()
	return v, nil
}

// Close stops a view's timer and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	v, ok := m.views[id]
	delete(m.views, id)
	delete(m.access, id)
	m.mu.Unlock()

	if !ok {
		return ErrViewNotFound
	}
	v.Close()
	return nil
}

// CloseAll stops idle eviction and tears down every view; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	views := m.views
	m.views = make(map[string]*View)
	m.access = make(map[string]time.Time)
	janitor := m.janitor
	m.janitor = nil
	m.mu.Unlock()

	if janitor != nil {
		janitor.Stop()
	}

	for _, v := range views {
		v.Close()
	}
}

// Len returns the number of open views.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

// EvictIdle closes every view not used within ttl and returns how many
// were closed.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var idle []*View
	for id, last := range m.access {
		if last.Before(cutoff) {
			idle = append(idle, m.views[id])
			delete(m.views, id)
			delete(m.access, id)
		}
	}
	m.mu.Unlock()

	for _, v := range idle {
		v.Close()
	}
	if len(idle) > 0 {
		log.Printf("INFO: playback: evicted %d idle views", len(idle))
	}
	return len(idle)
}

// StartEviction schedules EvictIdle every ttl/2. A ttl <= 0 disables it.
func (m *Manager) StartEviction(ttl time.Duration) error {
	if ttl <= 0 {
		log.Println("INFO: playback: idle eviction disabled")
		return nil
	}
	every := ttl / 2
	if every < time.Second {
		every = time.Second
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(every).WaitForSchedule().Do(func() { m.EvictIdle(ttl) }); err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.janitor
	m.janitor = s
	m.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}

	s.StartAsync()
	return nil
}
