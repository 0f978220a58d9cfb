// Package geocode resolves route coordinates to human readable places.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/airquality-dashboard/internal/route"
)

// ErrDisabled is returned when no API key was configured.
var ErrDisabled = errors.New("geocoding disabled")

// ErrNoResult is returned when the provider knows no address for a point.
var ErrNoResult = errors.New("no address for location")

type lookupFunc func(geocoder.Location) ([]geocoder.Address, error)

// Resolver reverse-geocodes coordinates and caches the answers, keyed by
// coordinates rounded to four decimals.
type Resolver struct {
	lookup lookupFunc

	mu    sync.Mutex
	cache map[string]string
}

// New returns a Resolver backed by the Google geocoding API. With an empty
// key the resolver is disabled and every lookup returns ErrDisabled.
func New(apiKey string) *Resolver {
	if apiKey == "" {
		log.Println("INFO: geocode: no API key configured; reverse geocoding disabled")
		return &Resolver{}
	}
	geocoder.ApiKey = apiKey
	return newResolver(geocoder.GeocodingReverse)
}

func newResolver(lookup lookupFunc) *Resolver {
	return &Resolver{lookup: lookup, cache: make(map[string]string)}
}

// Enabled reports whether lookups can reach a provider.
func (r *Resolver) Enabled() bool {
	return r != nil && r.lookup != nil
}

// Reverse returns the formatted address nearest to p.
func (r *Resolver) Reverse(ctx context.Context, p route.LatLng) (string, error) {
	if !r.Enabled() {
		return "", ErrDisabled
	}

	key := fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
	r.mu.Lock()
	if addr, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return addr, nil
	}
	r.mu.Unlock()

	type answer struct {
		addrs []geocoder.Address
		err   error
	}
	ch := make(chan answer, 1)
	go func() {
		addrs, err := r.lookup(geocoder.Location{Latitude: p.Lat, Longitude: p.Lng})
		ch <- answer{addrs, err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a = <-ch:
	}
	if a.err != nil {
		return "", fmt.Errorf("reverse geocode %s: %w", key, a.err)
	}
	if len(a.addrs) == 0 || a.addrs[0].FormattedAddress == "" {
		return "", ErrNoResult
	}

	addr := a.addrs[0].FormattedAddress
	r.mu.Lock()
	r.cache[key] = addr
	r.mu.Unlock()
	return addr, nil
}

// Places names the start and end of a route. Lookup failures leave the
// corresponding name empty; they are logged, not returned.
type Places struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Endpoints resolves the first and last point of a route summary.
func (r *Resolver) Endpoints(ctx context.Context, s route.Summary) Places {
	var out Places
	if !r.Enabled() || s.Start == nil || s.End == nil {
		return out
	}

	var err error
	if out.Start, err = r.Reverse(ctx, route.LatLng{Lat: s.Start.Lat, Lng: s.Start.Lng}); err != nil {
		log.Printf("DEBUG: geocode: start: %v", err)
	}
	if out.End, err = r.Reverse(ctx, route.LatLng{Lat: s.End.Lat, Lng: s.End.Lng}); err != nil {
		log.Printf("DEBUG: geocode: end: %v", err)
	}
	return out
}
