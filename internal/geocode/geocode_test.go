package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airquality-dashboard/internal/route"
)

func TestDisabledWithoutKey(t *testing.T) {
	r := New("")
	assert.False(t, r.Enabled())
	_, err := r.Reverse(context.Background(), route.DefaultCenter)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, Places{}, r.Endpoints(context.Background(), route.Summary{}))
}

func TestReverse_Caches(t *testing.T) {
	var calls atomic.Int32
	r := newResolver(func(loc geocoder.Location) ([]geocoder.Address, error) {
		calls.Add(1)
		assert.InDelta(t, 13.7563, loc.Latitude, 1e-9)
		return []geocoder.Address{{FormattedAddress: "Bangkok, Thailand"}}, nil
	})

	for i := 0; i < 3; i++ {
		addr, err := r.Reverse(context.Background(), route.DefaultCenter)
		require.NoError(t, err)
		assert.Equal(t, "Bangkok, Thailand", addr)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestReverse_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	r := newResolver(func(geocoder.Location) ([]geocoder.Address, error) { return nil, boom })
	_, err := r.Reverse(context.Background(), route.DefaultCenter)
	assert.ErrorIs(t, err, boom)

	r = newResolver(func(geocoder.Location) ([]geocoder.Address, error) { return nil, nil })
	_, err = r.Reverse(context.Background(), route.DefaultCenter)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestReverse_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r := newResolver(func(geocoder.Location) ([]geocoder.Address, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Reverse(ctx, route.DefaultCenter)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEndpoints(t *testing.T) {
	r := newResolver(func(loc geocoder.Location) ([]geocoder.Address, error) {
		if loc.Latitude > 14 {
			return nil, errors.New("unknown")
		}
		return []geocoder.Address{{FormattedAddress: "Silom"}}, nil
	})
	s := route.Summary{
		Start: &route.Point{Lat: 13.72, Lng: 100.52},
		End:   &route.Point{Lat: 14.5, Lng: 100.6},
	}
	assert.Equal(t, Places{Start: "Silom"}, r.Endpoints(context.Background(), s))
}
