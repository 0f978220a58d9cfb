package history

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/session"
)

func TestClientFetch_DecodesSeries(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"metricName":"pm25","average":14.5,"points":[
				{"timestamp":"2024-05-01T00:00:00.000Z","value":12},
				{"timestamp":"2024-05-01T00:05:00.000Z","value":null,"lat":13.7,"lng":100.5}
			]},
			{"metricName":"ozone","points":[{"timestamp":"2024-05-01T00:00:00.000Z","value":1}]}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/", 0)
	ctx := session.NewContext(context.Background(), &session.Session{Token: "abc"})

	res, err := c.Fetch(ctx, Query{
		DeviceCode: "DEV-1",
		Metric:     airquality.MetricAll,
		From:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		AggMinutes: 5,
	})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)
	assert.False(t, res.Synthetic)

	s := res.Series[0]
	assert.Equal(t, airquality.MetricPM25, s.Metric)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 12.0, *s.Points[0].Value)
	assert.Nil(t, s.Points[1].Value)
	assert.Equal(t, 13.7, *s.Points[1].Lat)

	assert.Contains(t, gotQuery, "device_code=DEV-1")
	assert.Contains(t, gotQuery, "metric=All")
	assert.Contains(t, gotQuery, "agg_minutes=5")
	assert.Contains(t, gotQuery, "from=2024-05-01T00%3A00%3A00.000Z")
	assert.NotContains(t, gotQuery, "hours=")
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestClientFetch_HoursWindow(t *testing.T) {
	q := Query{DeviceCode: "X", SinceHours: 24, AggMinutes: 5}
	v := q.Values()
	assert.Equal(t, "24", v.Get("hours"))
	assert.Equal(t, "All", v.Get("metric"))
	assert.Empty(t, v.Get("from"))
}

func TestClientFetch_Non2xxIsTransportError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, time.Second)
	_, err := c.Fetch(context.Background(), Query{DeviceCode: "X", SinceHours: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "fetch", te.Op)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "history requests must not be retried")
}

func TestClientFetch_SingleAttemptThenCircuitOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, time.Second)
	q := Query{DeviceCode: "X", SinceHours: 1}

	for i := 1; i <= 6; i++ {
		_, err := c.Fetch(context.Background(), q)
		assert.ErrorIs(t, err, errRateLimited)
		assert.Equal(t, int32(i), atomic.LoadInt32(&calls))
	}

	_, err := c.Fetch(context.Background(), q)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls), "an open breaker does not reach the backend")
}

func TestDoRequest_NoClient(t *testing.T) {
	_, err := doRequest(context.Background(), HTTPClientConfig{}, newCircuitBreaker("test"), nil)
	assert.ErrorIs(t, err, errNoHTTPClient)
}

func TestClientFetch_BadJSONIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, time.Second)
	_, err := c.Fetch(context.Background(), Query{DeviceCode: "X", SinceHours: 1})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClientFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.Client(), srv.URL, 50*time.Millisecond)
	_, err := c.Fetch(context.Background(), Query{DeviceCode: "X", SinceHours: 1})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientListDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/devices", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"1","name":"Roof","code":"R-1","type":"fixed","is_online":true,"last_seen":"2024-05-01T10:00:00Z"},
			{"id":"2","name":"Bike","code":"B-2","type":"mobile","is_online":false}
		]`))
	}))
	defer srv.Close()

	devices, err := NewClient(srv.Client(), srv.URL, 0).ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, airquality.DeviceFixed, devices[0].Type)
	assert.True(t, devices[0].Online())
	assert.Equal(t, 10, devices[0].LastSeen.Hour())
	assert.True(t, devices[1].IsMobile())
}

type stubSource struct {
	res   Result
	err   error
	calls int
}

func (s *stubSource) Fetch(context.Context, Query) (Result, error) {
	s.calls++
	return s.res, s.err
}

func TestFallback_OnlyWhenEmptyAndEnabled(t *testing.T) {
	syn := &stubSource{res: Result{Series: []airquality.Series{{Metric: airquality.MetricPM25, Points: []airquality.Point{{Timestamp: "t"}}}}}}

	empty := &stubSource{}
	f := &Fallback{Primary: empty, Synthetic: syn, Enabled: true}
	res, err := f.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	assert.True(t, res.Synthetic)
	assert.Equal(t, 1, res.Points())

	f.Enabled = false
	res, err = f.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	assert.False(t, res.Synthetic)
	assert.Zero(t, res.Points())

	full := &stubSource{res: Result{Series: []airquality.Series{{Points: []airquality.Point{{}, {}}}}}}
	f = &Fallback{Primary: full, Synthetic: syn, Enabled: true}
	syn.calls = 0
	res, err = f.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	assert.False(t, res.Synthetic)
	assert.Equal(t, 0, syn.calls)

	failing := &stubSource{err: errors.New("boom")}
	f = &Fallback{Primary: failing, Synthetic: syn, Enabled: true}
	_, err = f.Fetch(context.Background(), Query{})
	assert.Error(t, err)
	assert.Equal(t, 0, syn.calls)
}

func TestSynthetic_BucketsAcrossRange(t *testing.T) {
	s := NewSynthetic(13.75, 100.5)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res, err := s.Fetch(context.Background(), Query{
		Metric:     "pm25",
		From:       from,
		To:         from.Add(time.Hour),
		AggMinutes: 15,
	})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)
	assert.True(t, res.Synthetic)
	assert.Len(t, res.Series[0].Points, 5)
	assert.Equal(t, "2024-05-01T00:00:00.000Z", res.Series[0].Points[0].Timestamp)
}
