package playback

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/history"
	"github.com/i474232898/airquality-dashboard/internal/route"
)

var (
	// ErrStaleResponse is returned when a route arrives after a newer load
	// was started, or after the view was closed. The result is discarded.
	ErrStaleResponse = errors.New("stale route response discarded")
	// ErrViewClosed is returned for operations on a closed view.
	ErrViewClosed = errors.New("playback view is closed")
)

// State is what a client needs to render a route view.
type State struct {
	ID        string               `json:"id"`
	DeviceID  string               `json:"deviceId"`
	Range     airquality.TimeRange `json:"range"`
	Cursor    route.CursorState    `json:"cursor"`
	NoData    bool                 `json:"noData"`
	Synthetic bool                 `json:"synthetic,omitempty"`
	Current   *route.Point         `json:"current,omitempty"`
	Segments  []route.Segment      `json:"segments"`
	Frame     route.View           `json:"frame"`
	Summary   route.Summary        `json:"summary"`
}

// View is one open route: its points, playback cursor and timer. Every
// load gets a fresh request id and only the latest one may apply its result.
type View struct {
	ID     string
	Device airquality.Device

	source   history.Source
	fallback route.LatLng
	player   *route.Player

	mu        sync.Mutex
	rng       airquality.TimeRange
	points    []route.Point
	synthetic bool
	request   string
	closed    bool
}

func newView(device airquality.Device, source history.Source, base time.Duration, fallback route.LatLng) *View {
	return &View{
		ID:       uuid.NewString(),
		Device:   device,
		source:   source,
		fallback: fallback,
		player:   route.NewPlayer(route.NewCursor(0), base, nil),
	}
}

// Reload fetches the route for rng and replaces the current one, rewinding
// the cursor. An empty route is not an error; State reports NoData.
func (v *View) Reload(ctx context.Context, rng airquality.TimeRange) error {
	if strings.TrimSpace(v.Device.Code) == "" {
		return airquality.ErrMissingDeviceCode
	}

	reqID, err := v.begin(rng)
	if err != nil {
		return err
	}

	res, err := v.source.Fetch(ctx, history.Query{
		DeviceCode: v.Device.Code,
		Metric:     string(airquality.MetricPM25),
		SinceHours: rng.SinceHours,
		AggMinutes: rng.AggMinutes,
	})
	return v.apply(reqID, res, err)
}

func (v *View) begin(rng airquality.TimeRange) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", ErrViewClosed
	}
	v.request = uuid.NewString()
	v.rng = rng
	return v.request, nil
}

func (v *View) apply(reqID string, res history.Result, fetchErr error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || reqID != v.request {
		log.Printf("DEBUG: playback: discarding response %s for view %s", reqID, v.ID)
		return ErrStaleResponse
	}
	if fetchErr != nil {
		return fetchErr
	}

	v.points = route.FromSeries(res.Series)
	v.synthetic = res.Synthetic
	v.player.Load(len(v.points))
	if len(v.points) == 0 {
		log.Printf("INFO: playback: no route data for %s (%s)", v.Device.Code, v.rng.ID)
	}
	return nil
}

// Toggle plays or pauses playback.
func (v *View) Toggle() (State, error) {
	return v.act(func() { v.player.Toggle() })
}

// Seek moves the cursor to index, clamped to the route.
func (v *View) Seek(index int) (State, error) {
	return v.act(func() { v.player.Cursor().SetIndex(index) })
}

// Skip moves the cursor SkipStep points forward (forward=true) or back.
func (v *View) Skip(forward bool) (State, error) {
	return v.act(func() {
		if forward {
			v.player.Cursor().SkipForward()
		} else {
			v.player.Cursor().SkipBack()
		}
	})
}

// SetSpeed changes the playback speed multiplier.
func (v *View) SetSpeed(m float64) (State, error) {
	var err error
	st, actErr := v.act(func() { _, err = v.player.SetSpeed(m) })
	if actErr != nil {
		return st, actErr
	}
	return st, err
}

func (v *View) act(fn func()) (State, error) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return State{}, ErrViewClosed
	}
	fn()
	return v.State(), nil
}

// State renders the view at the current cursor position.
func (v *View) State() State {
	v.mu.Lock()
	points := v.points
	rng := v.rng
	synthetic := v.synthetic
	v.mu.Unlock()

	cur := v.player.Cursor().State()
	visible := route.Visible(points, cur.Index)

	st := State{
		ID:        v.ID,
		DeviceID:  v.Device.ID,
		Range:     rng,
		Cursor:    cur,
		NoData:    len(points) == 0,
		Synthetic: synthetic,
		Segments:  route.Segmentize(visible),
		Frame:     route.Frame(visible, v.fallback),
		Summary:   route.Summarize(points),
	}
	if len(visible) > 0 {
		p := visible[len(visible)-1]
		st.Current = &p
	}
	return st
}

// Close stops the timer. Responses still in flight are discarded on arrival.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.player.Close()
}
