package route

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultBaseInterval is the tick period at speed 1.
const DefaultBaseInterval = 500 * time.Millisecond

// Player drives a Cursor with a single recurring timer. The scheduler is
// created on first play and the timer only runs while the cursor is playing.
// Starting it again replaces the previous job; Close stops it for good.
type Player struct {
	mu        sync.Mutex
	cursor    *Cursor
	base      time.Duration
	scheduler *gocron.Scheduler
	job       *gocron.Job
	gen       uint64
	closed    bool
	onTick    func(CursorState)
}

// NewPlayer creates a Player for cursor. onTick, if set, observes every
// advance made by the timer.
func NewPlayer(cursor *Cursor, base time.Duration, onTick func(CursorState)) *Player {
	if base <= 0 {
		base = DefaultBaseInterval
	}
	return &Player{
		cursor: cursor,
		base:   base,
		onTick: onTick,
	}
}

// Cursor returns the driven cursor.
func (p *Player) Cursor() *Cursor {
	return p.cursor
}

// Interval is the current tick period, base divided by speed.
func (p *Player) Interval() time.Duration {
	return interval(p.base, p.cursor.State().Speed)
}

// Toggle plays or pauses.
func (p *Player) Toggle() CursorState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.cursor.State()
	}
	st := p.cursor.Toggle()
	if st.Playing {
		p.startLocked(st.Speed)
	} else {
		p.dropLocked()
	}
	return st
}

// SetSpeed changes the multiplier, rescheduling a running timer.
func (p *Player) SetSpeed(m float64) (CursorState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.cursor.SetSpeed(m)
	if err != nil {
		return st, err
	}
	if st.Playing && !p.closed {
		p.startLocked(st.Speed)
	}
	return st, nil
}

// Load replaces the route length, rewinding the cursor and cancelling any timer.
func (p *Player) Load(length int) CursorState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropLocked()
	return p.cursor.Reset(length)
}

// Playing reports whether a timer job is currently active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job != nil
}

// Close stops the timer permanently. Safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.gen++
	p.job = nil
	p.cursor.Pause()
	scheduler := p.scheduler
	p.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
}

func (p *Player) startLocked(speed float64) {
	p.dropLocked()

	if p.scheduler == nil {
		p.scheduler = gocron.NewScheduler(time.UTC)
		p.scheduler.SingletonModeAll()
		p.scheduler.StartAsync()
	}

	gen := p.gen
	job, err := p.scheduler.
		Every(interval(p.base, speed)).
		WaitForSchedule().
		Do(p.tick, gen)
	if err != nil {
		log.Printf("ERROR: playback: failed to schedule timer: %v", err)
		p.cursor.Pause()
		return
	}
	p.job = job
}

// dropLocked invalidates the current job; a tick already in flight sees the
// generation change and does nothing.
func (p *Player) dropLocked() {
	p.gen++
	if p.job == nil {
		return
	}
	job := p.job
	p.job = nil
	go p.scheduler.RemoveByReference(job)
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	st := p.cursor.Step()
	if !st.Playing {
		p.dropLocked()
	}
	onTick := p.onTick
	p.mu.Unlock()

	if onTick != nil {
		onTick(st)
	}
}

func interval(base time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	d := time.Duration(float64(base) / speed)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}
