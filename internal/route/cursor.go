package route

import (
	"errors"
	"sync"
)

// SkipStep is how far SkipBack and SkipForward move the cursor.
const SkipStep = 10

// ErrInvalidSpeed is returned for a non-positive speed multiplier.
var ErrInvalidSpeed = errors.New("speed multiplier must be positive")

// CursorState is a point-in-time copy of a Cursor.
type CursorState struct {
	Index   int     `json:"index"`
	Length  int     `json:"length"`
	Playing bool    `json:"playing"`
	Speed   float64 `json:"speed"`
}

// AtEnd reports whether the index sits on the last point.
func (s CursorState) AtEnd() bool {
	return s.Length == 0 || s.Index >= s.Length-1
}

// Cursor is the playback position over a route of Length points. It is
// either stopped or playing; the index always stays in [0, Length-1]
// (0 for an empty route, which can never play).
type Cursor struct {
	mu      sync.Mutex
	index   int
	length  int
	playing bool
	speed   float64
}

// NewCursor returns a stopped cursor at index 0.
func NewCursor(length int) *Cursor {
	return &Cursor{length: max(length, 0), speed: 1}
}

// Reset replaces the route: index 0, stopped. Speed is kept.
func (c *Cursor) Reset(length int) CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.length = max(length, 0)
	c.index = 0
	c.playing = false
	return c.stateLocked()
}

// State returns a copy of the cursor.
func (c *Cursor) State() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Toggle flips between stopped and playing. Starting from the last point
// rewinds to 0 first.
func (c *Cursor) Toggle() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		c.playing = false
		return c.stateLocked()
	}
	if c.length == 0 {
		return c.stateLocked()
	}
	if c.index >= c.length-1 {
		c.index = 0
	}
	c.playing = true
	return c.stateLocked()
}

// Pause stops playback without moving the index.
func (c *Cursor) Pause() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	return c.stateLocked()
}

// Step advances a playing cursor by one point and stops it on the last
// point. A stopped cursor is left alone.
func (c *Cursor) Step() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return c.stateLocked()
	}
	if c.index < c.length-1 {
		c.index++
	}
	if c.index >= c.length-1 {
		c.playing = false
	}
	return c.stateLocked()
}

// SetIndex moves the cursor to i, clamped to the route. Allowed while playing.
func (c *Cursor) SetIndex(i int) CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = c.clampLocked(i)
	return c.stateLocked()
}

// SkipBack moves the cursor SkipStep points back.
func (c *Cursor) SkipBack() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = c.clampLocked(c.index - SkipStep)
	return c.stateLocked()
}

// SkipForward moves the cursor SkipStep points forward.
func (c *Cursor) SkipForward() CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = c.clampLocked(c.index + SkipStep)
	return c.stateLocked()
}

// SetSpeed changes the speed multiplier.
func (c *Cursor) SetSpeed(m float64) (CursorState, error) {
	if m <= 0 {
		return c.State(), ErrInvalidSpeed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = m
	return c.stateLocked(), nil
}

func (c *Cursor) clampLocked(i int) int {
	if c.length == 0 {
		return 0
	}
	return clamp(i, 0, c.length-1)
}

func (c *Cursor) stateLocked() CursorState {
	return CursorState{
		Index:   c.index,
		Length:  c.length,
		Playing: c.playing,
		Speed:   c.speed,
	}
}
