// Package tempo is a free-running BPM clock advanced by frame deltas.
package tempo

import (
	"math"
	"sync"
	"time"
)

// BeatsPerBar is fixed at 4/4.
const BeatsPerBar = 4

// Clock counts beats at a settable tempo. It is advanced by the render loop and read by effects
// on the same frame; reads from other goroutines are safe.
type Clock struct {
	mu    sync.RWMutex
	bpm   float64
	beats float64 // fractional beats since start
}

func New(bpm float64) *Clock {
	c := &Clock{}
	c.SetBPM(bpm)
	return c
}

// SetBPM changes tempo without moving the phase. Non-positive values fall back to 120.
func (c *Clock) SetBPM(bpm float64) {
	if bpm <= 0 || math.IsNaN(bpm) {
		bpm = 120
	}
	c.mu.Lock()
	c.bpm = bpm
	c.mu.Unlock()
}

func (c *Clock) BPM() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bpm
}

// Advance moves the clock forward by dt. Negative deltas are ignored.
func (c *Clock) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	c.beats += dt.Seconds() * c.bpm / 60
	c.mu.Unlock()
}

// Reset returns to beat 0.
func (c *Clock) Reset() {
	c.mu.Lock()
	c.beats = 0
	c.mu.Unlock()
}

// Tap restarts the current beat, keeping the beat count.
func (c *Clock) Tap() {
	c.mu.Lock()
	c.beats = math.Floor(c.beats)
	c.mu.Unlock()
}

func (c *Clock) Beat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.beats)
}

func (c *Clock) Basis() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.beats - math.Floor(c.beats)
}

func (c *Clock) BarPhase() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bar := c.beats / BeatsPerBar
	return bar - math.Floor(bar)
}
