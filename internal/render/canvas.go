package render

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// State is the canvas lifecycle position.
type State int

const (
	Uninitialized State = iota
	Active
	Rendering
	Inactive
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Rendering:
		return "rendering"
	case Inactive:
		return "inactive"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MaxPixels caps a canvas allocation.
const MaxPixels = 4096 * 4096

var (
	ErrAllocation = errors.New("canvas allocation failed")
	ErrNotActive  = errors.New("canvas not active")
	ErrDisposed   = errors.New("canvas disposed")
)

// Clock is a monotonic time source. Patterns driven by frame deltas supply their own.
type Clock interface {
	Now() time.Duration
}

type wallClock struct{ t0 time.Time }

func (w wallClock) Now() time.Duration { return time.Since(w.t0) }

// WallClock returns a clock measuring real time since the call.
func WallClock() Clock { return wallClock{t0: time.Now()} }

// Canvas owns a W x H x RGBA buffer and the evaluation loop that fills it.
// Lifecycle: Uninitialized -> Active <-> Rendering -> Inactive | Disposed; Inactive may re-activate.
// Activate, Resize, Deactivate and Dispose must not run concurrently with Render.
type Canvas struct {
	mu       sync.Mutex
	w, h     int
	pix      []uint8
	state    State
	start    time.Duration
	gen      uint64
	rendered bool
	allocErr error

	clock Clock
	log   zerolog.Logger
}

// NewCanvas returns an uninitialized canvas; no memory is allocated until Activate.
func NewCanvas(w, h int, clock Clock, log zerolog.Logger) *Canvas {
	if clock == nil {
		clock = WallClock()
	}
	return &Canvas{w: w, h: h, clock: clock, log: log}
}

func (c *Canvas) alloc() error {
	if c.w <= 0 || c.h <= 0 || c.w > MaxPixels/c.h {
		c.pix = nil
		c.allocErr = fmt.Errorf("%w: %dx%d", ErrAllocation, c.w, c.h)
		c.log.Error().Err(c.allocErr).Int("width", c.w).Int("height", c.h).Msg("canvas alloc")
		return c.allocErr
	}
	c.pix = make([]uint8, c.w*c.h*4)
	c.allocErr = nil
	c.gen++
	c.rendered = false
	return nil
}

// Activate allocates the buffer (or keeps it, if already active) and records the start time.
// An allocation failure leaves the canvas active but every Render is a logged no-op.
func (c *Canvas) Activate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Disposed:
		return ErrDisposed
	case Active, Rendering:
		return c.allocErr
	}
	c.state = Active
	c.start = c.clock.Now()
	if c.pix != nil && len(c.pix) == c.w*c.h*4 {
		return nil
	}
	return c.alloc()
}

// Resize changes the canvas resolution. The previous buffer is released and, if active,
// a new one is allocated immediately; the generation counter moves so samplers rebuild.
func (c *Canvas) Resize(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disposed {
		return ErrDisposed
	}
	if w == c.w && h == c.h && c.allocErr == nil {
		return nil
	}
	c.w, c.h = w, h
	c.pix = nil
	c.rendered = false
	if c.state == Active {
		return c.alloc()
	}
	return nil
}

// Deactivate releases the buffer. A later Activate allocates a fresh one.
func (c *Canvas) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disposed || c.state == Uninitialized {
		return
	}
	c.state = Inactive
	c.pix = nil
	c.rendered = false
}

// Dispose releases everything; the canvas can't be used again.
func (c *Canvas) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Disposed
	c.pix = nil
	c.rendered = false
}

// Elapsed is the time since the last activation in seconds.
func (c *Canvas) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.clock.Now() - c.start).Seconds()
}

// Begin fills the frame-dependent uniform fields (time and resolution).
func (c *Canvas) Begin(u *Uniforms) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u.Time = (c.clock.Now() - c.start).Seconds()
	u.Resolution = mgl64.Vec2{float64(c.w), float64(c.h)}
}

// Render evaluates f once per cell. Call Begin first to set Time and Resolution.
func (c *Canvas) Render(f FragmentFunc, u *Uniforms) error {
	c.mu.Lock()
	switch {
	case c.state == Disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.state != Active:
		c.mu.Unlock()
		return ErrNotActive
	case c.allocErr != nil || c.pix == nil:
		c.mu.Unlock()
		return ErrAllocation
	}
	c.state = Rendering
	w, h, pix := c.w, c.h, c.pix
	c.mu.Unlock()

	// a panicking fragment function must not leave the canvas stuck in Rendering
	done := false
	defer func() {
		c.mu.Lock()
		if c.state == Rendering {
			c.state = Active
			c.rendered = c.rendered || done
		}
		c.mu.Unlock()
	}()

	for y := 0; y < h; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			col := Shade(f, u, x, y)
			o := row + x*4
			pix[o] = col.R()
			pix[o+1] = col.G()
			pix[o+2] = col.B()
			pix[o+3] = pixel.MaxChannel
		}
	}
	done = true
	return nil
}

// Ready reports whether the buffer holds a completed frame.
func (c *Canvas) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rendered && c.pix != nil
}

// Pixels returns the RGBA buffer, or nil before the first completed render.
func (c *Canvas) Pixels() []uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.rendered {
		return nil
	}
	return c.pix
}

// At returns the colour at (x, y); ok is false outside the buffer or before the first render.
func (c *Canvas) At(x, y int) (pixel.Color, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.rendered || x < 0 || y < 0 || x >= c.w || y >= c.h {
		return pixel.Transparent, false
	}
	o := 4 * (y*c.w + x)
	return pixel.Pack(c.pix[o], c.pix[o+1], c.pix[o+2], c.pix[o+3]), true
}

func (c *Canvas) Size() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

// Generation increases on every buffer allocation.
func (c *Canvas) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
