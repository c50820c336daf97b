// Package engine owns the registered patterns and turns the active one (or a crossfade between
// two) into driver frames at a fixed rate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pattern"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/post"
)

var (
	ErrNoPattern    = errors.New("no active pattern")
	ErrUnknown      = errors.New("pattern not found")
	ErrUnknownCtl   = errors.New("control not found")
	ErrSizeMismatch = errors.New("pattern size does not match engine")
)

// Ticker advances a time source (tempo, audio, show) before each frame.
type Ticker func(dt time.Duration)

// Listener receives every finished frame. The slice is only valid during the call.
type Listener func(frame []pixel.Color)

// Stats describes the last rendered frame.
type Stats struct {
	Frame      uint64  `json:"frame_id"`
	Active     string  `json:"active"`
	Next       string  `json:"next,omitempty"`
	Alpha      float64 `json:"alpha"`
	Brightness float64 `json:"brightness"`
	RenderMS   float64 `json:"render_ms"`
	PostMS     float64 `json:"post_ms"`
	TotalMS    float64 `json:"total_ms"`
}

type Engine struct {
	mu  sync.Mutex
	n   int
	drv led.Driver
	log zerolog.Logger

	patterns map[string]*pattern.Pattern
	active   *pattern.Pattern
	next     *pattern.Pattern
	alpha    float64
	fading   bool

	out  []pixel.Color
	post post.Params

	tickers   []Ticker
	listeners []Listener

	frame uint64
	last  Stats
}

// New sizes the engine for n points. drv may be nil for tests that only inspect Frame.
func New(n int, drv led.Driver, p post.Params, log zerolog.Logger) (*Engine, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid point count: %d", n)
	}
	if p.Brightness <= 0 {
		p.Brightness = 1
	}
	return &Engine{
		n:        n,
		drv:      drv,
		log:      log,
		patterns: map[string]*pattern.Pattern{},
		out:      make([]pixel.Color, n),
		post:     p,
	}, nil
}

// Register adds a pattern. The first one registered becomes active.
func (e *Engine) Register(p *pattern.Pattern) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(p.Colors()) != e.n {
		return fmt.Errorf("%s: %w (%d != %d)", p.Name(), ErrSizeMismatch, len(p.Colors()), e.n)
	}
	if _, dup := e.patterns[p.Name()]; dup {
		return fmt.Errorf("pattern %q already registered", p.Name())
	}
	e.patterns[p.Name()] = p
	if e.active == nil {
		e.active = p
		p.Activate()
	}
	return nil
}

// Patterns lists registered pattern names, sorted.
func (e *Engine) Patterns() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.patterns))
	for k := range e.patterns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Active returns the active pattern name, or "".
func (e *Engine) Active() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ""
	}
	return e.active.Name()
}

// SetActive switches immediately, cancelling any crossfade.
func (e *Engine) SetActive(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.patterns[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	e.dropNext()
	if e.active != p {
		if e.active != nil {
			e.active.Deactivate()
		}
		e.active = p
		p.Activate()
		e.log.Info().Str("pattern", name).Msg("active pattern")
	}
	e.alpha, e.fading = 0, false
	return nil
}

// ArmNext activates a pattern to fade into. SetCrossfade drives the mix.
func (e *Engine) ArmNext(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.patterns[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	if p == e.active {
		return nil
	}
	if e.next != p {
		e.dropNext()
		e.next = p
		p.Activate()
	}
	e.fading = true
	return nil
}

// SetCrossfade sets the mix between active and next. alpha >= 1 promotes next to active;
// alpha <= 0 stops fading but keeps next armed.
func (e *Engine) SetCrossfade(alpha float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case alpha <= 0:
		e.alpha, e.fading = 0, false
	case alpha >= 1:
		e.alpha, e.fading = 0, false
		if e.next != nil {
			if e.active != nil {
				e.active.Deactivate()
			}
			e.active, e.next = e.next, nil
			e.log.Info().Str("pattern", e.active.Name()).Msg("crossfade complete")
		}
	default:
		e.alpha = alpha
		e.fading = e.next != nil
	}
}

func (e *Engine) dropNext() {
	if e.next != nil && e.next != e.active {
		e.next.Deactivate()
	}
	e.next = nil
}

// Controls lists the active pattern's exposed controls.
func (e *Engine) Controls() []*binding.Control {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	return e.active.Controls()
}

// ControlValues snapshots label → value for the active pattern under the engine lock.
func (e *Engine) ControlValues() []ControlState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	ctls := e.active.Controls()
	out := make([]ControlState, len(ctls))
	for i, c := range ctls {
		out[i] = ControlState{
			Label: c.Label,
			Value: c.Value(),
			Min:   c.Range.Min,
			Max:   c.Range.Max,
			Def:   c.Range.Default,
		}
	}
	return out
}

// ControlState is a serialisable view of one control.
type ControlState struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Def   float64 `json:"default"`
}

// SetControl sets a control on the active pattern. The value is clamped to its range.
func (e *Engine) SetControl(label string, v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ErrNoPattern
	}
	c, ok := e.active.Control(label)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCtl, label)
	}
	c.Set(v)
	return nil
}

// SetBrightness changes global output brightness (0..1).
func (e *Engine) SetBrightness(b float64) {
	if b < 0 {
		b = 0
	}
	if b > 1 {
		b = 1
	}
	e.mu.Lock()
	e.post.Brightness = b
	e.mu.Unlock()
}

// AddTicker registers a time source advanced before each frame, outside the engine lock.
func (e *Engine) AddTicker(t Ticker) {
	e.mu.Lock()
	e.tickers = append(e.tickers, t)
	e.mu.Unlock()
}

// OnFrame registers a frame listener.
func (e *Engine) OnFrame(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Stats returns metrics of the last frame.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Frame returns a copy of the last output frame.
func (e *Engine) Frame() []pixel.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]pixel.Color(nil), e.out...)
}

// RenderOnce advances every ticker by dt, renders the active pattern (and the next one while
// fading), mixes, applies the post stage and writes to the driver.
func (e *Engine) RenderOnce(dt time.Duration) error {
	e.mu.Lock()
	tickers := e.tickers
	e.mu.Unlock()
	for _, t := range tickers {
		t(dt)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ErrNoPattern
	}
	start := time.Now()

	e.active.Render(dt)
	if e.fading && e.next != nil {
		e.next.Render(dt)
		Mix(e.out, e.active.Colors(), e.next.Colors(), e.alpha)
	} else {
		Mix(e.out, e.active.Colors(), e.active.Colors(), 0)
	}
	renderDone := time.Now()

	post.Apply(e.out, e.post)
	e.last.PostMS = float64(time.Since(renderDone).Microseconds()) / 1000.0

	var werr error
	if e.drv != nil {
		if err := e.drv.Write(e.out); err != nil {
			werr = fmt.Errorf("driver write: %w", err)
		}
	}
	for _, l := range e.listeners {
		l(e.out)
	}

	e.frame++
	e.last.Frame = e.frame
	e.last.Active = e.active.Name()
	e.last.Next = ""
	if e.next != nil {
		e.last.Next = e.next.Name()
	}
	e.last.Alpha = e.alpha
	e.last.Brightness = e.post.Brightness
	e.last.RenderMS = float64(renderDone.Sub(start).Microseconds()) / 1000.0
	e.last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return werr
}

// Run renders at fps until ctx is done. Write errors are logged, not fatal.
func (e *Engine) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	period := time.Second / time.Duration(fps)
	t := time.NewTicker(period)
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			dt := now.Sub(last)
			last = now
			if err := e.RenderOnce(dt); err != nil {
				e.log.Error().Err(err).Msg("render")
			}
		}
	}
}

// Close disposes every pattern and closes the driver.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.patterns {
		p.Dispose()
	}
	e.active, e.next = nil, nil
	if e.drv != nil {
		return e.drv.Close()
	}
	return nil
}
