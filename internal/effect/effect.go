// Package effect composes independently animated effects into one shared colour array.
package effect

import (
	"time"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

// Blend selects how an effect's colours land in the shared array.
type Blend int

const (
	Overwrite Blend = iota
	Add             // per-channel saturating add
)

func (b Blend) String() string {
	if b == Add {
		return "add"
	}
	return "overwrite"
}

// ColorRole names which palette colour an effect prefers.
type ColorRole int

const (
	RoleBase ColorRole = iota
	RoleAccent
)

// Target is the borrowed handle an effect renders through: the points it drives, its preferred
// colour role and the host collaborators. The owning pattern outlives every effect built on it.
type Target struct {
	Surface *model.Surface
	Role    ColorRole
	Host    *host.Context
}

// Points is the active point set.
func (t Target) Points() []model.Point {
	if t.Surface == nil {
		return nil
	}
	return t.Surface.Points
}

// Color resolves the target's colour role against the palette.
func (t Target) Color() pixel.Color {
	base, accent := t.Host.Colors()
	if t.Role == RoleAccent {
		return accent
	}
	return base
}

// Frame carries per-frame timing.
type Frame struct {
	DT   time.Duration
	Time float64 // effect-local seconds since OnActive
}

// Effect is one unit of animation logic.
type Effect interface {
	Name() string
	Blend() Blend
	// Controls may return nil.
	Controls() []*binding.Control
	Render(f Frame, out *Output)
	OnActive()
	OnInactive()
	OnParameterChanged(c *binding.Control)
}

// Output writes into the shared colour array with one effect's blend mode.
type Output struct {
	colors []pixel.Color
	blend  Blend
}

func NewOutput(colors []pixel.Color, b Blend) *Output {
	return &Output{colors: colors, blend: b}
}

func (o *Output) Len() int { return len(o.colors) }

// Set writes c at index i; out-of-range indices are ignored.
func (o *Output) Set(i int, c pixel.Color) {
	if i < 0 || i >= len(o.colors) {
		return
	}
	if o.blend == Add {
		o.colors[i] = pixel.Add(o.colors[i], c)
		return
	}
	o.colors[i] = c
}

func (o *Output) At(i int) pixel.Color {
	if i < 0 || i >= len(o.colors) {
		return pixel.Transparent
	}
	return o.colors[i]
}

// Fill writes c at every listed point.
func (o *Output) Fill(points []model.Point, c pixel.Color) {
	for _, p := range points {
		o.Set(p.Index, c)
	}
}

// Clock is an effect-local logical clock advanced by frame deltas on the render goroutine.
type Clock struct {
	t time.Duration
}

func (c *Clock) Now() time.Duration       { return c.t }
func (c *Clock) Advance(dt time.Duration) { c.t += dt }
func (c *Clock) Reset()                   { c.t = 0 }
func (c *Clock) Seconds() float64         { return c.t.Seconds() }

// Base carries the bookkeeping shared by every effect: name, blend mode, its own clock and
// the binding view for the controls it declares.
type Base struct {
	name   string
	blend  Blend
	clock  Clock
	view   *binding.View
	target Target
}

// NewBase binds the controls declared in src (pragma/uniform syntax) onto set. An empty src
// declares nothing.
func NewBase(name string, b Blend, t Target, set *binding.Set, src string) Base {
	base := Base{name: name, blend: b, target: t}
	if set != nil && src != "" {
		m := shaderctl.Parse(src)
		log := t.Host.Logger()
		for _, w := range m.Warnings {
			log.Warn().Str("effect", name).Int("line", w.Line).Err(w.Err).Msg("control declaration")
		}
		base.view = set.Bind(m)
	}
	return base
}

func (b *Base) Name() string        { return b.name }
func (b *Base) Blend() Blend        { return b.blend }
func (b *Base) SetBlend(bl Blend)   { b.blend = bl }
func (b *Base) Target() Target      { return b.target }
func (b *Base) Clock() *Clock       { return &b.clock }
func (b *Base) View() *binding.View { return b.view }

func (b *Base) Controls() []*binding.Control {
	if b.view == nil {
		return nil
	}
	return b.view.Custom()
}

// Value reads a declared control; undeclared names read 0.
func (b *Base) Value(name string) float64 {
	if b.view == nil {
		return 0
	}
	return b.view.Value(name)
}

// Tag reads a standardized control as this effect sees it.
func (b *Base) Tag(t shaderctl.Tag) float64 {
	if b.view == nil {
		return 0
	}
	return b.view.Tag(t)
}

func (b *Base) Tick(dt time.Duration)                 { b.clock.Advance(dt) }
func (b *Base) OnActive()                             { b.clock.Reset() }
func (b *Base) OnInactive()                           {}
func (b *Base) OnParameterChanged(c *binding.Control) {}
