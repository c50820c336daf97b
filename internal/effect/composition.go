package effect

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

type ticker interface {
	Tick(dt time.Duration)
	Clock() *Clock
}

// Composition runs an ordered list of effects into one shared colour array.
type Composition struct {
	colors  []pixel.Color
	effects []Effect
	log     zerolog.Logger
}

func NewComposition(colors []pixel.Color, log zerolog.Logger) *Composition {
	return &Composition{colors: colors, log: log}
}

func (c *Composition) Add(e Effect) {
	if e == nil {
		return
	}
	c.effects = append(c.effects, e)
}

func (c *Composition) Effects() []Effect     { return c.effects }
func (c *Composition) Colors() []pixel.Color { return c.colors }

// Render advances every effect by dt and runs them in list order. The array is cleared first;
// an empty list leaves it untouched. A panicking effect is logged and skipped for this frame.
func (c *Composition) Render(dt time.Duration) {
	if len(c.effects) == 0 {
		return
	}
	for i := range c.colors {
		c.colors[i] = pixel.Transparent
	}
	for _, e := range c.effects {
		f := Frame{DT: dt}
		if t, ok := e.(ticker); ok {
			t.Tick(dt)
			f.Time = t.Clock().Seconds()
		}
		c.renderOne(e, f)
	}
}

func (c *Composition) renderOne(e Effect, f Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("effect", e.Name()).Str("panic", fmt.Sprint(r)).Msg("effect render")
		}
	}()
	e.Render(f, NewOutput(c.colors, e.Blend()))
}

func (c *Composition) OnActive() {
	for _, e := range c.effects {
		e.OnActive()
	}
}

func (c *Composition) OnInactive() {
	for _, e := range c.effects {
		e.OnInactive()
	}
}

func (c *Composition) OnParameterChanged(ctl *binding.Control) {
	for _, e := range c.effects {
		e.OnParameterChanged(ctl)
	}
}

// Controls gathers every effect's declared controls; effects without any contribute nothing.
func (c *Composition) Controls() []*binding.Control {
	var out []*binding.Control
	for _, e := range c.effects {
		out = append(out, e.Controls()...)
	}
	return out
}
