// Package pattern assembles a control set, shader and native effects, and the shared output array
// into one selectable visual program.
package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/effect"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaders"
)

type disposer interface{ Dispose() }

// Pattern owns the output array its effects write into and outlives every one of them.
type Pattern struct {
	name   string
	model  *model.Model
	host   *host.Context
	set    *binding.Set
	colors []pixel.Color
	comp   *effect.Composition
	log    zerolog.Logger
	active bool
}

func New(name string, m *model.Model, h *host.Context) *Pattern {
	log := h.Logger().With().Str("pattern", name).Logger()
	colors := make([]pixel.Color, m.Size())
	p := &Pattern{
		name:   name,
		model:  m,
		host:   h,
		set:    binding.NewSet(),
		colors: colors,
		comp:   effect.NewComposition(colors, log),
		log:    log,
	}
	p.set.OnChange(p.comp.OnParameterChanged)
	return p
}

func (p *Pattern) Name() string             { return p.name }
func (p *Pattern) Set() *binding.Set        { return p.set }
func (p *Pattern) Colors() []pixel.Color    { return p.colors }
func (p *Pattern) Model() *model.Model      { return p.model }
func (p *Pattern) Effects() []effect.Effect { return p.comp.Effects() }
func (p *Pattern) Active() bool             { return p.active }

// Target resolves surface names into an effect target. No names, or "all", is the whole model;
// several names are merged into one surface with its own bounds.
func (p *Pattern) Target(role effect.ColorRole, surfaces ...string) (effect.Target, error) {
	t := effect.Target{Role: role, Host: p.host}
	switch len(surfaces) {
	case 0:
		t.Surface = p.model.All()
	case 1:
		s, ok := p.model.Surface(surfaces[0])
		if !ok {
			return t, fmt.Errorf("unknown surface %q", surfaces[0])
		}
		t.Surface = s
	default:
		s, err := p.model.Select(strings.Join(surfaces, "+"), surfaces...)
		if err != nil {
			return t, err
		}
		t.Surface = s
	}
	return t, nil
}

// Add appends an effect to the composition.
func (p *Pattern) Add(e effect.Effect) { p.comp.Add(e) }

// AddShader builds the built-in program kind on the named surfaces and appends it.
func (p *Pattern) AddShader(kind shaders.Kind, opts ShaderOptions, surfaces ...string) (*ShaderEffect, error) {
	prog, err := kind.Program()
	if err != nil {
		return nil, err
	}
	t, err := p.Target(effect.RoleBase, surfaces...)
	if err != nil {
		return nil, err
	}
	s := NewShader(prog, t, p.set, opts)
	p.comp.Add(s)
	return s, nil
}

// Activate starts driving output. Effect clocks restart.
func (p *Pattern) Activate() {
	if p.active {
		return
	}
	p.active = true
	p.comp.OnActive()
	p.log.Info().Int("effects", len(p.comp.Effects())).Msg("pattern active")
}

// Deactivate releases per-activation resources such as canvases.
func (p *Pattern) Deactivate() {
	if !p.active {
		return
	}
	p.active = false
	p.comp.OnInactive()
	p.log.Info().Msg("pattern inactive")
}

// Render runs one frame of dt into Colors.
func (p *Pattern) Render(dt time.Duration) { p.comp.Render(dt) }

// Controls lists the exposed controls in creation order.
func (p *Pattern) Controls() []*binding.Control { return p.set.Exposed() }

// Control finds an exposed control by label.
func (p *Pattern) Control(label string) (*binding.Control, bool) { return p.set.ByLabel(label) }

// Dispose deactivates and releases every effect that holds resources.
func (p *Pattern) Dispose() {
	p.Deactivate()
	for _, e := range p.comp.Effects() {
		if d, ok := e.(disposer); ok {
			d.Dispose()
		}
	}
}
