// Package app assembles the model, host signals, patterns and engine into a runnable core.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/audio"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/effect"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/engine"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/palette"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/parallel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pattern"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/post"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/sample"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaders"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/show"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/tempo"
)

// MainPattern layers every configured shader kind.
const MainPattern = "main"

// Options are the effective settings after flags and config are merged.
type Options struct {
	Lattice       model.Lattice
	Width, Height int // canvas size, 0 for aspect-derived
	Workers       int // >1 evaluates shaders in parallel chunks
	Shaders       []shaders.Kind
	Projection    sample.Options
	Pattern       string // initially active; "" for MainPattern
	BPM           float64
	Base, Accent  string
	Post          post.Params
}

// Core is a built engine and the host signals feeding it.
type Core struct {
	Model   *model.Model
	Host    *host.Context
	Tempo   *tempo.Clock
	Palette *palette.Swatch
	Audio   *audio.Analyzer
	Pool    *parallel.Pool
	Engine  *engine.Engine
	Player  *show.Player

	log zerolog.Logger
}

// Build creates the model and every pattern, registers them on a new engine writing to drv and
// installs the tempo and audio tickers.
func Build(opts Options, drv led.Driver, log zerolog.Logger) (*Core, error) {
	m, err := opts.Lattice.Build()
	if err != nil {
		return nil, err
	}
	if opts.Base == "" {
		opts.Base = "#ff6a00"
	}
	sw, err := palette.New(opts.Base, opts.Accent)
	if err != nil {
		return nil, err
	}
	c := &Core{
		Model:   m,
		Tempo:   tempo.New(opts.BPM),
		Palette: sw,
		Audio:   audio.NewAnalyzer(audio.Options{}),
		log:     log,
	}
	c.Host = &host.Context{Tempo: c.Tempo, Audio: c.Audio, Palette: c.Palette, Log: &c.log}
	if opts.Workers > 1 {
		c.Pool = parallel.NewPool(opts.Workers, log)
	}

	eng, err := engine.New(m.Size(), drv, opts.Post, log)
	if err != nil {
		return nil, err
	}
	c.Engine = eng

	patterns, err := c.patterns(opts)
	if err != nil {
		c.Close()
		return nil, err
	}
	for _, p := range patterns {
		if err := eng.Register(p); err != nil {
			c.Close()
			return nil, err
		}
	}
	start := opts.Pattern
	if start == "" {
		start = MainPattern
	}
	if err := eng.SetActive(start); err != nil {
		c.Close()
		return nil, err
	}

	eng.AddTicker(c.Tempo.Advance)
	eng.AddTicker(func(time.Duration) { c.Audio.Update() })
	c.Player = show.NewPlayer(Hooks(eng), log.With().Str("component", "show").Logger())
	eng.AddTicker(c.Player.Tick)

	log.Info().
		Int("points", m.Size()).
		Int("surfaces", len(m.Surfaces())).
		Int("workers", opts.Workers).
		Strs("patterns", eng.Patterns()).
		Msg("core ready")
	return c, nil
}

func (c *Core) patterns(opts Options) ([]*pattern.Pattern, error) {
	kinds := opts.Shaders
	if len(kinds) == 0 {
		kinds = []shaders.Kind{shaders.TechnoChurch}
	}
	so := pattern.ShaderOptions{Width: opts.Width, Height: opts.Height, Projection: opts.Projection, Pool: c.Pool}

	var out []*pattern.Pattern

	main := pattern.New(MainPattern, c.Model, c.Host)
	for i, k := range kinds {
		o := so
		if i > 0 {
			o.Blend = effect.Add
		}
		if _, err := main.AddShader(k, o); err != nil {
			return nil, fmt.Errorf("%s: %w", MainPattern, err)
		}
	}
	out = append(out, main)

	for _, k := range shaders.Kinds() {
		p := pattern.New(k.String(), c.Model, c.Host)
		if _, err := p.AddShader(k, so); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	natives := []struct {
		name string
		mk   func(t effect.Target, p *pattern.Pattern) effect.Effect
	}{
		{"solid", func(t effect.Target, p *pattern.Pattern) effect.Effect { return effect.NewSolid(t, p.Set()) }},
		{"gradient", func(t effect.Target, p *pattern.Pattern) effect.Effect { return effect.NewGradient(t, p.Set()) }},
		{"sweep", func(t effect.Target, p *pattern.Pattern) effect.Effect { return effect.NewSweep(t, p.Set()) }},
		{"calibration", c.calibration},
	}
	for _, n := range natives {
		p := pattern.New(n.name, c.Model, c.Host)
		t, err := p.Target(effect.RoleBase)
		if err != nil {
			return nil, err
		}
		p.Add(n.mk(t, p))
		out = append(out, p)
	}
	return out, nil
}

func (c *Core) calibration(t effect.Target, p *pattern.Pattern) effect.Effect {
	var panels []effect.Target
	for _, s := range c.Model.Surfaces() {
		pt, err := p.Target(effect.RoleBase, s.Name)
		if err != nil {
			continue
		}
		panels = append(panels, pt)
	}
	return effect.NewCalibration(t, panels, p.Set())
}

// Hooks wires a show player onto the engine.
func Hooks(eng *engine.Engine) show.Hooks {
	return show.Hooks{
		SetPattern:   eng.SetActive,
		SetControl:   eng.SetControl,
		ArmNext:      eng.ArmNext,
		SetCrossfade: eng.SetCrossfade,
	}
}

// LoadShow validates a show file against the registered patterns and starts it.
func (c *Core) LoadShow(path string) error {
	prog, err := show.Load(path)
	if err != nil {
		return err
	}
	if err := prog.Validate(c.Engine.Patterns()...); err != nil {
		return err
	}
	if err := c.Player.Load(prog); err != nil {
		return err
	}
	c.Player.Start()
	return nil
}

// Close disposes patterns, closes the driver and stops the worker pool.
func (c *Core) Close() error {
	var errs []error
	if c.Engine != nil {
		errs = append(errs, c.Engine.Close())
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	return errors.Join(errs...)
}
