package pattern

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/effect"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/parallel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/render"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/sample"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaders"
)

// CanvasLongSide is the default canvas size along a surface's longer projected axis.
const CanvasLongSide = 64

// ShaderOptions configure one shader effect.
type ShaderOptions struct {
	// Width and Height fix the canvas; zero sizes it from the surface's aspect.
	Width, Height int
	Blend         effect.Blend
	Projection    sample.Options
	// Pool switches to chunked evaluation straight at each point's cell. Nil renders the whole
	// canvas on the caller's goroutine and samples it.
	Pool *parallel.Pool
}

// ShaderEffect renders one shader program onto its target surface.
type ShaderEffect struct {
	effect.Base
	prog   shaders.Program
	canvas *render.Canvas
	proj   *sample.Projector
	pool   *parallel.Pool
	w, h   int
	log    zerolog.Logger

	u       render.Uniforms
	chunks  []parallel.Chunk
	states  []render.Uniforms
	lastErr error
}

// NewShader parses prog's controls, binds them onto set and prepares an inactive canvas.
func NewShader(prog shaders.Program, t effect.Target, set *binding.Set, opts ShaderOptions) *ShaderEffect {
	s := &ShaderEffect{
		Base: effect.NewBase(prog.Kind.String(), opts.Blend, t, set, prog.Source),
		prog: prog,
		pool: opts.Pool,
	}
	s.log = t.Host.Logger().With().Str("shader", prog.Kind.String()).Logger()
	surface := t.Surface
	if surface == nil {
		surface = &model.Surface{}
	}
	s.proj = sample.New(surface, opts.Projection)
	s.w, s.h = opts.Width, opts.Height
	if s.w <= 0 || s.h <= 0 {
		s.w, s.h = CanvasSize(surface, opts.Projection.Orientation, CanvasLongSide)
	}
	s.canvas = render.NewCanvas(s.w, s.h, s.Clock(), s.log)
	return s
}

// CanvasSize picks a canvas matching the surface's projected aspect, long side fixed.
func CanvasSize(s *model.Surface, o sample.Orientation, long int) (w, h int) {
	e := s.Dim.Extent()
	u, v := e.X, e.Y
	switch o {
	case sample.Side:
		u, v = e.Z, e.Y
	case sample.Top:
		u, v = e.X, e.Z
	}
	switch {
	case u <= 0 && v <= 0:
		return long, long
	case u >= v:
		return long, max(1, int(math.Round(float64(long)*v/u)))
	default:
		return max(1, int(math.Round(float64(long)*u/v))), long
	}
}

func (s *ShaderEffect) Program() shaders.Program     { return s.prog }
func (s *ShaderEffect) Canvas() *render.Canvas       { return s.canvas }
func (s *ShaderEffect) Projector() *sample.Projector { return s.proj }
func (s *ShaderEffect) Parallel() bool               { return s.pool != nil }

// Resize changes the canvas resolution; sampling tables follow on the next frame.
func (s *ShaderEffect) Resize(w, h int) error {
	s.w, s.h = w, h
	return s.canvas.Resize(w, h)
}

func (s *ShaderEffect) OnActive() {
	s.Base.OnActive()
	if s.pool != nil {
		return
	}
	if err := s.canvas.Activate(); err != nil {
		s.report(err)
	}
}

func (s *ShaderEffect) OnInactive() {
	s.canvas.Deactivate()
	s.lastErr = nil
}

// Dispose releases the canvas and detaches from the control set.
func (s *ShaderEffect) Dispose() {
	s.canvas.Dispose()
	if v := s.View(); v != nil {
		v.Release()
	}
}

func (s *ShaderEffect) OnParameterChanged(c *binding.Control) {
	s.log.Debug().Str("control", c.Label).Float64("value", c.Value()).Msg("parameter changed")
}

func (s *ShaderEffect) prepare(u *render.Uniforms) {
	if v := s.View(); v != nil {
		u.Controls = v.Snapshot()
	}
	u.FromHost(s.Target().Host)
}

func (s *ShaderEffect) Render(_ effect.Frame, out *effect.Output) {
	if s.pool != nil {
		s.renderChunks(out)
		return
	}
	switch s.canvas.State() {
	case render.Uninitialized, render.Inactive:
		if err := s.canvas.Activate(); err != nil {
			s.report(err)
			return
		}
	}
	s.prepare(&s.u)
	s.canvas.Begin(&s.u)
	if err := s.canvas.Render(s.prog.Frag, &s.u); err != nil {
		s.report(err)
		return
	}
	s.lastErr = nil
	s.proj.Sample(s.canvas, out)
}

// renderChunks evaluates the shader at every point's cell, one pool task per contiguous chunk of
// the cell table. Chunks own disjoint output indices, so writes need no locking.
func (s *ShaderEffect) renderChunks(out *effect.Output) {
	s.prepare(&s.u)
	s.u.Time = s.Clock().Seconds()
	s.u.Resolution[0], s.u.Resolution[1] = float64(s.w), float64(s.h)
	cells := s.proj.Cells(s.w, s.h, 0)
	if total := len(cells); len(s.chunks) != s.pool.Size() || s.chunks[len(s.chunks)-1].Hi != total {
		s.chunks = parallel.Partition(total, s.pool.Size())
		s.states = make([]render.Uniforms, len(s.chunks))
	}
	gaps := s.proj.Options().Gaps
	errs := s.pool.Run(s.chunks, func(c parallel.Chunk) error {
		st := &s.states[c.Index]
		*st = s.u
		for _, cell := range cells[c.Lo:c.Hi] {
			if cell.Gap {
				if gaps == sample.GapTransparent {
					out.Set(cell.Index, pixel.Transparent)
				}
				continue
			}
			out.Set(cell.Index, render.Shade(s.prog.Frag, st, cell.X, cell.Y))
		}
		return nil
	})
	if len(errs) > 0 {
		s.report(errors.Join(errs...))
		return
	}
	s.lastErr = nil
}

// report logs err once until the effect renders cleanly again.
func (s *ShaderEffect) report(err error) {
	if s.lastErr != nil && s.lastErr.Error() == err.Error() {
		return
	}
	s.lastErr = err
	s.log.Error().Err(err).Msg("shader render")
}

// Err is the most recent render failure, nil after a clean frame.
func (s *ShaderEffect) Err() error { return s.lastErr }
