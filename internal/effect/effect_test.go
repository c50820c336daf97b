package effect

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// fill is a minimal effect writing one colour everywhere.
type fill struct {
	Base
	c        pixel.Color
	active   int
	inactive int
	changed  []string
	panics   bool
}

func newFill(name string, b Blend, t Target, c pixel.Color) *fill {
	return &fill{Base: NewBase(name, b, t, nil, ""), c: c}
}

func (f *fill) Render(_ Frame, out *Output) {
	if f.panics {
		panic("boom")
	}
	out.Fill(f.target.Points(), f.c)
}
func (f *fill) OnActive()   { f.Base.OnActive(); f.active++ }
func (f *fill) OnInactive() { f.inactive++ }
func (f *fill) OnParameterChanged(c *binding.Control) {
	f.changed = append(f.changed, c.Label)
}

type palette struct{ base, accent pixel.Color }

func (p palette) Base() pixel.Color   { return p.base }
func (p palette) Accent() pixel.Color { return p.accent }

func lattice(t *testing.T, x, y, z int) *model.Model {
	t.Helper()
	m, err := model.Lattice{X: x, Y: y, Z: z, PitchMM: 10}.Build()
	require.NoError(t, err)
	return m
}

func TestEmptyCompositionIsNoop(t *testing.T) {
	colors := []pixel.Color{pixel.White, pixel.Black}
	c := NewComposition(colors, zerolog.Nop())
	c.Render(time.Millisecond)
	c.OnActive()
	c.OnInactive()
	assert.Nil(t, c.Controls())
	assert.Equal(t, []pixel.Color{pixel.White, pixel.Black}, colors)
}

func TestAdditiveBlendSaturates(t *testing.T) {
	m := lattice(t, 2, 2, 1)
	tgt := Target{Surface: m.All()}
	colors := make([]pixel.Color, m.Size())
	c := NewComposition(colors, zerolog.Nop())
	c.Add(newFill("a", Add, tgt, pixel.White))
	c.Add(newFill("b", Add, tgt, pixel.White))
	c.Render(0)
	for _, col := range colors {
		assert.Equal(t, pixel.White, col)
	}
}

func TestBlendOrder(t *testing.T) {
	m := lattice(t, 2, 1, 1)
	tgt := Target{Surface: m.All()}
	colors := make([]pixel.Color, m.Size())
	c := NewComposition(colors, zerolog.Nop())
	c.Add(newFill("red", Overwrite, tgt, pixel.RGB(200, 0, 0)))
	c.Add(newFill("blue", Add, tgt, pixel.RGB(100, 0, 50)))
	c.Render(0)
	assert.Equal(t, pixel.RGB(255, 0, 50), colors[0])

	c.Add(newFill("green", Overwrite, tgt, pixel.RGB(0, 9, 0)))
	c.Render(0)
	assert.Equal(t, pixel.RGB(0, 9, 0), colors[1])
}

func TestPanickingEffectIsIsolated(t *testing.T) {
	m := lattice(t, 2, 1, 1)
	tgt := Target{Surface: m.All()}
	colors := make([]pixel.Color, m.Size())
	var buf bytes.Buffer
	c := NewComposition(colors, zerolog.New(&buf))
	bad := newFill("bad", Overwrite, tgt, pixel.White)
	bad.panics = true
	c.Add(bad)
	c.Add(newFill("good", Add, tgt, pixel.RGB(1, 2, 3)))
	c.Render(0)
	assert.Equal(t, pixel.Pack(1, 2, 3, 255), colors[0])
	assert.Contains(t, buf.String(), `"effect":"bad"`)
}

func TestLifecycleFanOut(t *testing.T) {
	m := lattice(t, 1, 1, 1)
	tgt := Target{Surface: m.All()}
	a := newFill("a", Overwrite, tgt, pixel.White)
	b := newFill("b", Add, tgt, pixel.White)
	c := NewComposition(make([]pixel.Color, 1), zerolog.Nop())
	c.Add(a)
	c.Add(b)
	c.Add(nil)
	require.Len(t, c.Effects(), 2)

	c.Render(500 * time.Millisecond)
	assert.InDelta(t, 0.5, a.Clock().Seconds(), 1e-9)
	c.OnActive()
	assert.Zero(t, a.Clock().Seconds())
	c.OnInactive()
	set := binding.NewSet()
	ctl := set.Standard(1)
	c.OnParameterChanged(ctl)
	for _, f := range []*fill{a, b} {
		assert.Equal(t, 1, f.active)
		assert.Equal(t, 1, f.inactive)
		assert.Equal(t, []string{ctl.Label}, f.changed)
		assert.Nil(t, f.Controls())
	}
}

func TestSolidUsesPaletteRoleAndPulse(t *testing.T) {
	m := lattice(t, 2, 2, 1)
	h := &host.Context{Palette: palette{base: pixel.RGB(10, 20, 30), accent: pixel.RGB(1, 1, 1)}}
	set := binding.NewSet()
	s := NewSolid(Target{Surface: m.All(), Host: h}, set)
	require.Len(t, s.Controls(), 1)

	colors := make([]pixel.Color, m.Size())
	c := NewComposition(colors, zerolog.Nop())
	c.Add(s)
	c.Render(0)
	assert.Equal(t, pixel.RGB(10, 20, 30), colors[3])

	ctl, ok := set.ByLabel("pulseHz")
	require.True(t, ok)
	ctl.Set(1)
	c.Render(750 * time.Millisecond) // sin(1.5*pi) = -1
	assert.Equal(t, pixel.RGB(0, 0, 0), colors[0])

	acc := NewSolid(Target{Surface: m.All(), Host: h, Role: RoleAccent}, nil)
	assert.Nil(t, acc.Controls())
	out := NewOutput(colors, Overwrite)
	acc.Render(Frame{}, out)
	assert.Equal(t, pixel.RGB(1, 1, 1), colors[0])
}

func TestSweepWraps(t *testing.T) {
	m := lattice(t, 4, 1, 1)
	set := binding.NewSet()
	s := NewSweep(Target{Surface: m.All()}, set)
	ctl, _ := set.ByLabel("rate")
	ctl.Set(2)
	assert.Equal(t, 0, s.Current(0))
	assert.Equal(t, 1, s.Current(0.5))
	assert.Equal(t, 0, s.Current(2))

	colors := make([]pixel.Color, 4)
	s.Render(Frame{Time: 1}, NewOutput(colors, s.Blend()))
	assert.Equal(t, pixel.White, colors[2])
	assert.Equal(t, pixel.Transparent, colors[0])
}

func TestCalibrationChannelsPerSurface(t *testing.T) {
	m := lattice(t, 3, 3, 3)
	var surfaces []Target
	for _, s := range m.Surfaces() {
		surfaces = append(surfaces, Target{Surface: s})
	}
	cal := NewCalibration(Target{Surface: m.All()}, surfaces, binding.NewSet())
	colors := make([]pixel.Color, m.Size())
	cal.Render(Frame{}, NewOutput(colors, cal.Blend()))

	l := model.Lattice{X: 3, Y: 3, Z: 3}
	bottomLeft := func(z int) pixel.Color { return colors[l.Index(0, 0, z)] }
	assert.Equal(t, pixel.RGB(255, 0, 0), bottomLeft(0))
	assert.Equal(t, pixel.RGB(0, 255, 0), bottomLeft(1))
	assert.Equal(t, pixel.RGB(0, 0, 255), bottomLeft(2))
	assert.Equal(t, pixel.White, colors[l.Index(2, 2, 0)], "top row blends to white")
	assert.Equal(t, pixel.RGB(0, 0, 0), colors[l.Index(2, 0, 0)], "right edge darkens")
}

func TestGradientFollowsSharedSpeed(t *testing.T) {
	m := lattice(t, 1, 4, 1)
	set := binding.NewSet()
	g := NewGradient(Target{Surface: m.All()}, set)
	colors := make([]pixel.Color, m.Size())
	g.Render(Frame{Time: 0}, NewOutput(colors, g.Blend()))
	assert.Equal(t, pixel.RGB(255, 0, 0), colors[0])
	first := append([]pixel.Color(nil), colors...)

	speed, ok := set.ByLabel("Speed")
	require.True(t, ok)
	speed.Set(0.5) // 1.0 in the gradient's range
	g.Render(Frame{Time: 0.25}, NewOutput(colors, g.Blend()))
	assert.NotEqual(t, first, colors)
}
