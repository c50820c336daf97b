package effect

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

// Solid fills the target with its palette colour, optionally pulsing.
type Solid struct {
	Base
}

const solidControls = `uniform float pulseHz = 0.0 in {0.0, 8.0};`

func NewSolid(t Target, set *binding.Set) *Solid {
	return &Solid{Base: NewBase("solid", Overwrite, t, set, solidControls)}
}

func (s *Solid) Render(f Frame, out *Output) {
	c := s.target.Color()
	if hz := s.Value("pulseHz"); hz > 0 {
		c = c.Scale(0.5 + 0.5*math.Sin(2*math.Pi*hz*f.Time))
	}
	out.Fill(s.target.Points(), c)
}

// Gradient rotates hue along one surface axis, locked to the standard Speed control.
type Gradient struct {
	Base
}

const gradientControls = `#pragma SPEED.Range(0.1, 0.0, 2.0)
uniform float axis = 1.0 in {0.0, 2.0};
uniform float saturation = 1.0 in {0.0, 1.0};`

func NewGradient(t Target, set *binding.Set) *Gradient {
	return &Gradient{Base: NewBase("gradient", Overwrite, t, set, gradientControls)}
}

func (g *Gradient) Render(f Frame, out *Output) {
	s := g.target.Surface
	if s == nil {
		return
	}
	speed := g.Tag(shaderctl.TagSpeed)
	sat := g.Value("saturation")
	axis := int(math.Round(g.Value("axis")))
	offset := f.Time * speed
	for _, p := range s.Points {
		r := s.Dim.Remap(p)
		v := r.Z
		switch axis {
		case 0:
			v = r.X
		case 1:
			v = r.Y
		}
		h := math.Mod(v+offset, 1)
		if h < 0 {
			h++
		}
		out.Set(p.Index, pixel.FromColorful(colorful.Hsv(h*360, sat, 1)))
	}
}

// Sweep lights one point at a time in index order, wrapping. Useful for checking wiring order.
type Sweep struct {
	Base
}

const sweepControls = `uniform float rate = 30.0 in {1.0, 240.0};`

func NewSweep(t Target, set *binding.Set) *Sweep {
	return &Sweep{Base: NewBase("sweep", Add, t, set, sweepControls)}
}

// Current returns the position in the point list lit at effect time t.
func (s *Sweep) Current(t float64) int {
	n := len(s.target.Points())
	if n == 0 {
		return -1
	}
	return int(t*s.Value("rate")) % n
}

func (s *Sweep) Render(f Frame, out *Output) {
	i := s.Current(f.Time)
	if i < 0 {
		return
	}
	out.Set(s.target.Points()[i].Index, pixel.White)
}

// Calibration gives every surface one primary channel (R, G, B in surface order), darkened left
// to right and blended to white bottom to top, so panel order and orientation can be read off
// the hardware.
type Calibration struct {
	Base
	surfaces []Target
}

const calibrationControls = `uniform float lrGamma = 1.2 in {0.1, 4.0};
uniform float topWhitePow = 0.6 in {0.1, 4.0};
uniform float topWhiteMix = 1.0 in {0.0, 1.0};
uniform float rightFloor = 0.0 in {0.0, 1.0};
uniform float intensity = 1.0 in {0.0, 1.0};`

// NewCalibration renders each of surfaces with its own channel; t supplies the host context.
func NewCalibration(t Target, surfaces []Target, set *binding.Set) *Calibration {
	return &Calibration{
		Base:     NewBase("calibration", Overwrite, t, set, calibrationControls),
		surfaces: surfaces,
	}
}

func (c *Calibration) Render(_ Frame, out *Output) {
	lrPow := c.Value("lrGamma")
	topPow := c.Value("topWhitePow")
	topMix := c.Value("topWhiteMix")
	floor := c.Value("rightFloor")
	k := c.Value("intensity")
	for si, st := range c.surfaces {
		s := st.Surface
		if s == nil {
			continue
		}
		var base [3]float64
		base[si%3] = 1
		for _, p := range s.Points {
			r := s.Dim.Remap(p)
			lr := 1 - math.Pow(clamp01(r.X), lrPow)
			lr = floor + (1-floor)*lr
			bt := math.Pow(clamp01(r.Y), topPow)
			if r.Y >= 1 {
				bt = 1
			} else {
				bt *= topMix
			}
			var rgb [3]float64
			for ch := range rgb {
				v := base[ch] * lr
				rgb[ch] = (v + (1-v)*bt) * k
			}
			out.Set(p.Index, pixel.FromFloat(rgb[0], rgb[1], rgb[2]))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
