package shaders

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/render"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

const tau = 2 * math.Pi

const technoChurchSource = `#pragma name "TechnoChurch"
#pragma TEControl.SPIN.Range(0.05, -1.0, 1.0)
#pragma TEControl.SIZE.Range(1.0, 0.1, 5.0)
#pragma TEControl.XPOS.Value(0.0)
#pragma TEControl.YPOS.Value(0.0)
#pragma TEControl.SPEED.Range(0.5, -1.0, 1.0)
#pragma TEControl.QUANTITY.Range(6.0, 1.0, 12.0)
#pragma TEControl.LEVELREACTIVITY.Range(0.2, 0.0, 1.0)
#pragma TEControl.FREQREACTIVITY.Range(0.2, 0.0, 1.0)
#pragma TEControl.WOW1.Range(0.0, 0.0, 1.0)
#pragma TEControl.WOW2.Range(0.0, 0.0, 1.0)
#pragma TEControl.WOWTRIGGER.Disable
`

// technoChurch draws rotating rays over expanding rings, pumping with the audio level.
func technoChurch(fc mgl64.Vec2, u *render.Uniforms) mgl64.Vec3 {
	p := render.Centered(fc, u.Resolution)
	p = p.Sub(mgl64.Vec2{u.Tag(shaderctl.TagXPos), u.Tag(shaderctl.TagYPos)})
	p = render.Rotate(p, u.Time*u.Tag(shaderctl.TagSpin)*tau)

	size := math.Max(u.Tag(shaderctl.TagSize), 1e-3)
	speed := u.Tag(shaderctl.TagSpeed)
	n := math.Round(u.Tag(shaderctl.TagQuantity))

	r := p.Len() / size
	a := math.Atan2(p[1], p[0])
	rays := 0.5 + 0.5*math.Cos(a*n+u.Time*speed*tau)
	rays = render.Smoothstep(0.4, 1.0, rays)

	pump := u.Audio.Bass * u.Tag(shaderctl.TagFrequencyReactivity)
	band := render.Fract(r*2 - u.Time*speed - pump)
	ring := render.Smoothstep(0.5, 0.0, math.Abs(band-0.5)) * 0.6

	level := 1 - u.Tag(shaderctl.TagLevelReactivity)*(1-u.Audio.Volume)
	col := render.MixVec(u.Base, u.Accent, ring).Mul(math.Max(rays, ring) * level)

	if w := u.Tag(shaderctl.TagWow1); w > 0 {
		flash := math.Pow(1-u.Basis, 4) * w
		col = render.MixVec(col, mgl64.Vec3{1, 1, 1}, flash)
	}
	if w := u.Tag(shaderctl.TagWow2); w > 0 {
		col = render.MixVec(col, render.HSV(u.BarPhase+r*0.25, 1, col.Len()/math.Sqrt(3)), w)
	}
	return col
}

const plasmaSource = `#pragma name "Plasma"
#pragma TEControl.SPEED.Range(0.3, 0.0, 2.0)
uniform float scale = 3.0 in {0.5, 10.0};
uniform vec3 tint = vec3(1.0, 0.7, 0.4) in {0.0, 1.0};
uniform float contrast = 1.0 in {0.2, 3.0};
`

func plasma(fc mgl64.Vec2, u *render.Uniforms) mgl64.Vec3 {
	p := render.UV(fc, u.Resolution).Mul(u.Get("scale"))
	t := u.Time * u.Tag(shaderctl.TagSpeed) * tau
	v := math.Sin(p[0]+t) +
		math.Sin(p[1]+t*0.7) +
		math.Sin((p[0]+p[1])*0.7+t*1.3) +
		math.Sin(math.Hypot(p[0]-u.Get("scale")/2, p[1]-u.Get("scale")/2)*1.5-t)
	v = 0.5 + 0.125*v
	v = math.Pow(render.Clamp(v, 0, 1), u.Get("contrast"))
	c := render.HSV(v, 0.8, 1)
	tint := u.Vec3("tint")
	return mgl64.Vec3{c[0] * tint[0], c[1] * tint[1], c[2] * tint[2]}
}

const ringsSource = `uniform float iSpeed = 0.5 in {0.0, 4.0};
uniform float iScale = 1.0 in {0.2, 4.0};
uniform float thickness = 0.15 in {0.01, 0.5};
uniform float iFreqReactivity = 0.5 in {0.0, 1.0};
uniform float softness = 0.02;
`

// rings draws concentric palette rings moving outward, thickened by the bass envelope.
func rings(fc mgl64.Vec2, u *render.Uniforms) mgl64.Vec3 {
	p := render.Centered(fc, u.Resolution)
	scale := math.Max(u.Tag(shaderctl.TagSize), 1e-3)
	d := p.Len()*4/scale - u.Time*u.Tag(shaderctl.TagSpeed)*4
	th := u.Get("thickness") * (1 + u.Audio.Bass*u.Tag(shaderctl.TagFrequencyReactivity))
	f := math.Abs(render.Fract(d) - 0.5)
	m := render.Smoothstep(th+u.Get("softness"), th, f)
	alt := math.Mod(math.Floor(d), 2)
	if alt < 0 {
		alt += 2
	}
	return render.MixVec(u.Base, u.Accent, alt).Mul(m)
}

const stripesSource = `uniform float iRotationAngle = 0.0 in {-3.1416, 3.1416};
uniform float iQuantity = 8.0 in {1.0, 32.0};
uniform float iSpeed = 0.25 in {-2.0, 2.0};
uniform float duty = 0.5 in {0.05, 0.95};
`

// stripes scrolls hard-edged bands across the surface at an angle.
func stripes(fc mgl64.Vec2, u *render.Uniforms) mgl64.Vec3 {
	p := render.UV(fc, u.Resolution).Sub(mgl64.Vec2{0.5, 0.5})
	p = render.Rotate(p, u.Tag(shaderctl.TagAngle))
	x := p[0]*u.Tag(shaderctl.TagQuantity) - u.Time*u.Tag(shaderctl.TagSpeed)
	if render.Fract(x) < u.Get("duty") {
		return u.Base
	}
	return u.Accent.Mul(0.15)
}
