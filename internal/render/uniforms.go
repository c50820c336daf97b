// Package render evaluates fragment functions into an offscreen RGBA canvas.
package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/binding"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

// Uniforms is everything a fragment function may read for one frame. It is built once per frame
// and shared read-only between workers.
type Uniforms struct {
	Time       float64    // seconds since activation
	Resolution mgl64.Vec2 // canvas size in pixels
	Controls   binding.Values
	Audio      host.Levels
	Beat       int
	Basis      float64
	BarPhase   float64
	Base       mgl64.Vec3
	Accent     mgl64.Vec3
}

// Tag is shorthand for Controls.Tag.
func (u *Uniforms) Tag(t shaderctl.Tag) float64 { return u.Controls.Tag(t) }

// Get is shorthand for Controls.Get.
func (u *Uniforms) Get(name string) float64 { return u.Controls.Get(name) }

// Vec3 reads a vector control declared as name.x, name.y, name.z.
func (u *Uniforms) Vec3(name string) mgl64.Vec3 {
	return mgl64.Vec3{u.Get(name + ".x"), u.Get(name + ".y"), u.Get(name + ".z")}
}

// FromHost fills the tempo, audio and palette fields from a host context.
func (u *Uniforms) FromHost(h *host.Context) {
	u.Audio = h.Levels()
	u.Beat, u.Basis = h.Beat()
	u.BarPhase = h.BarPhase()
	base, accent := h.Colors()
	u.Base = ColorVec(base)
	u.Accent = ColorVec(accent)
}

// ColorVec converts a packed colour to 0..1 floats.
func ColorVec(c pixel.Color) mgl64.Vec3 {
	r, g, b := c.Floats()
	return mgl64.Vec3{r, g, b}
}

// FragmentFunc maps a fragment coordinate (pixel centre, origin bottom-left) to linear RGB.
// Implementations must be bounded: no loops driven by input values.
type FragmentFunc func(fragCoord mgl64.Vec2, u *Uniforms) mgl64.Vec3

// Shade evaluates f at pixel (x, y) and returns an opaque packed colour.
func Shade(f FragmentFunc, u *Uniforms, x, y int) pixel.Color {
	c := f(mgl64.Vec2{float64(x) + 0.5, float64(y) + 0.5}, u)
	return pixel.FromFloat(c[0], c[1], c[2])
}
