package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GLSL-flavoured helpers used by fragment functions.

func Fract(x float64) float64 { return x - math.Floor(x) }

func Clamp(x, lo, hi float64) float64 { return mgl64.Clamp(x, lo, hi) }

func Mix(a, b, t float64) float64 { return a + (b-a)*t }

func MixVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func Smoothstep(e0, e1, x float64) float64 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Rotate turns p by angle radians around the origin.
func Rotate(p mgl64.Vec2, angle float64) mgl64.Vec2 {
	return mgl64.Rotate2D(angle).Mul2x1(p)
}

// HSV converts hue (turns), saturation and value to RGB.
func HSV(h, s, v float64) mgl64.Vec3 {
	k := mgl64.Vec3{1, 2.0 / 3.0, 1.0 / 3.0}
	out := mgl64.Vec3{}
	for i := 0; i < 3; i++ {
		p := math.Abs(Fract(h+k[i])*6 - 3)
		out[i] = v * Mix(1, Clamp(p-1, 0, 1), s)
	}
	return out
}

// Centered maps fragCoord to -1..1 on the short axis, aspect corrected.
func Centered(fragCoord, res mgl64.Vec2) mgl64.Vec2 {
	m := math.Min(res[0], res[1])
	if m <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{
		(2*fragCoord[0] - res[0]) / m,
		(2*fragCoord[1] - res[1]) / m,
	}
}

// UV maps fragCoord to 0..1 per axis.
func UV(fragCoord, res mgl64.Vec2) mgl64.Vec2 {
	if res[0] <= 0 || res[1] <= 0 {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{fragCoord[0] / res[0], fragCoord[1] / res[1]}
}
