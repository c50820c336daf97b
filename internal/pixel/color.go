package pixel

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Channel offsets inside a packed Color (0xAARRGGBB).
const (
	AlphaOffset uint8 = 0x18
	RedOffset   uint8 = 0x10
	GreenOffset uint8 = 0x08
	BlueOffset  uint8 = 0x0
)

// MaxChannel is the saturation point for every channel.
const MaxChannel = 0xFF

// Color is one output light value packed as 0xAARRGGBB.
type Color uint32

const (
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
	Transparent Color = 0x00000000
)

// Pack builds a Color from 8-bit channels.
func Pack(r, g, b, a uint8) Color {
	return Color(uint32(a)<<AlphaOffset | uint32(r)<<RedOffset | uint32(g)<<GreenOffset | uint32(b)<<BlueOffset)
}

// RGB builds an opaque Color.
func RGB(r, g, b uint8) Color { return Pack(r, g, b, MaxChannel) }

// FromFloat builds an opaque Color from linear 0..1 channels, clamping out-of-range input.
func FromFloat(r, g, b float64) Color {
	return RGB(Quantize(r), Quantize(g), Quantize(b))
}

// Quantize maps 0..1 to 0..255 with rounding.
func Quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return MaxChannel
	}
	return uint8(v*MaxChannel + 0.5)
}

func getchannel(c Color, off uint8) uint8 {
	return uint8((uint32(c) >> off) & 0xFF)
}

func setchannel(c Color, n uint8, off uint8) Color {
	mask := uint32(0xFF) << off
	return Color((uint32(c) &^ mask) | uint32(n)<<off)
}

func (c Color) R() uint8 { return getchannel(c, RedOffset) }
func (c Color) G() uint8 { return getchannel(c, GreenOffset) }
func (c Color) B() uint8 { return getchannel(c, BlueOffset) }
func (c Color) A() uint8 { return getchannel(c, AlphaOffset) }

func (c Color) WithR(v uint8) Color { return setchannel(c, v, RedOffset) }
func (c Color) WithG(v uint8) Color { return setchannel(c, v, GreenOffset) }
func (c Color) WithB(v uint8) Color { return setchannel(c, v, BlueOffset) }
func (c Color) WithA(v uint8) Color { return setchannel(c, v, AlphaOffset) }

// Add blends two colors additively, saturating every channel at MaxChannel.
func Add(dst, src Color) Color {
	return Pack(
		addSat(dst.R(), src.R()),
		addSat(dst.G(), src.G()),
		addSat(dst.B(), src.B()),
		addSat(dst.A(), src.A()),
	)
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > MaxChannel {
		return MaxChannel
	}
	return uint8(s)
}

// Scale multiplies the RGB channels by s (0..1); alpha is kept.
func (c Color) Scale(s float64) Color {
	if s >= 1 {
		return c
	}
	if s <= 0 {
		return c & 0xFF000000
	}
	return Pack(
		uint8(float64(c.R())*s),
		uint8(float64(c.G())*s),
		uint8(float64(c.B())*s),
		c.A(),
	)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// Colorful converts the RGB part to a go-colorful value (sRGB space).
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / MaxChannel,
		G: float64(c.G()) / MaxChannel,
		B: float64(c.B()) / MaxChannel,
	}
}

// FromColorful builds an opaque Color from a go-colorful value.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// Floats returns the RGB channels as 0..1 values.
func (c Color) Floats() (r, g, b float64) {
	return float64(c.R()) / MaxChannel, float64(c.G()) / MaxChannel, float64(c.B()) / MaxChannel
}

// Hex formats the RGB part as "#rrggbb".
func (c Color) Hex() string { return c.Colorful().Hex() }
