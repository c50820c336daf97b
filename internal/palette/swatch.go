// Package palette holds the show's current base and accent colours.
package palette

import (
	"fmt"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// Swatch is a base/accent colour pair. Colours may change from any goroutine.
type Swatch struct {
	base   atomic.Uint32
	accent atomic.Uint32
}

// New parses two hex colours ("#rrggbb" or "#rgb"). An empty accent is derived from base.
func New(base, accent string) (*Swatch, error) {
	s := &Swatch{}
	if err := s.SetBase(base); err != nil {
		return nil, err
	}
	if accent == "" {
		s.accent.Store(uint32(Complement(s.Base())))
		return s, nil
	}
	if err := s.SetAccent(accent); err != nil {
		return nil, err
	}
	return s, nil
}

func parse(hex string) (pixel.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("palette colour %q: %w", hex, err)
	}
	return pixel.FromColorful(c), nil
}

func (s *Swatch) Base() pixel.Color   { return pixel.Color(s.base.Load()) }
func (s *Swatch) Accent() pixel.Color { return pixel.Color(s.accent.Load()) }

func (s *Swatch) SetBase(hex string) error {
	c, err := parse(hex)
	if err != nil {
		return err
	}
	s.base.Store(uint32(c))
	return nil
}

func (s *Swatch) SetAccent(hex string) error {
	c, err := parse(hex)
	if err != nil {
		return err
	}
	s.accent.Store(uint32(c))
	return nil
}

// Complement rotates hue by 180 degrees, keeping chroma and lightness.
func Complement(c pixel.Color) pixel.Color {
	h, cc, l := c.Colorful().Hcl()
	h += 180
	if h >= 360 {
		h -= 360
	}
	return pixel.FromColorful(colorful.Hcl(h, cc, l))
}

// Blend interpolates between base and accent in Lab space; t is clamped to 0..1.
func (s *Swatch) Blend(t float64) pixel.Color {
	switch {
	case t <= 0:
		return s.Base()
	case t >= 1:
		return s.Accent()
	}
	return pixel.FromColorful(s.Base().Colorful().BlendLab(s.Accent().Colorful(), t))
}
