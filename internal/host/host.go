// Package host defines what the shader engine consumes from its surroundings. Everything is
// passed in explicitly through a Context; there are no process-wide instances.
package host

import (
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// Tempo is a beat clock.
type Tempo interface {
	BPM() float64
	// Beat is the number of whole beats since the clock started.
	Beat() int
	// Basis is the 0..1 progress through the current beat.
	Basis() float64
	// BarPhase is the 0..1 progress through the current bar.
	BarPhase() float64
}

// Levels are audio envelope scalars, each 0..1.
type Levels struct {
	Bass   float64
	Treble float64
	Volume float64
	Beat   bool
}

// Audio supplies the current envelopes.
type Audio interface {
	Levels() Levels
}

// Palette supplies the current show colours.
type Palette interface {
	Base() pixel.Color
	Accent() pixel.Color
}

// Context bundles the host collaborators handed to patterns and effects at construction.
// Any field may be nil; accessors return neutral values.
type Context struct {
	Tempo   Tempo
	Audio   Audio
	Palette Palette
	Log     *zerolog.Logger
}

// Logger returns the context's logger or a no-op one.
func (c *Context) Logger() zerolog.Logger {
	if c == nil || c.Log == nil {
		return zerolog.Nop()
	}
	return *c.Log
}

// Levels returns the audio envelopes, or silence.
func (c *Context) Levels() Levels {
	if c == nil || c.Audio == nil {
		return Levels{}
	}
	return c.Audio.Levels()
}

// Beat returns beat count and basis, or zeros without a tempo source.
func (c *Context) Beat() (int, float64) {
	if c == nil || c.Tempo == nil {
		return 0, 0
	}
	return c.Tempo.Beat(), c.Tempo.Basis()
}

// BarPhase returns the bar progress, or 0.
func (c *Context) BarPhase() float64 {
	if c == nil || c.Tempo == nil {
		return 0
	}
	return c.Tempo.BarPhase()
}

// Colors returns base and accent colours; white and black without a palette.
func (c *Context) Colors() (base, accent pixel.Color) {
	if c == nil || c.Palette == nil {
		return pixel.White, pixel.Black
	}
	return c.Palette.Base(), c.Palette.Accent()
}
