package host

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

type fixedAudio Levels

func (f fixedAudio) Levels() Levels { return Levels(f) }

type fixedPalette struct{ base, accent pixel.Color }

func (p fixedPalette) Base() pixel.Color   { return p.base }
func (p fixedPalette) Accent() pixel.Color { return p.accent }

func TestNilContextIsNeutral(t *testing.T) {
	var c *Context
	assert.Equal(t, Levels{}, c.Levels())
	b, basis := c.Beat()
	assert.Zero(t, b)
	assert.Zero(t, basis)
	base, accent := c.Colors()
	assert.Equal(t, pixel.White, base)
	assert.Equal(t, pixel.Black, accent)
	l := c.Logger()
	l.Info().Msg("dropped")
}

func TestContextForwards(t *testing.T) {
	var buf bytes.Buffer
	lg := zerolog.New(&buf)
	c := &Context{
		Audio:   fixedAudio{Bass: 0.5, Beat: true},
		Palette: fixedPalette{pixel.RGB(1, 2, 3), pixel.RGB(4, 5, 6)},
		Log:     &lg,
	}
	assert.Equal(t, 0.5, c.Levels().Bass)
	assert.True(t, c.Levels().Beat)
	base, accent := c.Colors()
	assert.Equal(t, pixel.RGB(1, 2, 3), base)
	assert.Equal(t, pixel.RGB(4, 5, 6), accent)

	l := c.Logger()
	l.Info().Str("pattern", "x").Msg("hello")
	assert.Contains(t, buf.String(), `"pattern":"x"`)
}
