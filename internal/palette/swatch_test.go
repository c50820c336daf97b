package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

var _ host.Palette = (*Swatch)(nil)

func TestSwatchParsesHex(t *testing.T) {
	s, err := New("#ff8000", "#00f")
	require.NoError(t, err)
	assert.Equal(t, pixel.RGB(255, 128, 0), s.Base())
	assert.Equal(t, pixel.RGB(0, 0, 255), s.Accent())

	require.NoError(t, s.SetBase("#102030"))
	assert.Equal(t, pixel.RGB(0x10, 0x20, 0x30), s.Base())
	assert.Error(t, s.SetBase("orange"))
	assert.Equal(t, pixel.RGB(0x10, 0x20, 0x30), s.Base())

	_, err = New("nope", "")
	assert.Error(t, err)
}

func TestDerivedAccentAndBlend(t *testing.T) {
	s, err := New("#ff0000", "")
	require.NoError(t, err)
	assert.NotEqual(t, s.Base(), s.Accent())

	assert.Equal(t, s.Base(), s.Blend(-1))
	assert.Equal(t, s.Accent(), s.Blend(2))
}
