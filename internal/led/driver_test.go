package led

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

func TestRGBBytes(t *testing.T) {
	frame := []pixel.Color{pixel.RGB(1, 2, 3), pixel.Pack(4, 5, 6, 0)}
	out := RGBBytes(nil, frame)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, out)

	reused := RGBBytes(out, frame[:1])
	assert.Equal(t, []byte{1, 2, 3}, reused)
	assert.Equal(t, &out[0], &reused[0], "buffer is reused when large enough")
}

func TestSimKeepsLastFrame(t *testing.T) {
	s := NewSim(2, 1, zerolog.Nop())
	require.NoError(t, s.Write([]pixel.Color{pixel.White, pixel.Black}))
	frame := []pixel.Color{pixel.RGB(9, 9, 9), pixel.White}
	require.NoError(t, s.Write(frame))
	frame[0] = pixel.Black

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []pixel.Color{pixel.RGB(9, 9, 9), pixel.White}, s.Last())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write(frame), ErrClosed)
}

func TestOpen(t *testing.T) {
	d, err := Open(Config{Count: 4}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Sim{}, d)

	_, err = Open(Config{Kind: "dmx", Count: 4}, zerolog.Nop())
	assert.Error(t, err)

	// No SPI port in the test environment: falls back to the simulator.
	d, err = Open(Config{Kind: "spi", Port: "/dev/does-not-exist", Count: 4}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Sim{}, d)
}
