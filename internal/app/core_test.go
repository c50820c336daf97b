package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaders"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/show"
)

func build(t *testing.T, workers int) (*Core, *led.Sim) {
	t.Helper()
	opts := Options{
		Lattice: model.Lattice{X: 6, Y: 4, Z: 2, Order: model.Serpentine{XFlipEveryRow: true}},
		Width:   16,
		Height:  8,
		Workers: workers,
		Shaders: []shaders.Kind{shaders.Plasma, shaders.Rings},
		BPM:     120,
	}
	sim := led.NewSim(opts.Lattice.Count(), 0, zerolog.Nop())
	c, err := Build(opts, sim, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, sim
}

func lit(frame []pixel.Color) int {
	n := 0
	for _, c := range frame {
		if c.R() > 0 || c.G() > 0 || c.B() > 0 {
			n++
		}
	}
	return n
}

func TestEveryPatternRenders(t *testing.T) {
	for _, workers := range []int{1, 3} {
		c, sim := build(t, workers)
		names := c.Engine.Patterns()
		assert.Contains(t, names, MainPattern)
		assert.Contains(t, names, "calibration")
		for _, k := range shaders.Kinds() {
			assert.Contains(t, names, k.String())
		}

		for _, name := range names {
			require.NoError(t, c.Engine.SetActive(name))
			for i := 0; i < 3; i++ {
				require.NoError(t, c.Engine.RenderOnce(20*time.Millisecond), name)
			}
			assert.Len(t, sim.Last(), 48)
			switch name {
			case MainPattern, "plasma", "solid", "calibration":
				assert.Greater(t, lit(sim.Last()), 0, "%s with %d workers lights something", name, workers)
			}
		}
		assert.Greater(t, c.Tempo.Beat(), 0, "tempo advances with the engine")
	}
}

func TestBuildRejectsUnknownStartPattern(t *testing.T) {
	sim := led.NewSim(4, 0, zerolog.Nop())
	_, err := Build(Options{Lattice: model.Lattice{X: 2, Y: 2, Z: 1}, Pattern: "nope"}, sim, zerolog.Nop())
	assert.Error(t, err)

	_, err = Build(Options{Lattice: model.Lattice{}}, sim, zerolog.Nop())
	assert.Error(t, err)
}

func TestShowDrivesEngine(t *testing.T) {
	c, _ := build(t, 1)
	path := filepath.Join(t.TempDir(), "show.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: show.v1
clips:
  - {name: a, pattern: plasma, duration_s: 1, xfade_s: 0.5}
  - {name: b, pattern: solid, duration_s: 1, controls: {pulseHz: [{t: 0, v: 2}]}}
`), 0o644))
	require.NoError(t, c.LoadShow(path))
	assert.Equal(t, "plasma", c.Engine.Active())

	for i := 0; i < 30; i++ {
		require.NoError(t, c.Engine.RenderOnce(25*time.Millisecond))
	}
	assert.Equal(t, "solid", c.Engine.Stats().Next, "armed during the fade window")

	for i := 0; i < 15; i++ {
		require.NoError(t, c.Engine.RenderOnce(25*time.Millisecond))
	}
	assert.Equal(t, "solid", c.Engine.Active())
	ctls := c.Engine.Controls()
	require.Len(t, ctls, 1)
	assert.Equal(t, 2.0, ctls[0].Value())

	for i := 0; i < 40; i++ {
		require.NoError(t, c.Engine.RenderOnce(25*time.Millisecond))
	}
	assert.Equal(t, show.Idle, c.Player.State())

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`clips: [{pattern: ghost, duration_s: 1}]`), 0o644))
	assert.Error(t, c.LoadShow(bad))
}
