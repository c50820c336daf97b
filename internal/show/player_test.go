package show

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{{T: 0, V: 0}, {T: 10, V: 10}}
	cases := []struct{ t, want float64 }{{-1, 0}, {0, 0}, {5, 5}, {10, 10}, {11, 10}}
	for _, c := range cases {
		assert.Equal(t, c.want, env.Eval(c.t), "t=%v", c.t)
	}
	assert.Equal(t, 0.0, Envelope{}.Eval(3))
	assert.Equal(t, 7.0, Envelope{{T: 2, V: 7}}.Eval(0))

	smooth := Envelope{{T: 0, V: 0, Ease: "smooth"}, {T: 1, V: 1}}
	assert.InDelta(t, 0.5, smooth.Eval(0.5), 1e-12)
	assert.Less(t, smooth.Eval(0.25), 0.25)
	cubic := Envelope{{T: 0, V: 0, Ease: "cubic"}, {T: 1, V: 1}}
	assert.Less(t, cubic.Eval(0.25), smooth.Eval(0.25))
}

const showYAML = `
version: show.v1
clips:
  - name: intro
    pattern: rings
    duration_s: 4
    xfade_s: 2
    controls:
      Speed:
        - {t: 4, v: 1}
        - {t: 0, v: 0}
  - name: main
    pattern: plasma
    duration_s: 4
`

func TestParseSortsAndValidates(t *testing.T) {
	p, err := Parse([]byte(showYAML))
	require.NoError(t, err)
	require.Len(t, p.Clips, 2)
	env := p.Clips[0].Controls["Speed"]
	assert.Equal(t, 0.0, env[0].T)
	assert.Equal(t, 0.5, env.Eval(2))
	assert.Equal(t, 8.0, p.Duration())

	assert.NoError(t, p.Validate("rings", "plasma"))
	assert.Error(t, p.Validate("rings"))

	_, err = Parse([]byte("version: x\n"))
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse([]byte("clips: [{pattern: a, duration_s: 1, xfade_s: 2}]"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "show.yaml")
	require.NoError(t, os.WriteFile(path, []byte(showYAML), 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

type recorder struct {
	log    []string
	alphas []float64
	ctl    map[string]float64
}

func (r *recorder) hooks() Hooks {
	r.ctl = map[string]float64{}
	return Hooks{
		SetPattern: func(name string) error { r.log = append(r.log, "set:"+name); return nil },
		ArmNext:    func(name string) error { r.log = append(r.log, "arm:"+name); return nil },
		SetControl: func(label string, v float64) error {
			if label == "missing" {
				return errors.New("no such control")
			}
			r.ctl[label] = v
			return nil
		},
		SetCrossfade: func(a float64) { r.alphas = append(r.alphas, a) },
	}
}

func TestPlayerCrossfade(t *testing.T) {
	prog, err := Parse([]byte(showYAML))
	require.NoError(t, err)
	r := &recorder{}
	p := NewPlayer(r.hooks(), zerolog.Nop())
	require.NoError(t, p.Load(prog))
	p.Start()
	assert.Equal(t, Running, p.State())

	p.Tick(1900 * time.Millisecond)
	assert.InDelta(t, 1.9/4, r.ctl["Speed"], 1e-9)
	p.Tick(100 * time.Millisecond)
	p.Tick(time.Second) // t=3, half way through the fade
	assert.InDelta(t, 0.5, r.alphas[len(r.alphas)-1], 1e-9)
	p.Tick(time.Second) // t=4, switch to main

	assert.Equal(t, []string{"set:rings", "arm:plasma", "set:plasma"}, r.log)
	assert.Contains(t, r.alphas, 1.0)
	assert.Equal(t, 0.0, r.alphas[len(r.alphas)-1], "crossfade resets on clip entry")
	idx, _ := p.Position()
	assert.Equal(t, 1, idx)

	p.Tick(4 * time.Second)
	assert.Equal(t, Idle, p.State(), "non-looping show ends")
}

func TestPlayerLoopsAndSeeks(t *testing.T) {
	prog, err := Parse([]byte(showYAML))
	require.NoError(t, err)
	prog.Loop = true
	r := &recorder{}
	p := NewPlayer(r.hooks(), zerolog.Nop())
	require.NoError(t, p.Load(prog))
	p.Start()
	for i := 0; i < 9; i++ {
		p.Tick(time.Second)
	}
	idx, now := p.Position()
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 1.0, now, 1e-9)
	assert.Equal(t, Running, p.State())

	p.Seek(5)
	idx, _ = p.Position()
	assert.Equal(t, 1, idx)
	p.Seek(100)
	idx, now = p.Position()
	assert.Equal(t, 1, idx)
	assert.Less(t, now, 8.0)
}

func TestPlayerPauseAndStop(t *testing.T) {
	prog, err := Parse([]byte(showYAML))
	require.NoError(t, err)
	r := &recorder{}
	p := NewPlayer(r.hooks(), zerolog.Nop())
	require.NoError(t, p.Load(prog))
	p.Start()
	p.Pause()
	p.Tick(time.Second)
	_, now := p.Position()
	assert.Equal(t, 0.0, now)
	p.Resume()
	p.Tick(time.Second)
	_, now = p.Position()
	assert.Equal(t, 1.0, now)
	p.Stop()
	assert.Equal(t, Idle, p.State())
	_, now = p.Position()
	assert.Equal(t, 0.0, now)

	assert.ErrorIs(t, p.Load(Program{}), ErrEmpty)
}

func TestHookErrorsAreNotFatal(t *testing.T) {
	r := &recorder{}
	p := NewPlayer(r.hooks(), zerolog.Nop())
	prog := Program{Clips: []Clip{{
		Pattern:   "a",
		DurationS: 2,
		Controls:  map[string]Envelope{"missing": {{V: 1}}, "ok": {{V: 2}}},
	}}}
	require.NoError(t, p.Load(prog))
	p.Start()
	for i := 0; i < 3; i++ {
		p.Tick(100 * time.Millisecond)
	}
	assert.Equal(t, 2.0, r.ctl["ok"])
	assert.Len(t, p.warned, 1, fmt.Sprint(p.warned))
}
