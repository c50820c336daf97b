package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
)

var _ host.Audio = (*Analyzer)(nil)

func sine(freq, amp float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func settle(a *Analyzer, samples []float64, updates int) host.Levels {
	a.Push(samples)
	for i := 0; i < updates; i++ {
		a.Update()
	}
	return a.Levels()
}

func TestBassTone(t *testing.T) {
	a := NewAnalyzer(Options{})
	l := settle(a, sine(100, 0.5, 48000, FFTSize), 6)
	assert.Greater(t, l.Bass, 0.8)
	assert.Less(t, l.Treble, 0.2)
	assert.Greater(t, l.Volume, 0.5)
}

func TestTrebleTone(t *testing.T) {
	a := NewAnalyzer(Options{SampleRate: 48000})
	l := settle(a, sine(8000, 0.5, 48000, FFTSize), 6)
	assert.Greater(t, l.Treble, 0.8)
	assert.Less(t, l.Bass, 0.2)
}

func TestSilenceAndBeatOnset(t *testing.T) {
	a := NewAnalyzer(Options{})
	l := settle(a, make([]float64, FFTSize), 3)
	assert.Equal(t, host.Levels{}, l)

	a.Push(sine(80, 0.8, 48000, FFTSize))
	a.Update()
	assert.True(t, a.Levels().Beat, "rising bass is an onset")
	a.Update()
	assert.False(t, a.Levels().Beat, "sustained bass is not")
}

func TestEnvelopeDecaysSlowly(t *testing.T) {
	a := NewAnalyzer(Options{Attack: 1, Decay: 0.5})
	l := settle(a, sine(100, 0.5, 48000, FFTSize), 1)
	peak := l.Bass
	l = settle(a, make([]float64, FFTSize), 1)
	assert.InDelta(t, peak/2, l.Bass, 1e-9)
}

func TestFeedWav(t *testing.T) {
	const rate = beep.SampleRate(22050)
	tone := sine(120, 0.6, int(rate), int(rate)/4)
	pos := 0
	src := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(tone) {
			return 0, false
		}
		n := 0
		for n < len(buf) && pos < len(tone) {
			buf[n][0], buf[n][1] = tone[pos], tone[pos]
			n++
			pos++
		}
		return n, true
	})

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, src, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}))
	require.NoError(t, f.Close())

	a := NewAnalyzer(Options{})
	require.NoError(t, Feed(context.Background(), path, a, time.Millisecond))
	assert.Equal(t, int(rate), a.SampleRate())
	a.Update()
	assert.Greater(t, a.Levels().Bass, 0.3)

	assert.Error(t, Feed(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), a, time.Millisecond))
}

func TestStreamStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	endless := beep.StreamerFunc(func(buf [][2]float64) (int, bool) { return len(buf), true })
	err := Stream(ctx, endless, 48000, NewAnalyzer(Options{}), time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}
