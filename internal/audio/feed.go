package audio

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Feed decodes a WAV file and pushes it into a at real-time pace, tick by tick, until the file
// ends or ctx is cancelled. The analyzer's sample rate follows the file's.
func Feed(ctx context.Context, path string, a *Analyzer, tick time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()
	a.SetSampleRate(int(format.SampleRate))
	return Stream(ctx, s, format.SampleRate, a, tick)
}

// Stream pulls sr.N(tick) frames from s every tick, mixes them to mono and pushes them into a.
func Stream(ctx context.Context, s beep.Streamer, sr beep.SampleRate, a *Analyzer, tick time.Duration) error {
	if tick <= 0 {
		tick = 20 * time.Millisecond
	}
	n := max(1, sr.N(tick))
	buf := make([][2]float64, n)
	mono := make([]float64, n)
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		got, ok := s.Stream(buf)
		for i := 0; i < got; i++ {
			mono[i] = (buf[i][0] + buf[i][1]) / 2
		}
		a.Push(mono[:got])
		if !ok || got < n {
			return s.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
