package led

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

var ErrClosed = errors.New("driver closed")

// Sim keeps the last frame in memory and logs a compact summary (first LED and average) now
// and then. Useful headless and in tests.
type Sim struct {
	mu     sync.Mutex
	n      int
	count  int
	every  int
	last   []pixel.Color
	closed bool
	log    zerolog.Logger
}

func NewSim(n, logEvery int, log zerolog.Logger) *Sim {
	return &Sim{n: n, every: logEvery, last: make([]pixel.Color, n), log: log}
}

func (s *Sim) Write(frame []pixel.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.last) != len(frame) {
		s.last = make([]pixel.Color, len(frame))
	}
	copy(s.last, frame)
	s.count++
	if s.every > 0 && s.count%s.every == 0 && len(frame) > 0 {
		var r, g, b float64
		for _, c := range frame {
			cr, cg, cb := c.Floats()
			r, g, b = r+cr, g+cg, b+cb
		}
		n := float64(len(frame))
		s.log.Debug().
			Int("frame", s.count).
			Floats64("avg", []float64{r / n, g / n, b / n}).
			Str("first", frame[0].Hex()).
			Msg("sim frame")
	}
	return nil
}

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []pixel.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pixel.Color(nil), s.last...)
}

// Count is the number of frames written.
func (s *Sim) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
