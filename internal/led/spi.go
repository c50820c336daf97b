package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// SPI drives a WS2812-style strip through periph's NRZ encoder on a SPI port.
type SPI struct {
	mu   sync.Mutex
	port spi.PortCloser
	dev  *nrzled.Dev
	n    int
	buf  []byte
}

// OpenSPI initialises the host drivers and opens the named port ("" for the first).
func OpenSPI(port string, count, speedHz int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", port, err)
	}
	freq := 800 * physic.KiloHertz
	if speedHz > 0 {
		freq = physic.Frequency(speedHz) * physic.Hertz
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		p.Close()
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return &SPI{port: p, dev: d, n: count}, nil
}

func (s *SPI) String() string { return s.dev.String() }

func (s *SPI) Write(frame []pixel.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ErrClosed
	}
	if len(frame) != s.n {
		return fmt.Errorf("frame length %d does not match count %d", len(frame), s.n)
	}
	s.buf = RGBBytes(s.buf, frame)
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	herr := s.dev.Halt()
	s.dev = nil
	if err := s.port.Close(); err != nil {
		return err
	}
	return herr
}
