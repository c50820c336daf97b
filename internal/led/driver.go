// Package led writes finished frames to hardware or to a simulated sink.
package led

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one frame; len(frame) is the LED count.
	Write(frame []pixel.Color) error
	// Close releases resources.
	Close() error
}

// Config selects and sizes a driver.
type Config struct {
	Kind    string // "sim" or "spi"
	Port    string // SPI port name, "" for the first one found
	SpeedHz int    // NRZ bit rate, 0 for 800 kHz
	Count   int
	// LogEvery makes the sim driver log a frame summary every n frames; 0 disables it.
	LogEvery int
}

// Open builds the configured driver. A hardware driver that fails to open falls back to the
// simulator with a warning, so a development machine still runs the full pipeline.
func Open(cfg Config, log zerolog.Logger) (Driver, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "sim":
		return NewSim(cfg.Count, cfg.LogEvery, log), nil
	case "spi":
		d, err := OpenSPI(cfg.Port, cfg.Count, cfg.SpeedHz)
		if err != nil {
			log.Warn().Err(err).Msg("SPI unavailable, using SIM driver")
			return NewSim(cfg.Count, cfg.LogEvery, log), nil
		}
		log.Info().Str("port", d.String()).Int("count", cfg.Count).Msg("SPI driver ready")
		return d, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Kind)
}

// RGBBytes flattens colours into dst as R,G,B triplets, growing dst as needed. Alpha is ignored.
func RGBBytes(dst []byte, frame []pixel.Color) []byte {
	n := 3 * len(frame)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range frame {
		dst[3*i] = c.R()
		dst[3*i+1] = c.G()
		dst[3*i+2] = c.B()
	}
	return dst
}
