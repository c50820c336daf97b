// Package post shapes a composed frame for the LEDs: alpha flattening, global brightness and a
// two-stage power limiter.
package post

import (
	"math"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// Params configures Apply. Zero values pick the defaults noted per field.
type Params struct {
	// Brightness scales every channel; 0 means 1.
	Brightness float64
	// WhiteCap limits R+G+B per LED in linear 0..1 units; 0 means 3 (no cap).
	WhiteCap float64
	// LEDChanMA is the current drawn by one channel at full scale; 0 means 20 (WS2812).
	LEDChanMA float64
	// BudgetMA is the global current budget; 0 disables the budget stage.
	BudgetMA float64
	// Knee is the fraction of budget where soft limiting begins; 0 means 0.9.
	Knee float64
	// ToneMap enables the filmic curve with ExposureEV and Gamma (0 means 2.2) before limiting.
	ToneMap    bool
	ExposureEV float64
	Gamma      float64
}

func (p Params) withDefaults() Params {
	if p.Brightness <= 0 {
		p.Brightness = 1
	}
	if p.WhiteCap <= 0 {
		p.WhiteCap = 3
	}
	if p.LEDChanMA <= 0 {
		p.LEDChanMA = 20
	}
	if p.Knee <= 0 || p.Knee >= 1 {
		p.Knee = 0.9
	}
	if p.Gamma <= 0 {
		p.Gamma = 2.2
	}
	return p
}

// Current estimates the frame's draw in mA.
func Current(buf []pixel.Color, chanMA float64) float64 {
	total := 0.0
	for _, c := range buf {
		r, g, b := c.Floats()
		total += (r + g + b) * chanMA
	}
	return total
}

// Apply rewrites buf in place: transparency becomes black (alpha is multiplied in), then
// brightness, the optional tone map, the per-LED white cap and the global budget are applied.
// Output is opaque.
func Apply(buf []pixel.Color, p Params) {
	p = p.withDefaults()
	for i, c := range buf {
		r, g, b := c.Floats()
		k := float64(c.A()) / pixel.MaxChannel * p.Brightness
		r, g, b = r*k, g*k, b*k
		if p.ToneMap {
			r = Filmic(r, p.ExposureEV, p.Gamma)
			g = Filmic(g, p.ExposureEV, p.Gamma)
			b = Filmic(b, p.ExposureEV, p.Gamma)
		}
		if s := r + g + b; s > p.WhiteCap && s > 0 {
			scale := p.WhiteCap / s
			r, g, b = r*scale, g*scale, b*scale
		}
		buf[i] = pixel.FromFloat(r, g, b)
	}

	if p.BudgetMA <= 0 {
		return
	}
	total := Current(buf, p.LEDChanMA)
	if total <= 0 {
		return
	}
	ratio := total / p.BudgetMA
	if ratio <= p.Knee {
		return
	}
	scale(buf, Knee(ratio, p.Knee)/ratio)
}

// Knee maps a draw ratio (total/budget) to the limited ratio. Below knee it is the identity;
// above, it bends with unit slope at knee and approaches 1 without reaching it.
func Knee(ratio, knee float64) float64 {
	if ratio <= knee {
		return ratio
	}
	w := 1 - knee
	return knee + w*(1-math.Exp(-(ratio-knee)/w))
}

func scale(buf []pixel.Color, s float64) {
	if s >= 1 {
		return
	}
	for i, c := range buf {
		r, g, b := c.Floats()
		// truncate so quantisation never pushes the frame back over budget
		buf[i] = pixel.RGB(uint8(r*s*pixel.MaxChannel), uint8(g*s*pixel.MaxChannel), uint8(b*s*pixel.MaxChannel))
	}
}
