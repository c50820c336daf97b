// Package binding turns parsed shader declarations into live controls owned by one pattern instance.
package binding

import (
	"math"
	"sync/atomic"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

// Range is a control's numeric bounds and reset value.
type Range struct {
	Min, Max, Default float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Normalize maps v into 0..1; a zero-width range maps to 0.
func (r Range) Normalize(v float64) float64 {
	span := r.Max - r.Min
	if span == 0 {
		return 0
	}
	return (r.Clamp(v) - r.Min) / span
}

// Lerp maps 0..1 back into the range.
func (r Range) Lerp(n float64) float64 {
	return r.Min + n*(r.Max-r.Min)
}

// unit is the storage range of standardized controls.
var unit = Range{Min: 0, Max: 1, Default: 0}

// Control is a live value exposed to the host. Standardized controls store a normalized 0..1 value;
// each consuming shader maps it into its own declared range. Custom controls store raw values.
// Reads and writes are lock-free so render workers can read during a frame.
type Control struct {
	Label string
	Tag   shaderctl.Tag
	Range Range

	bits atomic.Uint64
	set  *Set
}

func newControl(set *Set, label string, tag shaderctl.Tag, r Range) *Control {
	c := &Control{Label: label, Tag: tag, Range: r, set: set}
	c.bits.Store(math.Float64bits(r.Default))
	return c
}

func (c *Control) Value() float64 { return math.Float64frombits(c.bits.Load()) }

// Set stores v clamped to the control's range and notifies the owning set's listeners.
func (c *Control) Set(v float64) {
	v = c.Range.Clamp(v)
	old := c.bits.Swap(math.Float64bits(v))
	if old != math.Float64bits(v) && c.set != nil {
		c.set.notify(c)
	}
}

// Reset restores the default value.
func (c *Control) Reset() { c.Set(c.Range.Default) }

// Standard reports whether the control is one of the shared tags.
func (c *Control) Standard() bool { return c.Tag.Standard() }
