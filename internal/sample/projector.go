// Package sample projects model points onto a canvas and reads their colours back.
package sample

import (
	"fmt"
	"math"
	"strings"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/render"
)

// Orientation picks which two surface axes become canvas U and V.
type Orientation int

const (
	Front Orientation = iota // x, y
	Side                     // z, y
	Top                      // x, z
)

func (o Orientation) String() string {
	switch o {
	case Side:
		return "side"
	case Top:
		return "top"
	}
	return "front"
}

// ParseOrientation accepts front, side or top.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "front":
		return Front, nil
	case "side":
		return Side, nil
	case "top":
		return Top, nil
	}
	return Front, fmt.Errorf("unknown orientation %q", s)
}

// GapPolicy decides what happens to points flagged as gaps.
type GapPolicy int

const (
	// GapTransparent writes pixel.Transparent at the point's index.
	GapTransparent GapPolicy = iota
	// GapSkip leaves the output untouched, so earlier effects show through.
	GapSkip
)

func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transparent":
		return GapTransparent, nil
	case "skip":
		return GapSkip, nil
	}
	return GapTransparent, fmt.Errorf("unknown gap policy %q", s)
}

type Options struct {
	Orientation  Orientation
	FlipU, FlipV bool
	Gaps         GapPolicy
}

// Cell is a point's precomputed canvas location.
type Cell struct {
	Index  int // output slot
	X, Y   int
	Offset int // byte offset of the RGBA quadruplet
	Gap    bool
}

// Projector maps the points of one surface into canvas space. The per-point table is rebuilt
// whenever the canvas size or buffer generation changes.
type Projector struct {
	opts    Options
	surface *model.Surface

	cells []Cell
	w, h  int
	gen   uint64
}

func New(surface *model.Surface, opts Options) *Projector {
	return &Projector{opts: opts, surface: surface, gen: math.MaxUint64}
}

func (p *Projector) Surface() *model.Surface { return p.surface }
func (p *Projector) Options() Options        { return p.opts }

// UV returns the point's position in the surface's own 0..1 space, oriented and flipped.
func (p *Projector) UV(pt model.Point) (u, v float64) {
	r := p.surface.Dim.Remap(pt)
	switch p.opts.Orientation {
	case Side:
		u, v = r.Z, r.Y
	case Top:
		u, v = r.X, r.Z
	default:
		u, v = r.X, r.Y
	}
	if p.opts.FlipU {
		u = 1 - u
	}
	if p.opts.FlipV {
		v = 1 - v
	}
	return u, v
}

// Pixel clamps then rounds (u, v) onto a w x h grid. Results are always inside the grid.
func Pixel(u, v float64, w, h int) (px, py int) {
	px = int(math.Round(clamp01(u) * float64(w-1)))
	py = int(math.Round(clamp01(v) * float64(h-1)))
	if px < 0 {
		px = 0
	}
	if py < 0 {
		py = 0
	}
	return px, py
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Rebuild recomputes the cell table for a w x h canvas.
func (p *Projector) Rebuild(w, h int) {
	pts := p.surface.Points
	if cap(p.cells) < len(pts) {
		p.cells = make([]Cell, len(pts))
	}
	p.cells = p.cells[:len(pts)]
	for i, pt := range pts {
		u, v := p.UV(pt)
		x, y := Pixel(u, v, w, h)
		p.cells[i] = Cell{Index: pt.Index, X: x, Y: y, Offset: 4 * (y*w + x), Gap: pt.Gap}
	}
	p.w, p.h = w, h
}

// Cells returns the table for a w x h canvas of the given generation, rebuilding if stale.
func (p *Projector) Cells(w, h int, gen uint64) []Cell {
	if w != p.w || h != p.h || gen != p.gen || len(p.cells) != len(p.surface.Points) {
		p.Rebuild(w, h)
		p.gen = gen
	}
	return p.cells
}

// Writer receives sampled colours by output index.
type Writer interface {
	Len() int
	Set(index int, c pixel.Color)
}

// Slice writes straight into a colour array.
type Slice []pixel.Color

func (s Slice) Len() int                     { return len(s) }
func (s Slice) Set(index int, c pixel.Color) { s[index] = c }

// Sample copies each point's canvas colour to out at the point's index. Nothing is read from a
// canvas that has not completed a frame. Returns the number of points written.
func (p *Projector) Sample(c *render.Canvas, out Writer) int {
	pix := c.Pixels()
	if pix == nil {
		return 0
	}
	w, h := c.Size()
	return SampleCells(p.Cells(w, h, c.Generation()), pix, out, p.opts.Gaps)
}

// SampleCells copies a subset of cells; used by callers that split the table.
func SampleCells(cells []Cell, pix []uint8, out Writer, gaps GapPolicy) int {
	n := 0
	size := out.Len()
	for _, cell := range cells {
		if cell.Index < 0 || cell.Index >= size {
			continue
		}
		if cell.Gap {
			if gaps == GapTransparent {
				out.Set(cell.Index, pixel.Transparent)
				n++
			}
			continue
		}
		o := cell.Offset
		if o < 0 || o+3 >= len(pix) {
			continue
		}
		out.Set(cell.Index, pixel.Pack(pix[o], pix[o+1], pix[o+2], pix[o+3]))
		n++
	}
	return n
}
