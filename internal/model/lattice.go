package model

import "fmt"

// Serpentine holds panel/row wiring flips.
type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

// Lattice describes a stack of flat LED panels: X LEDs per row, Y rows per panel, Z panels.
type Lattice struct {
	X, Y, Z    int
	Order      Serpentine
	PitchMM    float64
	PanelGapMM float64
	// SeamRows are row numbers (y) that run along a structural seam; their points are flagged Gap.
	SeamRows []int
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Lattice) Index(x, y, z int) int {
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Y - 1 - y
	}
	perPanel := l.X * l.Y
	return z*perPanel + yy*l.X + xx
}

func (l Lattice) Count() int {
	return l.X * l.Y * l.Z
}

// PanelName is the surface name given to panel z.
func PanelName(z int) string { return fmt.Sprintf("panel%d", z) }

// Build lays the lattice out in millimetres and returns the model. Each panel becomes a surface.
func (l Lattice) Build() (*Model, error) {
	if l.Count() <= 0 {
		return nil, fmt.Errorf("invalid lattice %dx%dx%d", l.X, l.Y, l.Z)
	}
	pitch := l.PitchMM
	if pitch <= 0 {
		pitch = 10
	}
	seam := map[int]bool{}
	for _, y := range l.SeamRows {
		seam[y] = true
	}
	points := make([]Point, 0, l.Count())
	for z := 0; z < l.Z; z++ {
		for y := 0; y < l.Y; y++ {
			for x := 0; x < l.X; x++ {
				points = append(points, Point{
					Index: l.Index(x, y, z),
					Pos: Vec3{
						X: float64(x) * pitch,
						Y: float64(y) * pitch,
						Z: float64(z) * (pitch + l.PanelGapMM),
					},
					Surface: PanelName(z),
					Gap:     seam[y],
				})
			}
		}
	}
	return New(points)
}
