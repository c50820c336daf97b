package model

import (
	"errors"
	"fmt"
	"sort"
)

type Vec3 struct{ X, Y, Z float64 }

// Point is one addressable light. Index is its slot in the output color array.
type Point struct {
	Index   int
	Pos     Vec3 // physical position (mm)
	Norm    Vec3 // position normalised to the whole model, 0..1 per axis
	Surface string
	// Gap marks points that sit structurally outside any visible surface (seams, edges).
	Gap bool
}

// Surface is a named subset of the model with its own bounding box.
type Surface struct {
	Name   string
	Points []Point
	Dim    Dimensions
}

// Model is the read-only point set the patterns render onto.
type Model struct {
	Points   []Point
	Dim      Dimensions
	surfaces []*Surface
	byName   map[string]*Surface
	all      *Surface
}

var ErrNoPoints = errors.New("model has no points")

// New validates the point set and derives normalised coordinates and surfaces.
// Indices must cover 0..len(points)-1 exactly once.
func New(points []Point) (*Model, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Index < pts[j].Index })
	for i, p := range pts {
		if p.Index != i {
			return nil, fmt.Errorf("point indices must be dense and unique: want %d, got %d", i, p.Index)
		}
	}

	raw := Bounds(pts)
	for i := range pts {
		pts[i].Norm = raw.normalizePos(pts[i].Pos)
	}

	m := &Model{
		Points: pts,
		Dim:    Bounds(pts),
		byName: map[string]*Surface{},
	}
	for _, p := range pts {
		if p.Surface == "" {
			continue
		}
		s, ok := m.byName[p.Surface]
		if !ok {
			s = &Surface{Name: p.Surface}
			m.byName[p.Surface] = s
			m.surfaces = append(m.surfaces, s)
		}
		s.Points = append(s.Points, p)
	}
	for _, s := range m.surfaces {
		s.Dim = Bounds(s.Points)
	}
	m.all = &Surface{Name: "all", Points: pts, Dim: m.Dim}
	return m, nil
}

// Surfaces returns the named surfaces in first-seen order.
func (m *Model) Surfaces() []*Surface { return m.surfaces }

// Surface looks up a surface by name. "all" always resolves to the whole model.
func (m *Model) Surface(name string) (*Surface, bool) {
	if name == "all" || name == "" {
		return m.all, true
	}
	s, ok := m.byName[name]
	return s, ok
}

// All is the whole model as one surface.
func (m *Model) All() *Surface { return m.all }

// Select builds a surface from several named ones; its Dimensions are recomputed over the union.
// A point shared by several of the named surfaces appears once, at its first position.
func (m *Model) Select(name string, names ...string) (*Surface, error) {
	out := &Surface{Name: name}
	seen := make(map[int]bool)
	for _, n := range names {
		s, ok := m.Surface(n)
		if !ok {
			return nil, fmt.Errorf("unknown surface %q", n)
		}
		for _, p := range s.Points {
			if seen[p.Index] {
				continue
			}
			seen[p.Index] = true
			out.Points = append(out.Points, p)
		}
	}
	if len(out.Points) == 0 {
		return nil, ErrNoPoints
	}
	out.Dim = Bounds(out.Points)
	return out, nil
}

// Size is the number of points, which is also the required output array length.
func (m *Model) Size() int { return len(m.Points) }
