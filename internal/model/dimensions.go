package model

import "math"

// Dimensions is an axis-aligned bounding box over physical and normalised coordinates.
type Dimensions struct {
	Min, Max   Vec3 // physical
	NMin, NMax Vec3 // normalised (model space)
}

// Bounds computes the box over every non-gap point. Gap points only count when nothing else is present.
func Bounds(points []Point) Dimensions {
	var d Dimensions
	first := true
	add := func(p Point) {
		if first {
			d.Min, d.Max = p.Pos, p.Pos
			d.NMin, d.NMax = p.Norm, p.Norm
			first = false
			return
		}
		d.Min = minVec(d.Min, p.Pos)
		d.Max = maxVec(d.Max, p.Pos)
		d.NMin = minVec(d.NMin, p.Norm)
		d.NMax = maxVec(d.NMax, p.Norm)
	}
	for _, p := range points {
		if !p.Gap {
			add(p)
		}
	}
	if first {
		for _, p := range points {
			add(p)
		}
	}
	return d
}

// Remap expresses a point's normalised position in this box's own 0..1 range.
// Axes with zero extent map to 0.5.
func (d Dimensions) Remap(p Point) Vec3 {
	return Vec3{
		X: remap(p.Norm.X, d.NMin.X, d.NMax.X),
		Y: remap(p.Norm.Y, d.NMin.Y, d.NMax.Y),
		Z: remap(p.Norm.Z, d.NMin.Z, d.NMax.Z),
	}
}

func (d Dimensions) normalizePos(v Vec3) Vec3 {
	return Vec3{
		X: remap(v.X, d.Min.X, d.Max.X),
		Y: remap(v.Y, d.Min.Y, d.Max.Y),
		Z: remap(v.Z, d.Min.Z, d.Max.Z),
	}
}

// Extent is the physical size of the box.
func (d Dimensions) Extent() Vec3 {
	return Vec3{d.Max.X - d.Min.X, d.Max.Y - d.Min.Y, d.Max.Z - d.Min.Z}
}

func remap(v, lo, hi float64) float64 {
	span := hi - lo
	if span <= 1e-12 {
		return 0.5
	}
	return (v - lo) / span
}

func minVec(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func maxVec(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}
