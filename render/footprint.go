package render

import (
	"math"
	"sort"

	"github.com/milk9111/robosim/common"
)

// Rotate applies e to v in X, Y, Z order: Z first, then Y, then X.
func Rotate(v common.Vec3, e Euler) common.Vec3 {
	if e.Z != 0 {
		s, c := math.Sincos(e.Z)
		v = common.Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
	}
	if e.Y != 0 {
		s, c := math.Sincos(e.Y)
		v = common.Vec3{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
	}
	if e.X != 0 {
		s, c := math.Sincos(e.X)
		v = common.Vec3{X: v.X, Y: v.Y*c - v.Z*s, Z: v.Y*s + v.Z*c}
	}
	return v
}

// Footprint projects a mesh onto the ground plane and returns its outline
// as world (x, z) points, with z in Vec2.Y.
func Footprint(m *Mesh) []common.Vec2 {
	if m == nil || m.Geometry == nil {
		return nil
	}
	local, ring := vertices(m.Geometry)
	if len(local) == 0 {
		return nil
	}
	out := make([]common.Vec2, len(local))
	for i, v := range local {
		w := Rotate(v, m.Rotation)
		out[i] = common.Vec2{X: w.X + m.Position.X, Y: w.Z + m.Position.Z}
	}
	if ring {
		return out
	}
	return convexHull(out)
}

// convexHull is Andrew's monotone chain; the result is counter-clockwise
// without a repeated first point.
func convexHull(pts []common.Vec2) []common.Vec2 {
	if len(pts) < 3 {
		return pts
	}
	sorted := append([]common.Vec2(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b common.Vec2) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]common.Vec2, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 1e-12 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 1e-12 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
