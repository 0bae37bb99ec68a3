package render

import (
	"math"

	"github.com/milk9111/robosim/common"
)

const defaultEllipseSegments = 32

// Geometry is one of the mesh shapes below. Flat geometries (plane,
// ellipse, shape) lie in the local XY plane.
type Geometry interface {
	geometry()
}

// BoxGeometry spans Width on X, Height on Y and Depth on Z.
type BoxGeometry struct {
	Width  float64
	Height float64
	Depth  float64
}

type PlaneGeometry struct {
	Width  float64
	Height float64
}

// EllipseGeometry is an ellipse outline with radii on X and Y.
type EllipseGeometry struct {
	XRadius  float64
	YRadius  float64
	Segments int
}

// ShapeGeometry is a flat polygon built from an open ring of points.
type ShapeGeometry struct {
	Points []common.Vec2
}

// CylinderGeometry has its axis along Y.
type CylinderGeometry struct {
	Radius float64
	Height float64
}

func (BoxGeometry) geometry()      {}
func (PlaneGeometry) geometry()    {}
func (EllipseGeometry) geometry()  {}
func (ShapeGeometry) geometry()    {}
func (CylinderGeometry) geometry() {}

// vertices returns the local-space points that outline g. The second
// result reports whether the points form an ordered ring; solids return
// an unordered cloud.
func vertices(g Geometry) ([]common.Vec3, bool) {
	switch geo := g.(type) {
	case PlaneGeometry:
		hw, hh := geo.Width/2, geo.Height/2
		return []common.Vec3{
			{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh},
		}, true
	case EllipseGeometry:
		n := geo.Segments
		if n < 3 {
			n = defaultEllipseSegments
		}
		pts := make([]common.Vec3, 0, n)
		for i := 0; i < n; i++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
			pts = append(pts, common.Vec3{X: geo.XRadius * cos, Y: geo.YRadius * sin})
		}
		return pts, true
	case ShapeGeometry:
		pts := make([]common.Vec3, len(geo.Points))
		for i, p := range geo.Points {
			pts[i] = common.Vec3{X: p.X, Y: p.Y}
		}
		return pts, true
	case BoxGeometry:
		return boxCorners(geo.Width/2, geo.Height/2, geo.Depth/2), false
	case CylinderGeometry:
		return boxCorners(geo.Radius, geo.Height/2, geo.Radius), false
	default:
		return nil, false
	}
}

func boxCorners(hx, hy, hz float64) []common.Vec3 {
	pts := make([]common.Vec3, 0, 8)
	for _, x := range []float64{-hx, hx} {
		for _, y := range []float64{-hy, hy} {
			for _, z := range []float64{-hz, hz} {
				pts = append(pts, common.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}
