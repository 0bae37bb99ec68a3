package sim

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/render"
)

// ZoneShape is exactly one of RectangleZone, EllipseZone or PolygonZone.
type ZoneShape interface {
	zoneShape()
}

type RectangleZone struct {
	XLength float64
	ZLength float64
}

type EllipseZone struct {
	XRadius float64
	ZRadius float64
}

// PolygonZone is an open ring of ground points (x, z).
type PolygonZone struct {
	Points []common.Vec2
}

func (RectangleZone) zoneShape() {}
func (EllipseZone) zoneShape()   {}
func (PolygonZone) zoneShape()   {}

// ZoneSpec declares a zone. Nil optional fields fall back to the style
// passed to NewZone and to the origin.
type ZoneSpec struct {
	ZoneID          string
	Shape           ZoneShape
	BaseColor       *color.NRGBA
	Opacity         *float64
	InitialPosition *common.Vec2
}

type ZoneStyle struct {
	BaseColor color.NRGBA
	Opacity   float64
}

func DefaultZoneStyle() ZoneStyle {
	return ZoneStyle{
		BaseColor: color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
		Opacity:   0.5,
	}
}

// ZoneFixtureData is attached to a zone's sensor fixture so overlap
// callbacks can identify the zone without a lookup table.
type ZoneFixtureData struct {
	ZoneID   string
	ObjectID string
	Color    color.NRGBA
}

// ZoneShapeDescriptors maps a zone shape to the flat mesh geometry and the
// physics shape built from it. Ellipses get a box fixture with the same
// radii; sensors only need coarse overlap.
func ZoneShapeDescriptors(shape ZoneShape) (render.Geometry, physics.Shape, error) {
	switch s := shape.(type) {
	case RectangleZone:
		if s.XLength <= 0 || s.ZLength <= 0 {
			return nil, nil, fmt.Errorf("%w: rectangle %.3f x %.3f", ErrInvalidDimensions, s.XLength, s.ZLength)
		}
		return render.PlaneGeometry{Width: s.XLength, Height: s.ZLength},
			physics.Box{HalfWidth: s.XLength / 2, HalfHeight: s.ZLength / 2},
			nil
	case EllipseZone:
		if s.XRadius <= 0 || s.ZRadius <= 0 {
			return nil, nil, fmt.Errorf("%w: ellipse radii %.3f x %.3f", ErrInvalidDimensions, s.XRadius, s.ZRadius)
		}
		return render.EllipseGeometry{XRadius: s.XRadius, YRadius: s.ZRadius},
			physics.Box{HalfWidth: s.XRadius, HalfHeight: s.ZRadius},
			nil
	case PolygonZone:
		if len(s.Points) < 3 {
			return nil, nil, fmt.Errorf("%w: got %d", ErrDegeneratePolygon, len(s.Points))
		}
		points := append([]common.Vec2(nil), s.Points...)
		return render.ShapeGeometry{Points: points},
			physics.Polygon{Points: points},
			nil
	default:
		return nil, nil, ErrNoZoneShape
	}
}

// Zone is a flat sensor region on the ground. Its body is static; it only
// moves when MoveTo is called.
type Zone struct {
	*SimObject

	zoneID      string
	color       color.NRGBA
	opacity     float64
	highlight   float64
	bodySpec    physics.BodySpec
	fixtureSpec physics.FixtureSpec
	occupants   map[string]int
}

// MakeZone builds a zone with DefaultZoneStyle.
func MakeZone(spec ZoneSpec) (*Zone, error) {
	return NewZone(spec, DefaultZoneStyle())
}

func NewZone(spec ZoneSpec, style ZoneStyle) (*Zone, error) {
	if spec.ZoneID == "" {
		return nil, ErrMissingZoneID
	}
	geometry, shape, err := ZoneShapeDescriptors(spec.Shape)
	if err != nil {
		return nil, fmt.Errorf("sim: zone %q: %w", spec.ZoneID, err)
	}

	c := style.BaseColor
	if spec.BaseColor != nil {
		c = *spec.BaseColor
	}
	opacity := style.Opacity
	if spec.Opacity != nil {
		opacity = *spec.Opacity
	}
	var pos common.Vec2
	if spec.InitialPosition != nil {
		pos = *spec.InitialPosition
	}

	z := &Zone{
		SimObject: NewSimObject("zone"),
		zoneID:    spec.ZoneID,
		color:     c,
		opacity:   opacity,
		occupants: make(map[string]int),
	}

	mesh := render.NewMesh(geometry, render.NewMaterial(c, opacity))
	mesh.Name = spec.ZoneID
	// lay the XY shape onto the ground so shape y becomes world z
	mesh.Rotation.X = math.Pi / 2
	mesh.Position = common.Vec3{X: pos.X, Y: 0, Z: pos.Y}
	z.SetMesh(mesh)

	z.bodySpec = physics.BodySpec{
		Type:     physics.BodyStatic,
		Position: pos,
	}
	z.fixtureSpec = physics.FixtureSpec{
		Shape:    shape,
		IsSensor: true,
		UserData: ZoneFixtureData{
			ZoneID:   spec.ZoneID,
			ObjectID: z.ID(),
			Color:    c,
		},
	}
	return z, nil
}

func (z *Zone) ZoneID() string {
	return z.zoneID
}

func (z *Zone) BodySpec() physics.BodySpec {
	return z.bodySpec
}

func (z *Zone) FixtureSpec() physics.FixtureSpec {
	return z.fixtureSpec
}

func (z *Zone) Color() color.NRGBA {
	return z.color
}

func (z *Zone) Opacity() float64 {
	return z.opacity
}

// SetColor changes the mesh color only.
func (z *Zone) SetColor(c color.NRGBA) {
	z.color = c
	if m := z.Mesh(); m != nil {
		m.Material.SetColor(c)
	}
}

// SetOpacity changes the zone's own opacity. The mesh shows it plus any
// highlight.
func (z *Zone) SetOpacity(opacity float64) {
	z.opacity = common.Clamp(opacity, 0, 1)
	z.applyOpacity()
}

func (z *Zone) Highlight() float64 {
	return z.highlight
}

// SetHighlight adds boost to the displayed opacity without changing
// Opacity. Zero clears it.
func (z *Zone) SetHighlight(boost float64) {
	z.highlight = boost
	z.applyOpacity()
}

func (z *Zone) applyOpacity() {
	if m := z.Mesh(); m != nil {
		m.Material.SetOpacity(common.Clamp(z.opacity+z.highlight, 0, 1))
	}
}

// Update keeps the flat mesh on the ground under the body.
func (z *Zone) Update(dtMs float64) {
	z.UpdateChildren(dtMs)
	body, mesh := z.Body(), z.Mesh()
	if body == nil || mesh == nil {
		return
	}
	c := body.WorldCenter()
	mesh.Position = common.Vec3{X: c.X, Y: 0, Z: c.Y}
}

// MoveTo repositions the zone's static body. The mesh follows on the
// next Update.
func (z *Zone) MoveTo(pos common.Vec2) error {
	body := z.Body()
	if body == nil {
		return ErrBodyNotBound
	}
	return body.SetTransform(pos, body.Angle())
}

// Enter records one more overlapping fixture of objectID and reports
// whether the object just arrived.
func (z *Zone) Enter(objectID string) bool {
	z.occupants[objectID]++
	return z.occupants[objectID] == 1
}

// Leave records one fewer overlapping fixture of objectID and reports
// whether the object is now fully outside.
func (z *Zone) Leave(objectID string) bool {
	n, ok := z.occupants[objectID]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(z.occupants, objectID)
		return true
	}
	z.occupants[objectID] = n - 1
	return false
}

func (z *Zone) Occupied() bool {
	return len(z.occupants) > 0
}

// Occupants returns the ids of objects inside the zone, sorted.
func (z *Zone) Occupants() []string {
	ids := make([]string, 0, len(z.occupants))
	for id := range z.occupants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
