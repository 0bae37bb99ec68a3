package sim

import (
	"image/color"
	"math"
	"testing"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var triangle = []common.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1.5}}

func TestZonesAreStaticSensors(t *testing.T) {
	cases := []struct {
		name  string
		shape ZoneShape
	}{
		{"rectangle", RectangleZone{XLength: 4, ZLength: 2}},
		{"ellipse", EllipseZone{XRadius: 1.5, ZRadius: 1}},
		{"polygon", PolygonZone{Points: triangle}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			z, err := MakeZone(ZoneSpec{ZoneID: c.name, Shape: c.shape})
			require.NoError(t, err)
			assert.Equal(t, physics.BodyStatic, z.BodySpec().Type)
			assert.True(t, z.FixtureSpec().IsSensor)
			assert.Equal(t, ZoneFixtureData{ZoneID: c.name, ObjectID: z.ID(), Color: DefaultZoneStyle().BaseColor}, z.FixtureSpec().UserData)
			assert.InDelta(t, math.Pi/2, z.Mesh().Rotation.X, 1e-12)
		})
	}
}

func TestZoneShapeDescriptors(t *testing.T) {
	cases := []struct {
		name     string
		shape    ZoneShape
		geometry render.Geometry
		physics  physics.Shape
	}{
		{
			name:     "rectangle",
			shape:    RectangleZone{XLength: 4, ZLength: 2},
			geometry: render.PlaneGeometry{Width: 4, Height: 2},
			physics:  physics.Box{HalfWidth: 2, HalfHeight: 1},
		},
		{
			name:     "thin_rectangle",
			shape:    RectangleZone{XLength: 0.5, ZLength: 10},
			geometry: render.PlaneGeometry{Width: 0.5, Height: 10},
			physics:  physics.Box{HalfWidth: 0.25, HalfHeight: 5},
		},
		{
			name:     "ellipse",
			shape:    EllipseZone{XRadius: 1.5, ZRadius: 0.75},
			geometry: render.EllipseGeometry{XRadius: 1.5, YRadius: 0.75},
			physics:  physics.Box{HalfWidth: 1.5, HalfHeight: 0.75},
		},
		{
			name:     "polygon",
			shape:    PolygonZone{Points: triangle},
			geometry: render.ShapeGeometry{Points: triangle},
			physics:  physics.Polygon{Points: triangle},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			geometry, shape, err := ZoneShapeDescriptors(c.shape)
			require.NoError(t, err)
			assert.Equal(t, c.geometry, geometry)
			assert.Equal(t, c.physics, shape)
		})
	}
}

func TestZoneRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec ZoneSpec
		want error
	}{
		{"no_shape", ZoneSpec{ZoneID: "a"}, ErrNoZoneShape},
		{"no_id", ZoneSpec{Shape: RectangleZone{XLength: 1, ZLength: 1}}, ErrMissingZoneID},
		{"two_points", ZoneSpec{ZoneID: "a", Shape: PolygonZone{Points: triangle[:2]}}, ErrDegeneratePolygon},
		{"flat_rectangle", ZoneSpec{ZoneID: "a", Shape: RectangleZone{XLength: 0, ZLength: 1}}, ErrInvalidDimensions},
		{"negative_radius", ZoneSpec{ZoneID: "a", Shape: EllipseZone{XRadius: -1, ZRadius: 1}}, ErrInvalidDimensions},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			z, err := MakeZone(c.spec)
			assert.ErrorIs(t, err, c.want)
			assert.Nil(t, z)
		})
	}
}

func TestZoneStyleOverrides(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	opacity := 0.2
	pos := common.Vec2{X: 3, Y: -4}

	z, err := MakeZone(ZoneSpec{
		ZoneID:          "red",
		Shape:           RectangleZone{XLength: 1, ZLength: 1},
		BaseColor:       &red,
		Opacity:         &opacity,
		InitialPosition: &pos,
	})
	require.NoError(t, err)
	assert.Equal(t, red, z.Color())
	assert.Equal(t, red, z.Mesh().Material.Color)
	assert.Equal(t, 0.2, z.Opacity())
	assert.True(t, z.Mesh().Material.Transparent)
	assert.Equal(t, pos, z.BodySpec().Position)
	assert.Equal(t, common.Vec3{X: 3, Y: 0, Z: -4}, z.Mesh().Position)

	z, err = NewZone(ZoneSpec{ZoneID: "plain", Shape: RectangleZone{XLength: 1, ZLength: 1}}, ZoneStyle{BaseColor: red, Opacity: 1})
	require.NoError(t, err)
	assert.Equal(t, red, z.Color())
	assert.False(t, z.Mesh().Material.Transparent)
}

func TestZoneUpdateFollowsBody(t *testing.T) {
	w := newWorld()
	z, err := MakeZone(ZoneSpec{ZoneID: "goal", Shape: RectangleZone{XLength: 4, ZLength: 2}})
	require.NoError(t, err)
	assert.ErrorIs(t, z.MoveTo(common.Vec2{X: 1}), ErrBodyNotBound)

	bindBodies(t, w, z)
	require.NoError(t, z.MoveTo(common.Vec2{X: 3, Y: 4}))
	z.Mesh().Position.Y = 7

	z.Update(16)
	assert.Equal(t, common.Vec3{X: 3, Y: 0, Z: 4}, z.Mesh().Position)
	rotation := z.Mesh().Rotation

	z.Update(16)
	assert.Equal(t, common.Vec3{X: 3, Y: 0, Z: 4}, z.Mesh().Position)
	assert.Equal(t, rotation, z.Mesh().Rotation)
}

func TestZoneRestyleLeavesBodyAlone(t *testing.T) {
	w := newWorld()
	z, err := MakeZone(ZoneSpec{ZoneID: "goal", Shape: EllipseZone{XRadius: 1, ZRadius: 1}})
	require.NoError(t, err)
	bindBodies(t, w, z)
	before := z.Body().WorldCenter()

	green := color.NRGBA{G: 0xff, A: 0xff}
	z.SetColor(green)
	z.SetOpacity(1.5)

	assert.Equal(t, green, z.Mesh().Material.Color)
	assert.Equal(t, 1.0, z.Opacity())
	assert.Equal(t, 1.0, z.Mesh().Material.Opacity)
	assert.Equal(t, before, z.Body().WorldCenter())
}

func TestZoneHighlight(t *testing.T) {
	cases := []struct {
		name    string
		opacity float64
		boost   float64
		shown   float64
	}{
		{"none", 0.4, 0, 0.4},
		{"boosted", 0.4, 0.35, 0.75},
		{"saturates", 0.8, 0.35, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			z, err := MakeZone(ZoneSpec{ZoneID: "bay", Shape: RectangleZone{XLength: 1, ZLength: 1}})
			require.NoError(t, err)
			z.SetOpacity(c.opacity)
			z.SetHighlight(c.boost)

			assert.Equal(t, c.boost, z.Highlight())
			assert.InDelta(t, c.opacity, z.Opacity(), 1e-9)
			assert.InDelta(t, c.shown, z.Mesh().Material.Opacity, 1e-9)

			z.SetHighlight(0)
			assert.InDelta(t, c.opacity, z.Mesh().Material.Opacity, 1e-9)
		})
	}
}

func TestZoneOccupancy(t *testing.T) {
	z, err := MakeZone(ZoneSpec{ZoneID: "bay", Shape: RectangleZone{XLength: 1, ZLength: 1}})
	require.NoError(t, err)

	assert.True(t, z.Enter("robot"), "first fixture arrives")
	assert.False(t, z.Enter("robot"), "second fixture of the same object")
	assert.True(t, z.Enter("crate"))
	assert.Equal(t, []string{"crate", "robot"}, z.Occupants())

	assert.False(t, z.Leave("robot"))
	assert.True(t, z.Leave("robot"))
	assert.False(t, z.Leave("robot"), "already gone")
	assert.True(t, z.Occupied())

	assert.True(t, z.Leave("crate"))
	assert.False(t, z.Occupied())
	assert.Empty(t, z.Occupants())
}
