package render

import (
	"image/color"

	"github.com/milk9111/robosim/common"
)

// Euler is a rotation in radians applied in X, Y, Z order.
type Euler struct {
	X float64
	Y float64
	Z float64
}

// Material is the surface of a mesh.
type Material struct {
	Color       color.NRGBA
	Opacity     float64
	Transparent bool
}

func NewMaterial(c color.NRGBA, opacity float64) *Material {
	m := &Material{Color: c}
	m.SetOpacity(opacity)
	return m
}

func (m *Material) SetColor(c color.NRGBA) {
	if m == nil {
		return
	}
	m.Color = c
}

// SetOpacity clamps to [0, 1]; anything below 1 marks the material
// transparent.
func (m *Material) SetOpacity(opacity float64) {
	if m == nil {
		return
	}
	m.Opacity = common.Clamp(opacity, 0, 1)
	m.Transparent = m.Opacity < 1
}

// RGBA is the color with opacity folded into alpha.
func (m *Material) RGBA() color.NRGBA {
	if m == nil {
		return color.NRGBA{}
	}
	c := m.Color
	c.A = uint8(float64(c.A) * m.Opacity)
	return c
}

// Mesh is a geometry placed in the world with a material.
type Mesh struct {
	Name     string
	Geometry Geometry
	Material *Material
	Position common.Vec3
	Rotation Euler
	Visible  bool
}

func NewMesh(geometry Geometry, material *Material) *Mesh {
	return &Mesh{
		Geometry: geometry,
		Material: material,
		Visible:  true,
	}
}
