package physics

import "github.com/milk9111/robosim/common"

type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
	BodyKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "static"
	case BodyDynamic:
		return "dynamic"
	case BodyKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// BodySpec describes a body before the world creates it.
type BodySpec struct {
	Type           BodyType
	Position       common.Vec2
	Angle          float64
	LinearDamping  float64
	AngularDamping float64
	// Bullet asks the world to sub-step while this body exists so fast
	// bodies do not tunnel through thin fixtures.
	Bullet bool
}

// Shape is one of Box, Polygon or Circle, in body-local coordinates.
type Shape interface {
	shape()
}

// Box is an axis-aligned box centered on the body origin.
type Box struct {
	HalfWidth  float64
	HalfHeight float64
}

// Polygon is an open ring of points; the solver closes it.
type Polygon struct {
	Points []common.Vec2
}

type Circle struct {
	Radius float64
	Offset common.Vec2
}

func (Box) shape()     {}
func (Polygon) shape() {}
func (Circle) shape()  {}

// FixtureSpec describes a shape attached to a body and its material.
type FixtureSpec struct {
	Shape       Shape
	Density     float64
	Friction    float64
	Restitution float64
	IsSensor    bool
	UserData    any
}

// PrismaticJointSpec links two bodies so that B may only translate along
// Axis (expressed in A's local frame) between the translation limits.
type PrismaticJointSpec struct {
	BodyA            *Body
	BodyB            *Body
	Anchor           common.Vec2
	Axis             common.Vec2
	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64
}
