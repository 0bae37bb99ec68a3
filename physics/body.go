package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/robosim/common"
)

// Body is a handle to a body owned by a World. Holders never own it; the
// world decides when it goes away.
type Body struct {
	world    *World
	body     *cp.Body
	spec     BodySpec
	fixtures []*Fixture
	removed  bool
	// forces pending for the next Step, re-applied on every sub-step
	forces []pendingForce
}

// pendingForce is a world-space force acting at a body-local point.
type pendingForce struct {
	force common.Vec2
	local common.Vec2
}

// Fixture is a shape attached to a body.
type Fixture struct {
	body  *Body
	shape *cp.Shape
	spec  FixtureSpec
}

func (f *Fixture) Body() *Body {
	if f == nil {
		return nil
	}
	return f.body
}

func (f *Fixture) Spec() FixtureSpec {
	if f == nil {
		return FixtureSpec{}
	}
	return f.spec
}

func (f *Fixture) UserData() any {
	if f == nil {
		return nil
	}
	return f.spec.UserData
}

func (f *Fixture) IsSensor() bool {
	return f != nil && f.spec.IsSensor
}

func (b *Body) Spec() BodySpec {
	return b.spec
}

func (b *Body) Type() BodyType {
	return b.spec.Type
}

func (b *Body) Fixtures() []*Fixture {
	return b.fixtures
}

// Removed reports whether the world has destroyed this body. State reads
// still return the last known transform.
func (b *Body) Removed() bool {
	return b == nil || b.removed
}

// WorldCenter returns the center of mass in world coordinates.
func (b *Body) WorldCenter() common.Vec2 {
	if b == nil || b.body == nil {
		return common.Vec2{}
	}
	return fromVector(b.body.LocalToWorld(b.body.CenterOfGravity()))
}

func (b *Body) Position() common.Vec2 {
	if b == nil || b.body == nil {
		return common.Vec2{}
	}
	return fromVector(b.body.Position())
}

func (b *Body) Angle() float64 {
	if b == nil || b.body == nil {
		return 0
	}
	return b.body.Angle()
}

func (b *Body) Mass() float64 {
	if b == nil || b.body == nil {
		return 0
	}
	return b.body.Mass()
}

func (b *Body) LinearVelocity() common.Vec2 {
	if b == nil || b.body == nil {
		return common.Vec2{}
	}
	return fromVector(b.body.Velocity())
}

func (b *Body) SetLinearVelocity(v common.Vec2) {
	if b == nil || b.body == nil || b.spec.Type == BodyStatic {
		return
	}
	b.body.SetVelocityVector(toVector(v))
}

func (b *Body) AngularVelocity() float64 {
	if b == nil || b.body == nil {
		return 0
	}
	return b.body.AngularVelocity()
}

// LocalToWorld converts a body-local point to world coordinates.
func (b *Body) LocalToWorld(p common.Vec2) common.Vec2 {
	if b == nil || b.body == nil {
		return p
	}
	return fromVector(b.body.LocalToWorld(toVector(p)))
}

func (b *Body) WorldToLocal(p common.Vec2) common.Vec2 {
	if b == nil || b.body == nil {
		return p
	}
	return fromVector(b.body.WorldToLocal(toVector(p)))
}

// VectorToWorld rotates a body-local direction into world coordinates.
func (b *Body) VectorToWorld(v common.Vec2) common.Vec2 {
	return v.Rotate(b.Angle())
}

// ApplyForce applies a world-space force at a world point for the whole of
// the next Step, sub-steps included. Forces are cleared by that Step.
func (b *Body) ApplyForce(force, point common.Vec2) {
	if b == nil || b.body == nil || b.removed || b.spec.Type != BodyDynamic {
		return
	}
	b.forces = append(b.forces, pendingForce{force: force, local: b.WorldToLocal(point)})
}

func (b *Body) applyPendingForces() {
	for _, f := range b.forces {
		b.body.ApplyForceAtWorldPoint(toVector(f.force), b.body.LocalToWorld(toVector(f.local)))
	}
}

func (b *Body) ApplyImpulse(impulse, point common.Vec2) {
	if b == nil || b.body == nil || b.removed || b.spec.Type != BodyDynamic {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(toVector(impulse), toVector(point))
}

// SetTransform moves a body directly. Static bodies have their shapes
// re-inserted so sensors pick up the new location.
func (b *Body) SetTransform(pos common.Vec2, angle float64) error {
	if b == nil || b.body == nil {
		return ErrNilBody
	}
	if b.removed {
		return ErrBodyRemoved
	}
	b.body.SetPosition(toVector(pos))
	b.body.SetAngle(angle)
	if b.spec.Type == BodyStatic && b.world != nil && b.world.space != nil {
		// static shapes keep their old bounds until re-inserted
		b.world.reinsert(b)
	}
	return nil
}

// dampedVelocity integrates velocity with the space's global damping and
// then the body's own linear and angular damping.
func (b *Body) dampedVelocity(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	cp.BodyUpdateVelocity(body, gravity, damping, dt)
	if b.spec.LinearDamping > 0 {
		body.SetVelocityVector(body.Velocity().Mult(1.0 / (1.0 + dt*b.spec.LinearDamping)))
	}
	if b.spec.AngularDamping > 0 {
		body.SetAngularVelocity(body.AngularVelocity() / (1.0 + dt*b.spec.AngularDamping))
	}
}

func toVector(v common.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromVector(v cp.Vector) common.Vec2 {
	return common.Vec2{X: v.X, Y: v.Y}
}
