package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/robosim/common"
	"go.uber.org/zap"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeSensor
)

// Config tunes the underlying Chipmunk space.
type Config struct {
	Gravity    common.Vec2
	Iterations int
	// BulletSubsteps is how many sub-steps Step takes while any bullet
	// body exists.
	BulletSubsteps int
}

// DefaultConfig is a top-down arena: no gravity.
func DefaultConfig() Config {
	return Config{
		Iterations:     20,
		BulletSubsteps: 4,
	}
}

// SensorEvent reports a sensor fixture starting or stopping to overlap
// another fixture.
type SensorEvent struct {
	Sensor *Fixture
	Other  *Fixture
	Began  bool
}

// World owns the Chipmunk space and every body, fixture and joint in it.
type World struct {
	space         *cp.Space
	cfg           Config
	logger        *zap.Logger
	handlersReady bool

	bodies   []*Body
	joints   []*Joint
	fixtures map[*cp.Shape]*Fixture
	bullets  int
	steps    int

	onSensor func(SensorEvent)
	// reinserting is set while static shapes are re-added after a move.
	reinserting bool
	// detached holds ends raised by a re-insert until the next Step shows
	// whether the overlap really ended.
	detached []SensorEvent
}

// NewWorld creates an empty physics world.
func NewWorld(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultConfig().Iterations
	}
	if cfg.BulletSubsteps <= 0 {
		cfg.BulletSubsteps = 1
	}

	space := cp.NewSpace()
	space.Iterations = uint(cfg.Iterations)
	space.SetGravity(toVector(cfg.Gravity))

	w := &World{
		space:    space,
		cfg:      cfg,
		logger:   logger,
		fixtures: make(map[*cp.Shape]*Fixture),
	}
	w.setupHandlers()
	return w
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Bodies returns live bodies in creation order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Joints returns live joints in creation order.
func (w *World) Joints() []*Joint {
	return w.joints
}

// StepCount is the number of completed Step calls.
func (w *World) StepCount() int {
	return w.steps
}

// SetSensorListener installs the callback for sensor overlap changes. The
// callback runs inside Step.
func (w *World) SetSensorListener(fn func(SensorEvent)) {
	w.onSensor = fn
}

// CreateBody creates and adds a body described by spec.
func (w *World) CreateBody(spec BodySpec) *Body {
	var cpBody *cp.Body
	switch spec.Type {
	case BodyStatic:
		cpBody = cp.NewStaticBody()
	case BodyKinematic:
		cpBody = cp.NewKinematicBody()
	default:
		spec.Type = BodyDynamic
		// mass and moment accumulate from fixture densities
		cpBody = cp.NewBody(0, 0)
	}
	cpBody.SetPosition(toVector(spec.Position))
	cpBody.SetAngle(spec.Angle)

	body := &Body{world: w, body: cpBody, spec: spec}
	cpBody.UserData = body
	if spec.Type == BodyDynamic && (spec.LinearDamping > 0 || spec.AngularDamping > 0) {
		cpBody.SetVelocityUpdateFunc(body.dampedVelocity)
	}
	if spec.Bullet {
		w.bullets++
	}

	w.space.AddBody(cpBody)
	w.bodies = append(w.bodies, body)
	w.logger.Debug("physics: body created",
		zap.Stringer("type", spec.Type),
		zap.Float64("x", spec.Position.X),
		zap.Float64("y", spec.Position.Y),
		zap.Bool("bullet", spec.Bullet),
	)
	return body
}

// CreateFixture attaches a shape to body.
func (w *World) CreateFixture(body *Body, spec FixtureSpec) (*Fixture, error) {
	if body == nil || body.body == nil {
		return nil, ErrNilBody
	}
	if body.removed {
		return nil, ErrBodyRemoved
	}

	shape, err := newShape(body.body, spec.Shape)
	if err != nil {
		return nil, err
	}

	density := spec.Density
	if density <= 0 && body.spec.Type == BodyDynamic {
		density = 1
	}
	if body.spec.Type == BodyDynamic {
		shape.SetDensity(density)
	}
	shape.SetFriction(spec.Friction)
	shape.SetElasticity(spec.Restitution)
	shape.SetSensor(spec.IsSensor)
	if spec.IsSensor {
		shape.SetCollisionType(collisionTypeSensor)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}

	fixture := &Fixture{body: body, shape: shape, spec: spec}
	shape.UserData = fixture
	w.space.AddShape(shape)
	w.fixtures[shape] = fixture
	body.fixtures = append(body.fixtures, fixture)
	return fixture, nil
}

// RemoveBody removes a body with its fixtures and every joint touching it.
func (w *World) RemoveBody(body *Body) {
	if w == nil || body == nil || body.removed {
		return
	}

	kept := w.joints[:0]
	for _, j := range w.joints {
		if j.bodyA == body || j.bodyB == body {
			w.removeJoint(j)
			continue
		}
		kept = append(kept, j)
	}
	w.joints = kept

	for _, f := range body.fixtures {
		w.space.RemoveShape(f.shape)
		delete(w.fixtures, f.shape)
	}
	w.space.RemoveBody(body.body)
	if body.spec.Bullet {
		w.bullets--
	}
	body.removed = true

	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil || dt <= 0 {
		return
	}
	substeps := 1
	if w.bullets > 0 {
		substeps = w.cfg.BulletSubsteps
	}
	sub := dt / float64(substeps)
	for i := 0; i < substeps; i++ {
		// cp clears body forces after every step
		for _, b := range w.bodies {
			b.applyPendingForces()
		}
		w.space.Step(sub)
	}
	for _, b := range w.bodies {
		b.forces = b.forces[:0]
	}
	for _, evt := range w.detached {
		w.emitSensor(evt)
	}
	w.detached = nil
	w.steps++
}

// reinsert re-adds a static body's shapes so the broadphase sees its new
// transform.
func (w *World) reinsert(b *Body) {
	w.reinserting = true
	defer func() { w.reinserting = false }()
	for _, f := range b.fixtures {
		w.space.RemoveShape(f.shape)
		w.space.AddShape(f.shape)
	}
}

func (w *World) setupHandlers() {
	if w.handlersReady {
		return
	}

	handler := w.space.NewCollisionHandler(collisionTypeSensor, collisionTypeSolid)
	handler.UserData = w
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if world, ok := userData.(*World); ok {
			world.dispatchSensor(arb, true)
		}
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		if world, ok := userData.(*World); ok {
			world.dispatchSensor(arb, false)
		}
	}

	w.handlersReady = true
}

func (w *World) dispatchSensor(arb *cp.Arbiter, began bool) {
	shapeA, shapeB := arb.Shapes()
	fa := w.fixtures[shapeA]
	fb := w.fixtures[shapeB]
	if fa == nil || fb == nil {
		return
	}
	if !fa.IsSensor() {
		fa, fb = fb, fa
	}
	evt := SensorEvent{Sensor: fa, Other: fb, Began: began}

	if !began && w.reinserting {
		w.detached = append(w.detached, evt)
		return
	}
	if began {
		for i, d := range w.detached {
			if d.Sensor == fa && d.Other == fb {
				// still overlapping after the move
				w.detached = append(w.detached[:i], w.detached[i+1:]...)
				return
			}
		}
	}
	w.emitSensor(evt)
}

func (w *World) emitSensor(evt SensorEvent) {
	if w.onSensor != nil {
		w.onSensor(evt)
	}
}

func newShape(body *cp.Body, s Shape) (*cp.Shape, error) {
	switch sh := s.(type) {
	case Box:
		if sh.HalfWidth <= 0 || sh.HalfHeight <= 0 {
			return nil, fmt.Errorf("%w: box half-extents %.3f x %.3f", ErrInvalidShape, sh.HalfWidth, sh.HalfHeight)
		}
		return cp.NewBox(body, sh.HalfWidth*2, sh.HalfHeight*2, 0), nil
	case Circle:
		if sh.Radius <= 0 {
			return nil, fmt.Errorf("%w: circle radius %.3f", ErrInvalidShape, sh.Radius)
		}
		return cp.NewCircle(body, sh.Radius, toVector(sh.Offset)), nil
	case Polygon:
		if len(sh.Points) < 3 {
			return nil, ErrDegeneratePolygon
		}
		verts := make([]cp.Vector, len(sh.Points))
		for i, p := range sh.Points {
			verts[i] = toVector(p)
		}
		// the solver works on the convex hull of the ring
		return cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0), nil
	default:
		return nil, ErrInvalidShape
	}
}
