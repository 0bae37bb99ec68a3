package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/robosim/common"
)

// unlimitedTravel bounds a groove when a prismatic joint has no limit.
const unlimitedTravel = 1e6

// JointFactory is what objects need from a world to link their bodies.
type JointFactory interface {
	CreatePrismaticJoint(spec PrismaticJointSpec) (*Joint, error)
	RemoveJoint(j *Joint)
}

// Joint is a prismatic link between two bodies. It is owned by the world.
type Joint struct {
	bodyA       *Body
	bodyB       *Body
	spec        PrismaticJointSpec
	localA      common.Vec2
	localB      common.Vec2
	constraints []*cp.Constraint
}

func (j *Joint) BodyA() *Body { return j.bodyA }

func (j *Joint) BodyB() *Body { return j.bodyB }

func (j *Joint) Anchor() common.Vec2 { return j.spec.Anchor }

// Axis is the translation axis in BodyA's local frame.
func (j *Joint) Axis() common.Vec2 { return j.spec.Axis }

func (j *Joint) LimitEnabled() bool { return j.spec.EnableLimit }

func (j *Joint) LowerTranslation() float64 { return j.spec.LowerTranslation }

func (j *Joint) UpperTranslation() float64 { return j.spec.UpperTranslation }

// Translation is how far B's anchor has moved from A's anchor along the axis.
func (j *Joint) Translation() float64 {
	anchorA := j.bodyA.LocalToWorld(j.localA)
	anchorB := j.bodyB.LocalToWorld(j.localB)
	return anchorB.Sub(anchorA).Dot(j.bodyA.VectorToWorld(j.spec.Axis))
}

// CreatePrismaticJoint links spec.BodyA and spec.BodyB. Translation is
// limited along the axis, relative rotation is locked, and the two bodies
// stop colliding with each other.
func (w *World) CreatePrismaticJoint(spec PrismaticJointSpec) (*Joint, error) {
	a, b := spec.BodyA, spec.BodyB
	if a == nil || b == nil || a.body == nil || b.body == nil {
		return nil, ErrNilBody
	}
	if a.removed || b.removed {
		return nil, ErrBodyRemoved
	}
	if spec.Axis.Len() == 0 {
		return nil, ErrZeroAxis
	}
	spec.Axis = spec.Axis.Scale(1 / spec.Axis.Len())

	lower, upper := spec.LowerTranslation, spec.UpperTranslation
	if !spec.EnableLimit {
		lower, upper = -unlimitedTravel, unlimitedTravel
	}
	if lower > upper {
		lower, upper = upper, lower
	}

	localA := a.WorldToLocal(spec.Anchor)
	localB := b.WorldToLocal(spec.Anchor)

	var slide *cp.Constraint
	if lower == upper {
		// zero travel: a groove would be degenerate, pin the point instead
		pivot := spec.Anchor.Add(a.VectorToWorld(spec.Axis).Scale(lower))
		slide = cp.NewPivotJoint(a.body, b.body, toVector(pivot))
	} else {
		grooveA := localA.Add(spec.Axis.Scale(lower))
		grooveB := localA.Add(spec.Axis.Scale(upper))
		slide = cp.NewGrooveJoint(a.body, b.body, toVector(grooveA), toVector(grooveB), toVector(localB))
	}
	gear := cp.NewGearJoint(a.body, b.body, b.Angle()-a.Angle(), 1)

	j := &Joint{bodyA: a, bodyB: b, spec: spec, localA: localA, localB: localB}
	for _, c := range []*cp.Constraint{slide, gear} {
		c.SetCollideBodies(false)
		w.space.AddConstraint(c)
		j.constraints = append(j.constraints, c)
	}
	w.joints = append(w.joints, j)
	return j, nil
}

// RemoveJoint removes j from the world. Its bodies stay.
func (w *World) RemoveJoint(j *Joint) {
	if j == nil {
		return
	}
	for i, existing := range w.joints {
		if existing == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			break
		}
	}
	w.removeJoint(j)
}

func (w *World) removeJoint(j *Joint) {
	for _, c := range j.constraints {
		w.space.RemoveConstraint(c)
	}
	j.constraints = nil
}
