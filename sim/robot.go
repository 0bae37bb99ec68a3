package sim

import (
	"fmt"
	"image/color"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/render"
)

const (
	chassisLinearDamping  = 0.5
	chassisAngularDamping = 0.3
	chassisDensity        = 1.0
	chassisFriction       = 0.3
	chassisRestitution    = 0.4
)

// wheelLinkAxis is the chassis-local axis each wheel joint runs along.
var wheelLinkAxis = common.Vec2{X: 0, Y: 1}

// RobotSpec declares a robot. Drivetrain is handed to the drivetrain as is.
type RobotSpec struct {
	Name            string
	Dimensions      common.Vec3
	BaseColor       *color.NRGBA
	InitialPosition *common.Vec2
	Drivetrain      DrivetrainSpec
}

type RobotStyle struct {
	BaseColor color.NRGBA
}

func DefaultRobotStyle() RobotStyle {
	return RobotStyle{BaseColor: color.NRGBA{R: 0x33, G: 0x66, B: 0xff, A: 0xff}}
}

// Robot is a dynamic chassis with a drivetrain whose wheels are children
// of the robot.
type Robot struct {
	*SimObject

	name        string
	dimensions  common.Vec3
	color       color.NRGBA
	drivetrain  *Drivetrain
	bodySpec    physics.BodySpec
	fixtureSpec physics.FixtureSpec
	joints      []*physics.Joint
}

// MakeRobot builds a robot with DefaultRobotStyle.
func MakeRobot(spec RobotSpec) (*Robot, error) {
	return NewRobot(spec, DefaultRobotStyle())
}

func NewRobot(spec RobotSpec, style RobotStyle) (*Robot, error) {
	dims := spec.Dimensions
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
		return nil, fmt.Errorf("sim: robot %q: %w: %.3f x %.3f x %.3f", spec.Name, ErrInvalidDimensions, dims.X, dims.Y, dims.Z)
	}

	c := style.BaseColor
	if spec.BaseColor != nil {
		c = *spec.BaseColor
	}
	var pos common.Vec2
	if spec.InitialPosition != nil {
		pos = *spec.InitialPosition
	}

	r := &Robot{
		SimObject:  NewSimObject("robot"),
		name:       spec.Name,
		dimensions: dims,
		color:      c,
	}

	mesh := render.NewMesh(render.BoxGeometry{Width: dims.X, Height: dims.Y, Depth: dims.Z}, render.NewMaterial(c, 1))
	mesh.Name = spec.Name
	mesh.Position = common.Vec3{X: pos.X, Y: 0, Z: pos.Y}
	r.SetMesh(mesh)

	r.bodySpec = physics.BodySpec{
		Type:           physics.BodyDynamic,
		Position:       pos,
		LinearDamping:  chassisLinearDamping,
		AngularDamping: chassisAngularDamping,
		Bullet:         true,
	}
	r.fixtureSpec = physics.FixtureSpec{
		Shape:       physics.Box{HalfWidth: dims.X / 2, HalfHeight: dims.Z / 2},
		Density:     chassisDensity,
		Friction:    chassisFriction,
		Restitution: chassisRestitution,
		UserData:    ObjectFixtureData{ObjectID: r.ID(), OwnerID: r.ID(), Label: "robot"},
	}

	drivetrain, err := NewDrivetrain(spec, r.ID())
	if err != nil {
		return nil, fmt.Errorf("sim: robot %q: %w", spec.Name, err)
	}
	r.drivetrain = drivetrain
	for _, w := range drivetrain.Wheels() {
		r.AddChild(w)
	}
	mesh.Position.Y = drivetrain.MountingOffset()

	return r, nil
}

func (r *Robot) Name() string                     { return r.name }
func (r *Robot) Dimensions() common.Vec3          { return r.dimensions }
func (r *Robot) Color() color.NRGBA               { return r.color }
func (r *Robot) Drivetrain() *Drivetrain          { return r.drivetrain }
func (r *Robot) Wheels() []*Wheel                 { return r.drivetrain.Wheels() }
func (r *Robot) BodySpec() physics.BodySpec       { return r.bodySpec }
func (r *Robot) FixtureSpec() physics.FixtureSpec { return r.fixtureSpec }

// Joints returns the wheel joints created by ConfigureFixtureLinks.
func (r *Robot) Joints() []*physics.Joint { return r.joints }

// ConfigureFixtureLinks joins every wheel to the chassis with a prismatic
// joint at the wheel's current center and zero travel. The chassis and
// all wheel bodies must already exist. On failure no joints are left.
func (r *Robot) ConfigureFixtureLinks(world physics.JointFactory) error {
	if r.joints != nil {
		return ErrLinksConfigured
	}
	chassis := r.Body()
	if chassis == nil {
		return fmt.Errorf("sim: robot %q chassis: %w", r.name, ErrBodyNotBound)
	}
	wheels := r.Wheels()
	for i, w := range wheels {
		if w.Body() == nil {
			return fmt.Errorf("sim: robot %q wheel %d: %w", r.name, i, ErrBodyNotBound)
		}
	}

	joints := make([]*physics.Joint, 0, len(wheels))
	for i, w := range wheels {
		j, err := world.CreatePrismaticJoint(physics.PrismaticJointSpec{
			BodyA:            chassis,
			BodyB:            w.Body(),
			Anchor:           w.Body().WorldCenter(),
			Axis:             wheelLinkAxis,
			EnableLimit:      true,
			LowerTranslation: 0,
			UpperTranslation: 0,
		})
		if err != nil {
			for _, created := range joints {
				world.RemoveJoint(created)
			}
			return fmt.Errorf("sim: robot %q wheel %d joint: %w", r.name, i, err)
		}
		joints = append(joints, j)
	}
	r.joints = joints
	return nil
}

// SetMotorPower forwards to the drivetrain, which validates the channel
// and clamps the value.
func (r *Robot) SetMotorPower(channel int, value float64) error {
	return r.drivetrain.SetMotorPower(channel, value)
}

// Update applies motor forces, updates the wheels and then pulls the
// chassis transform into the chassis mesh.
func (r *Robot) Update(dtMs float64) {
	r.drivetrain.Update()
	r.SimObject.Update(dtMs)
}
