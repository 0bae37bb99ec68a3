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

type DrivetrainKind string

const (
	// DrivetrainTank drives every left wheel (negative local x) from
	// channel 0 and every right wheel from channel 1.
	DrivetrainTank DrivetrainKind = "tank"
	// DrivetrainIndependent drives each wheel from its own channel.
	DrivetrainIndependent DrivetrainKind = "independent"
)

const (
	ChannelLeft  = 0
	ChannelRight = 1
)

const (
	defaultWheelRadius = 0.25
	defaultWheelWidth  = 0.2
	defaultMaxForce    = 20.0

	wheelDensity     = 1.0
	wheelFriction    = 0.9
	wheelRestitution = 0.1
)

var wheelColor = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

// wheelForward is the local drive direction of every wheel.
var wheelForward = common.Vec2{X: 0, Y: 1}

// WheelSpec places a wheel in the chassis frame (x, z).
type WheelSpec struct {
	Position common.Vec2
	Channel  int
	Reversed bool
}

type DrivetrainSpec struct {
	Kind        DrivetrainKind
	WheelRadius float64
	WheelWidth  float64
	// MaxForce is the drive force of a wheel at full power.
	MaxForce float64
	// Response is how far applied power moves toward the commanded power
	// each update, in (0, 1]. Zero means 1.
	Response float64
	// LateralGrip is the fraction of sideways wheel slip cancelled each
	// update. Zero disables it.
	LateralGrip float64
	Wheels      []WheelSpec
}

// Wheel is a driven wheel with its own body and mesh.
type Wheel struct {
	*SimObject

	channel      int
	reversed     bool
	local        common.Vec2
	radius       float64
	width        float64
	power        float64
	appliedForce common.Vec2
	bodySpec     physics.BodySpec
	fixtureSpec  physics.FixtureSpec
}

func (w *Wheel) Channel() int                     { return w.channel }
func (w *Wheel) LocalPosition() common.Vec2       { return w.local }
func (w *Wheel) Radius() float64                  { return w.radius }
func (w *Wheel) BodySpec() physics.BodySpec       { return w.bodySpec }
func (w *Wheel) FixtureSpec() physics.FixtureSpec { return w.fixtureSpec }

// Power is the power the wheel applied on the last drivetrain update.
func (w *Wheel) Power() float64 { return w.power }

// AppliedForce is the world-space drive force of the last update.
func (w *Wheel) AppliedForce() common.Vec2 { return w.appliedForce }

// Drivetrain turns per-channel motor power into wheel forces.
type Drivetrain struct {
	kind           DrivetrainKind
	maxForce       float64
	response       float64
	lateralGrip    float64
	mountingOffset float64
	wheels         []*Wheel
	commanded      map[int]float64
}

// NewDrivetrain builds the wheels for a robot spec. ownerID is the id of
// the robot the wheels belong to.
func NewDrivetrain(spec RobotSpec, ownerID string) (*Drivetrain, error) {
	ds := spec.Drivetrain
	kind := ds.Kind
	if kind == "" {
		kind = DrivetrainTank
	}
	if kind != DrivetrainTank && kind != DrivetrainIndependent {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDrivetrain, kind)
	}

	radius := orDefault(ds.WheelRadius, defaultWheelRadius)
	width := orDefault(ds.WheelWidth, defaultWheelWidth)
	if radius < 0 || width < 0 {
		return nil, fmt.Errorf("%w: wheel radius %.3f width %.3f", ErrInvalidDimensions, radius, width)
	}
	maxForce := ds.MaxForce
	if maxForce == 0 {
		maxForce = defaultMaxForce
	}
	response := ds.Response
	if response <= 0 {
		response = 1
	}

	wheelSpecs := ds.Wheels
	if len(wheelSpecs) == 0 {
		offset := spec.Dimensions.X/2 + width/2
		wheelSpecs = []WheelSpec{
			{Position: common.Vec2{X: -offset}, Channel: 0},
			{Position: common.Vec2{X: offset}, Channel: 1},
		}
	}

	var origin common.Vec2
	if spec.InitialPosition != nil {
		origin = *spec.InitialPosition
	}

	d := &Drivetrain{
		kind:           kind,
		maxForce:       maxForce,
		response:       common.Clamp(response, 0, 1),
		lateralGrip:    common.Clamp(ds.LateralGrip, 0, 1),
		mountingOffset: radius,
		commanded:      make(map[int]float64),
	}
	for _, ws := range wheelSpecs {
		channel := ws.Channel
		if kind == DrivetrainTank {
			channel = ChannelRight
			if ws.Position.X < 0 {
				channel = ChannelLeft
			}
		}
		d.wheels = append(d.wheels, newWheel(ws, channel, origin, radius, width, ownerID))
	}
	return d, nil
}

func newWheel(ws WheelSpec, channel int, origin common.Vec2, radius, width float64, ownerID string) *Wheel {
	w := &Wheel{
		SimObject: NewSimObject("wheel"),
		channel:   channel,
		reversed:  ws.Reversed,
		local:     ws.Position,
		radius:    radius,
		width:     width,
	}
	pos := origin.Add(ws.Position)

	mesh := render.NewMesh(render.CylinderGeometry{Radius: radius, Height: width}, render.NewMaterial(wheelColor, 1))
	// axle along the chassis x axis
	mesh.Rotation.Z = math.Pi / 2
	mesh.Position = common.Vec3{X: pos.X, Y: radius, Z: pos.Y}
	w.SetMesh(mesh)

	w.bodySpec = physics.BodySpec{
		Type:     physics.BodyDynamic,
		Position: pos,
	}
	w.fixtureSpec = physics.FixtureSpec{
		Shape:       physics.Box{HalfWidth: width / 2, HalfHeight: radius},
		Density:     wheelDensity,
		Friction:    wheelFriction,
		Restitution: wheelRestitution,
		UserData:    ObjectFixtureData{ObjectID: w.ID(), OwnerID: ownerID, Label: "wheel"},
	}
	return w
}

func (d *Drivetrain) Kind() DrivetrainKind {
	return d.kind
}

func (d *Drivetrain) Wheels() []*Wheel {
	return d.wheels
}

// MountingOffset is the height of the chassis center above the ground.
func (d *Drivetrain) MountingOffset() float64 {
	return d.mountingOffset
}

// Channels returns the motor channels in use, ascending.
func (d *Drivetrain) Channels() []int {
	seen := make(map[int]struct{}, len(d.wheels))
	var out []int
	for _, w := range d.wheels {
		if _, ok := seen[w.channel]; ok {
			continue
		}
		seen[w.channel] = struct{}{}
		out = append(out, w.channel)
	}
	sort.Ints(out)
	return out
}

func (d *Drivetrain) hasChannel(channel int) bool {
	for _, w := range d.wheels {
		if w.channel == channel {
			return true
		}
	}
	return false
}

// SetMotorPower stores the commanded power for channel, clamped to
// [-1, 1]. It takes effect on the next Update.
func (d *Drivetrain) SetMotorPower(channel int, value float64) error {
	if !d.hasChannel(channel) {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	if math.IsNaN(value) {
		value = 0
	}
	d.commanded[channel] = common.Clamp(value, -1, 1)
	return nil
}

// MotorPower returns the last commanded power for channel.
func (d *Drivetrain) MotorPower(channel int) float64 {
	return d.commanded[channel]
}

// Update moves each wheel's power toward its channel's command and pushes
// the resulting drive force into the wheel body. Forces land on the next
// physics step.
func (d *Drivetrain) Update() {
	for _, w := range d.wheels {
		target := d.commanded[w.channel]
		if w.reversed {
			target = -target
		}
		w.power = common.Lerp(w.power, target, d.response)

		body := w.Body()
		angle := 0.0
		if body != nil {
			angle = body.Angle()
		}
		forward := wheelForward.Rotate(angle)
		w.appliedForce = forward.Scale(w.power * d.maxForce)

		if body == nil {
			continue
		}
		center := body.WorldCenter()
		if w.power != 0 {
			body.ApplyForce(w.appliedForce, center)
		}
		if d.lateralGrip > 0 {
			right := forward.Rotate(-math.Pi / 2)
			slip := body.LinearVelocity().Dot(right)
			if slip != 0 {
				body.ApplyImpulse(right.Scale(-slip*body.Mass()*d.lateralGrip), center)
			}
		}
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
