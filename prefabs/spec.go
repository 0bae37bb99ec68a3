package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/sim"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ArenaSpec is a whole scene: world settings, zones and robots.
type ArenaSpec struct {
	Name   string      `yaml:"name"`
	TickMs float64     `yaml:"tick_ms"`
	World  WorldSpec   `yaml:"world"`
	Zones  []ZoneSpec  `yaml:"zones"`
	Robots []RobotSpec `yaml:"robots"`
}

func LoadArenaSpec(filename string) (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type WorldSpec struct {
	Gravity        common.Vec2 `yaml:"gravity"`
	Iterations     int         `yaml:"iterations"`
	BulletSubsteps int         `yaml:"bullet_substeps"`
}

// Config fills unset fields from physics.DefaultConfig.
func (w WorldSpec) Config() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = w.Gravity
	if w.Iterations > 0 {
		cfg.Iterations = w.Iterations
	}
	if w.BulletSubsteps > 0 {
		cfg.BulletSubsteps = w.BulletSubsteps
	}
	return cfg
}

// ZoneSpec must set exactly one of the three shape blocks.
type ZoneSpec struct {
	ZoneID          string             `yaml:"zone_id"`
	BaseColor       *YAMLColor         `yaml:"base_color"`
	Opacity         *float64           `yaml:"opacity"`
	InitialPosition *common.Vec2       `yaml:"initial_position"`
	RectangleZone   *RectangleZoneSpec `yaml:"rectangle_zone"`
	EllipseZone     *EllipseZoneSpec   `yaml:"ellipse_zone"`
	PolygonZone     *PolygonZoneSpec   `yaml:"polygon_zone"`
}

type RectangleZoneSpec struct {
	XLength float64 `yaml:"x_length"`
	ZLength float64 `yaml:"z_length"`
}

type EllipseZoneSpec struct {
	XRadius float64 `yaml:"x_radius"`
	ZRadius float64 `yaml:"z_radius"`
}

type PolygonZoneSpec struct {
	Points []common.Vec2 `yaml:"points"`
}

// Sim converts the file form into a sim.ZoneSpec.
func (z ZoneSpec) Sim() (sim.ZoneSpec, error) {
	out := sim.ZoneSpec{
		ZoneID:          z.ZoneID,
		Opacity:         z.Opacity,
		InitialPosition: z.InitialPosition,
	}
	if z.BaseColor != nil {
		c := z.BaseColor.NRGBA
		out.BaseColor = &c
	}

	shapes := 0
	if z.RectangleZone != nil {
		shapes++
		out.Shape = sim.RectangleZone{XLength: z.RectangleZone.XLength, ZLength: z.RectangleZone.ZLength}
	}
	if z.EllipseZone != nil {
		shapes++
		out.Shape = sim.EllipseZone{XRadius: z.EllipseZone.XRadius, ZRadius: z.EllipseZone.ZRadius}
	}
	if z.PolygonZone != nil {
		shapes++
		out.Shape = sim.PolygonZone{Points: z.PolygonZone.Points}
	}
	switch shapes {
	case 0:
		return sim.ZoneSpec{}, fmt.Errorf("prefabs: zone %q: %w", z.ZoneID, sim.ErrNoZoneShape)
	case 1:
		return out, nil
	default:
		return sim.ZoneSpec{}, fmt.Errorf("prefabs: zone %q: %w", z.ZoneID, sim.ErrAmbiguousZoneShape)
	}
}

type RobotSpec struct {
	Name            string         `yaml:"name"`
	Dimensions      common.Vec3    `yaml:"dimensions"`
	BaseColor       *YAMLColor     `yaml:"base_color"`
	InitialPosition *common.Vec2   `yaml:"initial_position"`
	Drivetrain      DrivetrainSpec `yaml:"drivetrain"`
	Controller      ControllerSpec `yaml:"controller"`
}

type DrivetrainSpec struct {
	Kind        string      `yaml:"kind"`
	WheelRadius float64     `yaml:"wheel_radius"`
	WheelWidth  float64     `yaml:"wheel_width"`
	MaxForce    float64     `yaml:"max_force"`
	Response    float64     `yaml:"response"`
	LateralGrip float64     `yaml:"lateral_grip"`
	Wheels      []WheelSpec `yaml:"wheels"`
}

type WheelSpec struct {
	Position common.Vec2 `yaml:"position"`
	Channel  int         `yaml:"channel"`
	Reversed bool        `yaml:"reversed"`
}

// ControllerSpec picks what drives a robot: a tengo script, or fixed
// per-channel powers.
type ControllerSpec struct {
	Script   string          `yaml:"script"`
	Constant map[int]float64 `yaml:"constant"`
}

func (r RobotSpec) Sim() sim.RobotSpec {
	out := sim.RobotSpec{
		Name:            r.Name,
		Dimensions:      r.Dimensions,
		InitialPosition: r.InitialPosition,
		Drivetrain: sim.DrivetrainSpec{
			Kind:        sim.DrivetrainKind(r.Drivetrain.Kind),
			WheelRadius: r.Drivetrain.WheelRadius,
			WheelWidth:  r.Drivetrain.WheelWidth,
			MaxForce:    r.Drivetrain.MaxForce,
			Response:    r.Drivetrain.Response,
			LateralGrip: r.Drivetrain.LateralGrip,
		},
	}
	if r.BaseColor != nil {
		c := r.BaseColor.NRGBA
		out.BaseColor = &c
	}
	for _, w := range r.Drivetrain.Wheels {
		out.Drivetrain.Wheels = append(out.Drivetrain.Wheels, sim.WheelSpec{
			Position: w.Position,
			Channel:  w.Channel,
			Reversed: w.Reversed,
		})
	}
	return out
}

// YAMLColor parses "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.NRGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = parsed
	return nil
}

func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color format: %s", s)
		}
		rgba[i] = v
	}
	return color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, nil
}
