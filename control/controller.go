package control

import (
	"fmt"
	"sort"

	"github.com/milk9111/robosim/sim"
	"go.uber.org/zap"
)

// Motorized is the part of a robot a controller drives.
type Motorized interface {
	ID() string
	SetMotorPower(channel int, value float64) error
}

// Controller decides motor powers once per tick. Commands are buffered by
// the drivetrain until its next update.
type Controller interface {
	Control(robot *sim.Robot, elapsedMs float64) error
}

// Constant holds each channel at a fixed power.
type Constant struct {
	powers map[int]float64
}

func NewConstant(powers map[int]float64) *Constant {
	copied := make(map[int]float64, len(powers))
	for ch, v := range powers {
		copied[ch] = v
	}
	return &Constant{powers: copied}
}

func (c *Constant) Control(robot *sim.Robot, elapsedMs float64) error {
	return apply(robot, c.powers)
}

func apply(robot Motorized, powers map[int]float64) error {
	channels := make([]int, 0, len(powers))
	for ch := range powers {
		channels = append(channels, ch)
	}
	sort.Ints(channels)
	for _, ch := range channels {
		if err := robot.SetMotorPower(ch, powers[ch]); err != nil {
			return fmt.Errorf("control: robot %s: %w", robot.ID(), err)
		}
	}
	return nil
}

// Binding pairs a robot with its controller.
type Binding struct {
	Robot      *sim.Robot
	Controller Controller
}

// Run gives every controller its turn. A failing controller is logged
// and zeroed so a broken script does not leave a robot running away.
func Run(bindings []Binding, elapsedMs float64, logger *zap.Logger) {
	for _, b := range bindings {
		if b.Robot == nil || b.Controller == nil {
			continue
		}
		if err := b.Controller.Control(b.Robot, elapsedMs); err != nil {
			logger.Warn("control: controller failed",
				zap.String("robot", b.Robot.Name()),
				zap.Error(err),
			)
			for _, ch := range b.Robot.Drivetrain().Channels() {
				_ = b.Robot.SetMotorPower(ch, 0)
			}
		}
	}
}
