package control

import (
	"math"
	"testing"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRobot(t *testing.T) *sim.Robot {
	t.Helper()
	r, err := sim.MakeRobot(sim.RobotSpec{Name: "alpha", Dimensions: common.Vec3{X: 2, Y: 1, Z: 3}})
	require.NoError(t, err)
	return r
}

func TestScriptSetsMotors(t *testing.T) {
	cases := []struct {
		name      string
		src       string
		elapsedMs float64
		left      float64
		right     float64
	}{
		{"floats", "motors = [0.5, -0.25]", 0, 0.5, -0.25},
		{"ints", "motors = [1, 0]", 0, 1, 0},
		{"time", "motors = [time_ms / 1000.0, 0.0]", 500, 0.5, 0},
		{"clamped", "motors = [3.0, -3.0]", 0, 1, -1},
		{"channels", "motors = [len(channels) / 4.0, 0.0]", 0, 0.5, 0},
		{"short", "motors = [0.2]", 0, 0.2, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := CompileScript(c.name, []byte(c.src))
			require.NoError(t, err)

			r := newRobot(t)
			require.NoError(t, s.Control(r, c.elapsedMs))
			assert.InDelta(t, c.left, r.Drivetrain().MotorPower(sim.ChannelLeft), 1e-12)
			assert.InDelta(t, c.right, r.Drivetrain().MotorPower(sim.ChannelRight), 1e-12)
		})
	}
}

func TestScriptSeesPose(t *testing.T) {
	w := physics.NewWorld(physics.DefaultConfig(), nil)
	r := newRobot(t)
	body := w.CreateBody(r.BodySpec())
	_, err := w.CreateFixture(body, r.FixtureSpec())
	require.NoError(t, err)
	r.BindBody(body)
	require.NoError(t, body.SetTransform(common.Vec2{X: 0.25, Y: -0.5}, 0.1))

	s, err := CompileScript("pose", []byte("motors = [pose.x, pose.z + pose.angle]"))
	require.NoError(t, err)
	require.NoError(t, s.Control(r, 0))

	assert.InDelta(t, 0.25, r.Drivetrain().MotorPower(0), 1e-9)
	assert.InDelta(t, -0.4, r.Drivetrain().MotorPower(1), 1e-9)
}

func TestScriptErrors(t *testing.T) {
	_, err := CompileScript("broken", []byte("motors = ["))
	assert.Error(t, err)

	cases := []struct {
		name string
		src  string
		want error
	}{
		{"not_a_number", `motors = ["fast", 0]`, nil},
		{"int_divide_by_zero", `motors = [1 / 0]`, nil},
		{"divide_by_variable", `x := 0; motors = [10 / x, 0]`, nil},
		{"extra_channel", "motors = [0, 0, 1]", sim.ErrUnknownChannel},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := CompileScript(c.name, []byte(c.src))
			require.NoError(t, err)
			err = s.Control(newRobot(t), 0)
			require.Error(t, err)
			if c.want != nil {
				assert.ErrorIs(t, err, c.want)
			}
		})
	}
}

func TestLoadBundledScripts(t *testing.T) {
	eight, err := LoadScript("scripts/figure_eight.tengo")
	require.NoError(t, err)
	assert.Equal(t, "scripts/figure_eight.tengo", eight.Path())

	r := newRobot(t)
	require.NoError(t, eight.Control(r, 0))
	assert.InDelta(t, 0.6, r.Drivetrain().MotorPower(0), 1e-9)
	assert.InDelta(t, 0.6, r.Drivetrain().MotorPower(1), 1e-9)

	// at the origin the target sits at -90 degrees
	seek, err := LoadScript("seek.tengo")
	require.NoError(t, err)
	r = newRobot(t)
	require.NoError(t, seek.Control(r, 0))
	assert.Equal(t, 1.0, r.Drivetrain().MotorPower(0))
	assert.InDelta(t, 0.7-0.8*math.Pi/2, r.Drivetrain().MotorPower(1), 1e-9)

	_, err = LoadScript("missing.tengo")
	assert.Error(t, err)
}

func TestConstantController(t *testing.T) {
	powers := map[int]float64{0: 0.4, 1: -0.6}
	c := NewConstant(powers)
	powers[0] = 1

	r := newRobot(t)
	require.NoError(t, c.Control(r, 0))
	assert.Equal(t, 0.4, r.Drivetrain().MotorPower(0))
	assert.Equal(t, -0.6, r.Drivetrain().MotorPower(1))

	bad := NewConstant(map[int]float64{4: 1})
	assert.ErrorIs(t, bad.Control(r, 0), sim.ErrUnknownChannel)
}

func TestRunZeroesFailedControllers(t *testing.T) {
	good := newRobot(t)
	broken := newRobot(t)
	require.NoError(t, broken.SetMotorPower(0, 0.9))
	require.NoError(t, broken.SetMotorPower(1, 0.9))

	Run([]Binding{
		{Robot: good, Controller: NewConstant(map[int]float64{0: 0.3, 1: 0.3})},
		{Robot: broken, Controller: NewConstant(map[int]float64{7: 1})},
		{Robot: nil, Controller: NewConstant(nil)},
		{Robot: good, Controller: nil},
	}, 16, zap.NewNop())

	assert.Equal(t, 0.3, good.Drivetrain().MotorPower(0))
	assert.Zero(t, broken.Drivetrain().MotorPower(0))
	assert.Zero(t, broken.Drivetrain().MotorPower(1))
}

func TestRunZeroesPanickingScript(t *testing.T) {
	s, err := CompileScript("divide", []byte("zero := 0\nmotors = [1 / zero, 1]"))
	require.NoError(t, err)

	r := newRobot(t)
	require.NoError(t, r.SetMotorPower(0, 0.7))
	require.NoError(t, r.SetMotorPower(1, 0.7))

	assert.NotPanics(t, func() {
		Run([]Binding{{Robot: r, Controller: s}}, 16, zap.NewNop())
	})
	assert.Zero(t, r.Drivetrain().MotorPower(0))
	assert.Zero(t, r.Drivetrain().MotorPower(1))

	// the compiled script stays usable after a failed run
	err = s.Control(r, 0)
	assert.Error(t, err)
}
