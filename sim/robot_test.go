package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/robosim/common"
	"github.com/milk9111/robosim/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRobotSpec() RobotSpec {
	return RobotSpec{Name: "alpha", Dimensions: common.Vec3{X: 2, Y: 1, Z: 3}}
}

func TestRobotBodyAndFixture(t *testing.T) {
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)

	body := r.BodySpec()
	assert.Equal(t, physics.BodyDynamic, body.Type)
	assert.Equal(t, common.Vec2{}, body.Position)
	assert.Equal(t, 0.5, body.LinearDamping)
	assert.Equal(t, 0.3, body.AngularDamping)
	assert.True(t, body.Bullet)

	fixture := r.FixtureSpec()
	assert.Equal(t, physics.Box{HalfWidth: 1, HalfHeight: 1.5}, fixture.Shape)
	assert.Equal(t, 1.0, fixture.Density)
	assert.Equal(t, 0.3, fixture.Friction)
	assert.Equal(t, 0.4, fixture.Restitution)
	assert.False(t, fixture.IsSensor)
	assert.Equal(t, ObjectFixtureData{ObjectID: r.ID(), OwnerID: r.ID(), Label: "robot"}, fixture.UserData)

	assert.Equal(t, DefaultRobotStyle().BaseColor, r.Color())
	assert.Equal(t, "alpha", r.Mesh().Name)
}

func TestRobotPlacement(t *testing.T) {
	pos := common.Vec2{X: -2, Y: 5}
	spec := testRobotSpec()
	spec.InitialPosition = &pos

	r, err := MakeRobot(spec)
	require.NoError(t, err)
	assert.Equal(t, pos, r.BodySpec().Position)
	assert.Equal(t, common.Vec3{X: -2, Y: r.Drivetrain().MountingOffset(), Z: 5}, r.Mesh().Position)

	require.Len(t, r.Wheels(), 2)
	for _, w := range r.Wheels() {
		assert.Equal(t, pos.Add(w.LocalPosition()), w.BodySpec().Position)
	}
}

func TestRobotRejectsBadDimensions(t *testing.T) {
	cases := []common.Vec3{
		{X: 0, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: 1},
		{X: 1, Y: 1, Z: 0},
	}
	for _, dims := range cases {
		_, err := MakeRobot(RobotSpec{Name: "bad", Dimensions: dims})
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}

	spec := testRobotSpec()
	spec.Drivetrain.Kind = "hover"
	_, err := MakeRobot(spec)
	assert.ErrorIs(t, err, ErrUnknownDrivetrain)
}

func TestRobotWheelsAreChildren(t *testing.T) {
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)

	require.Len(t, r.Children(), len(r.Wheels()))
	for i, w := range r.Wheels() {
		assert.Same(t, w, r.Children()[i])
		data, ok := w.FixtureSpec().UserData.(ObjectFixtureData)
		require.True(t, ok)
		assert.Equal(t, r.ID(), data.OwnerID)
	}
}

func TestConfigureFixtureLinks(t *testing.T) {
	w := newWorld()
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)
	bindBodies(t, w, r)

	require.NoError(t, r.ConfigureFixtureLinks(w))
	require.Len(t, r.Joints(), len(r.Wheels()))
	assert.Len(t, w.Joints(), len(r.Wheels()))

	for i, j := range r.Joints() {
		wheel := r.Wheels()[i]
		assert.Same(t, r.Body(), j.BodyA())
		assert.Same(t, wheel.Body(), j.BodyB())
		assert.Equal(t, wheel.Body().WorldCenter(), j.Anchor())
		assert.Equal(t, common.Vec2{X: 0, Y: 1}, j.Axis())
		assert.True(t, j.LimitEnabled())
		assert.Zero(t, j.LowerTranslation())
		assert.Zero(t, j.UpperTranslation())
	}

	assert.ErrorIs(t, r.ConfigureFixtureLinks(w), ErrLinksConfigured)
	assert.Len(t, w.Joints(), len(r.Wheels()))
}

// flakyJoints fails the nth joint it is asked for.
type flakyJoints struct {
	*physics.World
	failAt int
	calls  int
}

var errJointRefused = errors.New("joint refused")

func (f *flakyJoints) CreatePrismaticJoint(spec physics.PrismaticJointSpec) (*physics.Joint, error) {
	f.calls++
	if f.calls == f.failAt {
		return nil, errJointRefused
	}
	return f.World.CreatePrismaticJoint(spec)
}

func TestConfigureFixtureLinksRollsBack(t *testing.T) {
	cases := []struct {
		name   string
		failAt int
	}{
		{"first", 1},
		{"second", 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newWorld()
			r, err := MakeRobot(testRobotSpec())
			require.NoError(t, err)
			bindBodies(t, w, r)

			err = r.ConfigureFixtureLinks(&flakyJoints{World: w, failAt: c.failAt})
			assert.ErrorIs(t, err, errJointRefused)
			assert.Empty(t, w.Joints())
			assert.Nil(t, r.Joints())

			require.NoError(t, r.ConfigureFixtureLinks(w))
			assert.Len(t, w.Joints(), len(r.Wheels()))
		})
	}
}

func TestConfigureFixtureLinksNeedsBodies(t *testing.T) {
	w := newWorld()
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)

	assert.ErrorIs(t, r.ConfigureFixtureLinks(w), ErrBodyNotBound)

	// chassis only
	body := w.CreateBody(r.BodySpec())
	r.BindBody(body)
	assert.ErrorIs(t, r.ConfigureFixtureLinks(w), ErrBodyNotBound)
	assert.Empty(t, w.Joints())
	assert.Empty(t, r.Joints())
}

func TestRobotUpdateSyncsMesh(t *testing.T) {
	w := newWorld()
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)
	bindBodies(t, w, r)
	require.NoError(t, r.ConfigureFixtureLinks(w))

	require.NoError(t, r.Body().SetTransform(common.Vec2{X: 1, Y: 2}, math.Pi/6))
	r.Update(16)

	center := r.Body().WorldCenter()
	assert.InDelta(t, center.X, r.Mesh().Position.X, 1e-9)
	assert.InDelta(t, center.Y, r.Mesh().Position.Z, 1e-9)
	assert.InDelta(t, -math.Pi/6, r.Mesh().Rotation.Y, 1e-9)
	assert.Equal(t, r.Drivetrain().MountingOffset(), r.Mesh().Position.Y)

	first := *r.Mesh()
	r.Update(16)
	assert.Equal(t, first.Position, r.Mesh().Position)
	assert.Equal(t, first.Rotation, r.Mesh().Rotation)
}

func TestRobotDrivesForwardAsOneBody(t *testing.T) {
	w := newWorld()
	r, err := MakeRobot(testRobotSpec())
	require.NoError(t, err)
	bindBodies(t, w, r)
	require.NoError(t, r.ConfigureFixtureLinks(w))

	offsets := make([]float64, len(r.Wheels()))
	for i, wheel := range r.Wheels() {
		offsets[i] = wheel.Body().WorldCenter().Sub(r.Body().WorldCenter()).Len()
	}

	require.NoError(t, r.SetMotorPower(ChannelLeft, 1))
	require.NoError(t, r.SetMotorPower(ChannelRight, 1))
	for i := 0; i < 60; i++ {
		r.Update(1000.0 / 60)
		w.Step(1.0 / 60)
	}
	r.Update(1000.0 / 60)

	assert.Greater(t, r.Body().WorldCenter().Y, 0.1)
	assert.InDelta(t, r.Body().WorldCenter().Y, r.Mesh().Position.Z, 1e-9)
	for i, wheel := range r.Wheels() {
		offset := wheel.Body().WorldCenter().Sub(r.Body().WorldCenter()).Len()
		assert.InDelta(t, offsets[i], offset, 0.05, "wheel %d stays mounted", i)
		assert.InDelta(t, wheel.Body().WorldCenter().Y, wheel.Mesh().Position.Z, 1e-9)
	}
}
