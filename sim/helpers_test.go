package sim

import (
	"testing"

	"github.com/milk9111/robosim/physics"
	"github.com/stretchr/testify/require"
)

// bindBodies creates a body and fixture for every bodied object under root.
func bindBodies(t *testing.T, world *physics.World, root Object) {
	t.Helper()
	Walk(root, func(obj Object) {
		bodied, ok := obj.(Bodied)
		if !ok {
			return
		}
		body := world.CreateBody(bodied.BodySpec())
		_, err := world.CreateFixture(body, bodied.FixtureSpec())
		require.NoError(t, err)
		bodied.BindBody(body)
	})
}

func newWorld() *physics.World {
	return physics.NewWorld(physics.DefaultConfig(), nil)
}
