package scene

import (
	"fmt"

	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/sim"
)

// Register creates a body and fixture for every object in the tree that
// asks for one, then lets linkers join them. All bodies exist before the
// first joint is made.
func Register(world *physics.World, root sim.Object) error {
	var err error
	sim.Walk(root, func(obj sim.Object) {
		if err != nil {
			return
		}
		bodied, ok := obj.(sim.Bodied)
		if !ok || bodied.Body() != nil {
			return
		}
		body := world.CreateBody(bodied.BodySpec())
		if _, ferr := world.CreateFixture(body, bodied.FixtureSpec()); ferr != nil {
			world.RemoveBody(body)
			err = fmt.Errorf("scene: %s %s fixture: %w", obj.Label(), obj.ID(), ferr)
			return
		}
		bodied.BindBody(body)
	})
	if err != nil {
		return err
	}

	sim.Walk(root, func(obj sim.Object) {
		if err != nil {
			return
		}
		if linker, ok := obj.(sim.Linker); ok {
			if lerr := linker.ConfigureFixtureLinks(world); lerr != nil {
				err = fmt.Errorf("scene: %s %s links: %w", obj.Label(), obj.ID(), lerr)
			}
		}
	})
	return err
}

// Unregister removes every body in the tree from the world. Joints go
// with their bodies.
func Unregister(world *physics.World, root sim.Object) {
	sim.Walk(root, func(obj sim.Object) {
		if body := obj.Body(); body != nil {
			world.RemoveBody(body)
		}
	})
}
