package main

import (
	"github.com/milk9111/robosim/prefabs"
	"github.com/milk9111/robosim/scene"
	"go.uber.org/zap"
)

func runHeadless(arena string, ticks int, logger *zap.Logger) error {
	spec, err := prefabs.LoadArenaSpec(arena)
	if err != nil {
		return err
	}
	sc, err := scene.Build(spec, logger)
	if err != nil {
		return err
	}
	sc.AddStage(zoneEventLogger(logger))
	sc.Run(ticks)

	for _, r := range sc.Robots() {
		c := r.Body().WorldCenter()
		logger.Info("arena: robot final pose",
			zap.String("robot", r.Name()),
			zap.Float64("x", c.X),
			zap.Float64("z", c.Y),
			zap.Float64("angle", r.Body().Angle()),
		)
	}
	return nil
}

// zoneEventLogger drains the scene's zone events at the end of every tick.
func zoneEventLogger(logger *zap.Logger) scene.Stage {
	return scene.StageFunc(func(sc *scene.Scene, _ float64) {
		for _, evt := range sc.Events().Drain() {
			logger.Info("arena: zone event",
				zap.String("kind", string(evt.Kind)),
				zap.String("zone", evt.ZoneID),
				zap.String("object", evt.ObjectID),
				zap.Float64("at_ms", evt.AtMs),
			)
		}
	})
}
