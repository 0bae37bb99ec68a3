package scene

// Stage is one phase of a tick.
type Stage interface {
	Run(s *Scene, dtMs float64)
}

// StageFunc adapts a function to a Stage.
type StageFunc func(s *Scene, dtMs float64)

func (f StageFunc) Run(s *Scene, dtMs float64) { f(s, dtMs) }

// Scheduler runs stages in the order they were added.
type Scheduler struct {
	stages []Stage
}

func NewScheduler(stages ...Stage) *Scheduler {
	copied := append([]Stage(nil), stages...)
	return &Scheduler{stages: copied}
}

func (s *Scheduler) Add(stage Stage) {
	if stage == nil {
		return
	}
	s.stages = append(s.stages, stage)
}

func (s *Scheduler) Run(scene *Scene, dtMs float64) {
	for _, stage := range s.stages {
		stage.Run(scene, dtMs)
	}
}

func (s *Scheduler) Stages() []Stage {
	stages := make([]Stage, 0, len(s.stages))
	return append(stages, s.stages...)
}

// defaultScheduler is the fixed tick order: physics, object updates, zone
// occupancy, then controllers.
func defaultScheduler() *Scheduler {
	return NewScheduler(
		StageFunc(stepPhysics),
		StageFunc(updateObjects),
		StageFunc(resolveZones),
		StageFunc(runControllers),
	)
}

func stepPhysics(s *Scene, dtMs float64) {
	s.world.Step(dtMs / 1000)
}

func updateObjects(s *Scene, dtMs float64) {
	for _, root := range s.roots {
		root.Update(dtMs)
	}
	s.elapsedMs += dtMs
	s.ticks++
}

func resolveZones(s *Scene, _ float64) {
	s.resolveSensorEvents()
}
