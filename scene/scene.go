package scene

import (
	"errors"
	"fmt"

	"github.com/milk9111/robosim/control"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/prefabs"
	"github.com/milk9111/robosim/render"
	"github.com/milk9111/robosim/sim"
	"go.uber.org/zap"
)

const (
	defaultTickMs = 1000.0 / 60.0
	// occupiedOpacityBoost is added to a zone's displayed opacity while
	// something is inside it.
	occupiedOpacityBoost = 0.35
)

var ErrDuplicateZone = errors.New("scene: duplicate zone id")

// Scene drives one arena: the physics world, the object trees living in
// it, their controllers and the meshes a renderer draws.
type Scene struct {
	name   string
	tickMs float64
	logger *zap.Logger

	world  *physics.World
	meshes *render.Scene

	roots     []sim.Object
	zones     []*sim.Zone
	zonesByID map[string]*sim.Zone
	robots    []*sim.Robot
	bindings  []control.Binding

	scheduler    *Scheduler
	sensorEvents []physics.SensorEvent
	events       EventQueue
	elapsedMs    float64
	ticks        int
}

// New creates an empty scene around a fresh world.
func New(name string, cfg physics.Config, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scene{
		name:      name,
		tickMs:    defaultTickMs,
		logger:    logger,
		world:     physics.NewWorld(cfg, logger),
		meshes:    render.NewScene(),
		scheduler: defaultScheduler(),
		zonesByID: make(map[string]*sim.Zone),
	}
	s.world.SetSensorListener(func(evt physics.SensorEvent) {
		s.sensorEvents = append(s.sensorEvents, evt)
	})
	return s
}

// Build creates a scene from an arena spec. Any invalid zone, robot or
// controller fails the whole build.
func Build(spec *prefabs.ArenaSpec, logger *zap.Logger) (*Scene, error) {
	if spec == nil {
		return nil, fmt.Errorf("scene: nil arena spec")
	}
	s := New(spec.Name, spec.World.Config(), logger)
	if spec.TickMs > 0 {
		s.tickMs = spec.TickMs
	}

	for _, zs := range spec.Zones {
		zoneSpec, err := zs.Sim()
		if err != nil {
			return nil, err
		}
		zone, err := sim.MakeZone(zoneSpec)
		if err != nil {
			return nil, err
		}
		if err := s.AddZone(zone); err != nil {
			return nil, err
		}
	}

	for _, rs := range spec.Robots {
		robot, err := sim.MakeRobot(rs.Sim())
		if err != nil {
			return nil, err
		}
		ctrl, err := newController(rs.Controller)
		if err != nil {
			return nil, fmt.Errorf("scene: robot %q: %w", rs.Name, err)
		}
		if err := s.AddRobot(robot, ctrl); err != nil {
			return nil, err
		}
	}

	s.logger.Info("scene: built",
		zap.String("arena", s.name),
		zap.Int("zones", len(s.zones)),
		zap.Int("robots", len(s.robots)),
		zap.Int("bodies", len(s.world.Bodies())),
		zap.Int("joints", len(s.world.Joints())),
	)
	return s, nil
}

func newController(spec prefabs.ControllerSpec) (control.Controller, error) {
	switch {
	case spec.Script != "":
		script, err := control.LoadScript(spec.Script)
		if err != nil {
			return nil, err
		}
		return script, nil
	case len(spec.Constant) > 0:
		return control.NewConstant(spec.Constant), nil
	default:
		return nil, nil
	}
}

// AddZone registers a zone with the world and the mesh scene.
func (s *Scene) AddZone(zone *sim.Zone) error {
	if _, exists := s.zonesByID[zone.ZoneID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateZone, zone.ZoneID())
	}
	if err := s.addObject(zone); err != nil {
		return err
	}
	s.zones = append(s.zones, zone)
	s.zonesByID[zone.ZoneID()] = zone
	return nil
}

// AddRobot registers a robot and, if ctrl is not nil, the controller that
// drives it.
func (s *Scene) AddRobot(robot *sim.Robot, ctrl control.Controller) error {
	if err := s.addObject(robot); err != nil {
		return err
	}
	s.robots = append(s.robots, robot)
	if ctrl != nil {
		s.bindings = append(s.bindings, control.Binding{Robot: robot, Controller: ctrl})
	}
	return nil
}

func (s *Scene) addObject(obj sim.Object) error {
	if err := Register(s.world, obj); err != nil {
		Unregister(s.world, obj)
		return err
	}
	sim.Walk(obj, func(o sim.Object) {
		s.meshes.Add(o.Mesh())
	})
	s.roots = append(s.roots, obj)
	return nil
}

// Tick advances one frame: the world steps, every tree pulls fresh
// transforms into its meshes, zone overlaps are resolved, then
// controllers issue commands that the next tick applies.
func (s *Scene) Tick(dtMs float64) {
	if dtMs <= 0 {
		dtMs = s.tickMs
	}
	s.scheduler.Run(s, dtMs)
}

// AddStage appends a stage that runs after the controllers each tick.
func (s *Scene) AddStage(stage Stage) {
	s.scheduler.Add(stage)
}

func runControllers(s *Scene, _ float64) {
	control.Run(s.bindings, s.elapsedMs, s.logger)
}

// Run ticks n times at the scene's tick length.
func (s *Scene) Run(n int) {
	for i := 0; i < n; i++ {
		s.Tick(s.tickMs)
	}
}

func (s *Scene) resolveSensorEvents() {
	pending := s.sensorEvents
	s.sensorEvents = nil
	for _, evt := range pending {
		zoneData, ok := evt.Sensor.UserData().(sim.ZoneFixtureData)
		if !ok {
			continue
		}
		zone := s.zonesByID[zoneData.ZoneID]
		if zone == nil {
			continue
		}
		objectID := ownerOf(evt.Other)
		if objectID == "" {
			continue
		}

		if evt.Began {
			if zone.Enter(objectID) {
				s.events.Push(ZoneEvent{Kind: ZoneEntered, ZoneID: zone.ZoneID(), ObjectID: objectID, AtMs: s.elapsedMs})
				s.logger.Debug("scene: zone entered", zap.String("zone", zone.ZoneID()), zap.String("object", objectID))
			}
		} else if zone.Leave(objectID) {
			s.events.Push(ZoneEvent{Kind: ZoneExited, ZoneID: zone.ZoneID(), ObjectID: objectID, AtMs: s.elapsedMs})
			s.logger.Debug("scene: zone exited", zap.String("zone", zone.ZoneID()), zap.String("object", objectID))
		}
		s.highlight(zone)
	}
}

func (s *Scene) highlight(zone *sim.Zone) {
	if zone.Occupied() {
		zone.SetHighlight(occupiedOpacityBoost)
		return
	}
	zone.SetHighlight(0)
}

func ownerOf(f *physics.Fixture) string {
	switch data := f.UserData().(type) {
	case sim.ObjectFixtureData:
		if data.OwnerID != "" {
			return data.OwnerID
		}
		return data.ObjectID
	case sim.ZoneFixtureData:
		return data.ObjectID
	default:
		return ""
	}
}

func (s *Scene) Name() string                 { return s.name }
func (s *Scene) TickMs() float64              { return s.tickMs }
func (s *Scene) ElapsedMs() float64           { return s.elapsedMs }
func (s *Scene) Ticks() int                   { return s.ticks }
func (s *Scene) World() *physics.World        { return s.world }
func (s *Scene) Meshes() *render.Scene        { return s.meshes }
func (s *Scene) Zones() []*sim.Zone           { return s.zones }
func (s *Scene) Robots() []*sim.Robot         { return s.robots }
func (s *Scene) Events() *EventQueue          { return &s.events }
func (s *Scene) Zone(zoneID string) *sim.Zone { return s.zonesByID[zoneID] }

// Robot finds a robot by name.
func (s *Scene) Robot(name string) *sim.Robot {
	for _, r := range s.robots {
		if r.Name() == name {
			return r
		}
	}
	return nil
}
