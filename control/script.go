package control

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/robosim/prefabs"
	"github.com/milk9111/robosim/sim"
)

// Script runs a tengo script every tick. The script sees
//
//	time_ms   elapsed simulation time
//	pose      {x, z, angle} of the chassis
//	channels  motor channels the drivetrain accepts
//
// and assigns motors, an array of powers indexed by channel.
type Script struct {
	path     string
	compiled *tengo.Compiled
}

// LoadScript compiles a script from the prefabs scripts directory.
func LoadScript(path string) (*Script, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("control: load %s: %w", path, err)
	}
	s, err := CompileScript(path, src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func CompileScript(name string, src []byte) (*Script, error) {
	script := tengo.NewScript(src)
	_ = script.Add("time_ms", 0.0)
	_ = script.Add("pose", map[string]interface{}{"x": 0.0, "z": 0.0, "angle": 0.0})
	_ = script.Add("channels", []interface{}{})
	_ = script.Add("motors", []interface{}{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("control: compile %s: %w", name, err)
	}
	return &Script{path: name, compiled: compiled}, nil
}

func (s *Script) Path() string {
	return s.path
}

func (s *Script) Control(robot *sim.Robot, elapsedMs float64) error {
	pose := map[string]interface{}{"x": 0.0, "z": 0.0, "angle": 0.0}
	if body := robot.Body(); body != nil {
		c := body.WorldCenter()
		pose["x"] = c.X
		pose["z"] = c.Y
		pose["angle"] = body.Angle()
	}
	channels := robot.Drivetrain().Channels()
	chans := make([]interface{}, len(channels))
	for i, ch := range channels {
		chans[i] = ch
	}

	if err := s.compiled.Set("time_ms", elapsedMs); err != nil {
		return err
	}
	if err := s.compiled.Set("pose", pose); err != nil {
		return err
	}
	if err := s.compiled.Set("channels", chans); err != nil {
		return err
	}
	if err := s.compiled.Set("motors", []interface{}{}); err != nil {
		return err
	}
	if err := s.run(); err != nil {
		return fmt.Errorf("control: run %s: %w", s.path, err)
	}

	powers, err := motorPowers(s.compiled.Get("motors"))
	if err != nil {
		return fmt.Errorf("control: %s: %w", s.path, err)
	}
	return apply(robot, powers)
}

// run executes the script. Some runtime faults, such as integer division
// by zero, panic inside the VM instead of returning an error.
func (s *Script) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	return s.compiled.Run()
}

func motorPowers(v *tengo.Variable) (map[int]float64, error) {
	raw := v.Array()
	powers := make(map[int]float64, len(raw))
	for ch, item := range raw {
		switch p := item.(type) {
		case float64:
			powers[ch] = p
		case int64:
			powers[ch] = float64(p)
		case nil:
			continue
		default:
			return nil, fmt.Errorf("motors[%d] is %T, want a number", ch, item)
		}
	}
	return powers, nil
}
