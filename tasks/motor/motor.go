// Package motor is the closed-loop task that runs one motor channel.
package motor

import (
	"errors"
	"fmt"
	"time"

	"twinloop/control"
	"twinloop/hal"
	"twinloop/kernel"
)

// States yielded by the task. They appear in its trace.
const (
	StateInit kernel.State = iota
	StateControl
	StateHalted
)

var (
	ErrNoDevice   = errors.New("motor: missing device")
	ErrOverTravel = errors.New("motor: position outside travel limit")
)

// Config wires one motor task to its devices and mailboxes.
type Config struct {
	Channel    int
	Motor      hal.Motor
	Encoder    hal.Encoder
	Controller *control.Controller
	// Setpoint is read every run; Position receives the measured position.
	Setpoint *kernel.Share[int32]
	Position *kernel.Share[int32]
	// Travel is the largest allowed |position| in ticks. Zero disables the check.
	Travel int32
}

// Task runs the position loop for one motor. It implements kernel.Stepper.
type Task struct {
	cfg   Config
	state kernel.State
}

func New(cfg Config) (*Task, error) {
	if cfg.Motor == nil || cfg.Encoder == nil || cfg.Controller == nil {
		return nil, fmt.Errorf("%w: channel %d", ErrNoDevice, cfg.Channel+1)
	}
	if cfg.Setpoint == nil || cfg.Position == nil {
		return nil, fmt.Errorf("%w: channel %d shares", ErrNoDevice, cfg.Channel+1)
	}
	return &Task{cfg: cfg, state: StateInit}, nil
}

// Step runs one phase and returns the state the task will resume in.
func (t *Task) Step(now time.Duration) (kernel.State, error) {
	switch t.state {
	case StateInit:
		t.cfg.Controller.Reset()
		t.cfg.Motor.SetCommand(0)
		t.cfg.Motor.Enable()
		t.state = StateControl

	case StateControl:
		sp := t.cfg.Setpoint.Get()
		pos := t.cfg.Encoder.Read()
		if t.cfg.Travel > 0 && (pos > t.cfg.Travel || pos < -t.cfg.Travel) {
			t.Halt()
			return t.state, fmt.Errorf("%w: channel %d at %d ticks", ErrOverTravel, t.cfg.Channel+1, pos)
		}
		t.cfg.Controller.SetSetpoint(sp)
		t.cfg.Motor.SetCommand(t.cfg.Controller.Run(sp, pos))
		t.cfg.Position.Put(t.cfg.Controller.Position())

	case StateHalted:
	}
	return t.state, nil
}

// Halt stops the motor. The task stays halted for the rest of the run.
func (t *Task) Halt() {
	t.cfg.Motor.SetCommand(0)
	t.cfg.Motor.Disable()
	t.state = StateHalted
}
