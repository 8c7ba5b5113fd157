// Package heartbeat blinks the status LED while the scheduler is alive.
package heartbeat

import (
	"time"

	"twinloop/hal"
	"twinloop/kernel"
)

const (
	StateOff kernel.State = iota
	StateOn
)

// DefaultPeriod toggles the LED twice a second.
const DefaultPeriod = 250 * time.Millisecond

// Task toggles an LED each run. A nil LED makes it a no-op.
type Task struct {
	led hal.LED
	on  bool
}

func New(led hal.LED) *Task { return &Task{led: led} }

func (t *Task) Step(time.Duration) (kernel.State, error) {
	t.on = !t.on
	if t.led != nil {
		if t.on {
			t.led.High()
		} else {
			t.led.Low()
		}
	}
	if t.on {
		return StateOn, nil
	}
	return StateOff, nil
}
