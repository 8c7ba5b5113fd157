// Package stepresp drives a step input on every motor and streams the
// sampled positions as capture records.
package stepresp

import (
	"errors"
	"fmt"
	"io"
	"time"

	"twinloop/capture"
	"twinloop/kernel"
)

const (
	StateStart kernel.State = iota
	StateSample
	StateDone
)

// DefaultDuration matches the host plotter, which stops at 3000 ms.
const DefaultDuration = 3 * time.Second

var ErrConfig = errors.New("stepresp: bad config")

// Axis is one motor as seen by the step-response task.
type Axis struct {
	Setpoint *kernel.Share[int32]
	Position *kernel.Share[int32]
	// Step is the setpoint applied when the capture starts.
	Step int32
}

type Config struct {
	Axes     []Axis
	Out      io.Writer
	Duration time.Duration
	// OnDone, if set, is called once after the done marker is written.
	OnDone func(records int)
}

// Task is a kernel.Stepper.
type Task struct {
	axes     []Axis
	w        *capture.Writer
	duration time.Duration
	onDone   func(int)

	state  kernel.State
	start  time.Duration
	values []int32
}

func New(cfg Config) (*Task, error) {
	if len(cfg.Axes) == 0 || cfg.Out == nil {
		return nil, fmt.Errorf("%w: need at least one axis and an output", ErrConfig)
	}
	for i, a := range cfg.Axes {
		if a.Setpoint == nil || a.Position == nil {
			return nil, fmt.Errorf("%w: axis %d has no shares", ErrConfig, i+1)
		}
	}
	d := cfg.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	return &Task{
		axes:     cfg.Axes,
		w:        capture.NewWriter(cfg.Out),
		duration: d,
		onDone:   cfg.OnDone,
		values:   make([]int32, len(cfg.Axes)),
	}, nil
}

// Step applies the setpoints on the first run, then writes one record per
// run until the capture duration has passed.
func (t *Task) Step(now time.Duration) (kernel.State, error) {
	switch t.state {
	case StateStart:
		for _, a := range t.axes {
			a.Setpoint.Put(a.Step)
		}
		t.start = now
		t.state = StateSample
		fallthrough

	case StateSample:
		elapsed := now - t.start
		for i, a := range t.axes {
			t.values[i] = a.Position.Get()
		}
		if err := t.w.WriteRecord(elapsed, t.values...); err != nil {
			return t.state, err
		}
		if elapsed >= t.duration {
			if err := t.w.Done(); err != nil {
				return t.state, err
			}
			t.state = StateDone
			if t.onDone != nil {
				t.onDone(t.w.Records())
			}
		}

	case StateDone:
	}
	return t.state, nil
}

// Records returns the number of records written so far.
func (t *Task) Records() int { return t.w.Records() }
