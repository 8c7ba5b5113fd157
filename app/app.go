// Package app assembles the firmware: mailboxes, tasks and the scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"twinloop/control"
	"twinloop/hal"
	"twinloop/internal/buildinfo"
	"twinloop/kernel"
	"twinloop/tasks/heartbeat"
	"twinloop/tasks/monitor"
	"twinloop/tasks/motor"
	"twinloop/tasks/stepresp"
)

// Task priorities. The capture task outranks the loops so its samples keep
// their spacing.
const (
	priorityCapture = 2
	priorityMotor   = 1
	priorityIdle    = 0
)

// maxIdle bounds one idle sleep so cancellation is seen promptly.
const maxIdle = 10 * time.Millisecond

// maxStepsPerFrame bounds Step for frame-driven hosts.
const maxStepsPerFrame = 64

var ErrNoDevice = errors.New("app: missing device")

// System is the assembled firmware. It implements hal.App.
type System struct {
	h   hal.HAL
	cfg Config
	log hal.Logger

	sched *kernel.Scheduler
	boxes kernel.Mailboxes

	setpoints [hal.MotorCount]*kernel.Share[int32]
	positions [hal.MotorCount]*kernel.Share[int32]
	motors    [hal.MotorCount]*motor.Task
	loops     [hal.MotorCount]*kernel.Task
	capture   *stepresp.Task
	monitor   *monitor.Task

	stopOnce sync.Once
}

var _ hal.App = (*System)(nil)

// encoderShare is implemented by encoders whose count lives in a Share.
type encoderShare interface {
	Share() *kernel.Share[int32]
}

// New builds the system. Configuration errors are returned before any task
// runs.
func New(h hal.HAL, cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if h == nil || h.Time() == nil || h.Logger() == nil {
		return nil, fmt.Errorf("%w: hal without time or logger", ErrNoDevice)
	}
	bootStep(h, "assemble")

	s := &System{
		h:     h,
		cfg:   cfg,
		log:   h.Logger(),
		sched: kernel.NewScheduler(h.Time()),
	}

	axes := make([]stepresp.Axis, 0, hal.MotorCount)
	for ch := 0; ch < hal.MotorCount; ch++ {
		s.setpoints[ch] = kernel.NewShare[int32](fmt.Sprintf("m%d setpoint", ch+1), false)
		s.positions[ch] = kernel.NewShare[int32](fmt.Sprintf("m%d position", ch+1), false)
		if err := s.addBoxes(s.setpoints[ch], s.positions[ch]); err != nil {
			return nil, err
		}
		enc := h.Encoder(ch)
		if es, ok := enc.(encoderShare); ok {
			if err := s.addBoxes(es.Share()); err != nil {
				return nil, err
			}
		}

		ctl, err := control.New(cfg.Kp, cfg.Ki)
		if err != nil {
			return nil, err
		}
		m, err := motor.New(motor.Config{
			Channel:    ch,
			Motor:      h.Motor(ch),
			Encoder:    enc,
			Controller: ctl,
			Setpoint:   s.setpoints[ch],
			Position:   s.positions[ch],
			Travel:     cfg.Travel,
		})
		if err != nil {
			return nil, err
		}
		s.motors[ch] = m
		axes = append(axes, stepresp.Axis{
			Setpoint: s.setpoints[ch],
			Position: s.positions[ch],
			Step:     cfg.Setpoints[ch],
		})
	}

	serial := h.Serial()
	if serial == nil {
		return nil, fmt.Errorf("%w: no serial port for the capture stream", ErrNoDevice)
	}
	capture, err := stepresp.New(stepresp.Config{
		Axes:     axes,
		Out:      serial,
		Duration: cfg.Capture,
		OnDone: func(n int) {
			s.log.WriteLineString(fmt.Sprintf("capture: done, %d records", n))
		},
	})
	if err != nil {
		return nil, err
	}
	s.capture = capture

	if cfg.Monitor {
		mon, err := monitor.New(monitor.Config{
			Display:   h.Display(),
			Scheduler: s.sched,
			Positions: s.positions[:],
			Setpoints: s.setpoints[:],
			Title:     "twinloop " + buildinfo.Short(),
		})
		if err != nil {
			return nil, err
		}
		if mon.Active() {
			s.monitor = mon
			s.log = teeLogger{h.Logger(), mon}
		}
	}

	if err := s.register(); err != nil {
		return nil, err
	}
	s.sched.OnFault(s.handleFault)

	bootStep(h, "ready")
	s.log.WriteLineString("twinloop " + buildinfo.String())
	s.log.WriteLineString(fmt.Sprintf("config: setpoints=%v kp=%g ki=%g capture=%v periods=%v/%v profile=%v trace=%v",
		cfg.Setpoints, cfg.Kp, cfg.Ki, cfg.Capture, cfg.MotorPeriod, cfg.CapturePeriod, cfg.Profile, cfg.Trace))
	return s, nil
}

func (s *System) addBoxes(boxes ...kernel.Mailbox) error {
	for _, b := range boxes {
		if err := s.boxes.Add(b); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) register() error {
	add := func(st kernel.Stepper, cfg kernel.TaskConfig) (*kernel.Task, error) {
		cfg.Profile = s.cfg.Profile
		t, err := kernel.NewTask(st, cfg)
		if err != nil {
			return nil, err
		}
		return t, s.sched.Append(t)
	}

	for ch, m := range s.motors {
		t, err := add(m, kernel.TaskConfig{
			Name:       fmt.Sprintf("motor%d", ch+1),
			Priority:   priorityMotor,
			Period:     s.cfg.MotorPeriod,
			Trace:      s.cfg.Trace,
			TraceLimit: s.cfg.TraceLimit,
		})
		if err != nil {
			return err
		}
		s.loops[ch] = t
	}
	if _, err := add(s.capture, kernel.TaskConfig{
		Name:     "stepresp",
		Priority: priorityCapture,
		Period:   s.cfg.CapturePeriod,
	}); err != nil {
		return err
	}
	if s.monitor != nil {
		if _, err := add(s.monitor, kernel.TaskConfig{
			Name:     "monitor",
			Priority: priorityIdle,
			Period:   s.cfg.MonitorPeriod,
		}); err != nil {
			return err
		}
	}
	_, err := add(heartbeat.New(s.h.LED()), kernel.TaskConfig{
		Name:     "heartbeat",
		Priority: priorityIdle,
		Period:   s.cfg.HeartbeatPeriod,
	})
	return err
}

// Scheduler exposes the task registry, for runners and tests.
func (s *System) Scheduler() *kernel.Scheduler { return s.sched }

// Mailboxes lists every share the system created.
func (s *System) Mailboxes() *kernel.Mailboxes { return &s.boxes }

// Run dispatches tasks until ctx ends, then stops the system and prints
// the report. It returns ctx.Err().
func (s *System) Run(ctx context.Context) error {
	err := s.sched.Run(ctx, idle)
	s.Stop()
	return err
}

// Step runs every task that is due now.
func (s *System) Step() error {
	for i := 0; i < maxStepsPerFrame; i++ {
		if s.sched.Tick() == nil {
			break
		}
	}
	return nil
}

// Stop halts the motors and prints the diagnostics report once.
func (s *System) Stop() {
	s.stopOnce.Do(func() {
		for _, m := range s.motors {
			m.Halt()
		}
		s.writeReport()
	})
}

func idle(wait time.Duration) {
	if wait <= 0 {
		runtime.Gosched()
		return
	}
	if wait > maxIdle {
		wait = maxIdle
	}
	time.Sleep(wait)
}

type teeLogger struct {
	a, b hal.Logger
}

func (t teeLogger) WriteLineString(s string) {
	t.a.WriteLineString(s)
	t.b.WriteLineString(s)
}

func (t teeLogger) WriteLineBytes(b []byte) {
	t.a.WriteLineBytes(b)
	t.b.WriteLineBytes(b)
}
