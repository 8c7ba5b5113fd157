package kernel

import (
	"fmt"
	"sync"
	"time"
)

// State is the marker a step returns when it suspends. It identifies the
// phase the task stopped in and is used for tracing only.
type State uint8

// Stepper is one resumable unit of work.
//
// Step advances the work by one logical phase (one control iteration) and
// returns. Local state lives in the implementing value, so nothing is lost
// between calls. A returned error is fatal for the owning Task.
type Stepper interface {
	Step(now time.Duration) (State, error)
}

// StepFunc adapts a function to Stepper.
type StepFunc func(now time.Duration) (State, error)

func (f StepFunc) Step(now time.Duration) (State, error) { return f(now) }

// Status is the scheduling status of a Task at some instant.
type Status uint8

const (
	StatusWaiting Status = iota
	StatusReady
	StatusRunning
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// TaskConfig holds the fixed scheduling parameters of a Task.
type TaskConfig struct {
	Name     string
	Priority int
	// Period is the minimum interval between dispatches. Zero makes the task
	// due on every tick.
	Period time.Duration

	Profile bool
	Trace   bool
	// TraceLimit bounds the trace. Zero means unbounded: the trace then
	// grows with every state change and will eventually exhaust memory.
	TraceLimit int
}

// Task wraps a Stepper with scheduling metadata and diagnostics.
//
// mu guards the fields the dispatcher writes so that reports can be taken
// from outside the scheduler loop. It is never held while the stepper runs.
type Task struct {
	mu sync.Mutex

	name     string
	priority int
	period   time.Duration
	next     time.Duration

	stepper Stepper
	state   State
	running bool
	fault   *Fault

	profile *Profile
	trace   *trace
}

// NewTask validates cfg and returns a Task that is due immediately.
func NewTask(st Stepper, cfg TaskConfig) (*Task, error) {
	if st == nil {
		return nil, fmt.Errorf("kernel: task %q: %w", cfg.Name, ErrNilStepper)
	}
	if cfg.Period < 0 {
		return nil, fmt.Errorf("kernel: task %q period %v: %w", cfg.Name, cfg.Period, ErrInvalidPeriod)
	}
	if cfg.TraceLimit < 0 {
		cfg.TraceLimit = 0
	}
	t := &Task{
		name:     cfg.Name,
		priority: cfg.Priority,
		period:   cfg.Period,
		stepper:  st,
	}
	if cfg.Profile {
		t.profile = &Profile{}
	}
	if cfg.Trace {
		t.trace = newTrace(cfg.TraceLimit)
	}
	return t, nil
}

func (t *Task) Name() string          { return t.name }
func (t *Task) Priority() int         { return t.priority }
func (t *Task) Period() time.Duration { return t.period }

func (t *Task) NextRun() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// State returns the marker of the most recent step.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Fault returns the fault that stopped the task, or nil.
func (t *Task) Fault() *Fault {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fault
}

// Profile returns a copy of the profiling counters. ok is false when
// profiling is off.
func (t *Task) Profile() (p Profile, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return Profile{}, false
	}
	return *t.profile, true
}

// Trace returns a copy of the recorded state changes and the number dropped
// over the limit. ok is false when tracing is off.
func (t *Task) Trace() (entries []TraceEntry, dropped uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trace == nil {
		return nil, 0, false
	}
	return append([]TraceEntry(nil), t.trace.entries...), t.trace.dropped, true
}

// IsDue reports whether the task may be dispatched at now.
func (t *Task) IsDue(now time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dueLocked(now)
}

func (t *Task) dueLocked(now time.Duration) bool {
	return t.fault == nil && now >= t.next
}

// Status derives the scheduling status at now.
func (t *Task) Status(now time.Duration) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(now)
}

func (t *Task) statusLocked(now time.Duration) Status {
	switch {
	case t.fault != nil:
		return StatusFaulted
	case t.running:
		return StatusRunning
	case t.dueLocked(now):
		return StatusReady
	default:
		return StatusWaiting
	}
}

// Step resumes the stepper once. Errors and panics leave the task faulted;
// the returned error is then a *Fault.
func (t *Task) Step(now time.Duration) (State, error) {
	t.mu.Lock()
	if t.fault != nil {
		st, f := t.state, t.fault
		t.mu.Unlock()
		return st, f
	}
	t.running = true
	t.mu.Unlock()

	st, fault := t.resume(now)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if fault != nil {
		t.fault = fault
		return t.state, fault
	}
	t.state = st
	if t.trace != nil {
		t.trace.record(now, st)
	}
	return st, nil
}

func (t *Task) resume(now time.Duration) (st State, fault *Fault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &Fault{Task: t.name, At: now, Value: r, Stack: captureStack()}
		}
	}()
	st, err := t.stepper.Step(now)
	if err != nil {
		return st, &Fault{Task: t.name, At: now, Value: err}
	}
	return st, nil
}

// MarkRun schedules the next dispatch one period after now and, with
// profiling on, records how long the step took and how late it started.
func (t *Task) MarkRun(now, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	late := now - t.next
	if late < 0 {
		late = 0
	}
	t.next = now + t.period
	if t.profile != nil {
		t.profile.record(elapsed, late)
	}
}
