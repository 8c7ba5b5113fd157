package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Scheduler is the task registry and its cooperative dispatcher.
//
// Tasks are appended during setup; the first Tick seals the registry. Each
// Tick dispatches at most one step of the highest-priority due task, taking
// equal-priority tasks in round-robin order. There is no preemption: a step
// always runs to its own suspension point.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	tasks   []*Task
	names   map[string]struct{}
	cursors map[int]int
	sealed  bool

	ticks     uint64
	idleTicks uint64

	faults  []Fault
	onFault func(Fault)
}

// NewScheduler returns an empty scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:   clock,
		names:   make(map[string]struct{}),
		cursors: make(map[int]int),
	}
}

// OnFault installs a handler called once per faulted task, from the
// scheduler loop. It must not call back into Tick.
func (s *Scheduler) OnFault(fn func(Fault)) {
	s.mu.Lock()
	s.onFault = fn
	s.mu.Unlock()
}

// Append registers t. It fails once the scheduler has started or when the
// name is already taken.
func (s *Scheduler) Append(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == nil {
		return fmt.Errorf("kernel: append: %w", ErrNilStepper)
	}
	if s.sealed {
		return fmt.Errorf("kernel: append %q: %w", t.name, ErrSealed)
	}
	if _, ok := s.names[t.name]; ok {
		return fmt.Errorf("kernel: append %q: %w", t.name, ErrDuplicateTask)
	}
	s.names[t.name] = struct{}{}
	s.tasks = append(s.tasks, t)
	if _, ok := s.cursors[t.priority]; !ok {
		s.cursors[t.priority] = -1
	}
	return nil
}

// Tasks returns the registry in insertion order.
func (s *Scheduler) Tasks() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Task(nil), s.tasks...)
}

// Clock returns the time source used for dispatch.
func (s *Scheduler) Clock() Clock { return s.clock }

// Tick runs one dispatch decision and returns the task that ran, or nil when
// nothing was due.
func (s *Scheduler) Tick() *Task {
	now := s.clock.Now()

	s.mu.Lock()
	s.sealed = true
	s.ticks++
	t := s.pickLocked(now)
	if t == nil {
		s.idleTicks++
	}
	s.mu.Unlock()
	if t == nil {
		return nil
	}

	_, err := t.Step(now)
	elapsed := s.clock.Now() - now

	s.mu.Lock()
	t.MarkRun(now, elapsed)
	var handler func(Fault)
	var fault Fault
	if err != nil {
		if f, ok := AsFault(err); ok {
			fault = *f
			s.faults = append(s.faults, fault)
			handler = s.onFault
		}
	}
	s.mu.Unlock()

	if handler != nil {
		handler(fault)
	}
	return t
}

func (s *Scheduler) pickLocked(now time.Duration) *Task {
	n := len(s.tasks)
	top, found := 0, false
	for _, t := range s.tasks {
		if !t.IsDue(now) {
			continue
		}
		if !found || t.priority > top {
			top, found = t.priority, true
		}
	}
	if !found {
		return nil
	}

	start := s.cursors[top] + 1
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		t := s.tasks[idx]
		if t.priority == top && t.IsDue(now) {
			s.cursors[top] = idx
			return t
		}
	}
	return nil
}

// Next returns the earliest due time among tasks that can still run.
func (s *Scheduler) Next() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Duration
	found := false
	for _, t := range s.tasks {
		t.mu.Lock()
		faulted, due := t.fault != nil, t.next
		t.mu.Unlock()
		if faulted {
			continue
		}
		if !found || due < next {
			next, found = due, true
		}
	}
	return next, found
}

// Run dispatches until ctx is cancelled and returns ctx.Err(). Cancellation
// is seen between steps only. When a tick finds nothing due, idle is called
// with the time left until the next task becomes due (zero if unknown).
func (s *Scheduler) Run(ctx context.Context, idle func(wait time.Duration)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if s.Tick() != nil || idle == nil {
			continue
		}
		var wait time.Duration
		if next, ok := s.Next(); ok {
			if d := next - s.clock.Now(); d > 0 {
				wait = d
			}
		}
		idle(wait)
	}
}

// Faults returns a copy of every fault seen so far.
func (s *Scheduler) Faults() []Fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Fault(nil), s.faults...)
}

// Counters returns the number of ticks and how many of them were idle.
func (s *Scheduler) Counters() (ticks, idle uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks, s.idleTicks
}
