package kernel

import "fmt"

// Queue is a bounded FIFO mailbox.
//
// The overflow policy is fixed at construction. With Reject a full queue
// refuses new elements; with DropOldest the head is evicted. In both cases
// the same sequence of operations always leaves the same contents.
type Queue[T Scalar] struct {
	name    string
	protect bool
	cs      Critical
	policy  OverflowPolicy

	buf     []T
	head    int
	n       int
	maxFull int
	dropped uint32
}

// NewQueue allocates a queue holding up to capacity elements.
func NewQueue[T Scalar](name string, capacity int, protect bool, opts ...Option) (*Queue[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("kernel: queue %q capacity %d: %w", name, capacity, ErrInvalidCapacity)
	}
	o := buildOptions(opts)
	return &Queue[T]{
		name:    name,
		protect: protect,
		cs:      o.cs,
		policy:  o.policy,
		buf:     make([]T, capacity),
	}, nil
}

func (q *Queue[T]) lock() CriticalState {
	if !q.protect {
		return 0
	}
	return q.cs.Enter()
}

func (q *Queue[T]) unlock(st CriticalState) {
	if q.protect {
		q.cs.Exit(st)
	}
}

// Put appends v at the tail.
func (q *Queue[T]) Put(v T) error {
	st := q.lock()
	defer q.unlock(st)

	if q.n == len(q.buf) {
		if q.policy != DropOldest {
			return ErrQueueFull
		}
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		q.dropped++
	}
	q.buf[(q.head+q.n)%len(q.buf)] = v
	q.n++
	if q.n > q.maxFull {
		q.maxFull = q.n
	}
	return nil
}

// Get removes and returns the head element. It returns ErrQueueEmpty rather
// than a zero value when nothing is queued.
func (q *Queue[T]) Get() (T, error) {
	st := q.lock()
	defer q.unlock(st)

	if q.n == 0 {
		var zero T
		return zero, ErrQueueEmpty
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return v, nil
}

// Any reports whether at least one element is queued.
func (q *Queue[T]) Any() bool { return q.Len() > 0 }

// Full reports whether the next Put would hit the overflow policy.
func (q *Queue[T]) Full() bool { return q.Len() == len(q.buf) }

func (q *Queue[T]) Len() int {
	st := q.lock()
	n := q.n
	q.unlock(st)
	return n
}

func (q *Queue[T]) Cap() int { return len(q.buf) }

// Clear drops every queued element. The high-water mark is kept.
func (q *Queue[T]) Clear() {
	st := q.lock()
	q.head = 0
	q.n = 0
	q.unlock(st)
}

// MaxFull is the largest occupancy seen since construction.
func (q *Queue[T]) MaxFull() int {
	st := q.lock()
	n := q.maxFull
	q.unlock(st)
	return n
}

// Dropped counts elements evicted by DropOldest.
func (q *Queue[T]) Dropped() uint32 {
	st := q.lock()
	n := q.dropped
	q.unlock(st)
	return n
}

func (q *Queue[T]) Policy() OverflowPolicy { return q.policy }

func (q *Queue[T]) Name() string     { return q.name }
func (q *Queue[T]) Kind() string     { return "queue" }
func (q *Queue[T]) TypeName() string { return typeName[T]() }
func (q *Queue[T]) Protected() bool  { return q.protect }

func (q *Queue[T]) Summary() string {
	st := q.cs.Enter()
	n, max, dropped := q.n, q.maxFull, q.dropped
	q.cs.Exit(st)
	return fmt.Sprintf("%d/%d (max=%d dropped=%d %s)", n, len(q.buf), max, dropped, q.policy)
}
