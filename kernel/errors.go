package kernel

import "errors"

// Configuration errors. They are returned at setup time and must keep the
// scheduler from starting.
var (
	ErrInvalidCapacity = errors.New("kernel: invalid queue capacity")
	ErrInvalidPeriod   = errors.New("kernel: invalid task period")
	ErrNilStepper      = errors.New("kernel: nil stepper")
	ErrDuplicateTask   = errors.New("kernel: duplicate task name")
	ErrDuplicateShare  = errors.New("kernel: duplicate mailbox name")
	ErrSealed          = errors.New("kernel: scheduler already started")
)

// Mailbox conditions. Both are recoverable and never change queue ordering.
var (
	ErrQueueFull  = errors.New("kernel: queue full")
	ErrQueueEmpty = errors.New("kernel: queue empty")
)
