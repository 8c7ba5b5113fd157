package kernel

import (
	"errors"
	"fmt"
	"time"
)

// Fault describes a task that stopped because its step returned an error or
// panicked. Faulted tasks are never dispatched again.
type Fault struct {
	Task  string
	At    time.Duration
	Value any
	// Stack is captured for panics on targets that support it.
	Stack []byte
}

func (f *Fault) Error() string {
	return fmt.Sprintf("kernel: task %q faulted at %dms: %v", f.Task, f.At.Milliseconds(), f.Value)
}

// Unwrap exposes a step error so callers can match it with errors.Is.
func (f *Fault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

// AsFault extracts a *Fault from err.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
