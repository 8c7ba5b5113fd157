//go:build !tinygo || !baremetal

package kernel

import "sync"

// mutexCritical stands in for interrupt masking where there are no
// interrupts: simulated interrupt sources are goroutines that take the same
// lock.
type mutexCritical struct {
	mu sync.Mutex
}

func (c *mutexCritical) Enter() CriticalState {
	c.mu.Lock()
	return 0
}

func (c *mutexCritical) Exit(CriticalState) {
	c.mu.Unlock()
}

func platformCritical() Critical { return &mutexCritical{} }
