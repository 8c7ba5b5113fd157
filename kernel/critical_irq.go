//go:build tinygo && baremetal

package kernel

import "runtime/interrupt"

type irqCritical struct{}

func (irqCritical) Enter() CriticalState {
	return CriticalState(interrupt.Disable())
}

func (irqCritical) Exit(st CriticalState) {
	interrupt.Restore(interrupt.State(st))
}

func platformCritical() Critical { return irqCritical{} }
