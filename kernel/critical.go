package kernel

// CriticalState is the interrupt state saved by Critical.Enter.
type CriticalState uintptr

// Critical is a scoped critical section between the cooperative loop and
// interrupt context.
//
// Enter masks whatever can interrupt the caller and returns the previous
// state; Exit restores it. Sections must be short and must not nest on the
// host implementation.
type Critical interface {
	Enter() CriticalState
	Exit(CriticalState)
}

// Interrupts is the platform critical section used by protected mailboxes
// unless one is supplied with WithCritical.
var Interrupts Critical = platformCritical()
