package hal

import (
	"math"
	"sync"
	"time"

	"twinloop/kernel"
)

// MotorModel describes a first-order DC motor: speed follows duty with the
// given time constant and saturates at TicksPerSecond for 100% duty.
type MotorModel struct {
	TicksPerSecond float64
	TimeConstant   time.Duration
}

// DefaultMotorModel roughly matches a small geared motor with a
// 16 CPR encoder on the motor shaft.
var DefaultMotorModel = MotorModel{
	TicksPerSecond: 8000,
	TimeConstant:   60 * time.Millisecond,
}

const simStep = time.Millisecond

// SimAxis is a simulated motor plus ideal encoder, integrated lazily up to
// the clock's current time. It implements Motor and Encoder.
type SimAxis struct {
	mu    sync.Mutex
	clock kernel.Clock
	model MotorModel

	enabled bool
	duty    int32
	vel     float64
	pos     float64
	last    time.Duration
}

// NewSimAxis returns a disabled axis at position zero.
func NewSimAxis(clock kernel.Clock, model MotorModel) *SimAxis {
	if model.TimeConstant <= 0 {
		model.TimeConstant = DefaultMotorModel.TimeConstant
	}
	return &SimAxis{clock: clock, model: model, last: clock.Now()}
}

func (a *SimAxis) SetCommand(duty int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanceLocked()
	a.duty = ClampDuty(duty)
}

func (a *SimAxis) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanceLocked()
	a.enabled = true
}

func (a *SimAxis) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanceLocked()
	a.enabled = false
}

// Read returns the encoder position in ticks.
func (a *SimAxis) Read() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advanceLocked()
	return int32(math.Round(a.pos))
}

// Duty returns the applied command, zero while disabled.
func (a *SimAxis) Duty() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return 0
	}
	return a.duty
}

func (a *SimAxis) advanceLocked() {
	now := a.clock.Now()
	if now <= a.last {
		return
	}
	target := 0.0
	if a.enabled {
		target = float64(a.duty) / 100 * a.model.TicksPerSecond
	}
	tau := a.model.TimeConstant.Seconds()
	for a.last < now {
		dt := simStep
		if rem := now - a.last; rem < dt {
			dt = rem
		}
		s := dt.Seconds()
		a.vel += (target - a.vel) * math.Min(s/tau, 1)
		a.pos += a.vel * s
		a.last += dt
	}
}
