package app

import (
	"errors"
	"fmt"
	"time"

	"twinloop/hal"
)

var ErrConfig = errors.New("app: invalid config")

// Config selects the step-response experiment and the diagnostics the
// scheduler collects while it runs.
type Config struct {
	// Setpoints are the step targets in encoder ticks, one per motor.
	Setpoints [hal.MotorCount]int32
	Kp, Ki    float64
	// Travel is the largest allowed |position| before a motor task faults.
	// Zero disables the check.
	Travel int32
	// Capture is how long the step response is recorded.
	Capture time.Duration

	MotorPeriod     time.Duration
	CapturePeriod   time.Duration
	MonitorPeriod   time.Duration
	HeartbeatPeriod time.Duration

	Profile    bool
	Trace      bool
	TraceLimit int
	// Monitor draws the diagnostics view when the HAL has a display.
	Monitor bool
}

func DefaultConfig() Config {
	return Config{
		Setpoints:       [hal.MotorCount]int32{4000, -4000},
		Kp:              0.1,
		Ki:              0.002,
		Travel:          50000,
		Capture:         3 * time.Second,
		MotorPeriod:     20 * time.Millisecond,
		CapturePeriod:   10 * time.Millisecond,
		MonitorPeriod:   50 * time.Millisecond,
		HeartbeatPeriod: 250 * time.Millisecond,
		Profile:         true,
		Trace:           true,
		TraceLimit:      256,
		Monitor:         true,
	}
}

// Validate rejects configurations the scheduler cannot run sensibly.
func (c Config) Validate() error {
	if c.Kp < 0 || c.Ki < 0 {
		return fmt.Errorf("%w: negative gain kp=%g ki=%g", ErrConfig, c.Kp, c.Ki)
	}
	if c.Capture <= 0 {
		return fmt.Errorf("%w: capture duration %v", ErrConfig, c.Capture)
	}
	periods := []struct {
		name string
		d    time.Duration
	}{
		{"motor", c.MotorPeriod},
		{"capture", c.CapturePeriod},
		{"monitor", c.MonitorPeriod},
		{"heartbeat", c.HeartbeatPeriod},
	}
	for _, p := range periods {
		if p.d <= 0 {
			return fmt.Errorf("%w: %s period %v", ErrConfig, p.name, p.d)
		}
	}
	if c.TraceLimit < 0 {
		return fmt.Errorf("%w: trace limit %d", ErrConfig, c.TraceLimit)
	}
	if c.Travel < 0 {
		return fmt.Errorf("%w: travel %d", ErrConfig, c.Travel)
	}
	if c.Travel > 0 {
		for i, sp := range c.Setpoints {
			if sp > c.Travel || sp < -c.Travel {
				return fmt.Errorf("%w: setpoint %d (%d) beyond travel %d", ErrConfig, i+1, sp, c.Travel)
			}
		}
	}
	return nil
}
