// Package control implements the position loop run by each motor task.
package control

import (
	"errors"
	"fmt"
	"math"
)

// DefaultLimit is the output saturation in percent duty.
const DefaultLimit = 100

var ErrInvalidGain = errors.New("control: invalid gain")

// Controller is a proportional-integral position controller. It turns a
// setpoint and a measured encoder position into a signed duty command.
//
// The integral term only accumulates while the output is not saturated, so
// a long move does not wind it up.
type Controller struct {
	kp, ki float64
	limit  int32

	setpoint int32
	position int32
	integral float64
	output   int32
}

// New returns a controller with the given gains and the default output limit.
func New(kp, ki float64) (*Controller, error) {
	if kp < 0 || ki < 0 || math.IsNaN(kp) || math.IsNaN(ki) || math.IsInf(kp, 0) || math.IsInf(ki, 0) {
		return nil, fmt.Errorf("%w: kp=%g ki=%g", ErrInvalidGain, kp, ki)
	}
	return &Controller{kp: kp, ki: ki, limit: DefaultLimit}, nil
}

// SetLimit changes the output saturation. Values below 1 are ignored.
func (c *Controller) SetLimit(limit int32) {
	if limit > 0 {
		c.limit = limit
	}
}

// SetSetpoint stores the target used by the next Run.
func (c *Controller) SetSetpoint(sp int32) { c.setpoint = sp }

func (c *Controller) Setpoint() int32 { return c.setpoint }

// Position is the measurement seen by the last Run.
func (c *Controller) Position() int32 { return c.position }

// Output is the command returned by the last Run.
func (c *Controller) Output() int32 { return c.output }

// Reset clears the integral and the last output.
func (c *Controller) Reset() {
	c.integral = 0
	c.output = 0
}

// Run computes one control update and returns the duty command, clamped
// to the output limit.
func (c *Controller) Run(setpoint, measurement int32) int32 {
	c.setpoint = setpoint
	c.position = measurement

	e := float64(setpoint) - float64(measurement)
	integral := c.integral + c.ki*e
	u := c.kp*e + integral

	lim := float64(c.limit)
	switch {
	case u > lim:
		u = lim
	case u < -lim:
		u = -lim
	default:
		c.integral = integral
	}
	c.output = int32(math.Round(u))
	return c.output
}
