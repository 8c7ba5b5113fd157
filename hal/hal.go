package hal

import (
	"context"
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides the timebase: monotonic time since boot. The scheduler
// dispatches on it, so it satisfies kernel.Clock.
type Time interface {
	Now() time.Duration
}

// Serial is the byte stream used for the capture record stream.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Motor drives one actuator. All methods are idempotent.
//
// The command is a signed duty cycle in percent, clamped to [-100, 100].
type Motor interface {
	SetCommand(duty int32)
	Enable()
	Disable()
}

// Encoder reports the latest known position in encoder ticks. Read never
// blocks.
type Encoder interface {
	Read() int32
}

// MotorCount is the number of motor/encoder channels every HAL provides.
const MotorCount = 2

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Time() Time
	Serial() Serial
	// Motor and Encoder return nil for channels outside [0, MotorCount).
	Motor(ch int) Motor
	Encoder(ch int) Encoder
}

// ClampDuty limits a command to the [-100, 100] percent duty range.
func ClampDuty(duty int32) int32 {
	if duty > 100 {
		return 100
	}
	if duty < -100 {
		return -100
	}
	return duty
}

// App is the firmware as driven by a runner. Run blocks until ctx ends;
// Step runs whatever is due and returns, for frame-driven hosts. Stop halts
// the firmware and prints its diagnostics; it is safe to call more than once.
type App interface {
	Run(ctx context.Context) error
	Step() error
	Stop()
}
