package hal

import "time"

// bootClock measures time since the HAL was created. time.Since reads the
// monotonic clock on every target, so the scheduler never sees it step back.
type bootClock struct {
	boot time.Time
}

func newBootClock() *bootClock { return &bootClock{boot: time.Now()} }

func (c *bootClock) Now() time.Duration { return time.Since(c.boot) }
