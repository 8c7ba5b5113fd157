package hal

import (
	"testing"
	"time"
)

func TestBootClockMonotonic(t *testing.T) {
	c := newBootClock()
	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()
	if a < 0 || b < a+time.Millisecond {
		t.Fatalf("Now() = %v then %v, want increasing by at least 1ms", a, b)
	}
}
