package control

import (
	"errors"
	"math"
	"testing"
)

func TestNewRejectsBadGains(t *testing.T) {
	for _, g := range [][2]float64{{-1, 0}, {0, -0.5}, {math.NaN(), 0}, {1, math.Inf(1)}} {
		if _, err := New(g[0], g[1]); !errors.Is(err, ErrInvalidGain) {
			t.Fatalf("New(%v, %v) error = %v, want %v", g[0], g[1], err, ErrInvalidGain)
		}
	}
}

func TestProportional(t *testing.T) {
	c, err := New(0.01, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		sp, meas, want int32
	}{
		{0, 0, 0},
		{1000, 0, 10},
		{0, 1000, -10},
		{50000, 0, 100},
		{-50000, 0, -100},
		{1000, 960, 0},
	}
	for _, tt := range tests {
		if got := c.Run(tt.sp, tt.meas); got != tt.want {
			t.Fatalf("Run(%d, %d) = %d, want %d", tt.sp, tt.meas, got, tt.want)
		}
		if c.Position() != tt.meas || c.Setpoint() != tt.sp || c.Output() != tt.want {
			t.Fatalf("after Run(%d, %d): position=%d setpoint=%d output=%d",
				tt.sp, tt.meas, c.Position(), c.Setpoint(), c.Output())
		}
	}
}

func TestIntegralRemovesOffset(t *testing.T) {
	c, err := New(0, 0.01)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var out int32
	for i := 0; i < 5; i++ {
		out = c.Run(200, 0)
	}
	if out != 10 {
		t.Fatalf("output after 5 runs = %d, want 10", out)
	}
	c.Reset()
	if got := c.Run(0, 0); got != 0 {
		t.Fatalf("Run() after Reset = %d, want 0", got)
	}
}

func TestIntegralDoesNotWindUp(t *testing.T) {
	c, err := New(0.1, 0.01)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 1000; i++ {
		if got := c.Run(100000, 0); got != 100 {
			t.Fatalf("Run() = %d while saturated, want 100", got)
		}
	}
	// Back at the target the stored integral is still zero.
	if got := c.Run(0, 0); got != 0 {
		t.Fatalf("Run() at target = %d, want 0", got)
	}
}

func TestSetLimit(t *testing.T) {
	c, _ := New(1, 0)
	c.SetLimit(40)
	if got := c.Run(1000, 0); got != 40 {
		t.Fatalf("Run() = %d, want 40", got)
	}
	c.SetLimit(0)
	if got := c.Run(-1000, 0); got != -40 {
		t.Fatalf("Run() = %d, want -40", got)
	}
}
