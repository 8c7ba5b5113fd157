package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"twinloop/capture"
	"twinloop/hal"
	"twinloop/kernel"
)

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *memLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *memLogger) text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type nopLED struct{}

func (nopLED) High() {}
func (nopLED) Low()  {}

type noDisplay struct{}

func (noDisplay) Framebuffer() hal.Framebuffer { return nil }

type serialBuf struct{ bytes.Buffer }

// simHAL runs the firmware against simulated axes on a manual clock.
type simHAL struct {
	clk    *kernel.ManualClock
	log    *memLogger
	serial *serialBuf
	axes   [hal.MotorCount]*hal.SimAxis
}

func newSimHAL() *simHAL {
	h := &simHAL{clk: &kernel.ManualClock{}, log: &memLogger{}, serial: &serialBuf{}}
	for i := range h.axes {
		h.axes[i] = hal.NewSimAxis(h.clk, hal.DefaultMotorModel)
	}
	return h
}

func (h *simHAL) Logger() hal.Logger   { return h.log }
func (h *simHAL) LED() hal.LED         { return nopLED{} }
func (h *simHAL) Display() hal.Display { return noDisplay{} }
func (h *simHAL) Time() hal.Time       { return h.clk }
func (h *simHAL) Serial() hal.Serial   { return h.serial }

func (h *simHAL) Motor(ch int) hal.Motor {
	if ch < 0 || ch >= hal.MotorCount {
		return nil
	}
	return h.axes[ch]
}

func (h *simHAL) Encoder(ch int) hal.Encoder {
	if ch < 0 || ch >= hal.MotorCount {
		return nil
	}
	return h.axes[ch]
}

// runUntil steps the system and jumps the clock to each next due time.
func runUntil(t *testing.T, s *System, clk *kernel.ManualClock, end time.Duration) {
	t.Helper()
	for clk.Now() <= end {
		if err := s.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		next, ok := s.Scheduler().Next()
		if !ok {
			return
		}
		if next <= clk.Now() {
			continue
		}
		clk.Set(next)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Kp = -1 },
		func(c *Config) { c.Capture = 0 },
		func(c *Config) { c.MotorPeriod = 0 },
		func(c *Config) { c.HeartbeatPeriod = -time.Millisecond },
		func(c *Config) { c.TraceLimit = -1 },
		func(c *Config) { c.Travel = 1000 },
	}
	for i, mod := range bad {
		cfg := DefaultConfig()
		mod(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Fatalf("case %d: Validate() = %v, want %v", i, err, ErrConfig)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CapturePeriod = 0
	if _, err := New(newSimHAL(), cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("New() error = %v, want %v", err, ErrConfig)
	}
}

func TestStepResponseScenario(t *testing.T) {
	h := newSimHAL()
	s, err := New(h, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	runUntil(t, s, h.clk, 3100*time.Millisecond)
	s.Stop()

	r := capture.NewReader(strings.NewReader(h.serial.String()))
	var recs []capture.Record
	for r.Next() {
		rec := r.Record()
		rec.Values = append([]int32(nil), rec.Values...)
		recs = append(recs, rec)
	}
	if r.Err() != nil || !r.Done() {
		t.Fatalf("capture stream: err=%v done=%v", r.Err(), r.Done())
	}
	if len(recs) < 295 || len(recs) > 305 {
		t.Fatalf("records = %d, want about 300", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Time-recs[i-1].Time != 10*time.Millisecond {
			t.Fatalf("record %d at %v follows %v, want 10ms spacing", i, recs[i].Time, recs[i-1].Time)
		}
	}

	last := recs[len(recs)-1]
	if last.Time != 3*time.Second || len(last.Values) != hal.MotorCount {
		t.Fatalf("last record = %+v", last)
	}
	for ch, sp := range DefaultConfig().Setpoints {
		if d := last.Values[ch] - sp; d < -150 || d > 150 {
			t.Fatalf("motor%d final position = %d, want within 150 of %d", ch+1, last.Values[ch], sp)
		}
	}

	for _, tk := range s.Scheduler().Tasks() {
		if p, ok := tk.Profile(); !ok || p.Runs == 0 {
			t.Fatalf("task %s: profile=%v runs=%d", tk.Name(), ok, p.Runs)
		}
	}
	if p, _ := s.Scheduler().Tasks()[0].Profile(); p.Runs < 150 || p.Runs > 160 {
		t.Fatalf("motor1 runs = %d, want 156", p.Runs)
	}

	out := h.log.text()
	for _, want := range []string{"capture: done, 301 records", "motor1", "stepresp", "MAILBOX", "m2 position", "motor1 trace"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
	for _, a := range h.axes {
		if a.Duty() != 0 {
			t.Fatal("motor still driven after Stop")
		}
	}
}

func TestMotorFaultIsContained(t *testing.T) {
	h := newSimHAL()
	cfg := DefaultConfig()
	cfg.Travel = 4100
	cfg.Setpoints = [hal.MotorCount]int32{4000, 1000}
	cfg.Ki = 0.05 // overshoots past the travel limit
	s, err := New(h, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	runUntil(t, s, h.clk, 3100*time.Millisecond)

	faults := s.Scheduler().Faults()
	if len(faults) != 1 || faults[0].Task != "motor1" {
		t.Fatalf("Faults() = %v, want one motor1 fault", faults)
	}
	if h.axes[0].Duty() != 0 {
		t.Fatal("faulted motor still driven")
	}
	if got := s.Scheduler().Tasks()[0].Status(h.clk.Now()); got != kernel.StatusFaulted {
		t.Fatalf("motor1 status = %v, want %v", got, kernel.StatusFaulted)
	}
	if !strings.Contains(h.serial.String(), capture.Sentinel) {
		t.Fatal("capture did not finish after a motor fault")
	}
	if !strings.Contains(h.log.text(), "fault: task=motor1") {
		t.Fatalf("fault not logged:\n%s", h.log.text())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newSimHAL()
	s, err := New(h, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
	s.Stop()
	if n := strings.Count(h.log.text(), "stopped after"); n != 1 {
		t.Fatalf("report printed %d times, want 1", n)
	}
}

func TestLineWriter(t *testing.T) {
	l := &memLogger{}
	w := &lineWriter{l: l}
	_, _ = w.Write([]byte("a\r\nb"))
	_, _ = w.Write([]byte("c\nd"))
	w.flush()
	if got, want := strings.Join(l.lines, "|"), "a|bc|d"; got != want {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}
