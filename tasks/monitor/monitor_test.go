package monitor

import (
	"errors"
	"testing"
	"time"

	"twinloop/hal"
	"twinloop/kernel"
)

type noDisplay struct{}

func (noDisplay) Framebuffer() hal.Framebuffer { return nil }

func newScheduler(t *testing.T) (*kernel.Scheduler, *kernel.ManualClock) {
	t.Helper()
	clk := &kernel.ManualClock{}
	s := kernel.NewScheduler(clk)
	nop := kernel.StepFunc(func(time.Duration) (kernel.State, error) { return 0, nil })
	for _, name := range []string{"motor1", "motor2"} {
		task, err := kernel.NewTask(nop, kernel.TaskConfig{Name: name, Priority: 1, Period: 20 * time.Millisecond, Profile: true})
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if err := s.Append(task); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return s, clk
}

func axisShares() (pos, sp []*kernel.Share[int32]) {
	for _, n := range []string{"m1", "m2"} {
		pos = append(pos, kernel.NewShare[int32](n+" position", false))
		sp = append(sp, kernel.NewShare[int32](n+" setpoint", false))
	}
	return pos, sp
}

func anyLit(fb *memFB, y0, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := 0; x < fb.w; x++ {
			if fb.pixel(x, y) != 0 {
				return true
			}
		}
	}
	return false
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("New() error = %v, want %v", err, ErrConfig)
	}
	s, _ := newScheduler(t)
	pos, _ := axisShares()
	if _, err := New(Config{Scheduler: s, Positions: pos}); !errors.Is(err, ErrConfig) {
		t.Fatalf("New() error = %v, want %v", err, ErrConfig)
	}
}

func TestHeadlessIsIdle(t *testing.T) {
	s, _ := newScheduler(t)
	m, err := New(Config{Display: noDisplay{}, Scheduler: s})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.Active() {
		t.Fatal("Active() = true without a framebuffer")
	}
	m.WriteLineString("dropped")
	if st, err := m.Step(0); st != StateIdle || err != nil {
		t.Fatalf("Step() = %d, %v; want %d, nil", st, err, StateIdle)
	}
}

func TestStepDrawsFrame(t *testing.T) {
	s, _ := newScheduler(t)
	pos, sp := axisShares()
	fb := newMemFB(320, 240)
	m, err := New(Config{Display: fb, Scheduler: s, Positions: pos, Setpoints: sp})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !m.Active() {
		t.Fatal("Active() = false with a framebuffer")
	}

	sp[0].Put(4000)
	for i := 0; i < 10; i++ {
		pos[0].Put(int32(i * 400))
		if st, err := m.Step(time.Duration(i) * DefaultPeriod); st != StateDraw || err != nil {
			t.Fatalf("Step() = %d, %v; want %d, nil", st, err, StateDraw)
		}
	}
	if fb.presents != 10 || m.Frames() != 10 {
		t.Fatalf("presents = %d frames = %d, want 10", fb.presents, m.Frames())
	}
	if !anyLit(fb, 0, int(m.headerH)) {
		t.Fatal("header not drawn")
	}
	if !anyLit(fb, int(m.plotY), int(m.plotY+m.plotH)) {
		t.Fatal("plot not drawn")
	}

	paneY := int(m.pane.y)
	if anyLit(fb, paneY, fb.h) {
		t.Fatal("console drawn before any log line")
	}
	m.WriteLineString("motor1: enabled")
	_, _ = m.Step(time.Second)
	if !anyLit(fb, paneY, fb.h) {
		t.Fatal("console line not drawn")
	}
}

func TestConsoleKeepsNewestLineAtBottom(t *testing.T) {
	s, _ := newScheduler(t)
	fb := newMemFB(320, 240)
	m, _ := New(Config{Display: fb, Scheduler: s})
	_, _ = m.Step(0)

	fh := int(m.fontHeight)
	paneY := int(m.pane.y)
	rows := int(m.pane.h) / fh
	if rows != consoleRows {
		t.Fatalf("console rows = %d, want %d", rows, consoleRows)
	}

	for i := 0; i < consoleRows+6; i++ {
		m.WriteLineString("")
	}
	m.WriteLineString("--------")
	_, _ = m.Step(time.Second)

	for r := 0; r < rows; r++ {
		lit := anyLit(fb, paneY+r*fh, paneY+(r+1)*fh)
		if want := r == rows-1; lit != want {
			t.Fatalf("console row %d lit = %v, want %v", r, lit, want)
		}
	}

	// One more line pushes the previous one up a row.
	m.WriteLineString("--------")
	_, _ = m.Step(2 * time.Second)
	for r := 0; r < rows; r++ {
		lit := anyLit(fb, paneY+r*fh, paneY+(r+1)*fh)
		if want := r >= rows-2; lit != want {
			t.Fatalf("after scroll, console row %d lit = %v, want %v", r, lit, want)
		}
	}
}

func TestShowFaultBanner(t *testing.T) {
	s, _ := newScheduler(t)
	fb := newMemFB(320, 240)
	m, _ := New(Config{Display: fb, Scheduler: s})

	m.ShowFault(kernel.Fault{Task: "motor2", Value: errors.New("over travel")})
	_, _ = m.Step(0)

	want := hal.RGB565(colorFaultBG.R, colorFaultBG.G, colorFaultBG.B)
	if got := fb.pixel(fb.w-1, 1); got != want {
		t.Fatalf("header pixel = %#04x, want fault color %#04x", got, want)
	}
}

func TestPaintFault(t *testing.T) {
	fb := newMemFB(160, 80)
	PaintFault(fb, kernel.Fault{Task: "monitor", At: 1500 * time.Millisecond, Value: "boom", Stack: []byte("a\nb\n")})
	if fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", fb.presents)
	}
	if fb.pixel(fb.w-1, fb.h-1) != 0xffff {
		t.Fatal("background not cleared to white")
	}
	PaintFault(nil, kernel.Fault{})
}
