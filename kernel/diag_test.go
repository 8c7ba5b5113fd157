package kernel

import (
	"strings"
	"testing"
	"time"
)

// busy advances the clock inside the step to simulate work.
type busy struct {
	clk  *ManualClock
	cost time.Duration
	runs int
}

func (b *busy) Step(time.Duration) (State, error) {
	b.runs++
	b.clk.Advance(b.cost)
	return State(b.runs % 2), nil
}

func TestProfileHundredRuns(t *testing.T) {
	clk := &ManualClock{}
	s := NewScheduler(clk)
	b := &busy{clk: clk, cost: 300 * time.Microsecond}
	task := mustTask(t, b, TaskConfig{Name: "prof", Priority: 1, Period: time.Millisecond, Profile: true})
	mustAppend(t, s, task)

	for b.runs < 100 {
		if s.Tick() != nil {
			continue
		}
		next, _ := s.Next()
		clk.Set(next)
	}

	p, ok := task.Profile()
	if !ok {
		t.Fatal("Profile() ok = false with profiling on")
	}
	if p.Runs != 100 {
		t.Fatalf("Runs = %d, want 100", p.Runs)
	}
	if p.Total != 100*300*time.Microsecond {
		t.Fatalf("Total = %v, want 30ms", p.Total)
	}
	if p.Avg() != 300*time.Microsecond || p.Max != 300*time.Microsecond || p.Last != 300*time.Microsecond {
		t.Fatalf("Avg/Max/Last = %v/%v/%v, want 300µs", p.Avg(), p.Max, p.Last)
	}
	if p.Total < p.Max || p.TotalLate < 0 {
		t.Fatalf("inconsistent profile %+v", p)
	}
}

func TestProfileLateness(t *testing.T) {
	clk := &ManualClock{}
	s := NewScheduler(clk)
	task := mustTask(t, &counter{}, TaskConfig{Name: "late", Period: 10 * time.Millisecond, Profile: true})
	mustAppend(t, s, task)

	s.Tick()
	clk.Set(14 * time.Millisecond)
	s.Tick()

	p, _ := task.Profile()
	if p.MaxLate != 4*time.Millisecond {
		t.Fatalf("MaxLate = %v, want 4ms", p.MaxLate)
	}
	if got := task.NextRun(); got != 24*time.Millisecond {
		t.Fatalf("NextRun() = %v, want 24ms", got)
	}
}

func TestProfileOff(t *testing.T) {
	task := mustTask(t, &counter{}, TaskConfig{Name: "quiet"})
	if _, ok := task.Profile(); ok {
		t.Fatal("Profile() ok = true with profiling off")
	}
	if _, _, ok := task.Trace(); ok {
		t.Fatal("Trace() ok = true with tracing off")
	}
}

func TestTraceRecordsChangesOnly(t *testing.T) {
	clk := &ManualClock{}
	s := NewScheduler(clk)
	states := []State{0, 0, 1, 1, 1, 2, 0}
	i := 0
	task := mustTask(t, StepFunc(func(time.Duration) (State, error) {
		st := states[i]
		i++
		return st, nil
	}), TaskConfig{Name: "tr", Trace: true, Period: time.Millisecond})
	mustAppend(t, s, task)

	for range states {
		s.Tick()
		clk.Advance(time.Millisecond)
	}

	entries, dropped, ok := task.Trace()
	if !ok {
		t.Fatal("Trace() ok = false")
	}
	want := []TraceEntry{
		{At: 0, State: 0},
		{At: 2 * time.Millisecond, State: 1},
		{At: 5 * time.Millisecond, State: 2},
		{At: 6 * time.Millisecond, State: 0},
	}
	if len(entries) != len(want) || dropped != 0 {
		t.Fatalf("entries = %v (dropped %d), want %v", entries, dropped, want)
	}
	for k := range want {
		if entries[k] != want[k] {
			t.Fatalf("entry %d = %+v, want %+v", k, entries[k], want[k])
		}
	}
}

func TestTraceLimit(t *testing.T) {
	clk := &ManualClock{}
	s := NewScheduler(clk)
	b := &busy{clk: clk}
	task := mustTask(t, b, TaskConfig{Name: "tr", Trace: true, TraceLimit: 5})
	mustAppend(t, s, task)

	for i := 0; i < 12; i++ {
		s.Tick()
		clk.Advance(time.Millisecond)
	}
	entries, dropped, _ := task.Trace()
	if len(entries) != 5 || dropped != 7 {
		t.Fatalf("len = %d dropped = %d, want 5 and 7", len(entries), dropped)
	}
	if entries[0].At != 0 || entries[4].At != 4*time.Millisecond {
		t.Fatalf("trace kept %v, want the first five changes", entries)
	}

	var sb strings.Builder
	if err := task.WriteTrace(&sb); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}
	if !strings.Contains(sb.String(), "5 entries, 7 dropped") {
		t.Fatalf("WriteTrace() = %q", sb.String())
	}
}

func TestSchedulerReport(t *testing.T) {
	clk := &ManualClock{}
	s := NewScheduler(clk)
	mustAppend(t, s,
		mustTask(t, &counter{}, TaskConfig{Name: "Task_1", Priority: 1, Period: 20 * time.Millisecond, Profile: true}),
		mustTask(t, &counter{}, TaskConfig{Name: "Task_3", Priority: 2, Period: 10 * time.Millisecond}),
	)
	s.Tick()
	s.Tick()

	var sb strings.Builder
	if err := s.WriteReport(&sb); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("report has %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "TASK") {
		t.Fatalf("header = %q", lines[0])
	}
	if f := strings.Fields(lines[1]); f[0] != "Task_1" || f[1] != "1" || f[2] != "20ms" || f[3] != "1" {
		t.Fatalf("row = %q", lines[1])
	}
	if f := strings.Fields(lines[2]); f[0] != "Task_3" || f[3] != "-" || f[len(f)-1] != "waiting" {
		t.Fatalf("row = %q", lines[2])
	}
}
