package kernel

import (
	"fmt"
	"io"
	"time"
)

// TaskInfo is a point-in-time copy of one task's schedule and profile.
type TaskInfo struct {
	Name     string
	Priority int
	Period   time.Duration
	NextRun  time.Duration
	Status   Status
	State    State

	Profiled bool
	Profile  Profile
}

// Snapshot appends a TaskInfo per task to dst and returns it. Passing a
// reused slice keeps periodic callers allocation free.
func (s *Scheduler) Snapshot(dst []TaskInfo) []TaskInfo {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		t.mu.Lock()
		info := TaskInfo{
			Name:     t.name,
			Priority: t.priority,
			Period:   t.period,
			NextRun:  t.next,
			Status:   t.statusLocked(now),
			State:    t.state,
		}
		if t.profile != nil {
			info.Profiled = true
			info.Profile = *t.profile
		}
		t.mu.Unlock()
		dst = append(dst, info)
	}
	return dst
}

// WriteReport prints the task table: schedule metadata plus timing for
// profiled tasks.
func (s *Scheduler) WriteReport(w io.Writer) error {
	infos := s.Snapshot(nil)
	if _, err := fmt.Fprintf(w, "%-16s %4s %7s %8s %9s %9s %9s %9s %s\r\n",
		"TASK", "PRI", "PERIOD", "RUNS", "AVG(us)", "MAX(us)", "LATE(us)", "MAXLATE", "STATUS"); err != nil {
		return err
	}
	for _, in := range infos {
		runs, avg, max, late, maxLate := "-", "-", "-", "-", "-"
		if in.Profiled {
			p := in.Profile
			runs = fmt.Sprint(p.Runs)
			avg = fmt.Sprint(p.Avg().Microseconds())
			max = fmt.Sprint(p.Max.Microseconds())
			late = fmt.Sprint(p.AvgLate().Microseconds())
			maxLate = fmt.Sprint(p.MaxLate.Microseconds())
		}
		if _, err := fmt.Fprintf(w, "%-16s %4d %7s %8s %9s %9s %9s %9s %s\r\n",
			fitName(in.Name, 16), in.Priority, fmtPeriod(in.Period),
			runs, avg, max, late, maxLate, in.Status); err != nil {
			return err
		}
	}
	for _, f := range s.Faults() {
		if _, err := fmt.Fprintf(w, "fault: %s\r\n", f.Error()); err != nil {
			return err
		}
	}
	return nil
}

func fmtPeriod(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d%time.Millisecond == 0 {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}
