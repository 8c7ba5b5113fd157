package kernel

import (
	"fmt"
	"io"
	"time"
)

// TraceEntry is one state change of a task.
type TraceEntry struct {
	At    time.Duration
	State State
}

// trace is an append-only history of state changes.
//
// Only changes are recorded: a task that keeps returning the same State adds
// a single entry. With a limit the buffer is allocated up front and later
// changes are counted in Dropped; without one it grows for as long as tracing
// stays on.
type trace struct {
	entries []TraceEntry
	limit   int
	dropped uint64
	last    State
	started bool
}

func newTrace(limit int) *trace {
	tr := &trace{limit: limit}
	if limit > 0 {
		tr.entries = make([]TraceEntry, 0, limit)
	}
	return tr
}

func (tr *trace) record(at time.Duration, st State) {
	if tr.started && st == tr.last {
		return
	}
	tr.started = true
	tr.last = st
	if tr.limit > 0 && len(tr.entries) >= tr.limit {
		tr.dropped++
		return
	}
	tr.entries = append(tr.entries, TraceEntry{At: at, State: st})
}

// WriteTrace prints the trace of t, one "time: state" line per change.
func (t *Task) WriteTrace(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trace == nil {
		_, err := fmt.Fprintf(w, "%s: tracing off\r\n", t.name)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s trace (%d entries, %d dropped):\r\n",
		t.name, len(t.trace.entries), t.trace.dropped); err != nil {
		return err
	}
	for _, e := range t.trace.entries {
		if _, err := fmt.Fprintf(w, "%10d: %d\r\n", e.At.Milliseconds(), e.State); err != nil {
			return err
		}
	}
	return nil
}
