package app

import (
	"bytes"
	"fmt"

	"twinloop/hal"
)

// lineWriter turns report output into logger lines.
type lineWriter struct {
	l   hal.Logger
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.l.WriteLineBytes(bytes.TrimRight(w.buf[:i], "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.l.WriteLineBytes(w.buf)
		w.buf = nil
	}
}

// writeReport prints the task table, the mailbox table and the first motor
// loop's trace. It goes to the HAL logger only; the console pane is too
// small for it.
func (s *System) writeReport() {
	l := s.h.Logger()
	w := &lineWriter{l: l}
	defer w.flush()

	ticks, idle := s.sched.Counters()
	l.WriteLineString("")
	l.WriteLineString(fmt.Sprintf("stopped after %d ticks (%d idle)", ticks, idle))
	_ = s.sched.WriteReport(w)
	l.WriteLineString("")
	_ = s.boxes.WriteReport(w)
	if t := s.loops[0]; t != nil {
		l.WriteLineString("")
		_ = t.WriteTrace(w)
	}
}
