package app

import (
	"fmt"
	"strings"

	"twinloop/kernel"
	"twinloop/tasks/monitor"
)

// handleFault runs on the scheduler thread after a task faulted. The task
// is never dispatched again; everything else keeps running.
func (s *System) handleFault(f kernel.Fault) {
	s.log.WriteLineString(fmt.Sprintf("fault: task=%s at=%dms value=%v", f.Task, f.At.Milliseconds(), f.Value))
	for _, line := range strings.Split(string(f.Stack), "\n") {
		if line != "" {
			s.log.WriteLineString(line)
		}
	}

	for ch, t := range s.loops {
		if t != nil && t.Name() == f.Task {
			s.motors[ch].Halt()
			s.log.WriteLineString(fmt.Sprintf("fault: motor%d halted", ch+1))
		}
	}

	switch {
	case s.monitor != nil && f.Task != "monitor":
		s.monitor.ShowFault(f)
	case s.h.Display() != nil:
		monitor.PaintFault(s.h.Display().Framebuffer(), f)
	}
}
