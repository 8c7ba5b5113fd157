//go:build tinygo && bootdebug

package app

import (
	"machine"
	"sync"
	"time"

	"twinloop/hal"
)

var (
	bootDiagMu   sync.Mutex
	bootDiagStep string
	bootDiagOnce sync.Once
)

// bootStep records the current assembly step. The first call starts a
// goroutine that repeats it on the logger and USB CDC, so a board that hangs
// during assembly still says where.
func bootStep(h hal.HAL, msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()
	if h == nil {
		return
	}
	bootDiagOnce.Do(func() { go bootDiagLoop(h.Logger()) })
}

func bootDiagLoop(l hal.Logger) {
	for {
		bootDiagMu.Lock()
		step := bootDiagStep
		bootDiagMu.Unlock()

		line := "bootdiag: " + step
		if l != nil {
			l.WriteLineString(line)
		}
		if usb := machine.USBCDC; usb != nil {
			_, _ = usb.Write([]byte(line + "\r\n"))
		}
		if step == "ready" {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
}
