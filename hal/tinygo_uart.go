//go:build tinygo && baremetal

package hal

import (
	"machine"
	"sync"
)

// uartPort is UART0 shared by the logger and the capture stream. A line is
// written whole under the lock, so the host side sees log lines and records
// interleaved but never mixed; the capture reader skips the log lines.
type uartPort struct {
	mu   sync.Mutex
	uart *machine.UART
}

func (p *uartPort) WriteLineString(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < len(s); i++ {
		p.uart.WriteByte(s[i])
	}
	p.uart.WriteByte('\r')
	p.uart.WriteByte('\n')
}

func (p *uartPort) WriteLineBytes(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.uart.Write(b)
	p.uart.WriteByte('\r')
	p.uart.WriteByte('\n')
}

func (p *uartPort) Read(b []byte) (int, error) { return p.uart.Read(b) }

func (p *uartPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uart.Write(b)
}

type pinLED machine.Pin

func (l pinLED) High() { machine.Pin(l).High() }
func (l pinLED) Low()  { machine.Pin(l).Low() }

// noPanel is the display of a board without a screen. Buffer is nil, so
// the monitor stays idle.
type noPanel struct{}

func (noPanel) Framebuffer() Framebuffer { return nil }
