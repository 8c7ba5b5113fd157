//go:build tinygo && !baremetal

package hal

import "os"

// tinyGoHostHAL serves `tinygo run` on linux or wasm, where there is no pin
// mapping. Both axes are simulated and read directly: there is no interrupt
// source to publish encoder counts.
type tinyGoHostHAL struct {
	fb   *hostFramebuffer
	t    *bootClock
	led  stdoutLED
	axes [MotorCount]*SimAxis
}

// New returns the TinyGo-on-host HAL. Log lines go to stderr through the
// runtime's println and the capture stream to stdout.
func New() HAL {
	h := &tinyGoHostHAL{
		fb: newHostFramebuffer(320, 240),
		t:  newBootClock(),
	}
	for i := range h.axes {
		h.axes[i] = NewSimAxis(h.t, DefaultMotorModel)
	}
	return h
}

func (h *tinyGoHostHAL) Logger() Logger   { return printlnLogger{} }
func (h *tinyGoHostHAL) LED() LED         { return &h.led }
func (h *tinyGoHostHAL) Display() Display { return h.fb }
func (h *tinyGoHostHAL) Time() Time       { return h.t }
func (h *tinyGoHostHAL) Serial() Serial   { return stdoutSerial{} }

func (h *tinyGoHostHAL) Motor(ch int) Motor {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.axes[ch]
}

func (h *tinyGoHostHAL) Encoder(ch int) Encoder {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.axes[ch]
}

type printlnLogger struct{}

func (printlnLogger) WriteLineString(s string) { println(s) }
func (printlnLogger) WriteLineBytes(b []byte)  { println(string(b)) }

type stdoutLED struct{ on bool }

func (l *stdoutLED) High() { l.on = true }
func (l *stdoutLED) Low()  { l.on = false }

type stdoutSerial struct{}

func (stdoutSerial) Read([]byte) (int, error)    { return 0, ErrNotImplemented }
func (stdoutSerial) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
