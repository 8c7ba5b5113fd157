//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	t      *bootClock
	serial Serial

	axes     [MotorCount]*SimAxis
	encoders [MotorCount]*EncoderCounter

	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New returns a host HAL: simulated motors and encoders, log lines on
// stderr and the capture stream on stdout.
func New() HAL {
	return newHostHAL(os.Stderr, os.Stdout)
}

func newHostHAL(logW, serialW *os.File) *hostHAL {
	logger := &hostLogger{w: logW}
	t := newBootClock()
	h := &hostHAL{
		logger:  logger,
		led:     &hostLED{},
		fb:      newHostFramebuffer(320, 240),
		t:       t,
		serial:  &hostSerial{r: os.Stdin, w: serialW},
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for i := range h.axes {
		h.axes[i] = NewSimAxis(t, DefaultMotorModel)
		h.encoders[i] = NewEncoderCounter(i)
	}
	go h.sampleEncoders()
	return h
}

// sampleEncoders plays the role of the encoder interrupt handlers: it runs
// asynchronously to the scheduler and publishes counts every millisecond.
func (h *hostHAL) sampleEncoders() {
	defer close(h.stopped)
	tk := time.NewTicker(time.Millisecond)
	defer tk.Stop()
	for {
		select {
		case <-h.quit:
			return
		case <-tk.C:
		}
		for i, a := range h.axes {
			h.encoders[i].Store(a.Read())
		}
	}
}

// Close stops encoder sampling and waits for it to finish.
func (h *hostHAL) Close() error {
	h.closeOnce.Do(func() { close(h.quit) })
	<-h.stopped
	return nil
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) Display() Display { return h.fb }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Serial() Serial   { return h.serial }

func (h *hostHAL) Motor(ch int) Motor {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.axes[ch]
}

func (h *hostHAL) Encoder(ch int) Encoder {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.encoders[ch]
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu sync.Mutex
	on bool
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
}

// hostSerial carries the capture stream over stdio. Writes are serialized so
// a record is never split by another writer.
type hostSerial struct {
	mu sync.Mutex
	r  io.Reader
	w  io.Writer
}

func (s *hostSerial) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, ErrNotImplemented
	}
	return s.r.Read(p)
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
