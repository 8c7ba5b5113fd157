// Package capture reads and writes the step-response record stream.
//
// Each record is one line "<time>,<v1>[,<v2>...]\r\n" with the time in
// milliseconds since the capture started. The stream ends with a line
// containing "done" in any case; the firmware sends "Done!".
package capture

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// BaudRate is the serial rate the capture stream is sent at.
const BaudRate = 115200

// Sentinel is the terminating line written by Writer.Done.
const Sentinel = "Done!"

var (
	ErrNoSentinel = errors.New("capture: stream ended before done marker")
	ErrClosed     = errors.New("capture: write after done")
)

// Writer formats records onto a byte stream. It reuses one line buffer so
// a sampling task does not allocate per record.
type Writer struct {
	w       io.Writer
	buf     []byte
	records int
	done    bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 64)}
}

// WriteRecord writes one record. t is truncated to whole milliseconds.
func (w *Writer) WriteRecord(t time.Duration, values ...int32) error {
	if w.done {
		return ErrClosed
	}
	b := strconv.AppendInt(w.buf[:0], t.Milliseconds(), 10)
	for _, v := range values {
		b = append(b, ',')
		b = strconv.AppendInt(b, int64(v), 10)
	}
	b = append(b, '\r', '\n')
	w.buf = b
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("capture: write record: %w", err)
	}
	w.records++
	return nil
}

// Done writes the terminating line. Further writes fail with ErrClosed.
func (w *Writer) Done() error {
	if w.done {
		return nil
	}
	w.done = true
	if _, err := io.WriteString(w.w, Sentinel+"\r\n"); err != nil {
		return fmt.Errorf("capture: write done: %w", err)
	}
	return nil
}

// Records returns the number of records written.
func (w *Writer) Records() int { return w.records }
