package capture

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"time"
)

// Record is one parsed capture line.
type Record struct {
	Time   time.Duration
	Values []int32
}

// Reader parses a capture stream. Lines that are not records (boot noise,
// partial lines after a reset) are skipped and counted.
type Reader struct {
	sc      *bufio.Scanner
	until   time.Duration
	rec     Record
	skipped int
	done    bool
	stop    bool
	err     error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r), until: -1}
}

// Until makes the reader stop after the first record at or beyond limit,
// whether or not a done marker follows.
func (r *Reader) Until(limit time.Duration) *Reader {
	r.until = limit
	return r
}

// Next advances to the next record. It returns false at the done marker,
// at the Until bound, at end of input or on error.
func (r *Reader) Next() bool {
	if r.stop {
		return false
	}
	for r.sc.Scan() {
		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if isDone(line) {
			r.done = true
			r.stop = true
			return false
		}
		if !r.parse(line) {
			r.skipped++
			continue
		}
		if r.until >= 0 && r.rec.Time >= r.until {
			r.stop = true
		}
		return true
	}
	r.stop = true
	if err := r.sc.Err(); err != nil {
		r.err = err
	} else if r.until < 0 {
		r.err = ErrNoSentinel
	}
	return false
}

// Record returns the current record. Values is reused by the next call to Next.
func (r *Reader) Record() Record { return r.rec }

// Done reports whether the done marker was seen.
func (r *Reader) Done() bool { return r.done }

// Skipped returns the number of lines that were not records.
func (r *Reader) Skipped() int { return r.skipped }

// Err returns the first read error, or ErrNoSentinel if the input ended
// without a done marker and no Until bound was set.
func (r *Reader) Err() error { return r.err }

func (r *Reader) parse(line []byte) bool {
	vals := r.rec.Values[:0]
	var t time.Duration
	for i := 0; len(line) > 0; i++ {
		field := line
		if j := bytes.IndexByte(line, ','); j >= 0 {
			field, line = line[:j], line[j+1:]
		} else {
			line = nil
		}
		n, err := strconv.ParseInt(string(bytes.TrimSpace(field)), 10, 32)
		if err != nil {
			return false
		}
		if i == 0 {
			t = time.Duration(n) * time.Millisecond
			continue
		}
		vals = append(vals, int32(n))
	}
	if len(vals) == 0 {
		return false
	}
	r.rec = Record{Time: t, Values: vals}
	return true
}

func isDone(line []byte) bool {
	return bytes.Contains(bytes.ToLower(line), []byte("done"))
}

// ReadAll reads records until the done marker. Each returned record owns
// its Values slice.
func ReadAll(rd io.Reader) ([]Record, error) {
	r := NewReader(rd)
	var out []Record
	for r.Next() {
		rec := r.Record()
		rec.Values = append([]int32(nil), rec.Values...)
		out = append(out, rec)
	}
	return out, r.Err()
}
