package hal

import (
	"fmt"

	"twinloop/kernel"
)

// EncoderCounter is a position count owned by an interrupt handler.
//
// The handler is the only writer; tasks read through Read. The count lives
// in a protected Share so a task never sees a half-updated value.
type EncoderCounter struct {
	count *kernel.Share[int32]
}

// NewEncoderCounter returns a counter for encoder channel ch.
func NewEncoderCounter(ch int) *EncoderCounter {
	return &EncoderCounter{count: kernel.NewShare[int32](fmt.Sprintf("enc%d count", ch+1), true)}
}

// Read returns the latest count.
func (c *EncoderCounter) Read() int32 { return c.count.Get() }

// Store publishes a new count. Call it from interrupt context only.
func (c *EncoderCounter) Store(v int32) { c.count.Put(v) }

// Share exposes the underlying mailbox for reports.
func (c *EncoderCounter) Share() *kernel.Share[int32] { return c.count }

// quadDelta maps (previous AB << 2 | current AB) to a count step. Invalid
// double transitions count as zero.
var quadDelta = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// QuadDecoder turns A/B edge samples into a signed count.
type QuadDecoder struct {
	state uint8
	count int32
}

// Update feeds the current A/B levels and returns the new count.
func (d *QuadDecoder) Update(a, b bool) int32 {
	var ab uint8
	if a {
		ab |= 2
	}
	if b {
		ab |= 1
	}
	d.count += int32(quadDelta[(d.state<<2)|ab])
	d.state = ab
	return d.count
}
