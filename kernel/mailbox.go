package kernel

import (
	"fmt"
	"io"
)

// Scalar lists the element types a mailbox can carry.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// OverflowPolicy selects what Queue.Put does when the queue is full.
type OverflowPolicy uint8

const (
	// Reject leaves the queue untouched and returns ErrQueueFull.
	Reject OverflowPolicy = iota
	// DropOldest evicts the head element to make room.
	DropOldest
)

func (p OverflowPolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case DropOldest:
		return "drop-oldest"
	default:
		return "unknown"
	}
}

type mailboxOptions struct {
	cs     Critical
	policy OverflowPolicy
}

// Option configures a Share or Queue at construction.
type Option func(*mailboxOptions)

// WithCritical replaces the platform critical section for one mailbox.
func WithCritical(cs Critical) Option {
	return func(o *mailboxOptions) {
		if cs != nil {
			o.cs = cs
		}
	}
}

// WithOverflow sets the queue overflow policy. Shares ignore it.
func WithOverflow(p OverflowPolicy) Option {
	return func(o *mailboxOptions) { o.policy = p }
}

func buildOptions(opts []Option) mailboxOptions {
	o := mailboxOptions{cs: Interrupts, policy: Reject}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Mailbox is the reporting view shared by Share and Queue.
type Mailbox interface {
	Name() string
	Kind() string
	TypeName() string
	Protected() bool
	Summary() string
}

// Mailboxes is the set of mailboxes created at startup, kept for reports.
//
// It is filled before the scheduler starts and only read afterwards.
type Mailboxes struct {
	list  []Mailbox
	names map[string]struct{}
}

// Add registers mb. Names must be unique.
func (m *Mailboxes) Add(mb Mailbox) error {
	if m.names == nil {
		m.names = make(map[string]struct{})
	}
	if _, ok := m.names[mb.Name()]; ok {
		return fmt.Errorf("kernel: mailbox %q: %w", mb.Name(), ErrDuplicateShare)
	}
	m.names[mb.Name()] = struct{}{}
	m.list = append(m.list, mb)
	return nil
}

// List returns the registered mailboxes in insertion order.
func (m *Mailboxes) List() []Mailbox { return m.list }

// WriteReport prints one line per mailbox.
func (m *Mailboxes) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-16s %-6s %-8s %-4s %s\r\n", "MAILBOX", "KIND", "TYPE", "PROT", "VALUE"); err != nil {
		return err
	}
	for _, mb := range m.list {
		prot := "no"
		if mb.Protected() {
			prot = "yes"
		}
		if _, err := fmt.Fprintf(w, "%-16s %-6s %-8s %-4s %s\r\n",
			fitName(mb.Name(), 16), mb.Kind(), mb.TypeName(), prot, mb.Summary()); err != nil {
			return err
		}
	}
	return nil
}

func fitName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func typeName[T Scalar]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
