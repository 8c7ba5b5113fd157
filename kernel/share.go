package kernel

import "fmt"

// Share is a single-slot mailbox. Put overwrites, Get returns the latest value.
//
// A protected Share wraps both operations in a critical section so that a
// reader never sees a value half-written from interrupt context. Neither
// operation blocks.
type Share[T Scalar] struct {
	name    string
	protect bool
	cs      Critical

	val  T
	puts uint32
}

// NewShare returns a Share holding the zero value of T.
func NewShare[T Scalar](name string, protect bool, opts ...Option) *Share[T] {
	o := buildOptions(opts)
	return &Share[T]{name: name, protect: protect, cs: o.cs}
}

// Put stores v, replacing the previous value.
func (s *Share[T]) Put(v T) {
	if !s.protect {
		s.val = v
		s.puts++
		return
	}
	st := s.cs.Enter()
	s.val = v
	s.puts++
	s.cs.Exit(st)
}

// Get returns the most recently stored value, or zero if none was stored.
func (s *Share[T]) Get() T {
	if !s.protect {
		return s.val
	}
	st := s.cs.Enter()
	v := s.val
	s.cs.Exit(st)
	return v
}

// Puts returns how many times Put was called.
func (s *Share[T]) Puts() uint32 {
	st := s.cs.Enter()
	n := s.puts
	s.cs.Exit(st)
	return n
}

func (s *Share[T]) Name() string     { return s.name }
func (s *Share[T]) Kind() string     { return "share" }
func (s *Share[T]) TypeName() string { return typeName[T]() }
func (s *Share[T]) Protected() bool  { return s.protect }

// Summary formats the current value for reports. An unprotected Share is only
// consistent when read from the scheduler loop or after it stopped.
func (s *Share[T]) Summary() string {
	st := s.cs.Enter()
	v, n := s.val, s.puts
	s.cs.Exit(st)
	return fmt.Sprintf("%v (puts=%d)", v, n)
}
