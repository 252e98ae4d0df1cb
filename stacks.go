// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import (
	"unsafe"
)

// DefaultStackSize is the per-class event stack size when no option
// overrides it.
const DefaultStackSize = 16 << 10

// StackClass distinguishes the two priority classes of delegated event.
// A critical event may interrupt a normal event that has just taken a
// synchronous exception and is using the stack pointer as a scratch
// register, so the two classes need isolated stacks: for a critical event
// interrupting a normal event there is no reliable way to tell whether we
// were already on the event stack.
type StackClass int

const (
	// StackNormal is the stack class for normal-priority events.
	StackNormal StackClass = iota
	// StackCritical is the stack class for critical-priority events.
	StackCritical

	stackClasses
)

// String returns a human-readable name for the stack class.
func (c StackClass) String() string {
	switch c {
	case StackNormal:
		return "normal"
	case StackCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// StackAllocator provides the backing memory for event stacks. The memory
// must be safely reachable from an asynchronous-exception context: no page
// faults permitted mid-access. The default allocator maps and locks pages
// via the platform (see stackalloc_unix.go); tests substitute failing
// allocators to exercise rollback.
type StackAllocator interface {
	// Alloc returns a region of exactly size bytes.
	Alloc(size int) ([]byte, error)
	// Free releases a region previously returned by Alloc.
	Free(b []byte) error
}

// stackRegion is one allocated event stack. low/high bound the usable
// range as [low, high); both are immutable once allocated.
type stackRegion struct {
	buf  []byte
	low  uintptr
	high uintptr
}

func (r *stackRegion) contains(addr uintptr) bool {
	return r.low <= addr && addr < r.high
}

// stackPool allocates and owns the per-processor event stacks: one region
// per (processor, class) pair.
//
// The pool is written only by Allocate and Release, which the subsystem
// serializes behind negotiation. After Allocate returns, the regions are
// immutable and may be read concurrently by any processor's membership
// query without locking.
type stackPool struct {
	alloc  StackAllocator
	stacks [][stackClasses]stackRegion
	size   int
}

func newStackPool(processors, size int, alloc StackAllocator) *stackPool {
	return &stackPool{
		alloc:  alloc,
		stacks: make([][stackClasses]stackRegion, processors),
		size:   size,
	}
}

// allocate reserves one stack per class for every logical processor. These
// cannot be allocated lazily: the first delivery may arrive in a context
// where the general-purpose allocator is unusable. If any single
// allocation fails, everything allocated so far is rolled back and a
// StackAllocError is returned; partial per-processor coverage is never
// left live.
func (p *stackPool) allocate() error {
	for cpu := range p.stacks {
		for class := StackNormal; class < stackClasses; class++ {
			buf, err := p.alloc.Alloc(p.size)
			if err != nil {
				p.release()
				return &StackAllocError{Err: err, CPU: cpu, Class: class}
			}
			low := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
			p.stacks[cpu][class] = stackRegion{
				buf:  buf,
				low:  low,
				high: low + uintptr(len(buf)),
			}
		}
	}
	return nil
}

// release frees all stacks for all processors. Safe to call only when no
// dispatch is in flight; also used internally for allocation rollback.
func (p *stackPool) release() {
	for cpu := range p.stacks {
		for class := range p.stacks[cpu] {
			r := &p.stacks[cpu][class]
			if r.buf != nil {
				_ = p.alloc.Free(r.buf)
				*r = stackRegion{}
			}
		}
	}
}

// onEventStack reports whether addr lies within either of the given
// processor's event stacks. Checks the critical stack first, matching the
// order a nested dispatch would be using them.
func (p *stackPool) onEventStack(cpu int, addr uintptr) bool {
	if cpu < 0 || cpu >= len(p.stacks) {
		return false
	}
	if p.stacks[cpu][StackCritical].contains(addr) {
		return true
	}
	return p.stacks[cpu][StackNormal].contains(addr)
}
