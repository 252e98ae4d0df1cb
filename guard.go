// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import "sync/atomic"

// reentryGuard tracks, per logical processor, whether execution is already
// inside an asynchronous, possibly-non-maskable dispatch. Downstream
// logging and allocation code consults it to decide whether locks are
// safe to take.
//
// Because critical events can interrupt normal events, a dispatch may
// begin with the marker already set. The guard hands each dispatch an
// explicit token recording whether that dispatch set the marker, and only
// the setter clears it: entry and exit are idempotent under nesting.
type reentryGuard struct {
	flags []atomic.Bool
}

func newReentryGuard(processors int) *reentryGuard {
	return &reentryGuard{flags: make([]atomic.Bool, processors)}
}

// guardToken is the scoped acquisition handle for one dispatch. Zero value
// means "did not set the marker".
type guardToken struct {
	g       *reentryGuard
	cpu     int
	entered bool
}

// enter sets the marker for cpu if it is not already set, returning a
// token that records whether this call was the one that set it.
func (g *reentryGuard) enter(cpu int) guardToken {
	if g.flags[cpu].CompareAndSwap(false, true) {
		return guardToken{g: g, cpu: cpu, entered: true}
	}
	return guardToken{g: g, cpu: cpu}
}

// exit clears the marker iff this token's enter set it.
func (t guardToken) exit() {
	if t.entered {
		t.g.flags[t.cpu].Store(false)
	}
}

// inNMI reports whether cpu is currently inside a dispatch.
func (g *reentryGuard) inNMI(cpu int) bool {
	if cpu < 0 || cpu >= len(g.flags) {
		return false
	}
	return g.flags[cpu].Load()
}
