// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

// Firmware is the consumed half of the firmware boundary: a synchronous
// query-by-index call recovering the register values the delegation
// mechanism clobbered.
//
// The host firmware contract guarantees EventContext always succeeds when
// invoked from within a dispatch, which is the only place this package
// calls it. There is deliberately no error return and no retry path; if a
// future firmware revision weakens the guarantee, this interface is the
// single seam to revisit.
type Firmware interface {
	// EventContext returns the original value of general register i at the
	// moment of delivery, for 0 <= i < clobberedRegisters.
	EventContext(i int) uint64
}

// reconcile fills the clobbered registers of the interrupted context from
// firmware. It must run before the handler, which is entitled to observe
// the complete delivered state.
func reconcile(regs *RegisterContext, fw Firmware) {
	for i := 0; i < clobberedRegisters; i++ {
		// from within the handler, this call always succeeds
		regs.Regs[i] = fw.EventContext(i)
	}
}
