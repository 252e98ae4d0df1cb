// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

// Platform abstracts the privileged processor state this package must read
// or write but cannot express portably: system registers, boot-time
// privilege probes, and the trampoline entry address exported by the
// assembly/ABI layer.
//
// Implementations back these with the real system registers on hardware,
// or with plain fields under test.
type Platform interface {
	// HypModeAvailable reports whether the system booted with the
	// higher-privilege (hypervisor) mode available.
	HypModeAvailable() bool

	// InHypMode reports whether execution is actually running in the
	// higher-privilege mode. Delegated events work between adjacent
	// exception levels; HypModeAvailable() && !InHypMode() is the
	// unsupported hybrid configuration that fails negotiation.
	InHypMode() bool

	// KernelMode returns the mode value of the current (kernel) execution
	// context, including the stack-select bit, for comparison against a
	// delivered context's mode field.
	KernelMode() uint64

	// ReadELR returns the live exception link register. The delegation
	// mechanism does not bank it, so a synchronous exception taken by the
	// handler overwrites it; dispatch snapshots it before the handler runs
	// to detect exactly that.
	ReadELR() uint64

	// VectorBase returns the base address of the architecture's vector
	// table, used to synthesize resume addresses.
	VectorBase() uintptr

	// HasPAN reports whether the privileged-access-never protection bit is
	// implemented.
	HasPAN() bool

	// SetPAN writes the privileged-access-never bit. Dispatch sets it
	// before the handler runs, because no exception was taken to get here
	// and the bit is otherwise left in whatever state the interrupted
	// context had. Handlers intentionally touching user memory must relax
	// it themselves.
	SetPAN(enabled bool)

	// EntryPoint returns the virtual address firmware must branch to on
	// event delivery: the trampoline exported by the ABI layer.
	EntryPoint() uintptr
}
