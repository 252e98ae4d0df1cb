// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

// PSTATE bits relevant to outcome resolution. Values follow the AArch64
// saved-program-status layout.
const (
	// PSRModeMask selects the exception level and stack-pointer-select
	// bits of the mode field.
	PSRModeMask uint64 = 0x0000000f

	// PSRMode32Bit is set when the interrupted context was executing in
	// 32-bit compatibility mode.
	PSRMode32Bit uint64 = 0x00000010

	// PSRModeEL0t is the native user mode value.
	PSRModeEL0t uint64 = 0x00000000

	// PSRModeEL1h is kernel mode with the dedicated stack pointer selected.
	PSRModeEL1h uint64 = 0x00000005

	// PSRIBit masks ordinary interrupts when set.
	PSRIBit uint64 = 0x00000080

	// PSRPANBit is the privileged-access-never protection bit.
	PSRPANBit uint64 = 0x00400000
)

// clobberedRegisters is the number of general registers the delegation
// mechanism does not preserve across delivery. Their live values must be
// recovered from firmware before the handler runs.
const clobberedRegisters = 4

// RegisterContext is a full snapshot of the preempted execution state,
// created by the trampoline before this package runs. The context
// reconciler fills the clobbered registers in place, and the callback may
// rewrite any of it (a signal-delivery path typically does). The outcome
// resolver only reads it. Its lifetime is exactly one dispatch, and it is
// exclusively owned by that dispatch.
type RegisterContext struct {
	// Regs are the general-purpose registers x0..x30.
	Regs [31]uint64
	// SP is the stack pointer of the interrupted context.
	SP uint64
	// PC is the program counter of the interrupted context.
	PC uint64
	// PState holds the processor mode, privilege, and interrupt-mask bits.
	PState uint64
}

// Mode returns the mode field used for outcome resolution: the exception
// level and stack-select bits, plus the 32-bit sub-mode bit.
func (c *RegisterContext) Mode() uint64 {
	return c.PState & (PSRMode32Bit | PSRModeMask)
}

// InterruptsEnabled reports whether the interrupted context had ordinary
// interrupts unmasked.
func (c *RegisterContext) InterruptsEnabled() bool {
	return c.PState&PSRIBit == 0
}

// Handler is the registered callback invoked for a delegated event. It runs
// in an asynchronous, possibly-non-maskable context: it must not block,
// acquire sleeping locks, or allocate. It may mutate regs. A non-nil error
// resolves the dispatch to [OutcomeFailed].
type Handler func(regs *RegisterContext, event *RegisteredEvent) error

// RegisteredEvent identifies one delegated-event registration. It is owned
// by the registration subsystem; this package only borrows a reference for
// the duration of one dispatch.
type RegisteredEvent struct {
	// Callback is invoked with the interrupted context on each delivery.
	Callback Handler
	// CallerData is an opaque tag supplied at registration.
	CallerData any
}
