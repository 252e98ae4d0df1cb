// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import "fmt"

// Offsets from the vector table base for the synthesized-interrupt resume
// addresses. See DDI0487B.a Table D1-7 'Vector offsets from vector table
// base address'.
const (
	// vectorIRQCurrentEL: IRQ taken from the current exception level using
	// the dedicated stack pointer.
	vectorIRQCurrentEL uintptr = 0x280

	// vectorIRQLowerEL64: IRQ taken from a lower exception level running
	// in 64-bit state.
	vectorIRQLowerEL64 uintptr = 0x480

	// vectorIRQLowerEL32: IRQ taken from a lower exception level running
	// in 32-bit state.
	vectorIRQLowerEL32 uintptr = 0x680
)

// OutcomeKind is the discriminant of an Outcome.
type OutcomeKind uint8

const (
	// OutcomeHandled tells firmware to resume the exact interrupted
	// instruction.
	OutcomeHandled OutcomeKind = iota
	// OutcomeFailed reports handler failure to firmware.
	OutcomeFailed
	// OutcomeResume tells firmware to resume at Outcome.Resume, a
	// synthesized jump into the vector table.
	OutcomeResume
)

// String returns a human-readable name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHandled:
		return "handled"
	case OutcomeFailed:
		return "failed"
	case OutcomeResume:
		return "resume"
	default:
		return "unknown"
	}
}

// Outcome is the single value produced by each dispatch and consumed by
// firmware on return from the trampoline. Resume is meaningful only when
// Kind is OutcomeResume.
type Outcome struct {
	Resume uintptr
	Kind   OutcomeKind
}

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	if o.Kind == OutcomeResume {
		return fmt.Sprintf("resume(%#x)", o.Resume)
	}
	return o.Kind.String()
}

// ResumeAt constructs an OutcomeResume for the given address.
func ResumeAt(addr uintptr) Outcome {
	return Outcome{Kind: OutcomeResume, Resume: addr}
}

// Dispatch runs one delegated event to completion on the given logical
// processor and returns the outcome firmware acts on:
//
//	OutcomeHandled - success, return to the interrupted context.
//	OutcomeFailed  - failure, return this error code to firmware.
//	OutcomeResume  - success, return to this virtual address.
//
// It is invoked by the trampoline after the switch onto the correct event
// stack, with regs already holding the delivered snapshot. No persistent
// state survives across dispatches.
func (s *Subsystem) Dispatch(cpu int, regs *RegisterContext, event *RegisteredEvent) Outcome {
	// Diagnostic and allocator code called under the handler must know
	// whether nesting already occurred: a critical event may arrive with
	// the marker already set by an interrupted normal event.
	token := s.guard.enter(cpu)
	defer token.exit()

	s.metrics.addDispatch()
	if !token.entered {
		s.metrics.addNested()
	}

	return s.resolve(cpu, regs, event)
}

func (s *Subsystem) resolve(cpu int, regs *RegisterContext, event *RegisteredEvent) Outcome {
	elr := s.platform.ReadELR()
	kernelMode := s.platform.KernelMode()

	// Retrieve the missing registers values before the handler can
	// observe the context.
	reconcile(regs, s.firmware)

	// We didn't take an exception to get here, so the protection bit is
	// in whatever state the interrupted context left it. Handlers relax
	// it themselves when they intend to touch user memory.
	if s.platform.HasPAN() {
		s.platform.SetPAN(true)
	}

	if err := event.Callback(regs, event); err != nil {
		s.metrics.addFailure()
		if s.logger.IsEnabled(LevelDebug) {
			s.logger.Log(LogEntry{
				Level:    LevelDebug,
				Category: "dispatch",
				CPU:      cpu,
				Message:  "event handler failed",
				Err:      err,
			})
		}
		return Outcome{Kind: OutcomeFailed}
	}

	if elr != s.platform.ReadELR() {
		// The handler took a synchronous exception. Re-interrupting the
		// execution environment in this state could deadlock it; surface
		// for postmortem analysis but resolve normally.
		s.metrics.addUnsafeReentry()
		if s.logger.IsEnabled(LevelWarn) {
			s.logger.Log(LogEntry{
				Level:    LevelWarn,
				Category: "dispatch",
				CPU:      cpu,
				Message:  "unsafe: exception during handler",
			})
		}
	}

	mode := regs.PState & (PSRMode32Bit | PSRModeMask)

	// If we interrupted the kernel with interrupts masked, we always go
	// back to wherever we came from: resuming must preserve the masking
	// exactly, or a re-entrant event could be mis-scheduled.
	if mode == kernelMode && !regs.InterruptsEnabled() {
		return Outcome{Kind: OutcomeHandled}
	}

	// Otherwise pretend this was an IRQ, so the generic interrupt-exit
	// machinery (signal delivery, deferred kernel work, scheduling) runs
	// exactly as if a real interrupt had occurred.
	vbar := s.platform.VectorBase()
	switch {
	case mode == kernelMode:
		return ResumeAt(vbar + vectorIRQCurrentEL)
	case mode&PSRMode32Bit != 0:
		return ResumeAt(vbar + vectorIRQLowerEL32)
	default:
		return ResumeAt(vbar + vectorIRQLowerEL64)
	}
}
