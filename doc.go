// Package sdei implements the dispatch path for firmware-delegated
// asynchronous events: a lower-privileged runtime registers callback
// handlers, and a higher-privileged firmware layer may interrupt arbitrary
// running code at any time to invoke one of them, expecting a well-defined
// return value telling it how to resume.
//
// # Architecture
//
// The core is a [Subsystem], enabled once via [Subsystem.Negotiate] and
// driven by firmware through [Subsystem.Dispatch]. Supporting pieces:
//
//   - A per-processor stack pool owning one normal-class and one
//     critical-class stack per logical processor. Critical events may
//     preempt an in-progress normal event on the same processor, so the
//     two classes cannot share a stack. The low-level trampoline (an
//     assembly/ABI layer outside this package) consumes the pool's
//     addresses; this package only allocates, releases, and answers
//     membership queries ([Subsystem.OnEventStack]).
//   - An entry-point negotiator that verifies the boot-time privilege
//     configuration, allocates the stacks when overflow detection is
//     active, and records which of the two privilege-transition exit
//     conventions ([ExitSMC], [ExitHVC]) later dispatches must use.
//   - A context reconciler that recovers the register values the
//     delegation mechanism clobbers, via a synchronous firmware query
//     that the host contract guarantees to succeed (see [Firmware]).
//   - The handler invoker and outcome resolver, a pure per-call state
//     machine producing exactly one [Outcome] per dispatch.
//   - A re-entrancy guard marking "already inside an asynchronous,
//     possibly-non-maskable execution context" so downstream diagnostic
//     and allocator code can avoid locks ([Subsystem.InNMI]).
//
// # Execution Model
//
// Dispatch executes synchronously and to completion on whichever logical
// processor received the delegated event. Nothing in the hot path blocks,
// acquires a sleeping lock, or allocates; the firmware context query is
// the sole synchronous round-trip, non-blocking by contract. Dispatches
// on a single processor are totally ordered; cross-processor dispatches
// share no mutable state. There is no cancellation: a delivered event
// always runs to one of the three terminal outcomes.
//
// # Thread Safety
//
//   - [Subsystem.Negotiate] is one-shot; concurrent calls race to a
//     single winner, the rest receive [ErrAlreadyEnabled].
//   - [Subsystem.OnEventStack] is lock-free and safe from any context
//     after a successful Negotiate.
//   - A [RegisterContext] is exclusively owned by its dispatch.
//
// # Error Types
//
//   - [ErrUnsupportedConfiguration]: boot privilege mismatch, fatal to
//     enablement.
//   - [StackAllocError]: stack allocation failure, fatal to enablement;
//     all partially-allocated stacks are rolled back.
//   - Handler failure is not an error: it resolves the dispatch to
//     [OutcomeFailed] and has no subsystem-wide effect.
package sdei
