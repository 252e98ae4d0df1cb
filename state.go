package sdei

import "sync/atomic"

// SubsystemState represents the lifecycle of the subsystem.
//
// State Machine:
//
//	StateDisabled (0) → StateNegotiating (1)  [Negotiate()]
//	StateNegotiating (1) → StateEnabled (2)   [negotiation succeeded]
//	StateNegotiating (1) → StateFailed (3)    [config/allocation failure]
//	StateEnabled (2) → StateDisabled (0)      [Release()]
//
// State Transition Rules:
//   - Use tryTransition (CAS) everywhere; a lost race means another caller
//     already owns that transition.
//   - StateFailed is terminal: a subsystem that failed negotiation stays
//     disabled for the lifetime of the process.
type SubsystemState uint32

const (
	// StateDisabled indicates the subsystem has not been negotiated.
	StateDisabled SubsystemState = iota
	// StateNegotiating indicates Negotiate is in progress.
	StateNegotiating
	// StateEnabled indicates negotiation succeeded and dispatch is live.
	StateEnabled
	// StateFailed indicates negotiation failed; the subsystem stays
	// disabled.
	StateFailed
)

// String returns a human-readable representation of the state.
func (s SubsystemState) String() string {
	switch s {
	case StateDisabled:
		return "Disabled"
	case StateNegotiating:
		return "Negotiating"
	case StateEnabled:
		return "Enabled"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// subsystemState is a lock-free state machine over SubsystemState values.
type subsystemState struct {
	v atomic.Uint32
}

// load returns the current state atomically.
func (s *subsystemState) load() SubsystemState {
	return SubsystemState(s.v.Load())
}

// tryTransition attempts to atomically transition from one state to
// another. Returns true if the transition was successful.
func (s *subsystemState) tryTransition(from, to SubsystemState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
