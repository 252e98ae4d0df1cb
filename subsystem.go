// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import "sync/atomic"

// Conduit is the privilege-transition mechanism used to talk to firmware.
type Conduit uint32

const (
	// ConduitSMC uses the secure monitor call instruction.
	ConduitSMC Conduit = iota
	// ConduitHVC uses the hypervisor call instruction.
	ConduitHVC
)

// String returns a human-readable name for the conduit.
func (c Conduit) String() string {
	switch c {
	case ConduitSMC:
		return "smc"
	case ConduitHVC:
		return "hvc"
	default:
		return "unknown"
	}
}

// ExitMode is the exit convention dispatch must use to return to firmware,
// recorded once during negotiation and read by every later dispatch.
type ExitMode uint32

const (
	// ExitSMC exits via the secure monitor call instruction.
	ExitSMC ExitMode = iota
	// ExitHVC exits via the hypervisor call instruction.
	ExitHVC
)

// String returns a human-readable name for the exit mode.
func (m ExitMode) String() string {
	switch m {
	case ExitSMC:
		return "smc"
	case ExitHVC:
		return "hvc"
	default:
		return "unknown"
	}
}

// Subsystem owns one isolated state set for the delegated-event dispatch
// path: the per-processor stack pool, the negotiated exit mode, and the
// re-entrancy markers. Create with New, enable with Negotiate, then let
// the trampoline drive Dispatch.
type Subsystem struct {
	logger   Logger
	platform Platform
	firmware Firmware
	pool     *stackPool
	guard    *reentryGuard
	metrics  *counters
	exitMode atomic.Uint32
	state    subsystemState

	overflowDetection bool
}

// New creates a disabled Subsystem. WithPlatform and WithFirmware are
// required; everything else has defaults.
func New(opts ...Option) (*Subsystem, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	s := &Subsystem{
		logger:            cfg.logger,
		platform:          cfg.platform,
		firmware:          cfg.firmware,
		pool:              newStackPool(cfg.processors, cfg.stackSize, cfg.allocator),
		guard:             newReentryGuard(cfg.processors),
		overflowDetection: cfg.overflowDetection,
	}
	if cfg.metricsEnabled {
		s.metrics = &counters{}
	}
	return s, nil
}

// Negotiate enables the subsystem, once. It verifies the boot-time
// privilege configuration, allocates the per-processor event stacks when
// overflow detection is active, records the exit convention implied by
// the conduit, and returns the trampoline entry address for firmware to
// record.
//
// On failure the subsystem transitions to StateFailed and stays disabled;
// any partially-allocated stacks are rolled back.
func (s *Subsystem) Negotiate(conduit Conduit) (uintptr, error) {
	if !s.state.tryTransition(StateDisabled, StateNegotiating) {
		return 0, ErrAlreadyEnabled
	}

	// Delegated events work between adjacent exception levels. If we
	// booted with hyp mode available but are not running in it, there is
	// no adjacent level for firmware to deliver to.
	if s.platform.HypModeAvailable() && !s.platform.InHypMode() {
		s.logger.Log(LogEntry{
			Level:    LevelError,
			Category: "entry",
			Message:  "not supported on this hardware/boot configuration",
		})
		s.state.tryTransition(StateNegotiating, StateFailed)
		return 0, ErrUnsupportedConfiguration
	}

	if s.overflowDetection {
		if err := s.pool.allocate(); err != nil {
			s.logger.Log(LogEntry{
				Level:    LevelError,
				Category: "stacks",
				Message:  "event stack allocation failed",
				Err:      err,
			})
			s.state.tryTransition(StateNegotiating, StateFailed)
			return 0, err
		}
	}

	exit := ExitSMC
	if conduit == ConduitHVC {
		exit = ExitHVC
	}
	s.exitMode.Store(uint32(exit))
	s.state.tryTransition(StateNegotiating, StateEnabled)

	if s.logger.IsEnabled(LevelInfo) {
		s.logger.Log(LogEntry{
			Level:    LevelInfo,
			Category: "entry",
			Message:  "subsystem enabled, exit mode " + exit.String(),
		})
	}
	return s.platform.EntryPoint(), nil
}

// ExitMode returns the negotiated exit convention. Meaningful only after a
// successful Negotiate.
func (s *Subsystem) ExitMode() ExitMode {
	return ExitMode(s.exitMode.Load())
}

// State returns the current lifecycle state.
func (s *Subsystem) State() SubsystemState {
	return s.state.load()
}

// OnEventStack reports whether addr lies within either of the given
// processor's event stacks. It is a pure query for diagnostic and
// stack-overflow logic; dispatch itself never consults it. Lock-free and
// safe from any context.
func (s *Subsystem) OnEventStack(cpu int, addr uintptr) bool {
	return s.pool.onEventStack(cpu, addr)
}

// InNMI reports whether the given processor is currently inside a
// dispatch, for downstream code deciding whether locks are safe.
func (s *Subsystem) InNMI(cpu int) bool {
	return s.guard.inNMI(cpu)
}

// Metrics returns a snapshot of dispatch counters. Zero unless WithMetrics
// was enabled.
func (s *Subsystem) Metrics() Metrics {
	return s.metrics.snapshot()
}

// Release frees all event stacks and returns the subsystem to
// StateDisabled. Safe to call only when no dispatch is in flight.
func (s *Subsystem) Release() {
	if s.state.tryTransition(StateEnabled, StateDisabled) {
		s.pool.release()
	}
}
