// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import (
	"errors"
	"runtime"
)

// subsystemOptions holds configuration options for Subsystem creation.
type subsystemOptions struct {
	logger            Logger
	platform          Platform
	firmware          Firmware
	allocator         StackAllocator
	processors        int
	stackSize         int
	overflowDetection bool
	metricsEnabled    bool
}

// --- Subsystem Options ---

// Option configures a Subsystem instance.
type Option interface {
	apply(*subsystemOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*subsystemOptions) error
}

func (o *optionImpl) apply(opts *subsystemOptions) error {
	return o.applyFunc(opts)
}

// WithProcessors sets the number of logical processors the subsystem
// covers. Defaults to runtime.NumCPU().
func WithProcessors(n int) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		if n <= 0 {
			return errors.New("sdei: processors must be positive")
		}
		opts.processors = n
		return nil
	}}
}

// WithStackSize sets the per-class event stack size in bytes.
// Defaults to DefaultStackSize.
func WithStackSize(size int) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		if size <= 0 {
			return errors.New("sdei: stack size must be positive")
		}
		opts.stackSize = size
		return nil
	}}
}

// WithStackAllocator substitutes the backing allocator for event stacks.
// The default maps and locks anonymous pages where the platform supports
// it; see StackAllocator for the fault-safety requirement.
func WithStackAllocator(a StackAllocator) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		if a == nil {
			return errors.New("sdei: stack allocator must not be nil")
		}
		opts.allocator = a
		return nil
	}}
}

// WithOverflowDetection sets whether stack-overflow detection is active.
// When active (the default), negotiation allocates the per-processor event
// stacks, because the interrupted context's stack pointer cannot be
// trusted as scratch space.
func WithOverflowDetection(enabled bool) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		opts.overflowDetection = enabled
		return nil
	}}
}

// WithMetrics enables dispatch counters, accessible via Subsystem.Metrics.
// The overhead is a handful of atomic adds per dispatch.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithLogger attaches a structured logger. Defaults to NoOpLogger.
func WithLogger(l Logger) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		if l == nil {
			return errors.New("sdei: logger must not be nil")
		}
		opts.logger = l
		return nil
	}}
}

// WithPlatform supplies the privileged-state accessor. Required.
func WithPlatform(p Platform) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		opts.platform = p
		return nil
	}}
}

// WithFirmware supplies the firmware context-query boundary. Required.
func WithFirmware(fw Firmware) Option {
	return &optionImpl{func(opts *subsystemOptions) error {
		opts.firmware = fw
		return nil
	}}
}

// resolveOptions applies Option instances to subsystemOptions.
func resolveOptions(opts []Option) (*subsystemOptions, error) {
	cfg := &subsystemOptions{
		logger:            NewNoOpLogger(),
		allocator:         defaultStackAllocator(),
		processors:        runtime.NumCPU(),
		stackSize:         DefaultStackSize,
		overflowDetection: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.platform == nil {
		return nil, errors.New("sdei: platform is required")
	}
	if cfg.firmware == nil {
		return nil, errors.New("sdei: firmware is required")
	}
	return cfg, nil
}
