// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package sdei

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedConfiguration indicates the system booted with a
	// higher-privilege mode available but execution is not actually running
	// in it. Delegated events work between adjacent exception levels; this
	// hybrid configuration cannot be supported, and the subsystem stays
	// disabled.
	ErrUnsupportedConfiguration = errors.New("sdei: not supported on this hardware/boot configuration")

	// ErrAlreadyEnabled indicates Negotiate was called on a subsystem that
	// already completed (or failed) negotiation. Negotiation is one-shot.
	ErrAlreadyEnabled = errors.New("sdei: subsystem negotiation already attempted")

	// ErrStackExhausted is the sentinel matched (via errors.Is) by any
	// StackAllocError.
	ErrStackExhausted = errors.New("sdei: event stack allocation failed")
)

// StackAllocError reports a failed per-processor stack allocation.
//
// Allocation is all-or-nothing: by the time a StackAllocError is returned,
// every stack allocated before the failure has been rolled back, so partial
// per-processor coverage is never left live.
type StackAllocError struct {
	// Err is the underlying allocator error.
	Err error
	// CPU is the logical processor whose allocation failed.
	CPU int
	// Class is the stack class whose allocation failed.
	Class StackClass
}

func (e *StackAllocError) Error() string {
	return fmt.Sprintf("sdei: cpu %d: %s stack allocation failed: %v", e.CPU, e.Class, e.Err)
}

// Unwrap returns the underlying allocator error, enabling [errors.Is] and
// [errors.As] matching through the cause chain.
func (e *StackAllocError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrStackExhausted], so callers can match
// the category without caring which processor or class failed.
func (e *StackAllocError) Is(target error) bool {
	return target == ErrStackExhausted
}
