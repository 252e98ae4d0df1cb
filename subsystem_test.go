package sdei

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateUnsupportedConfiguration(t *testing.T) {
	// Booted with hyp mode available but not running in it: the
	// unsupported hybrid configuration must fail closed.
	platform := newFakePlatform()
	platform.hypAvailable = true
	platform.inHyp = false

	alloc := newTestAllocator()
	logger := &captureLogger{}
	s, err := New(
		WithPlatform(platform),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(2),
		WithStackAllocator(alloc),
		WithLogger(logger),
	)
	require.NoError(t, err)

	entry, err := s.Negotiate(ConduitHVC)
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)
	assert.Zero(t, entry)
	assert.Equal(t, StateFailed, s.State())
	assert.Zero(t, alloc.calls, "stacks must not be allocated for an unsupported configuration")

	_, found := logger.find("not supported on this hardware/boot configuration")
	assert.True(t, found)
}

func TestNegotiateRunningInHypMode(t *testing.T) {
	// Hyp mode available and actually running in it is supported: a
	// hypervisor at the adjacent level marshals events.
	platform := newFakePlatform()
	platform.hypAvailable = true
	platform.inHyp = true

	s, err := New(
		WithPlatform(platform),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(1),
		WithStackAllocator(newTestAllocator()),
	)
	require.NoError(t, err)

	entry, err := s.Negotiate(ConduitHVC)
	require.NoError(t, err)
	assert.Equal(t, testEntryPoint, entry)
	assert.Equal(t, StateEnabled, s.State())
}

func TestNegotiateStackAllocationFailure(t *testing.T) {
	alloc := newTestAllocator()
	alloc.failAt = 2
	s, err := New(
		WithPlatform(newFakePlatform()),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(2),
		WithStackAllocator(alloc),
	)
	require.NoError(t, err)

	entry, err := s.Negotiate(ConduitSMC)
	require.ErrorIs(t, err, ErrStackExhausted)
	assert.Zero(t, entry)
	assert.Equal(t, StateFailed, s.State())
	assert.Zero(t, alloc.live, "partial allocations must be rolled back")
	assert.False(t, s.OnEventStack(0, 1), "no leaked ranges after rollback")
}

func TestNegotiateExitModeByConduit(t *testing.T) {
	tests := []struct {
		name    string
		conduit Conduit
		want    ExitMode
	}{
		{name: "smc", conduit: ConduitSMC, want: ExitSMC},
		{name: "hvc", conduit: ConduitHVC, want: ExitHVC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(
				WithPlatform(newFakePlatform()),
				WithFirmware(&fakeFirmware{}),
				WithProcessors(1),
				WithStackAllocator(newTestAllocator()),
			)
			require.NoError(t, err)

			entry, err := s.Negotiate(tt.conduit)
			require.NoError(t, err)
			assert.Equal(t, testEntryPoint, entry)
			assert.Equal(t, tt.want, s.ExitMode())
		})
	}
}

func TestNegotiateIsOneShot(t *testing.T) {
	s, _, _ := newTestSubsystem(t)
	_, err := s.Negotiate(ConduitSMC)
	assert.ErrorIs(t, err, ErrAlreadyEnabled)

	// A failed negotiation is terminal too.
	platform := newFakePlatform()
	platform.hypAvailable = true
	s2, err := New(
		WithPlatform(platform),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(1),
		WithStackAllocator(newTestAllocator()),
	)
	require.NoError(t, err)
	_, err = s2.Negotiate(ConduitSMC)
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)
	_, err = s2.Negotiate(ConduitSMC)
	assert.ErrorIs(t, err, ErrAlreadyEnabled)
}

func TestNegotiateWithoutOverflowDetection(t *testing.T) {
	// Without stack-overflow detection the interrupted stack pointer is
	// usable as scratch space and no event stacks are needed.
	alloc := newTestAllocator()
	s, err := New(
		WithPlatform(newFakePlatform()),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(2),
		WithStackAllocator(alloc),
		WithOverflowDetection(false),
	)
	require.NoError(t, err)

	entry, err := s.Negotiate(ConduitSMC)
	require.NoError(t, err)
	assert.Equal(t, testEntryPoint, entry)
	assert.Zero(t, alloc.calls)
	assert.False(t, s.OnEventStack(0, 1))
}

func TestSubsystemRelease(t *testing.T) {
	alloc := newTestAllocator()
	s, err := New(
		WithPlatform(newFakePlatform()),
		WithFirmware(&fakeFirmware{}),
		WithProcessors(2),
		WithStackAllocator(alloc),
	)
	require.NoError(t, err)
	_, err = s.Negotiate(ConduitSMC)
	require.NoError(t, err)
	require.Equal(t, 4, alloc.live)

	s.Release()
	assert.Equal(t, StateDisabled, s.State())
	assert.Zero(t, alloc.live)

	// Release on a subsystem that is not enabled is a no-op.
	s.Release()
	assert.Equal(t, StateDisabled, s.State())
}

func TestOnEventStackAfterNegotiate(t *testing.T) {
	s, _, _ := newTestSubsystem(t)
	r := s.pool.stacks[0][StackNormal]
	assert.True(t, s.OnEventStack(0, r.low))
	assert.False(t, s.OnEventStack(1, r.low))
}

func TestNewOptionValidation(t *testing.T) {
	platform := newFakePlatform()
	firmware := &fakeFirmware{}
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "missing_platform", opts: []Option{WithFirmware(firmware)}},
		{name: "missing_firmware", opts: []Option{WithPlatform(platform)}},
		{name: "zero_processors", opts: []Option{WithPlatform(platform), WithFirmware(firmware), WithProcessors(0)}},
		{name: "negative_stack_size", opts: []Option{WithPlatform(platform), WithFirmware(firmware), WithStackSize(-1)}},
		{name: "nil_allocator", opts: []Option{WithPlatform(platform), WithFirmware(firmware), WithStackAllocator(nil)}},
		{name: "nil_logger", opts: []Option{WithPlatform(platform), WithFirmware(firmware), WithLogger(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.opts...)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestNewSkipsNilOptions(t *testing.T) {
	s, err := New(
		nil,
		WithPlatform(newFakePlatform()),
		nil,
		WithFirmware(&fakeFirmware{}),
		WithStackAllocator(newTestAllocator()),
	)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestConduitAndExitModeStrings(t *testing.T) {
	assert.Equal(t, "smc", ConduitSMC.String())
	assert.Equal(t, "hvc", ConduitHVC.String())
	assert.Equal(t, "unknown", Conduit(9).String())
	assert.Equal(t, "smc", ExitSMC.String())
	assert.Equal(t, "hvc", ExitHVC.String())
	assert.Equal(t, "unknown", ExitMode(9).String())
}
