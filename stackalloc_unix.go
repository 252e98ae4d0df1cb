// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux || darwin

package sdei

import "golang.org/x/sys/unix"

// mmapAllocator maps anonymous pages and locks them resident, so the event
// stacks can never fault mid-access from an asynchronous-exception context.
type mmapAllocator struct{}

func (mmapAllocator) Alloc(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	if err := unix.Mlock(b); err != nil {
		_ = unix.Munmap(b)
		return nil, err
	}
	return b, nil
}

func (mmapAllocator) Free(b []byte) error {
	_ = unix.Munlock(b)
	return unix.Munmap(b)
}

func defaultStackAllocator() StackAllocator {
	return mmapAllocator{}
}
