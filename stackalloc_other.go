// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build !linux && !darwin

package sdei

// heapAllocator is the fallback on platforms without mmap/mlock support.
// It cannot guarantee fault-free access; production deployments on such
// platforms should supply their own StackAllocator.
type heapAllocator struct{}

func (heapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) error {
	return nil
}

func defaultStackAllocator() StackAllocator {
	return heapAllocator{}
}
