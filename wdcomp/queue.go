// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package wdcomp

import "errors"

var (
	// ErrNoCompletion indicates a non-blocking receive found the
	// completion queue empty.
	ErrNoCompletion = errors.New("wdcomp: no completion available")

	// ErrQueueFull indicates the submit side of the queue is full.
	ErrQueueFull = errors.New("wdcomp: queue full")

	// ErrQueueClosed indicates the queue has been shut down.
	ErrQueueClosed = errors.New("wdcomp: queue closed")

	// ErrContextClosed indicates the compression context was released.
	ErrContextClosed = errors.New("wdcomp: context closed")
)

// Op selects the operation a job performs.
type Op uint8

const (
	// OpInvalid is the zero value; jobs must set an operation.
	OpInvalid Op = iota
	// OpDeflate compresses the input.
	OpDeflate
	// OpInflate decompresses the input.
	OpInflate
	// OpPassthrough copies input to output unchanged.
	OpPassthrough
)

// FlushState is the output-mode flag carried with each job and updated on
// completion.
type FlushState uint32

const (
	// FlushInvalid is the zero value; jobs must set a flush state.
	FlushInvalid FlushState = iota
	// FlushNone requests no flush.
	FlushNone
	// FlushPartial requests a partial flush of buffered output.
	FlushPartial
	// FlushFull requests a full flush of buffered output.
	FlushFull
	// Finish marks the final job of a stream.
	Finish
)

// Job completion status codes, delivered to the per-context callback.
const (
	// StatusSuccess indicates the job completed fully.
	StatusSuccess uint32 = 0
	// StatusTruncated indicates the destination buffer was too small and
	// the output was cut short.
	StatusTruncated uint32 = 1
	// StatusError indicates the job failed.
	StatusError uint32 = 2
)

// Message is one job on the queue. The first field must indicate the
// algorithm. A Message is owned by the queue between Send and the
// corresponding receive.
type Message struct {
	// Alg names the algorithm, e.g. "deflate".
	Alg string

	// In is the source buffer.
	In []byte
	// Out is the destination buffer.
	Out []byte

	// Tag is the caller token for asynchronous jobs, echoed to the
	// per-context callback.
	Tag any

	// AccessFlags is the address/access type descriptor.
	AccessFlags uint32
	// WindowSize is the requested compression window.
	WindowSize uint32
	// Flush is the output mode, updated on completion.
	Flush FlushState
	// Status is the completion status.
	Status uint32

	// Consumed is the number of input bytes the device accepted.
	Consumed int
	// Produced is the number of output bytes written.
	Produced int

	// Level is the compression level.
	Level uint8
	// FileType is the output format selector.
	FileType uint8
	// HuffmanType selects the Huffman table strategy.
	HuffmanType uint8
	// Op is the operation.
	Op Op
}

// Queue is the shared job queue boundary to the accelerator driver.
//
// Thread Safety: implementations must allow Send from one goroutine
// concurrently with Recv/RecvSync from another.
type Queue interface {
	// Send submits one job.
	Send(m *Message) error
	// Recv returns one completion without blocking, or ErrNoCompletion.
	Recv() (*Message, error)
	// RecvSync blocks until a completion arrives.
	RecvSync() (*Message, error)
	// Algorithm returns the algorithm this queue was capability-matched
	// to.
	Algorithm() string
}
