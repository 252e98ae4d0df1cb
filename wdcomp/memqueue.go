// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package wdcomp

import (
	"bytes"
	"compress/flate"
	"io"
	"sync"
)

// MemQueue is an in-process software implementation of Queue running
// DEFLATE on the submitting goroutine. Jobs complete by the time Send
// returns; completions queue up until received. It stands in where no
// accelerator is present.
//
// Each job is processed independently; MemQueue does not carry DEFLATE
// stream state across jobs, so callers should submit whole units with
// Finish. WindowSize and HuffmanType are accepted but not tunable in the
// software path.
type MemQueue struct {
	completions chan *Message
	alg         string
	mu          sync.Mutex
	closed      bool
}

// NewMemQueue creates a software queue with the given completion depth.
func NewMemQueue(depth int) *MemQueue {
	if depth <= 0 {
		depth = 64
	}
	return &MemQueue{
		completions: make(chan *Message, depth),
		alg:         "deflate",
	}
}

// Algorithm returns "deflate".
func (q *MemQueue) Algorithm() string { return q.alg }

// Send processes the job and enqueues its completion.
func (q *MemQueue) Send(m *Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	process(m)

	select {
	case q.completions <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Recv returns one completion without blocking.
func (q *MemQueue) Recv() (*Message, error) {
	select {
	case m, ok := <-q.completions:
		if !ok {
			return nil, ErrQueueClosed
		}
		return m, nil
	default:
		return nil, ErrNoCompletion
	}
}

// RecvSync blocks until a completion arrives.
func (q *MemQueue) RecvSync() (*Message, error) {
	m, ok := <-q.completions
	if !ok {
		return nil, ErrQueueClosed
	}
	return m, nil
}

// Close shuts the queue down. Pending completions may still be received.
func (q *MemQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.completions)
	}
}

func process(m *Message) {
	switch m.Op {
	case OpDeflate:
		deflate(m)
	case OpInflate:
		inflate(m)
	case OpPassthrough:
		n := copy(m.Out, m.In)
		m.Consumed = len(m.In)
		m.Produced = n
		m.Status = StatusSuccess
		if n < len(m.In) {
			m.Status = StatusTruncated
		}
	default:
		m.Status = StatusError
	}
	if m.Status == StatusSuccess && m.Flush != FlushInvalid {
		m.Flush = Finish
	}
}

func deflate(m *Message) {
	level := int(m.Level)
	if level < flate.HuffmanOnly || level > flate.BestCompression || level == 0 {
		level = flate.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		m.Status = StatusError
		return
	}
	if _, err := w.Write(m.In); err != nil {
		m.Status = StatusError
		return
	}
	if err := w.Close(); err != nil {
		m.Status = StatusError
		return
	}
	finish(m, buf.Bytes())
}

func inflate(m *Message) {
	r := flate.NewReader(bytes.NewReader(m.In))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		m.Status = StatusError
		return
	}
	finish(m, out)
}

func finish(m *Message, produced []byte) {
	n := copy(m.Out, produced)
	m.Consumed = len(m.In)
	m.Produced = n
	if n < len(produced) {
		m.Status = StatusTruncated
		return
	}
	m.Status = StatusSuccess
}
