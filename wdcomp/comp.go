// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package wdcomp

import "errors"

// Callback is invoked by Poll for each drained asynchronous completion.
// dst is the destination buffer trimmed to the produced length.
type Callback func(tag any, status uint32, dst []byte)

// ContextSetup describes a compression context.
type ContextSetup struct {
	// Callback receives asynchronous completions; required for Submit,
	// unused by Do.
	Callback Callback
	// AccessFlags is the address/access type descriptor.
	AccessFlags uint32
	// WindowSize is the requested compression window.
	WindowSize uint32
	// Level is the compression level.
	Level uint8
	// HuffmanType selects the Huffman table strategy.
	HuffmanType uint8
	// FileType is the output format selector.
	FileType uint8
}

// Context is an opaque compression context bound to a queue. Create one
// with NewContext before submitting work; Close releases it.
type Context struct {
	q     Queue
	cb    Callback
	alg   string
	setup ContextSetup
}

// NewContext creates a compression context against q. Before initiating a
// context, the caller should already hold a capability-matched queue.
func NewContext(q Queue, setup *ContextSetup) (*Context, error) {
	if q == nil || setup == nil {
		return nil, errors.New("wdcomp: queue and setup are required")
	}
	return &Context{
		q:     q,
		cb:    setup.Callback,
		alg:   q.Algorithm(),
		setup: *setup,
	}, nil
}

// newMessage builds a job from the cached setup descriptor.
func (c *Context) newMessage(op Op, flush FlushState, in, out []byte, tag any) *Message {
	return &Message{
		Alg:         c.alg,
		In:          in,
		Out:         out,
		Tag:         tag,
		AccessFlags: c.setup.AccessFlags,
		WindowSize:  c.setup.WindowSize,
		Flush:       flush,
		Level:       c.setup.Level,
		FileType:    c.setup.FileType,
		HuffmanType: c.setup.HuffmanType,
		Op:          op,
	}
}

// Do submits one job and blocks until the paired completion arrives. It
// returns the consumed and produced byte counts, and writes the updated
// flush state back through flush.
func (c *Context) Do(op Op, flush *FlushState, in, out []byte) (consumed, produced int, err error) {
	if c.q == nil {
		return 0, 0, ErrContextClosed
	}
	m := c.newMessage(op, *flush, in, out, nil)
	if err := c.q.Send(m); err != nil {
		return 0, 0, err
	}
	resp, err := c.q.RecvSync()
	if err != nil {
		return 0, 0, err
	}
	*flush = resp.Flush
	return resp.Consumed, resp.Produced, nil
}

// Submit enqueues one job tagged with the caller token and returns without
// waiting for completion. The completion is delivered to the context
// callback by a later Poll.
func (c *Context) Submit(op Op, flush FlushState, in, out []byte, tag any) error {
	if c.q == nil {
		return ErrContextClosed
	}
	if c.cb == nil {
		return errors.New("wdcomp: asynchronous submit requires a callback")
	}
	return c.q.Send(c.newMessage(op, flush, in, out, tag))
}

// Poll drains up to n completions, invoking the context callback with
// (tag, status, destination) for each, and returns the count drained.
// Running out of completions before n is not an error.
func (c *Context) Poll(n int) (int, error) {
	if c.q == nil {
		return 0, ErrContextClosed
	}
	count := 0
	for ; n > 0; n-- {
		resp, err := c.q.Recv()
		if errors.Is(err, ErrNoCompletion) {
			break
		}
		if err != nil {
			return count, err
		}
		count++
		dst := resp.Out
		if resp.Produced <= len(dst) {
			dst = dst[:resp.Produced]
		}
		c.cb(resp.Tag, resp.Status, dst)
	}
	return count, nil
}

// Close releases the context. Subsequent operations return
// ErrContextClosed.
func (c *Context) Close() {
	c.q = nil
	c.cb = nil
}
