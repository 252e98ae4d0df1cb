// Package wdcomp is a thin request/response protocol for offloading
// compression work to a co-processor over a shared job queue.
//
// A [Context] is created against a [Queue] with a setup descriptor
// (access flags, compression level, algorithm, window size, output
// format). Work runs in one of two modes:
//
//   - Synchronous: [Context.Do] submits one job and blocks until the
//     paired completion arrives, reporting consumed/produced byte counts
//     and an updated flush state.
//   - Asynchronous: [Context.Submit] enqueues a job tagged with a caller
//     token; [Context.Poll] drains up to N completions, invoking the
//     per-context callback with (tag, status, destination) for each, and
//     returns the count drained.
//
// [MemQueue] is an in-process software queue implementing DEFLATE, used
// where no accelerator is present and by the package tests.
package wdcomp
