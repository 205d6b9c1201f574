// Package ops implements the host runtime that operator kernels plug into.
//
// The package provides an explicitly owned registry of operator descriptors
// and per-dtype kernel factories, the construction and execution contexts
// handed to kernels, and an Executor that resolves a node's attributes,
// instantiates the matching kernel and runs it.
//
// Registration is always explicit: nothing registers itself at import time.
// Callers create a Registry during startup and register the operators they
// need, e.g. zeroout.Register(r).
package ops
