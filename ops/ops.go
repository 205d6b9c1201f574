// Package ops exposes the operator runtime and the ZeroOut operator.
//
// Registration is explicit. A typical program builds one registry at
// startup and shares an Executor:
//
//	r := ops.NewRegistry()
//	if err := ops.RegisterZeroOut(r); err != nil {
//	    log.Fatal(err)
//	}
//	exec := ops.NewExecutor(r)
//
//	node := &ops.Node{
//	    OpType:     ops.ZeroOutOp,
//	    Attributes: []ops.Attribute{ops.IntAttr(ops.PreserveIndexAttr, 2)},
//	}
//	x, _ := tensor.FromSlice([]int32{5, 3, 4}, tensor.Shape{3})
//	outs, err := exec.Run(node, x) // outs[0] holds [25 9 4]
package ops

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	internalops "github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/ops/zeroout"
	"github.com/born-ml/zeroout/internal/tensor"
)

// Registry holds operator descriptors and kernel factories.
type Registry = internalops.Registry

// Executor runs nodes against a Registry.
type Executor = internalops.Executor

// ExecutorOption configures an Executor.
type ExecutorOption = internalops.ExecutorOption

// Node is one operator invocation site.
type Node = internalops.Node

// Attribute is a node attribute value.
type Attribute = internalops.Attribute

// Metrics holds the executor's Prometheus counters.
type Metrics = internalops.Metrics

// Error kinds; test with errors.Is.
var (
	ErrInvalidArgument      = internalops.ErrInvalidArgument
	ErrInvalidConfiguration = internalops.ErrInvalidConfiguration
	ErrNotFound             = internalops.ErrNotFound
	ErrAlreadyExists        = internalops.ErrAlreadyExists
)

// ZeroOut operator and attribute names.
const (
	ZeroOutOp         = zeroout.OpName
	PreserveIndexAttr = zeroout.PreserveIndexAttr
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return internalops.NewRegistry()
}

// RegisterZeroOut adds the ZeroOut operator and its kernels to r.
func RegisterZeroOut(r *Registry) error {
	return zeroout.Register(r)
}

// NewExecutor creates an executor over r.
func NewExecutor(r *Registry, opts ...ExecutorOption) *Executor {
	return internalops.NewExecutor(r, opts...)
}

// NewMetrics creates executor counters registered with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	return internalops.NewMetrics(reg)
}

// WithLogger sets the Executor's structured logger.
func WithLogger(l *slog.Logger) ExecutorOption {
	return internalops.WithLogger(l)
}

// WithMetrics enables Prometheus counters on an Executor.
func WithMetrics(m *Metrics) ExecutorOption {
	return internalops.WithMetrics(m)
}

// IntAttr builds an integer attribute.
func IntAttr(name string, v int64) Attribute {
	return internalops.IntAttr(name, v)
}

// TypeAttr builds a type attribute.
func TypeAttr(name string, dt tensor.DataType) Attribute {
	return internalops.TypeAttr(name, dt)
}

// ZeroOut squares every element of input except input[preserveIndex],
// which is copied unchanged. It returns ErrInvalidConfiguration for a
// negative index and ErrInvalidArgument when preserveIndex >= len(input).
func ZeroOut[T tensor.RealNumber](input []T, preserveIndex int64) ([]T, error) {
	return zeroout.Apply(input, preserveIndex)
}
