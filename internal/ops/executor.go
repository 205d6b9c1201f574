package ops

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/born-ml/zeroout/internal/tensor"
)

type instanceKey struct {
	node  *Node
	dtype tensor.DataType
}

// Executor runs nodes against a registry. Kernels are constructed on first
// use and cached per (node, dtype); a failed construction is not cached.
// An Executor is safe for concurrent use.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *Metrics

	mu      sync.Mutex
	kernels map[instanceKey]Kernel
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an executor over r.
func NewExecutor(r *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: r,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		kernels:  make(map[instanceKey]Kernel),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes node on inputs and returns its outputs.
func (e *Executor) Run(node *Node, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	def, err := e.registry.LookupOp(node.OpType)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(def.Inputs) {
		return nil, fmt.Errorf("%w: %s requires %d inputs, got %d", ErrInvalidArgument, def.Name, len(def.Inputs), len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: %s input %d is nil", ErrInvalidArgument, def.Name, i)
		}
	}

	dtype, err := resolveKernelType(def, node, inputs)
	if err != nil {
		return nil, err
	}

	kernel, err := e.kernel(def, node, dtype)
	if err != nil {
		return nil, err
	}

	ctx := NewKernelContext(def, dtype, inputs)
	err = kernel.Compute(ctx)
	e.metrics.observeInvocation(def.Name, dtype, err)
	if err != nil {
		e.logger.Warn("kernel compute failed",
			"op", def.Name, "node", node.Name, "dtype", dtype.String(), "error", err)
		return nil, fmt.Errorf("%s: %w", describe(node), err)
	}

	for i, out := range ctx.Outputs() {
		if out == nil {
			return nil, fmt.Errorf("%s: kernel did not allocate output %d", describe(node), i)
		}
	}
	return ctx.Outputs(), nil
}

// kernel returns the cached kernel for (node, dtype), constructing it if
// needed.
func (e *Executor) kernel(def *OpDef, node *Node, dtype tensor.DataType) (Kernel, error) {
	key := instanceKey{node: node, dtype: dtype}

	e.mu.Lock()
	defer e.mu.Unlock()

	if k, ok := e.kernels[key]; ok {
		return k, nil
	}

	factory, err := e.registry.LookupKernel(def.Name, dtype)
	if err != nil {
		return nil, err
	}

	k, err := factory(NewKernelConstruction(def, node, dtype))
	e.metrics.observeConstruction(def.Name, dtype, err)
	if err != nil {
		if !errors.Is(err, ErrInvalidConfiguration) {
			err = fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		e.logger.Warn("kernel construction failed",
			"op", def.Name, "node", node.Name, "dtype", dtype.String(), "error", err)
		return nil, fmt.Errorf("%s: %w", describe(node), err)
	}

	e.logger.Debug("kernel constructed", "op", def.Name, "node", node.Name, "dtype", dtype.String())
	e.kernels[key] = k
	return k, nil
}

// resolveKernelType picks the element type of the kernel: the node's type
// attribute if set, otherwise the dtype of the first input bound to it,
// otherwise the attribute default.
func resolveKernelType(def *OpDef, node *Node, inputs []*tensor.RawTensor) (tensor.DataType, error) {
	ta, ok := def.KernelTypeAttr()
	if !ok {
		return 0, fmt.Errorf("op %s declares no type attribute", def.Name)
	}

	dtype := ta.DefaultType
	explicit := false
	if a, ok := node.attr(ta.Name); ok {
		if a.Kind != AttrType {
			return 0, fmt.Errorf("%w: attribute %q must be %s, got %s", ErrInvalidArgument, ta.Name, AttrType, a.Kind)
		}
		dtype, explicit = a.Type, true
	}

	for i, arg := range def.Inputs {
		if arg.TypeAttr != ta.Name {
			continue
		}
		got := inputs[i].DType()
		if !explicit {
			dtype, explicit = got, true
			continue
		}
		if got != dtype {
			return 0, fmt.Errorf("%w: %s input %q has dtype %s, expected %s",
				ErrInvalidArgument, def.Name, arg.Name, got, dtype)
		}
	}

	if !ta.Allows(dtype) {
		return 0, fmt.Errorf("%w: %s does not allow %s for attribute %q", ErrInvalidArgument, def.Name, dtype, ta.Name)
	}
	return dtype, nil
}

func describe(node *Node) string {
	if node.Name == "" {
		return node.OpType
	}
	return fmt.Sprintf("%s (%s)", node.OpType, node.Name)
}
