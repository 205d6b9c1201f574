package ops

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/born-ml/zeroout/internal/tensor"
)

type kernelKey struct {
	op    string
	dtype tensor.DataType
}

// Registry maps operator names to descriptors and (operator, dtype) pairs to
// kernel factories. It is owned by the caller; registration normally happens
// once during startup and lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	ops     map[string]*OpDef
	kernels map[kernelKey]KernelFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:     make(map[string]*OpDef),
		kernels: make(map[kernelKey]KernelFactory),
	}
}

// RegisterOp adds an operator descriptor.
func (r *Registry) RegisterOp(def *OpDef) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[def.Name]; ok {
		return fmt.Errorf("op %s: %w", def.Name, ErrAlreadyExists)
	}
	r.ops[def.Name] = def
	return nil
}

// RegisterKernel adds the kernel factory for op instantiated at dtype.
// The op must be registered and dtype must satisfy its type constraint.
func (r *Registry) RegisterKernel(op string, dtype tensor.DataType, factory KernelFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.ops[op]
	if !ok {
		return fmt.Errorf("op %s: %w", op, ErrNotFound)
	}
	if ta, ok := def.KernelTypeAttr(); ok && !ta.Allows(dtype) {
		return fmt.Errorf("op %s: %s is not allowed for attribute %q", op, dtype, ta.Name)
	}

	key := kernelKey{op: op, dtype: dtype}
	if _, ok := r.kernels[key]; ok {
		return fmt.Errorf("kernel %s<%s>: %w", op, dtype, ErrAlreadyExists)
	}
	r.kernels[key] = factory
	return nil
}

// LookupOp returns the descriptor for an operator.
func (r *Registry) LookupOp(op string) (*OpDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.ops[op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %s: %w", op, ErrNotFound)
	}
	return def, nil
}

// LookupKernel returns the kernel factory for op at dtype.
func (r *Registry) LookupKernel(op string, dtype tensor.DataType) (KernelFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.kernels[kernelKey{op: op, dtype: dtype}]
	if !ok {
		return nil, fmt.Errorf("no %s kernel for %s: %w", op, dtype, ErrNotFound)
	}
	return f, nil
}

// SupportedOps returns the registered operator names, sorted.
func (r *Registry) SupportedOps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]string, 0, len(r.ops))
	for op := range r.ops {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// KernelTypes returns the dtypes op has kernels for, sorted.
func (r *Registry) KernelTypes(op string) []tensor.DataType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []tensor.DataType
	for key := range r.kernels {
		if key.op == op {
			types = append(types, key.dtype)
		}
	}
	slices.Sort(types)
	return types
}
