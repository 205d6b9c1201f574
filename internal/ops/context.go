package ops

import (
	"fmt"

	"github.com/born-ml/zeroout/internal/tensor"
)

// Kernel is one per-dtype instantiation of an operator.
//
// Compute reads inputs and allocates outputs through ctx. A non-nil error is
// the kernel's way of reporting failure to the host; outputs of a failed call
// are discarded.
type Kernel interface {
	Compute(ctx *KernelContext) error
}

// KernelFactory constructs a kernel for a node. Returning an error marks the
// kernel as unusable; the host never calls Compute on it.
type KernelFactory func(c *KernelConstruction) (Kernel, error)

// KernelConstruction gives a kernel factory access to the node's resolved
// attributes.
type KernelConstruction struct {
	def   *OpDef
	node  *Node
	dtype tensor.DataType
}

// NewKernelConstruction builds a construction context. The Executor does
// this for every kernel it instantiates; tests may call it directly.
func NewKernelConstruction(def *OpDef, node *Node, dtype tensor.DataType) *KernelConstruction {
	return &KernelConstruction{def: def, node: node, dtype: dtype}
}

// OpName returns the operator being constructed.
func (c *KernelConstruction) OpName() string {
	return c.def.Name
}

// DataType returns the resolved kernel element type.
func (c *KernelConstruction) DataType() tensor.DataType {
	return c.dtype
}

// GetAttrInt returns the node's value of an integer attribute, falling back
// to the op default.
func (c *KernelConstruction) GetAttrInt(name string) (int64, error) {
	a, ok := c.def.Attr(name)
	if !ok || a.Kind != AttrInt {
		return 0, fmt.Errorf("%w: op %s has no int attribute %q", ErrInvalidConfiguration, c.def.Name, name)
	}
	if v, ok := c.node.attr(name); ok && v.Kind != AttrInt {
		return 0, fmt.Errorf("%w: attribute %q must be %s, got %s", ErrInvalidConfiguration, name, AttrInt, v.Kind)
	}
	return GetAttrInt(c.node, name, a.DefaultInt), nil
}

// KernelContext is handed to Kernel.Compute for one invocation. It owns the
// input tensors for reading and the outputs the kernel allocates.
type KernelContext struct {
	def     *OpDef
	dtype   tensor.DataType
	inputs  []*tensor.RawTensor
	outputs []*tensor.RawTensor
}

// NewKernelContext builds an invocation context with one empty output slot
// per output of def.
func NewKernelContext(def *OpDef, dtype tensor.DataType, inputs []*tensor.RawTensor) *KernelContext {
	return &KernelContext{
		def:     def,
		dtype:   dtype,
		inputs:  inputs,
		outputs: make([]*tensor.RawTensor, len(def.Outputs)),
	}
}

// NumInputs returns the number of inputs.
func (ctx *KernelContext) NumInputs() int {
	return len(ctx.inputs)
}

// Input returns input i. It panics if i is out of range, like a slice index.
func (ctx *KernelContext) Input(i int) *tensor.RawTensor {
	return ctx.inputs[i]
}

// AllocateOutput allocates zeroed output i with the given shape and the
// kernel's element type.
func (ctx *KernelContext) AllocateOutput(i int, shape tensor.Shape) (*tensor.RawTensor, error) {
	if i < 0 || i >= len(ctx.outputs) {
		return nil, fmt.Errorf("op %s: output index %d out of range [0, %d)", ctx.def.Name, i, len(ctx.outputs))
	}
	if ctx.outputs[i] != nil {
		return nil, fmt.Errorf("op %s: output %d already allocated", ctx.def.Name, i)
	}

	out, err := tensor.NewRaw(shape, ctx.dtype)
	if err != nil {
		return nil, fmt.Errorf("op %s: allocate output %d: %w", ctx.def.Name, i, err)
	}
	ctx.outputs[i] = out
	return out, nil
}

// Output returns output i, or nil if it has not been allocated.
func (ctx *KernelContext) Output(i int) *tensor.RawTensor {
	return ctx.outputs[i]
}

// Outputs returns all output slots.
func (ctx *KernelContext) Outputs() []*tensor.RawTensor {
	return ctx.outputs
}
