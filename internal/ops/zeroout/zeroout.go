// Package zeroout implements the ZeroOut operator: every element of a 1-D
// input is squared except the one at preserve_index, which is copied through
// unchanged.
//
// Element 0 is handled like every other element. For preserve_index = 2 and
// input [5, 3, 4] the output is [25, 9, 4].
package zeroout

import (
	"fmt"

	"github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/tensor"
)

// Operator, slot and attribute names.
const (
	OpName            = "ZeroOut"
	InputName         = "to_zero"
	OutputName        = "zeroed"
	TypeAttrName      = "T"
	PreserveIndexAttr = "preserve_index"
)

// OpDef returns the ZeroOut descriptor.
func OpDef() *ops.OpDef {
	return ops.NewOpDef(OpName).
		Input(InputName, TypeAttrName).
		Output(OutputName, TypeAttrName).
		TypeAttr(TypeAttrName, tensor.RealNumberTypes(), tensor.Int32).
		IntAttr(PreserveIndexAttr, 0)
}

// Register adds the ZeroOut descriptor and a CPU kernel for every
// real-number type to r. Call it once during startup.
func Register(r *ops.Registry) error {
	if err := r.RegisterOp(OpDef()); err != nil {
		return err
	}

	regs := []func(*ops.Registry) error{
		registerKernel[float32],
		registerKernel[float64],
		registerKernel[int8],
		registerKernel[int16],
		registerKernel[int32],
		registerKernel[int64],
		registerKernel[uint8],
		registerKernel[uint16],
		registerKernel[uint32],
		registerKernel[uint64],
	}
	for _, reg := range regs {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

func registerKernel[T tensor.RealNumber](r *ops.Registry) error {
	return r.RegisterKernel(OpName, tensor.DataTypeOf[T](), func(c *ops.KernelConstruction) (ops.Kernel, error) {
		k, err := New[T](c)
		if err != nil {
			return nil, err
		}
		return k, nil
	})
}

// Kernel is ZeroOut instantiated for element type T.
// It holds no mutable state and is safe for concurrent use.
type Kernel[T tensor.RealNumber] struct {
	preserveIndex int
}

// New constructs a kernel from the node's preserve_index attribute.
func New[T tensor.RealNumber](c *ops.KernelConstruction) (*Kernel[T], error) {
	idx, err := c.GetAttrInt(PreserveIndexAttr)
	if err != nil {
		return nil, err
	}
	return NewKernel[T](idx)
}

// NewKernel constructs a kernel with an explicit preserve index.
func NewKernel[T tensor.RealNumber](preserveIndex int64) (*Kernel[T], error) {
	if preserveIndex < 0 {
		return nil, fmt.Errorf("%w: need preserve_index >= 0, got %d", ops.ErrInvalidConfiguration, preserveIndex)
	}
	return &Kernel[T]{preserveIndex: int(preserveIndex)}, nil
}

// PreserveIndex returns the index copied through unchanged.
func (k *Kernel[T]) PreserveIndex() int {
	return k.preserveIndex
}

// Compute implements ops.Kernel.
func (k *Kernel[T]) Compute(ctx *ops.KernelContext) error {
	in := ctx.Input(0)
	if !in.Shape().IsVector() {
		return fmt.Errorf("%w: ZeroOut expects a 1-D vector, got shape %v", ops.ErrInvalidArgument, in.Shape())
	}

	input, err := tensor.Flat[T](in)
	if err != nil {
		return fmt.Errorf("%w: %w", ops.ErrInvalidArgument, err)
	}

	out, err := ctx.AllocateOutput(0, in.Shape())
	if err != nil {
		return err
	}
	output, err := tensor.Flat[T](out)
	if err != nil {
		return err
	}

	return k.apply(input, output)
}

// apply writes the transform of input into output; both have length N.
func (k *Kernel[T]) apply(input, output []T) error {
	if k.preserveIndex >= len(input) {
		return fmt.Errorf("%w: preserve_index out of range: %d >= %d", ops.ErrInvalidArgument, k.preserveIndex, len(input))
	}

	for i, v := range input {
		output[i] = v * v
	}
	output[k.preserveIndex] = input[k.preserveIndex]
	return nil
}

// Apply runs ZeroOut on a plain slice and returns a new slice.
func Apply[T tensor.RealNumber](input []T, preserveIndex int64) ([]T, error) {
	k, err := NewKernel[T](preserveIndex)
	if err != nil {
		return nil, err
	}
	output := make([]T, len(input))
	if err := k.apply(input, output); err != nil {
		return nil, err
	}
	return output, nil
}
