package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is the low-level tensor representation: a contiguous row-major
// byte buffer tagged with its shape and runtime data type.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid data type: %d", int(dtype))
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T RealNumber](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}

	dst, err := Flat[T](raw)
	if err != nil {
		return nil, err
	}
	copy(dst, data)

	return raw, nil
}

// Flat interprets the tensor's memory as a flat []T without copying.
// Writes through the returned slice modify the tensor.
func Flat[T RealNumber](r *RawTensor) ([]T, error) {
	if want := DataTypeOf[T](); r.dtype != want {
		return nil, fmt.Errorf("tensor dtype is %s, not %s", r.dtype, want)
	}
	if len(r.data) == 0 {
		return nil, nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), r.NumElements()), nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		data:   append([]byte(nil), r.data...),
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Values returns the elements boxed as interface values, for display.
func (r *RawTensor) Values() []any {
	switch r.dtype {
	case Float32:
		return boxed[float32](r)
	case Float64:
		return boxed[float64](r)
	case Int8:
		return boxed[int8](r)
	case Int16:
		return boxed[int16](r)
	case Int32:
		return boxed[int32](r)
	case Int64:
		return boxed[int64](r)
	case Uint8:
		return boxed[uint8](r)
	case Uint16:
		return boxed[uint16](r)
	case Uint32:
		return boxed[uint32](r)
	case Uint64:
		return boxed[uint64](r)
	default:
		return nil
	}
}

func boxed[T RealNumber](r *RawTensor) []any {
	data, _ := Flat[T](r)
	out := make([]any, len(data))
	for i, v := range data {
		out[i] = v
	}
	return out
}

// String returns a compact description such as "int32[3]".
func (r *RawTensor) String() string {
	return fmt.Sprintf("%s%v", r.dtype, []int(r.shape))
}
