package tensor

import (
	"fmt"
	"strconv"
)

// ParseValues builds a tensor of the given type and shape from textual
// element values. A nil shape means a vector of len(values) elements.
func ParseValues(dtype DataType, shape Shape, values []string) (*RawTensor, error) {
	if shape == nil {
		shape = Shape{len(values)}
	}

	switch dtype {
	case Float32:
		return parseFloat[float32](shape, values, 32)
	case Float64:
		return parseFloat[float64](shape, values, 64)
	case Int8:
		return parseInt[int8](shape, values, 8)
	case Int16:
		return parseInt[int16](shape, values, 16)
	case Int32:
		return parseInt[int32](shape, values, 32)
	case Int64:
		return parseInt[int64](shape, values, 64)
	case Uint8:
		return parseUint[uint8](shape, values, 8)
	case Uint16:
		return parseUint[uint16](shape, values, 16)
	case Uint32:
		return parseUint[uint32](shape, values, 32)
	case Uint64:
		return parseUint[uint64](shape, values, 64)
	default:
		return nil, fmt.Errorf("unsupported data type %s", dtype)
	}
}

func parseFloat[T ~float32 | ~float64](shape Shape, values []string, bits int) (*RawTensor, error) {
	data := make([]T, len(values))
	for i, s := range values {
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		data[i] = T(v)
	}
	return FromSlice(data, shape)
}

func parseInt[T ~int8 | ~int16 | ~int32 | ~int64](shape Shape, values []string, bits int) (*RawTensor, error) {
	data := make([]T, len(values))
	for i, s := range values {
		v, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		data[i] = T(v)
	}
	return FromSlice(data, shape)
}

func parseUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](shape Shape, values []string, bits int) (*RawTensor, error) {
	data := make([]T, len(values))
	for i, s := range values {
		v, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		data[i] = T(v)
	}
	return FromSlice(data, shape)
}
