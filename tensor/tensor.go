// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types operator kernels consume
// and produce.
//
// Example:
//
//	x, err := tensor.FromSlice([]int32{5, 3, 4}, tensor.Shape{3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, _ := tensor.Flat[int32](x)
package tensor

import (
	"github.com/born-ml/zeroout/internal/tensor"
)

// Type aliases for public API

// RealNumber is the constraint for element types kernels are instantiated for.
// Supported types: float32, float64, int8, int16, int32, int64, uint8,
// uint16, uint32, uint64.
type RealNumber = tensor.RealNumber

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int8    DataType = tensor.Int8
	Int16   DataType = tensor.Int16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Uint16  DataType = tensor.Uint16
	Uint32  DataType = tensor.Uint32
	Uint64  DataType = tensor.Uint64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{3} is a vector of three elements; Shape{} is a scalar.
type Shape = tensor.Shape

// RawTensor is a contiguous tensor tagged with its shape and data type.
type RawTensor = tensor.RawTensor

// FromSlice creates a tensor from a Go slice, copying the data.
func FromSlice[T RealNumber](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Flat returns a zero-copy typed view of the tensor's elements.
func Flat[T RealNumber](r *RawTensor) ([]T, error) {
	return tensor.Flat[T](r)
}

// ParseDataType maps a name such as "int32" to its DataType.
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}
