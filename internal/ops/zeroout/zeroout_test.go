package zeroout

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/tensor"
)

func newExecutor(t *testing.T) *ops.Executor {
	t.Helper()
	r := ops.NewRegistry()
	require.NoError(t, Register(r))
	return ops.NewExecutor(r)
}

func zeroOutNode(preserveIndex int64) *ops.Node {
	return &ops.Node{
		Name:       "zero_out",
		OpType:     OpName,
		Attributes: []ops.Attribute{ops.IntAttr(PreserveIndexAttr, preserveIndex)},
	}
}

func run[T tensor.RealNumber](t *testing.T, e *ops.Executor, node *ops.Node, data []T, shape tensor.Shape) ([]T, error) {
	t.Helper()
	in, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)

	outs, err := e.Run(node, in)
	if err != nil {
		return nil, err
	}
	require.Len(t, outs, 1)
	assert.True(t, in.Shape().Equal(outs[0].Shape()))

	got, err := tensor.Flat[T](outs[0])
	require.NoError(t, err)
	return got, nil
}

func TestRegister(t *testing.T) {
	r := ops.NewRegistry()
	require.NoError(t, Register(r))

	def, err := r.LookupOp(OpName)
	require.NoError(t, err)
	require.Len(t, def.Inputs, 1)
	require.Len(t, def.Outputs, 1)
	assert.Equal(t, InputName, def.Inputs[0].Name)
	assert.Equal(t, OutputName, def.Outputs[0].Name)

	ta, ok := def.Attr(TypeAttrName)
	require.True(t, ok)
	assert.Equal(t, tensor.Int32, ta.DefaultType)

	pa, ok := def.Attr(PreserveIndexAttr)
	require.True(t, ok)
	assert.Equal(t, int64(0), pa.DefaultInt)

	assert.Equal(t, tensor.RealNumberTypes(), r.KernelTypes(OpName))
}

func TestRegisterTwice(t *testing.T) {
	r := ops.NewRegistry()
	require.NoError(t, Register(r))

	err := Register(r)
	assert.ErrorIs(t, err, ops.ErrAlreadyExists)
}

func TestCompute_PreserveFirst(t *testing.T) {
	e := newExecutor(t)

	got, err := run(t, e, zeroOutNode(0), []int32{5, 3, 4}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 9, 16}, got)
}

// Index 0 is squared like any other index when it is not preserved.
// A squaring loop that starts at 1 would leave output[0] at its allocated
// zero value instead.
func TestCompute_IndexZeroSquaredWhenNotPreserved(t *testing.T) {
	e := newExecutor(t)

	got, err := run(t, e, zeroOutNode(2), []int32{5, 3, 4}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, int32(4), got[2])
	assert.Equal(t, int32(9), got[1])
	assert.Equal(t, int32(25), got[0])
}

func TestCompute_DefaultPreserveIndex(t *testing.T) {
	e := newExecutor(t)
	node := &ops.Node{OpType: OpName}

	got, err := run(t, e, node, []float32{-2, 1.5, 3}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []float32{-2, 2.25, 9}, got)
}

func TestCompute_IndexOutOfRange(t *testing.T) {
	e := newExecutor(t)

	_, err := run(t, e, zeroOutNode(1), []int32{7}, tensor.Shape{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ops.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "preserve_index out of range")
}

func TestCompute_RejectsNonVector(t *testing.T) {
	tests := []struct {
		name  string
		data  []int32
		shape tensor.Shape
	}{
		{"scalar", []int32{3}, tensor.Shape{}},
		{"matrix", []int32{1, 2, 3, 4}, tensor.Shape{2, 2}},
		{"rank3", []int32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, idx := range []int64{0, 1, 10} {
				e := newExecutor(t)
				got, err := run(t, e, zeroOutNode(idx), tt.data, tt.shape)
				require.Error(t, err)
				assert.Nil(t, got)
				assert.ErrorIs(t, err, ops.ErrInvalidArgument)
				assert.Contains(t, err.Error(), "expects a 1-D vector")
			}
		})
	}
}

func TestCompute_FailedCallLeavesKernelUsable(t *testing.T) {
	e := newExecutor(t)
	node := zeroOutNode(2)

	_, err := run(t, e, node, []int64{1, 2}, tensor.Shape{2})
	require.ErrorIs(t, err, ops.ErrInvalidArgument)

	got, err := run(t, e, node, []int64{1, 2, 3, 4}, tensor.Shape{4})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 3, 16}, got)
}

func TestCompute_Idempotent(t *testing.T) {
	e := newExecutor(t)
	node := zeroOutNode(1)
	in, err := tensor.FromSlice([]float64{1.5, -2, 3, 0.5}, tensor.Shape{4})
	require.NoError(t, err)
	before := in.Clone()

	first, err := e.Run(node, in)
	require.NoError(t, err)
	second, err := e.Run(node, in)
	require.NoError(t, err)

	assert.Equal(t, first[0].Data(), second[0].Data())
	assert.Equal(t, before.Data(), in.Data(), "input must not be mutated")
}

func TestCompute_AllRealTypes(t *testing.T) {
	e := newExecutor(t)
	node := zeroOutNode(1)

	f32, err := run(t, e, node, []float32{2, 3, 4}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 3, 16}, f32)

	f64, err := run(t, e, node, []float64{2, 3, 4}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 3, 16}, f64)

	i8, err := run(t, e, node, []int8{-2, -3, 4}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []int8{4, -3, 16}, i8)

	i16, err := run(t, e, node, []int16{2, 3, 100}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []int16{4, 3, 10000}, i16)

	i64, err := run(t, e, node, []int64{2, 3, 1 << 20}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 1 << 40}, i64)

	u8, err := run(t, e, node, []uint8{2, 3, 15}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []uint8{4, 3, 225}, u8)

	u16, err := run(t, e, node, []uint16{2, 3, 255}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []uint16{4, 3, 65025}, u16)

	u32, err := run(t, e, node, []uint32{2, 3, 65535}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 3, 4294836225}, u32)

	u64, err := run(t, e, node, []uint64{2, 3, 1 << 31}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 3, 1 << 62}, u64)
}

func TestCompute_NativeOverflow(t *testing.T) {
	got, err := Apply([]int8{1, 16, -12}, 0)
	require.NoError(t, err)
	// 16*16 = 256 wraps to 0; (-12)^2 = 144 wraps to -112.
	assert.Equal(t, []int8{1, 0, -112}, got)

	got32, err := Apply([]int32{0, 65536}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got32[1])

	gotF, err := Apply([]float32{0, math.MaxFloat32}, 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(gotF[1]), 1))
}

func TestCompute_PreservedNaN(t *testing.T) {
	got, err := Apply([]float64{math.NaN(), 2}, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 4.0, got[1])
}

func TestApply_Properties(t *testing.T) {
	input := []int64{3, -1, 0, 7, 12, -5, 2}

	for idx := range input {
		got, err := Apply(input, int64(idx))
		require.NoError(t, err)
		require.Len(t, got, len(input))

		for i, v := range input {
			if i == idx {
				assert.Equal(t, v, got[i], "preserved index %d", idx)
				continue
			}
			assert.Equal(t, v*v, got[i], "index %d with preserve %d", i, idx)
		}
	}

	_, err := Apply(input, int64(len(input)))
	assert.ErrorIs(t, err, ops.ErrInvalidArgument)
}

func TestApply_EmptyInput(t *testing.T) {
	_, err := Apply([]float32{}, 0)
	assert.ErrorIs(t, err, ops.ErrInvalidArgument)
}

func TestNewKernel(t *testing.T) {
	k, err := NewKernel[int32](0)
	require.NoError(t, err)
	assert.Equal(t, 0, k.PreserveIndex())

	k64, err := NewKernel[float64](5)
	require.NoError(t, err)
	assert.Equal(t, 5, k64.PreserveIndex())

	_, err = NewKernel[int32](-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ops.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "need preserve_index >= 0, got -1")
}

func TestNew_FromConstruction(t *testing.T) {
	def := OpDef()
	node := zeroOutNode(3)

	k, err := New[uint8](ops.NewKernelConstruction(def, node, tensor.Uint8))
	require.NoError(t, err)
	assert.Equal(t, 3, k.PreserveIndex())

	bad := &ops.Node{OpType: OpName, Attributes: []ops.Attribute{ops.TypeAttr(PreserveIndexAttr, tensor.Int32)}}
	_, err = New[uint8](ops.NewKernelConstruction(def, bad, tensor.Uint8))
	assert.ErrorIs(t, err, ops.ErrInvalidConfiguration)
}

func TestExecutor_NegativePreserveIndexIsSetupError(t *testing.T) {
	e := newExecutor(t)
	node := zeroOutNode(-1)

	for i := 0; i < 2; i++ {
		_, err := run(t, e, node, []int32{1, 2, 3}, tensor.Shape{3})
		require.Error(t, err)
		assert.ErrorIs(t, err, ops.ErrInvalidConfiguration)
		assert.False(t, errors.Is(err, ops.ErrInvalidArgument))
	}
}

func TestCompute_ConcurrentCallsShareKernel(t *testing.T) {
	e := newExecutor(t)
	node := zeroOutNode(2)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			n := 3 + w
			data := make([]int64, n)
			for i := range data {
				data[i] = int64(i + w)
			}
			in, err := tensor.FromSlice(data, tensor.Shape{n})
			if err != nil {
				errs <- err
				return
			}
			outs, err := e.Run(node, in)
			if err != nil {
				errs <- err
				return
			}
			got, _ := tensor.Flat[int64](outs[0])
			for i, v := range data {
				want := v * v
				if i == 2 {
					want = v
				}
				if got[i] != want {
					errs <- errors.New("unexpected output under concurrency")
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
