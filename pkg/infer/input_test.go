package infer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nieksand/triton-inference-server/pkg/codec"
)

func TestBuildInferRequestOrdering(t *testing.T) {
	in0 := NewInferInput("INPUT0", codec.TypeInt32, []int64{1, 16})
	assert.NoError(t, in0.SetData(make([]int32, 16)))
	in1 := NewInferInput("INPUT1", codec.TypeInt32, []int64{1, 16})
	assert.NoError(t, in1.SetData(make([]int32, 16)))

	out0 := NewInferOutput("OUTPUT0")
	out1 := NewInferOutput("OUTPUT1")

	req, err := BuildInferRequest([]*InferInput{in0, in1}, []*InferOutput{out0, out1}, "simple", "", "req-1")
	assert.NoError(t, err)

	assert.Equal(t, "simple", req.ModelName)
	assert.Equal(t, "", req.ModelVersion)
	assert.Equal(t, "req-1", req.ID)
	assert.Len(t, req.Inputs, 2)
	assert.Equal(t, "INPUT0", req.Inputs[0].Name)
	assert.Equal(t, "INPUT1", req.Inputs[1].Name)
	assert.Len(t, req.Outputs, 2)
	assert.Equal(t, "OUTPUT0", req.Outputs[0].Name)
	assert.Nil(t, req.Parameters)
}

func TestBuildInferRequestUnsetDatatype(t *testing.T) {
	in := NewInferInput("INPUT0", "", []int64{4})
	_, err := BuildInferRequest([]*InferInput{in}, nil, "simple", "", "")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestBuildInferRequestUnsetShape(t *testing.T) {
	in := NewInferInput("INPUT0", codec.TypeInt32, nil)
	_, err := BuildInferRequest([]*InferInput{in}, nil, "simple", "", "")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestSharedMemoryInputParameters(t *testing.T) {
	in := NewInferInput("INPUT0", codec.TypeInt32, []int64{1, 16})
	in.SetSharedMemory("in0", 64, 0)

	req, err := BuildInferRequest([]*InferInput{in}, nil, "simple", "", "")
	assert.NoError(t, err)
	assert.Len(t, req.Inputs, 1)

	params := req.Inputs[0].Parameters
	region, ok := params[ParamSharedMemoryRegion].StringValue()
	assert.True(t, ok)
	assert.Equal(t, "in0", region)
	size, ok := params[ParamSharedMemoryByteSize].Int64Value()
	assert.True(t, ok)
	assert.Equal(t, int64(64), size)
	// Zero offset is implicit.
	_, ok = params[ParamSharedMemoryOffset].Int64Value()
	assert.False(t, ok)
	// Shared-memory inputs carry no inline payload.
	assert.Nil(t, req.Inputs[0].Contents)
}

func TestSetParameterLastWriteWins(t *testing.T) {
	in := NewInferInput("INPUT0", codec.TypeInt32, []int64{1})
	assert.NoError(t, in.SetParameter("priority", int64(1)))
	assert.NoError(t, in.SetParameter("priority", int64(7)))

	req, err := BuildInferRequest([]*InferInput{in}, nil, "m", "", "")
	assert.NoError(t, err)
	v, ok := req.Inputs[0].Parameters["priority"].Int64Value()
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestSetParameterRejectsUnsupportedType(t *testing.T) {
	in := NewInferInput("INPUT0", codec.TypeInt32, []int64{1})
	err := in.SetParameter("bad", 1.5)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDescriptorReuseAcrossRequests(t *testing.T) {
	in := NewInferInput("INPUT0", codec.TypeFp32, []int64{2})
	assert.NoError(t, in.SetData([]float32{1, 2}))
	out := NewInferOutput("OUTPUT0")

	first, err := BuildInferRequest([]*InferInput{in}, []*InferOutput{out}, "m", "", "")
	assert.NoError(t, err)
	second, err := BuildInferRequest([]*InferInput{in}, []*InferOutput{out}, "m", "", "")
	assert.NoError(t, err)

	assert.Equal(t, first.Inputs[0].Contents.RawContents, second.Inputs[0].Contents.RawContents)
}

func TestOutputSetParameter(t *testing.T) {
	out := NewInferOutput("OUTPUT0")
	assert.NoError(t, out.SetParameter("classification", int64(3)))
	t0 := out.wireTensor()
	v, ok := t0.Parameters["classification"].Int64Value()
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	out.ClearParameters()
	t1 := out.wireTensor()
	assert.Empty(t, t1.Parameters)
}
