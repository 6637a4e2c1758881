package infer

import (
	"github.com/nieksand/triton-inference-server/pkg/codec"
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// Parameter keys recognized by the server for shared-memory tensors.
const (
	ParamSharedMemoryRegion   = "shared_memory_region"
	ParamSharedMemoryByteSize = "shared_memory_byte_size"
	ParamSharedMemoryOffset   = "shared_memory_offset"
)

// InferInput describes one input tensor of an inference request: name,
// shape, datatype, optional parameters, and the serialized payload. A
// descriptor may be reused across requests; the builder never mutates it.
type InferInput struct {
	name       string
	datatype   codec.DataType
	shape      []int64
	parameters map[string]wire.InferParameter
	raw        []byte
	hasData    bool
}

// NewInferInput creates an input descriptor. Shape and datatype may be zero
// here and supplied later through SetData, but must be set before the
// descriptor is serialized into a request.
func NewInferInput(name string, datatype codec.DataType, shape []int64) *InferInput {
	return &InferInput{
		name:     name,
		datatype: datatype,
		shape:    append([]int64(nil), shape...),
	}
}

func (in *InferInput) Name() string {
	return in.name
}

func (in *InferInput) Datatype() codec.DataType {
	return in.datatype
}

func (in *InferInput) Shape() []int64 {
	return in.shape
}

// SetShape replaces the declared shape.
func (in *InferInput) SetShape(shape []int64) {
	in.shape = append([]int64(nil), shape...)
}

// SetData encodes value with the descriptor's datatype and attaches the
// resulting payload.
func (in *InferInput) SetData(value any) error {
	raw, err := codec.Encode(value, in.datatype)
	if err != nil {
		return err
	}
	in.raw = raw
	in.hasData = true
	return nil
}

// SetRaw attaches an already-encoded payload as-is.
func (in *InferInput) SetRaw(raw []byte) {
	in.raw = raw
	in.hasData = true
}

// SetParameter adds one key/value pair to the input's parameter map. Values
// may be int, int64, bool, or string; the last write per key wins.
func (in *InferInput) SetParameter(key string, value any) error {
	p, err := toParameter(value)
	if err != nil {
		return err
	}
	if in.parameters == nil {
		in.parameters = make(map[string]wire.InferParameter)
	}
	in.parameters[key] = p
	return nil
}

// ClearParameters drops all parameters added so far.
func (in *InferInput) ClearParameters() {
	in.parameters = nil
}

// SetSharedMemory tags the input as residing in a registered shared-memory
// region instead of carrying inline payload bytes.
func (in *InferInput) SetSharedMemory(regionName string, byteSize, offset int64) {
	if in.parameters == nil {
		in.parameters = make(map[string]wire.InferParameter)
	}
	in.parameters[ParamSharedMemoryRegion] = wire.StringParameter(regionName)
	in.parameters[ParamSharedMemoryByteSize] = wire.Int64Parameter(byteSize)
	if offset != 0 {
		in.parameters[ParamSharedMemoryOffset] = wire.Int64Parameter(offset)
	}
	in.raw = nil
	in.hasData = false
}

func (in *InferInput) wireTensor() (*wire.InferInputTensor, error) {
	if !in.datatype.Valid() {
		return nil, invalidArgumentf("input %q has no datatype set", in.name)
	}
	if in.shape == nil {
		return nil, invalidArgumentf("input %q has no shape set", in.name)
	}
	t := &wire.InferInputTensor{
		Name:       in.name,
		Datatype:   string(in.datatype),
		Shape:      in.shape,
		Parameters: copyParameters(in.parameters),
	}
	if in.hasData {
		t.Contents = &wire.InferTensorContents{RawContents: in.raw}
	}
	return t, nil
}

// InferOutput describes one requested output tensor.
type InferOutput struct {
	name       string
	parameters map[string]wire.InferParameter
}

func NewInferOutput(name string) *InferOutput {
	return &InferOutput{name: name}
}

func (out *InferOutput) Name() string {
	return out.name
}

// SetParameter adds one key/value pair to the output's parameter map.
func (out *InferOutput) SetParameter(key string, value any) error {
	p, err := toParameter(value)
	if err != nil {
		return err
	}
	if out.parameters == nil {
		out.parameters = make(map[string]wire.InferParameter)
	}
	out.parameters[key] = p
	return nil
}

// ClearParameters drops all parameters added so far.
func (out *InferOutput) ClearParameters() {
	out.parameters = nil
}

// SetSharedMemory requests the output be written into a registered
// shared-memory region.
func (out *InferOutput) SetSharedMemory(regionName string, byteSize, offset int64) {
	if out.parameters == nil {
		out.parameters = make(map[string]wire.InferParameter)
	}
	out.parameters[ParamSharedMemoryRegion] = wire.StringParameter(regionName)
	out.parameters[ParamSharedMemoryByteSize] = wire.Int64Parameter(byteSize)
	if offset != 0 {
		out.parameters[ParamSharedMemoryOffset] = wire.Int64Parameter(offset)
	}
}

func (out *InferOutput) wireTensor() *wire.InferRequestedOutputTensor {
	return &wire.InferRequestedOutputTensor{
		Name:       out.name,
		Parameters: copyParameters(out.parameters),
	}
}

func toParameter(value any) (wire.InferParameter, error) {
	switch v := value.(type) {
	case bool:
		return wire.BoolParameter(v), nil
	case int:
		return wire.Int64Parameter(int64(v)), nil
	case int64:
		return wire.Int64Parameter(v), nil
	case string:
		return wire.StringParameter(v), nil
	default:
		return wire.InferParameter{}, invalidArgumentf("unsupported parameter value type %T", value)
	}
}

func copyParameters(params map[string]wire.InferParameter) map[string]wire.InferParameter {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]wire.InferParameter, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
