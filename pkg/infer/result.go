package infer

import (
	"github.com/nieksand/triton-inference-server/pkg/codec"
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// InferResult wraps one inference response and decodes its output tensors
// on demand.
type InferResult struct {
	resp *wire.ModelInferResponse
}

// NewInferResult wraps a decoded wire response.
func NewInferResult(resp *wire.ModelInferResponse) *InferResult {
	return &InferResult{resp: resp}
}

// ID returns the request id echoed by the server.
func (r *InferResult) ID() string {
	return r.resp.ID
}

// ModelName returns the model that produced the response.
func (r *InferResult) ModelName() string {
	return r.resp.ModelName
}

// Output decodes the named output tensor into its typed slice form
// ([]int32, []float32, [][]byte, ...). Returns nil when the response holds
// no tensor with that name.
func (r *InferResult) Output(name string) (any, error) {
	out := r.output(name)
	if out == nil {
		return nil, nil
	}
	datatype := codec.DataType(out.Datatype)
	if out.Contents == nil {
		return nil, nil
	}
	if len(out.Contents.RawContents) == 0 && len(out.Contents.ByteContents) > 0 {
		// BYTES results may come back element-per-element instead of as
		// one length-prefixed block.
		if want := codec.ElementCount(out.Shape); int64(len(out.Contents.ByteContents)) != want {
			return nil, invalidArgumentf("output %q holds %d elements, shape %v declares %d",
				name, len(out.Contents.ByteContents), out.Shape, want)
		}
		return out.Contents.ByteContents, nil
	}
	return codec.Decode(out.Contents.RawContents, datatype, out.Shape)
}

// RawOutput returns the named output's raw payload, datatype, and shape
// without decoding. The last return reports whether the output exists.
func (r *InferResult) RawOutput(name string) ([]byte, codec.DataType, []int64, bool) {
	out := r.output(name)
	if out == nil {
		return nil, "", nil, false
	}
	var raw []byte
	if out.Contents != nil {
		raw = out.Contents.RawContents
	}
	return raw, codec.DataType(out.Datatype), out.Shape, true
}

// RawStatistics returns the opaque request statistics blob, if the server
// sent one.
func (r *InferResult) RawStatistics() []byte {
	return r.resp.RawStatistics
}

// Response exposes the underlying wire message.
func (r *InferResult) Response() *wire.ModelInferResponse {
	return r.resp
}

func (r *InferResult) output(name string) *wire.InferOutputTensor {
	for _, out := range r.resp.Outputs {
		if out.Name == name {
			return out
		}
	}
	return nil
}
