package infer

import (
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

type sequenceParams struct {
	id    int64
	start bool
	end   bool
}

// BuildInferRequest assembles one wire request from ordered input and
// output descriptors. It performs no transport work; descriptor validation
// failures surface as ErrInvalidArgument.
func BuildInferRequest(inputs []*InferInput, outputs []*InferOutput, modelName, modelVersion, requestID string) (*wire.ModelInferRequest, error) {
	return buildInferRequest(inputs, outputs, modelName, modelVersion, requestID, nil)
}

func buildInferRequest(inputs []*InferInput, outputs []*InferOutput, modelName, modelVersion, requestID string, seq *sequenceParams) (*wire.ModelInferRequest, error) {
	req := &wire.ModelInferRequest{
		ModelName:    modelName,
		ModelVersion: modelVersion,
		ID:           requestID,
	}
	for _, in := range inputs {
		t, err := in.wireTensor()
		if err != nil {
			return nil, err
		}
		req.Inputs = append(req.Inputs, t)
	}
	for _, out := range outputs {
		req.Outputs = append(req.Outputs, out.wireTensor())
	}
	if seq != nil {
		req.Parameters = map[string]wire.InferParameter{
			"sequence_id": wire.Int64Parameter(seq.id),
		}
		if seq.start {
			req.Parameters["sequence_start"] = wire.BoolParameter(true)
		}
		if seq.end {
			req.Parameters["sequence_end"] = wire.BoolParameter(true)
		}
	}
	return req, nil
}
