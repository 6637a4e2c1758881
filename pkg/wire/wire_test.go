package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestModelInferRequestRoundTrip(t *testing.T) {
	req := &ModelInferRequest{
		ModelName:    "simple",
		ModelVersion: "2",
		ID:           "req-7",
		Parameters: map[string]InferParameter{
			"sequence_id":    Int64Parameter(42),
			"sequence_start": BoolParameter(true),
		},
		Inputs: []*InferInputTensor{
			{
				Name:     "INPUT0",
				Datatype: "INT32",
				Shape:    []int64{1, 16},
				Contents: &InferTensorContents{RawContents: []byte{1, 0, 0, 0, 2, 0, 0, 0}},
			},
		},
		Outputs: []*InferRequestedOutputTensor{
			{Name: "OUTPUT0"},
			{
				Name: "OUTPUT1",
				Parameters: map[string]InferParameter{
					"shared_memory_region": StringParameter("out1"),
				},
			},
		},
	}

	data, err := req.MarshalWire()
	assert.NoError(t, err)

	var got ModelInferRequest
	assert.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, "simple", got.ModelName)
	assert.Equal(t, "2", got.ModelVersion)
	assert.Equal(t, "req-7", got.ID)

	seqID, ok := got.Parameters["sequence_id"].Int64Value()
	assert.True(t, ok)
	assert.Equal(t, int64(42), seqID)
	start, ok := got.Parameters["sequence_start"].BoolValue()
	assert.True(t, ok)
	assert.True(t, start)

	assert.Len(t, got.Inputs, 1)
	assert.Equal(t, "INPUT0", got.Inputs[0].Name)
	assert.Equal(t, "INT32", got.Inputs[0].Datatype)
	assert.Equal(t, []int64{1, 16}, got.Inputs[0].Shape)
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, got.Inputs[0].Contents.RawContents)

	assert.Len(t, got.Outputs, 2)
	region, ok := got.Outputs[1].Parameters["shared_memory_region"].StringValue()
	assert.True(t, ok)
	assert.Equal(t, "out1", region)
}

func TestMarshalDeterministicParameterOrder(t *testing.T) {
	req := &ModelInferRequest{
		ModelName: "m",
		Parameters: map[string]InferParameter{
			"sequence_start": BoolParameter(true),
			"sequence_end":   BoolParameter(true),
			"sequence_id":    Int64Parameter(9),
		},
	}
	first, err := req.MarshalWire()
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := req.MarshalWire()
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestOneofPresenceForFalseBool(t *testing.T) {
	// sequence_start=false must still encode the oneof member.
	var entry []byte
	entry = appendParameters(entry, 4, map[string]InferParameter{
		"sequence_start": BoolParameter(false),
	})
	assert.NotEmpty(t, entry)

	var got ModelInferRequest
	assert.NoError(t, got.UnmarshalWire(entry))
	v, ok := got.Parameters["sequence_start"].BoolValue()
	assert.True(t, ok)
	assert.False(t, v)
}

func TestModelStreamInferResponseUnmarshal(t *testing.T) {
	// Build the server-side bytes field by field.
	var status []byte
	status = protowire.AppendTag(status, 1, protowire.VarintType)
	status = protowire.AppendVarint(status, 0)

	var output []byte
	output = protowire.AppendTag(output, 1, protowire.BytesType)
	output = protowire.AppendString(output, "OUTPUT0")
	output = protowire.AppendTag(output, 2, protowire.BytesType)
	output = protowire.AppendString(output, "FP32")
	output = protowire.AppendTag(output, 3, protowire.BytesType)
	output = protowire.AppendBytes(output, []byte{2})

	var contents []byte
	contents = protowire.AppendTag(contents, 1, protowire.BytesType)
	contents = protowire.AppendBytes(contents, []byte{0, 0, 128, 63, 0, 0, 0, 64})
	output = protowire.AppendTag(output, 5, protowire.BytesType)
	output = protowire.AppendBytes(output, contents)

	var inner []byte
	inner = protowire.AppendTag(inner, 1, protowire.BytesType)
	inner = protowire.AppendString(inner, "simple")
	inner = protowire.AppendTag(inner, 5, protowire.BytesType)
	inner = protowire.AppendBytes(inner, output)

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.BytesType)
	msg = protowire.AppendBytes(msg, status)
	msg = protowire.AppendTag(msg, 2, protowire.BytesType)
	msg = protowire.AppendBytes(msg, inner)

	var got ModelStreamInferResponse
	assert.NoError(t, got.UnmarshalWire(msg))
	assert.NotNil(t, got.Status)
	assert.Equal(t, uint32(0), got.Status.Code)
	assert.NotNil(t, got.InferResponse)
	assert.Equal(t, "simple", got.InferResponse.ModelName)
	assert.Len(t, got.InferResponse.Outputs, 1)
	assert.Equal(t, "OUTPUT0", got.InferResponse.Outputs[0].Name)
	assert.Equal(t, []int64{2}, got.InferResponse.Outputs[0].Shape)
	assert.Equal(t, []byte{0, 0, 128, 63, 0, 0, 0, 64}, got.InferResponse.Outputs[0].Contents.RawContents)
}

func TestStreamErrorStatusUnmarshal(t *testing.T) {
	var status []byte
	status = protowire.AppendTag(status, 1, protowire.VarintType)
	status = protowire.AppendVarint(status, 13)
	status = protowire.AppendTag(status, 2, protowire.BytesType)
	status = protowire.AppendString(status, "inference failed")

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.BytesType)
	msg = protowire.AppendBytes(msg, status)

	var got ModelStreamInferResponse
	assert.NoError(t, got.UnmarshalWire(msg))
	assert.Equal(t, uint32(13), got.Status.Code)
	assert.Equal(t, "inference failed", got.Status.Message)
	assert.Nil(t, got.InferResponse)
}

func TestSystemSharedMemoryStatusResponseUnmarshal(t *testing.T) {
	var region []byte
	region = protowire.AppendTag(region, 1, protowire.BytesType)
	region = protowire.AppendString(region, "in0")
	region = protowire.AppendTag(region, 2, protowire.BytesType)
	region = protowire.AppendString(region, "/in0_shm")
	region = protowire.AppendTag(region, 4, protowire.VarintType)
	region = protowire.AppendVarint(region, 64)

	var entry []byte
	entry = protowire.AppendTag(entry, 1, protowire.BytesType)
	entry = protowire.AppendString(entry, "in0")
	entry = protowire.AppendTag(entry, 2, protowire.BytesType)
	entry = protowire.AppendBytes(entry, region)

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.BytesType)
	msg = protowire.AppendBytes(msg, entry)

	var got SystemSharedMemoryStatusResponse
	assert.NoError(t, got.UnmarshalWire(msg))
	assert.Len(t, got.Regions, 1)
	assert.Equal(t, "/in0_shm", got.Regions["in0"].Key)
	assert.Equal(t, uint64(64), got.Regions["in0"].ByteSize)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 1)
	// A field this client does not know about.
	msg = protowire.AppendTag(msg, 99, protowire.BytesType)
	msg = protowire.AppendBytes(msg, []byte("future extension"))

	var got ServerLiveResponse
	assert.NoError(t, got.UnmarshalWire(msg))
	assert.True(t, got.Live)
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	var c Codec
	_, err := c.Marshal(struct{}{})
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal(nil, struct{}{}))
}

func TestEmptyRequestsMarshalEmpty(t *testing.T) {
	for _, m := range []Marshaler{
		&ServerLiveRequest{},
		&ServerReadyRequest{},
		&ServerMetadataRequest{},
	} {
		data, err := m.MarshalWire()
		assert.NoError(t, err)
		assert.Empty(t, data)
	}
}
