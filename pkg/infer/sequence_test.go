package infer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nieksand/triton-inference-server/pkg/codec"
)

func seqInput(t *testing.T, v int32) []*InferInput {
	t.Helper()
	in := NewInferInput("INPUT0", codec.TypeInt32, []int64{1})
	assert.NoError(t, in.SetData([]int32{v}))
	return []*InferInput{in}
}

func TestSequenceFIFODrain(t *testing.T) {
	seq := NewSequenceMetadata(42, nil)

	for i := 0; i < 5; i++ {
		err := seq.AddRequest(seqInput(t, int32(i)), nil, "", i == 4)
		assert.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		req, err := seq.NextWireRequest("m", "")
		assert.NoError(t, err)

		id, ok := req.Parameters["sequence_id"].Int64Value()
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)

		start, _ := req.Parameters["sequence_start"].BoolValue()
		assert.Equal(t, i == 0, start)
		end, _ := req.Parameters["sequence_end"].BoolValue()
		assert.Equal(t, i == 4, end)

		got, err := codec.Decode(req.Inputs[0].Contents.RawContents, codec.TypeInt32, []int64{1})
		assert.NoError(t, err)
		assert.Equal(t, []int32{int32(i)}, got)
	}

	assert.True(t, seq.Delivered())
	_, err := seq.NextWireRequest("m", "")
	assert.True(t, errors.Is(err, ErrSequenceExhausted))
}

func TestSequenceAddAfterEnd(t *testing.T) {
	seq := NewSequenceMetadata(7, nil)
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", true))
	err := seq.AddRequest(seqInput(t, 2), nil, "", false)
	assert.True(t, errors.Is(err, ErrSequenceClosed))
}

func TestSequenceEndOnlyRequestIsStartAndEnd(t *testing.T) {
	seq := NewSequenceMetadata(7, nil)
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", true))

	req, err := seq.NextWireRequest("m", "")
	assert.NoError(t, err)
	start, _ := req.Parameters["sequence_start"].BoolValue()
	assert.True(t, start)
	end, _ := req.Parameters["sequence_end"].BoolValue()
	assert.True(t, end)
}

func TestSequenceResetBeforeDelivered(t *testing.T) {
	seq := NewSequenceMetadata(1, nil)
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", false))
	err := seq.Reset(2, nil)
	assert.True(t, errors.Is(err, ErrSequenceNotDelivered))
}

func TestSequenceResetAfterDelivered(t *testing.T) {
	var calls []int64
	seq := NewSequenceMetadata(1, func(result *InferResult, err error, sequenceID int64) {
		calls = append(calls, sequenceID)
	})
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", true))
	_, err := seq.NextWireRequest("m", "")
	assert.NoError(t, err)

	assert.NoError(t, seq.Reset(2, nil))
	assert.Equal(t, int64(2), seq.SequenceID())
	assert.False(t, seq.Delivered())

	// Callback carried over; first request of the new sequence restarts.
	assert.NoError(t, seq.AddRequest(seqInput(t, 9), nil, "", true))
	req, err := seq.NextWireRequest("m", "")
	assert.NoError(t, err)
	start, _ := req.Parameters["sequence_start"].BoolValue()
	assert.True(t, start)
	id, _ := req.Parameters["sequence_id"].Int64Value()
	assert.Equal(t, int64(2), id)

	seq.invoke(nil, nil)
	assert.Equal(t, []int64{2}, calls)
}

func TestSequenceResetReplacesCallback(t *testing.T) {
	var first, second int
	seq := NewSequenceMetadata(1, func(*InferResult, error, int64) { first++ })
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", true))
	_, err := seq.NextWireRequest("m", "")
	assert.NoError(t, err)

	assert.NoError(t, seq.Reset(2, func(*InferResult, error, int64) { second++ }))
	seq.invoke(nil, nil)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestSequenceBlockingDequeueWakesOnAdd(t *testing.T) {
	seq := NewSequenceMetadata(5, nil)

	got := make(chan error, 1)
	go func() {
		_, err := seq.NextWireRequest("m", "")
		got <- err
	}()

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", true))

	select {
	case err := <-got:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake after add")
	}
}

func TestSequenceBlockingDequeueWakesOnFailure(t *testing.T) {
	seq := NewSequenceMetadata(5, nil)

	got := make(chan error, 1)
	go func() {
		_, err := seq.NextWireRequest("m", "")
		got <- err
	}()

	time.Sleep(20 * time.Millisecond)
	seq.fail(&ServerError{Message: "stream closed", Status: "UNAVAILABLE"})

	select {
	case err := <-got:
		var serr *ServerError
		assert.True(t, errors.As(err, &serr))
		assert.Equal(t, "UNAVAILABLE", serr.Status)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake after failure")
	}
}

func TestSequenceQueuedRequestsDrainBeforeFailure(t *testing.T) {
	seq := NewSequenceMetadata(5, nil)
	assert.NoError(t, seq.AddRequest(seqInput(t, 1), nil, "", false))
	seq.fail(&ServerError{Message: "stream closed"})

	_, err := seq.NextWireRequest("m", "")
	assert.NoError(t, err)
	_, err = seq.NextWireRequest("m", "")
	var serr *ServerError
	assert.True(t, errors.As(err, &serr))
}
