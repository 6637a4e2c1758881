package infer

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nieksand/triton-inference-server/pkg/codec"
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// fakeStream plays both stream halves: sent requests are recorded and a
// response is released for each one, so responses correlate positionally
// with requests the way the real bidirectional stream does.
type fakeStream struct {
	mu        sync.Mutex
	sent      []*wire.ModelInferRequest
	closed    bool
	responses chan *wire.ModelStreamInferResponse
	recvErr   error

	respond func(req *wire.ModelInferRequest) *wire.ModelStreamInferResponse
}

func newFakeStream(respond func(req *wire.ModelInferRequest) *wire.ModelStreamInferResponse) *fakeStream {
	return &fakeStream{
		responses: make(chan *wire.ModelStreamInferResponse, 16),
		respond:   respond,
	}
}

func (f *fakeStream) SendMsg(m any) error {
	req := m.(*wire.ModelInferRequest)
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	if f.respond != nil {
		f.responses <- f.respond(req)
	}
	return nil
}

func (f *fakeStream) CloseSend() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	close(f.responses)
	return nil
}

func (f *fakeStream) RecvMsg(m any) error {
	resp, ok := <-f.responses
	if !ok {
		if f.recvErr != nil {
			return f.recvErr
		}
		return io.EOF
	}
	*(m.(*wire.ModelStreamInferResponse)) = *resp
	return nil
}

func (f *fakeStream) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeStream) closeCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestStreamedSequenceEndToEnd(t *testing.T) {
	stream := newFakeStream(func(req *wire.ModelInferRequest) *wire.ModelStreamInferResponse {
		return &wire.ModelStreamInferResponse{
			InferResponse: &wire.ModelInferResponse{
				ModelName: req.ModelName,
				ID:        req.ID,
				Outputs: []*wire.InferOutputTensor{{
					Name:     "OUTPUT0",
					Datatype: string(codec.TypeInt32),
					Shape:    []int64{1},
					Contents: &wire.InferTensorContents{RawContents: req.Inputs[0].Contents.RawContents},
				}},
			},
		}
	})

	var mu sync.Mutex
	var gotIDs []string
	var gotSeqIDs []int64
	done := make(chan struct{})
	seq := NewSequenceMetadata(42, func(result *InferResult, err error, sequenceID int64) {
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, err)
		gotIDs = append(gotIDs, result.ID())
		gotSeqIDs = append(gotSeqIDs, sequenceID)
		if len(gotIDs) == 3 {
			close(done)
		}
	})

	readerDone := make(chan struct{})
	go func() {
		DrainResponses(stream, seq)
		close(readerDone)
	}()
	go StreamRequests(stream, seq, "accumulate", "")

	ids := []string{"r0", "r1", "r2"}
	for i, id := range ids {
		assert.NoError(t, seq.AddRequest(seqInput(t, int32(i)), []*InferOutput{NewInferOutput("OUTPUT0")}, id, i == 2))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callbacks did not all arrive")
	}
	select {
	case <-readerDone:
	case <-time.After(time.Second):
		t.Fatal("reader did not observe stream end")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, []int64{42, 42, 42}, gotSeqIDs)
	assert.Equal(t, 3, stream.sentCount())
	assert.True(t, stream.closeCalled())
}

func TestDrainResponsesErrorStatus(t *testing.T) {
	stream := newFakeStream(nil)
	stream.responses <- &wire.ModelStreamInferResponse{
		Status: &wire.StreamStatus{Code: 13, Message: "inference failed"},
	}
	close(stream.responses)

	var gotErr error
	seq := NewSequenceMetadata(1, func(result *InferResult, err error, sequenceID int64) {
		assert.Nil(t, result)
		gotErr = err
	})

	DrainResponses(stream, seq)

	var serr *ServerError
	assert.True(t, errors.As(gotErr, &serr))
	assert.Equal(t, "inference failed", serr.Message)
}

func TestDrainResponsesTransportFailure(t *testing.T) {
	stream := newFakeStream(nil)
	stream.recvErr = status.Error(codes.Unavailable, "transport closing")
	close(stream.responses)

	var mu sync.Mutex
	var terminal []error
	seq := NewSequenceMetadata(9, func(result *InferResult, err error, sequenceID int64) {
		mu.Lock()
		defer mu.Unlock()
		terminal = append(terminal, err)
	})

	DrainResponses(stream, seq)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, terminal, 1)
	var serr *ServerError
	assert.True(t, errors.As(terminal[0], &serr))
	assert.Equal(t, codes.Unavailable.String(), serr.Status)

	// The recorded failure also unblocks the producer-consumer queue.
	_, err := seq.NextWireRequest("m", "")
	assert.Error(t, err)
}

func TestDrainResponsesEOFWakesProducerWithoutCallback(t *testing.T) {
	stream := newFakeStream(nil)
	close(stream.responses)

	callbacks := 0
	seq := NewSequenceMetadata(3, func(result *InferResult, err error, sequenceID int64) {
		callbacks++
	})

	DrainResponses(stream, seq)
	assert.Equal(t, 0, callbacks)

	_, err := seq.NextWireRequest("m", "")
	assert.Error(t, err)
}

func TestResponsePoolRunsDrain(t *testing.T) {
	stream := newFakeStream(nil)
	stream.responses <- &wire.ModelStreamInferResponse{
		InferResponse: &wire.ModelInferResponse{ID: "pooled"},
	}
	close(stream.responses)

	done := make(chan string, 1)
	seq := NewSequenceMetadata(1, func(result *InferResult, err error, sequenceID int64) {
		done <- result.ID()
	})

	pool := &inlinePool{}
	pool.Submit(func() { DrainResponses(stream, seq) })

	select {
	case id := <-done:
		assert.Equal(t, "pooled", id)
	case <-time.After(time.Second):
		t.Fatal("pooled drain never ran")
	}
}

type inlinePool struct{}

func (inlinePool) Submit(task func()) { go task() }
