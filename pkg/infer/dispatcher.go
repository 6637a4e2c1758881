package infer

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// ResponsePool runs response-draining work for streamed sequences. A
// caller-supplied pool may be shared across many concurrent sequences;
// *workerpool.WorkerPool satisfies it directly. Callbacks submitted to a
// shared pool must tolerate running concurrently with callbacks of other
// sequences and must not block the pool indefinitely.
type ResponsePool interface {
	Submit(task func())
}

// RequestSender is the transmit side of one bidirectional stream.
// grpc.ClientStream satisfies it.
type RequestSender interface {
	SendMsg(m any) error
	CloseSend() error
}

// ResponseReceiver is the receive side of one bidirectional stream.
// grpc.ClientStream satisfies it.
type ResponseReceiver interface {
	RecvMsg(m any) error
}

// UnaryInvoker issues one unary call. grpc.ClientConnInterface satisfies
// it.
type UnaryInvoker interface {
	Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
}

// RelayUnary drains the sequence queue with one unary ModelInfer call per
// request, invoking the callback once per call with result or error. This
// is the fallback for servers without streaming support; requests still go
// out in FIFO order, one in flight at a time, and a failed call does not
// end the sequence.
func RelayUnary(ctx context.Context, conn UnaryInvoker, seq *SequenceMetadata, modelName, modelVersion string, opts ...grpc.CallOption) {
	for {
		req, err := seq.NextWireRequest(modelName, modelVersion)
		if errors.Is(err, ErrSequenceExhausted) {
			return
		}
		if err != nil {
			return
		}
		var resp wire.ModelInferResponse
		if err := conn.Invoke(ctx, wire.MethodModelInfer, req, &resp, opts...); err != nil {
			seq.invoke(nil, ErrorFromRPC(err))
			continue
		}
		seq.invoke(NewInferResult(&resp), nil)
	}
}

// StreamRequests drains the sequence queue onto the stream in FIFO order,
// one request in flight at a time, and half-closes the stream once the
// end-marked request has been sent. A send failure is recorded on the
// sequence so a concurrently blocked producer-side read wakes up.
func StreamRequests(stream RequestSender, seq *SequenceMetadata, modelName, modelVersion string) {
	for {
		req, err := seq.NextWireRequest(modelName, modelVersion)
		if errors.Is(err, ErrSequenceExhausted) {
			if err := stream.CloseSend(); err != nil {
				log.Error().Err(err).Int64("sequence_id", seq.SequenceID()).Msg("closing send side of inference stream failed")
			}
			return
		}
		if err != nil {
			// Terminal transport failure recorded by the reader side.
			return
		}
		if err := stream.SendMsg(req); err != nil {
			serr := ErrorFromRPC(err)
			seq.fail(serr)
			log.Error().Err(err).Int64("sequence_id", seq.SequenceID()).Msg("sending inference request on stream failed")
			return
		}
	}
}

// DrainResponses consumes the stream's responses in arrival order and
// invokes the sequence callback once per response, with a populated result
// or a populated error, never both. Responses correlate positionally with
// the requests sent on the same stream. A transport-level read failure is
// delivered to the callback as one terminal error and ends processing;
// nothing is ever raised in the draining goroutine.
func DrainResponses(stream ResponseReceiver, seq *SequenceMetadata) {
	for {
		var resp wire.ModelStreamInferResponse
		if err := stream.RecvMsg(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				// Normal stream end. Wake any blocked dequeue anyway so an
				// unfinished producer cannot park forever.
				seq.fail(ErrorFromRPC(err))
				return
			}
			serr := ErrorFromRPC(err)
			seq.fail(serr)
			seq.invoke(nil, serr)
			return
		}
		if resp.Status != nil && resp.Status.Code != 0 {
			seq.invoke(nil, &ServerError{Message: resp.Status.Message})
			continue
		}
		seq.invoke(NewInferResult(resp.InferResponse), nil)
	}
}
