package infer

import (
	"sync"

	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// Callback receives one sequence response: a populated result or a
// populated error, never both, plus the id of the sequence it belongs to.
type Callback func(result *InferResult, err error, sequenceID int64)

type queuedRequest struct {
	inputs    []*InferInput
	outputs   []*InferOutput
	requestID string
	id        int64
	start     bool
	end       bool
}

// SequenceMetadata coordinates the requests of one inference sequence: a
// FIFO queue filled by the caller (producer) and drained by the streaming
// transport (consumer). The two sides run in different goroutines and
// share nothing beyond this queue. At most one producer may add and one
// consumer may drain at a time; violating that is a caller error.
//
// A sequence moves through three states: open (requests may be added),
// closing (an end-marked request was added, the queue still drains), and
// delivered (the end-marked request was dequeued). Only a delivered
// sequence may be Reset for reuse.
type SequenceMetadata struct {
	mu   sync.Mutex
	wake *sync.Cond

	id        int64
	callback  Callback
	queue     []*queuedRequest
	start     bool
	added     bool
	delivered bool
	failure   error
}

// NewSequenceMetadata creates coordination state for a new sequence. The
// sequence id is caller-assigned and not checked for collisions.
func NewSequenceMetadata(sequenceID int64, callback Callback) *SequenceMetadata {
	s := &SequenceMetadata{
		id:       sequenceID,
		callback: callback,
		start:    true,
	}
	s.wake = sync.NewCond(&s.mu)
	return s
}

// SequenceID returns the id of the sequence currently handled.
func (s *SequenceMetadata) SequenceID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Delivered reports whether the end-marked request has been handed to the
// transport.
func (s *SequenceMetadata) Delivered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

// AddRequest enqueues one request. The first request added after creation
// or Reset carries the sequence start marker; isEnd tags the sequence's
// final request, after which further adds fail with ErrSequenceClosed.
// Queued requests are consumed exactly once.
func (s *SequenceMetadata) AddRequest(inputs []*InferInput, outputs []*InferOutput, requestID string, isEnd bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.added {
		return ErrSequenceClosed
	}
	if isEnd {
		s.added = true
	}
	s.queue = append(s.queue, &queuedRequest{
		inputs:    inputs,
		outputs:   outputs,
		requestID: requestID,
		id:        s.id,
		start:     s.start,
		end:       isEnd,
	})
	s.start = false
	s.wake.Signal()
	return nil
}

// Reset reinitializes the object for a new sequence. It fails with
// ErrSequenceNotDelivered while the current sequence is still draining. A
// nil callback keeps the current one.
func (s *SequenceMetadata) Reset(newSequenceID int64, newCallback Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.delivered {
		return ErrSequenceNotDelivered
	}
	s.id = newSequenceID
	s.start = true
	s.added = false
	s.delivered = false
	s.failure = nil
	if newCallback != nil {
		s.callback = newCallback
	}
	return nil
}

// nextRequest blocks until a request is queued and dequeues it. Reading
// past the delivered end-marked request fails with ErrSequenceExhausted; a
// transport failure recorded by fail wakes and fails any blocked call.
func (s *SequenceMetadata) nextRequest() (*queuedRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.delivered {
			return nil, ErrSequenceExhausted
		}
		if len(s.queue) > 0 {
			req := s.queue[0]
			s.queue = s.queue[1:]
			if req.end {
				s.delivered = true
			}
			return req, nil
		}
		if s.failure != nil {
			return nil, s.failure
		}
		s.wake.Wait()
	}
}

// NextWireRequest dequeues the next queued request and assembles its wire
// message, blocking until one is available. This is the single-consumer
// drain side used by the streaming driver.
func (s *SequenceMetadata) NextWireRequest(modelName, modelVersion string) (*wire.ModelInferRequest, error) {
	req, err := s.nextRequest()
	if err != nil {
		return nil, err
	}
	return buildInferRequest(req.inputs, req.outputs, modelName, modelVersion, req.requestID, &sequenceParams{
		id:    req.id,
		start: req.start,
		end:   req.end,
	})
}

// fail records a terminal transport failure and wakes any blocked
// nextRequest. A closed channel is terminal for the in-flight sequence,
// not retryable.
func (s *SequenceMetadata) fail(err error) {
	s.mu.Lock()
	if s.failure == nil {
		s.failure = err
	}
	s.mu.Unlock()
	s.wake.Broadcast()
}

// invoke runs the sequence callback with the current sequence id. The
// callback runs outside the coordinator lock.
func (s *SequenceMetadata) invoke(result *InferResult, err error) {
	s.mu.Lock()
	cb := s.callback
	id := s.id
	s.mu.Unlock()
	if cb != nil {
		cb(result, err, id)
	}
}
