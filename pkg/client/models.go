package client

import (
	"github.com/nieksand/triton-inference-server/pkg/grpcclient"
	"github.com/nieksand/triton-inference-server/pkg/infer"
)

// ClientConfig holds the connection settings for one inference server.
type ClientConfig struct {
	Host                string
	Port                string
	DeadLine            int
	PlainText           bool
	LoadBalancingPolicy string
	EtcdEndpoints       []string
}

func (c *ClientConfig) grpcConfig() *grpcclient.Config {
	return &grpcclient.Config{
		Host:                c.Host,
		Port:                c.Port,
		DeadLine:            c.DeadLine,
		PlainText:           c.PlainText,
		LoadBalancingPolicy: c.LoadBalancingPolicy,
		EtcdEndpoints:       c.EtcdEndpoints,
	}
}

type sequenceOptions struct {
	pool      infer.ResponsePool
	streaming bool
}

// SequenceOption configures one AsyncSequenceInfer call.
type SequenceOption func(*sequenceOptions)

// WithResponsePool drains responses on a caller-supplied shared pool
// instead of a dedicated goroutine. *workerpool.WorkerPool satisfies
// infer.ResponsePool.
func WithResponsePool(pool infer.ResponsePool) SequenceOption {
	return func(o *sequenceOptions) {
		o.pool = pool
	}
}

// WithoutStreaming sends the sequence's requests as individual unary calls
// instead of over one bidirectional stream, for servers without streaming
// support.
func WithoutStreaming() SequenceOption {
	return func(o *sequenceOptions) {
		o.streaming = false
	}
}
