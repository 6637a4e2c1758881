package client

import (
	"context"
	"io"
	"time"

	"google.golang.org/grpc"

	"github.com/nieksand/triton-inference-server/pkg/grpcclient"
	"github.com/nieksand/triton-inference-server/pkg/infer"
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

const externalServiceName = "triton"

var modelStreamInferDesc = grpc.StreamDesc{
	StreamName:    "ModelStreamInfer",
	ClientStreams: true,
	ServerStreams: true,
}

// ClientV1 represents version 1 of the inference server client
type ClientV1 struct {
	conn     grpc.ClientConnInterface
	deadline time.Duration
	closer   io.Closer
}

// NewClientV1 creates a new instance of the inference server client (v1)
func NewClientV1(config *ClientConfig, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) *ClientV1 {
	validateConfig(config)

	conn := grpcclient.NewConnFromConfig(config.grpcConfig(), externalServiceName, timing, count)

	return &ClientV1{
		conn:     conn,
		deadline: time.Duration(config.DeadLine) * time.Millisecond,
		closer:   conn,
	}
}

// newClientWithConn wires a client onto an existing connection. Used by
// tests; the caller keeps ownership of the connection.
func newClientWithConn(conn grpc.ClientConnInterface, deadline time.Duration) *ClientV1 {
	return &ClientV1{conn: conn, deadline: deadline}
}

// IsServerLive checks whether the server process is up.
func (c *ClientV1) IsServerLive(ctx context.Context) (bool, error) {
	var resp wire.ServerLiveResponse
	if err := c.invoke(ctx, wire.MethodServerLive, &wire.ServerLiveRequest{}, &resp); err != nil {
		return false, err
	}
	return resp.Live, nil
}

// IsServerReady checks whether the server is ready for inference.
func (c *ClientV1) IsServerReady(ctx context.Context) (bool, error) {
	var resp wire.ServerReadyResponse
	if err := c.invoke(ctx, wire.MethodServerReady, &wire.ServerReadyRequest{}, &resp); err != nil {
		return false, err
	}
	return resp.Ready, nil
}

// IsModelReady checks whether the named model version is loaded.
func (c *ClientV1) IsModelReady(ctx context.Context, modelName, modelVersion string) (bool, error) {
	var resp wire.ModelReadyResponse
	req := &wire.ModelReadyRequest{Name: modelName, Version: modelVersion}
	if err := c.invoke(ctx, wire.MethodModelReady, req, &resp); err != nil {
		return false, err
	}
	return resp.Ready, nil
}

// ServerMetadata returns server name, version, and extensions.
func (c *ClientV1) ServerMetadata(ctx context.Context) (*wire.ServerMetadataResponse, error) {
	var resp wire.ServerMetadataResponse
	if err := c.invoke(ctx, wire.MethodServerMetadata, &wire.ServerMetadataRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModelMetadata returns the model's input and output schema.
func (c *ClientV1) ModelMetadata(ctx context.Context, modelName, modelVersion string) (*wire.ModelMetadataResponse, error) {
	var resp wire.ModelMetadataResponse
	req := &wire.ModelMetadataRequest{Name: modelName, Version: modelVersion}
	if err := c.invoke(ctx, wire.MethodModelMetadata, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModelConfig returns the model's configuration.
func (c *ClientV1) ModelConfig(ctx context.Context, modelName, modelVersion string) (*wire.ModelConfig, error) {
	var resp wire.ModelConfigResponse
	req := &wire.ModelConfigRequest{Name: modelName, Version: modelVersion}
	if err := c.invoke(ctx, wire.MethodModelConfig, req, &resp); err != nil {
		return nil, err
	}
	return resp.Config, nil
}

// ModelRepositoryIndex lists the models in the repository.
func (c *ClientV1) ModelRepositoryIndex(ctx context.Context, repositoryName string) ([]*wire.ModelIndex, error) {
	var resp wire.RepositoryIndexResponse
	req := &wire.RepositoryIndexRequest{RepositoryName: repositoryName}
	if err := c.invoke(ctx, wire.MethodRepositoryIndex, req, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// LoadModel requests the repository to load or reload a model.
func (c *ClientV1) LoadModel(ctx context.Context, modelName string) error {
	var resp wire.RepositoryModelLoadResponse
	req := &wire.RepositoryModelLoadRequest{ModelName: modelName}
	return c.invoke(ctx, wire.MethodRepositoryModelLoad, req, &resp)
}

// UnloadModel requests the repository to unload a model.
func (c *ClientV1) UnloadModel(ctx context.Context, modelName string) error {
	var resp wire.RepositoryModelUnloadResponse
	req := &wire.RepositoryModelUnloadRequest{ModelName: modelName}
	return c.invoke(ctx, wire.MethodRepositoryModelUnload, req, &resp)
}

// SystemSharedMemoryStatus reports registered system shared-memory
// regions; an empty name selects all.
func (c *ClientV1) SystemSharedMemoryStatus(ctx context.Context, regionName string) (map[string]*wire.SystemRegionStatus, error) {
	var resp wire.SystemSharedMemoryStatusResponse
	req := &wire.SystemSharedMemoryStatusRequest{Name: regionName}
	if err := c.invoke(ctx, wire.MethodSystemSharedMemoryStatus, req, &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

// RegisterSystemSharedMemory registers a POSIX shared-memory region.
func (c *ClientV1) RegisterSystemSharedMemory(ctx context.Context, regionName, key string, byteSize, offset uint64) error {
	var resp wire.SystemSharedMemoryRegisterResponse
	req := &wire.SystemSharedMemoryRegisterRequest{
		Name:     regionName,
		Key:      key,
		Offset:   offset,
		ByteSize: byteSize,
	}
	return c.invoke(ctx, wire.MethodSystemSharedMemoryRegister, req, &resp)
}

// UnregisterSystemSharedMemory unregisters one region, or all when the
// name is empty.
func (c *ClientV1) UnregisterSystemSharedMemory(ctx context.Context, regionName string) error {
	var resp wire.SystemSharedMemoryUnregisterResponse
	req := &wire.SystemSharedMemoryUnregisterRequest{Name: regionName}
	return c.invoke(ctx, wire.MethodSystemSharedMemoryUnregister, req, &resp)
}

// CudaSharedMemoryStatus reports registered CUDA shared-memory regions.
func (c *ClientV1) CudaSharedMemoryStatus(ctx context.Context, regionName string) (map[string]*wire.CudaRegionStatus, error) {
	var resp wire.CudaSharedMemoryStatusResponse
	req := &wire.CudaSharedMemoryStatusRequest{Name: regionName}
	if err := c.invoke(ctx, wire.MethodCudaSharedMemoryStatus, req, &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

// RegisterCudaSharedMemory registers a CUDA IPC region.
func (c *ClientV1) RegisterCudaSharedMemory(ctx context.Context, regionName string, rawHandle []byte, deviceID int64, byteSize uint64) error {
	var resp wire.CudaSharedMemoryRegisterResponse
	req := &wire.CudaSharedMemoryRegisterRequest{
		Name:      regionName,
		RawHandle: rawHandle,
		DeviceID:  deviceID,
		ByteSize:  byteSize,
	}
	return c.invoke(ctx, wire.MethodCudaSharedMemoryRegister, req, &resp)
}

// UnregisterCudaSharedMemory unregisters one region, or all when the name
// is empty.
func (c *ClientV1) UnregisterCudaSharedMemory(ctx context.Context, regionName string) error {
	var resp wire.CudaSharedMemoryUnregisterResponse
	req := &wire.CudaSharedMemoryUnregisterRequest{Name: regionName}
	return c.invoke(ctx, wire.MethodCudaSharedMemoryUnregister, req, &resp)
}

// Infer runs one synchronous inference.
func (c *ClientV1) Infer(ctx context.Context, inputs []*infer.InferInput, outputs []*infer.InferOutput, modelName, modelVersion, requestID string) (*infer.InferResult, error) {
	req, err := infer.BuildInferRequest(inputs, outputs, modelName, modelVersion, requestID)
	if err != nil {
		return nil, err
	}
	var resp wire.ModelInferResponse
	if err := c.invoke(ctx, wire.MethodModelInfer, req, &resp); err != nil {
		return nil, err
	}
	return infer.NewInferResult(&resp), nil
}

// AsyncInfer runs one inference in the background and invokes callback
// exactly once with a result or an error.
func (c *ClientV1) AsyncInfer(ctx context.Context, inputs []*infer.InferInput, outputs []*infer.InferOutput, modelName, modelVersion, requestID string, callback AsyncCallback) error {
	req, err := infer.BuildInferRequest(inputs, outputs, modelName, modelVersion, requestID)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		callCtx, cancel := c.withTimeout(ctx)
		defer cancel()
		var resp wire.ModelInferResponse
		if err := c.conn.Invoke(callCtx, wire.MethodModelInfer, req, &resp, grpc.ForceCodec(wire.Codec{})); err != nil {
			callback(nil, infer.ErrorFromRPC(err))
			return
		}
		callback(infer.NewInferResult(&resp), nil)
	}()
	return nil
}

// AsyncSequenceInfer drives a sequence's queued requests in the
// background: one bidirectional stream with a writer goroutine draining
// the coordinator and a reader delivering responses through the sequence
// callback, or per-request unary calls with WithoutStreaming. The reader
// runs on its own goroutine unless WithResponsePool supplies a shared
// pool. The caller's context bounds the whole sequence; no per-request
// deadline is applied.
func (c *ClientV1) AsyncSequenceInfer(ctx context.Context, seq *infer.SequenceMetadata, modelName, modelVersion string, opts ...SequenceOption) error {
	options := sequenceOptions{streaming: true}
	for _, opt := range opts {
		opt(&options)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !options.streaming {
		relay := func() {
			infer.RelayUnary(ctx, c.conn, seq, modelName, modelVersion, grpc.ForceCodec(wire.Codec{}))
		}
		if options.pool != nil {
			options.pool.Submit(relay)
		} else {
			go relay()
		}
		return nil
	}
	stream, err := c.conn.NewStream(ctx, &modelStreamInferDesc, wire.MethodModelStreamInfer, grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return infer.ErrorFromRPC(err)
	}
	go infer.StreamRequests(stream, seq, modelName, modelVersion)
	drain := func() {
		infer.DrainResponses(stream, seq)
	}
	if options.pool != nil {
		options.pool.Submit(drain)
	} else {
		go drain()
	}
	return nil
}

// Close tears down the underlying connection.
func (c *ClientV1) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *ClientV1) invoke(ctx context.Context, method string, req wire.Marshaler, resp wire.Unmarshaler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.conn.Invoke(callCtx, method, req, resp, grpc.ForceCodec(wire.Codec{})); err != nil {
		return infer.ErrorFromRPC(err)
	}
	return nil
}

func (c *ClientV1) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.deadline <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.deadline)
}

func validateConfig(config *ClientConfig) {
	if config == nil {
		panic("Configuration is nil. Please provide a valid config.")
	}
	if len(config.Host) == 0 {
		panic("Configuration error: Host is empty. Please provide a valid host.")
	}
	if len(config.Port) == 0 && len(config.EtcdEndpoints) == 0 {
		panic("Configuration error: Port is empty. Please provide a valid port.")
	}
}
