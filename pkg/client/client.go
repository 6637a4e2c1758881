package client

import (
	"context"

	"github.com/nieksand/triton-inference-server/pkg/infer"
	"github.com/nieksand/triton-inference-server/pkg/wire"
)

// AsyncCallback receives the outcome of one unary-async inference: a
// populated result or a populated error, never both.
type AsyncCallback func(result *infer.InferResult, err error)

// InferenceServerClient defines the full inference.GRPCInferenceService
// surface.
type InferenceServerClient interface {
	// IsServerLive checks whether the server process is up.
	IsServerLive(ctx context.Context) (bool, error)
	// IsServerReady checks whether the server is ready for inference.
	IsServerReady(ctx context.Context) (bool, error)
	// IsModelReady checks whether the named model version is loaded.
	IsModelReady(ctx context.Context, modelName, modelVersion string) (bool, error)
	// ServerMetadata returns server name, version, and extensions.
	ServerMetadata(ctx context.Context) (*wire.ServerMetadataResponse, error)
	// ModelMetadata returns the model's input and output schema.
	ModelMetadata(ctx context.Context, modelName, modelVersion string) (*wire.ModelMetadataResponse, error)
	// ModelConfig returns the model's configuration.
	ModelConfig(ctx context.Context, modelName, modelVersion string) (*wire.ModelConfig, error)
	// ModelRepositoryIndex lists the models in the repository.
	ModelRepositoryIndex(ctx context.Context, repositoryName string) ([]*wire.ModelIndex, error)
	// LoadModel requests the repository to load or reload a model.
	LoadModel(ctx context.Context, modelName string) error
	// UnloadModel requests the repository to unload a model.
	UnloadModel(ctx context.Context, modelName string) error

	// SystemSharedMemoryStatus reports registered system regions; an empty
	// name selects all.
	SystemSharedMemoryStatus(ctx context.Context, regionName string) (map[string]*wire.SystemRegionStatus, error)
	// RegisterSystemSharedMemory registers a POSIX shared-memory region.
	RegisterSystemSharedMemory(ctx context.Context, regionName, key string, byteSize, offset uint64) error
	// UnregisterSystemSharedMemory unregisters one region, or all when the
	// name is empty.
	UnregisterSystemSharedMemory(ctx context.Context, regionName string) error
	// CudaSharedMemoryStatus reports registered CUDA regions.
	CudaSharedMemoryStatus(ctx context.Context, regionName string) (map[string]*wire.CudaRegionStatus, error)
	// RegisterCudaSharedMemory registers a CUDA IPC region.
	RegisterCudaSharedMemory(ctx context.Context, regionName string, rawHandle []byte, deviceID int64, byteSize uint64) error
	// UnregisterCudaSharedMemory unregisters one region, or all when the
	// name is empty.
	UnregisterCudaSharedMemory(ctx context.Context, regionName string) error

	// Infer runs one synchronous inference.
	Infer(ctx context.Context, inputs []*infer.InferInput, outputs []*infer.InferOutput, modelName, modelVersion, requestID string) (*infer.InferResult, error)
	// AsyncInfer runs one inference in the background and invokes callback
	// exactly once.
	AsyncInfer(ctx context.Context, inputs []*infer.InferInput, outputs []*infer.InferOutput, modelName, modelVersion, requestID string, callback AsyncCallback) error
	// AsyncSequenceInfer drives a sequence's queued requests over one
	// bidirectional stream (or per-request unary calls with
	// WithoutStreaming), delivering responses through the sequence
	// callback.
	AsyncSequenceInfer(ctx context.Context, seq *infer.SequenceMetadata, modelName, modelVersion string, opts ...SequenceOption) error

	// Close tears down the underlying connection.
	Close() error
}
