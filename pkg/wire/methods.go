package wire

// Full method names of the inference.GRPCInferenceService RPCs.
const (
	MethodServerLive                   = "/inference.GRPCInferenceService/ServerLive"
	MethodServerReady                  = "/inference.GRPCInferenceService/ServerReady"
	MethodModelReady                   = "/inference.GRPCInferenceService/ModelReady"
	MethodServerMetadata               = "/inference.GRPCInferenceService/ServerMetadata"
	MethodModelMetadata                = "/inference.GRPCInferenceService/ModelMetadata"
	MethodModelConfig                  = "/inference.GRPCInferenceService/ModelConfig"
	MethodRepositoryIndex              = "/inference.GRPCInferenceService/RepositoryIndex"
	MethodRepositoryModelLoad          = "/inference.GRPCInferenceService/RepositoryModelLoad"
	MethodRepositoryModelUnload        = "/inference.GRPCInferenceService/RepositoryModelUnload"
	MethodSystemSharedMemoryStatus     = "/inference.GRPCInferenceService/SystemSharedMemoryStatus"
	MethodSystemSharedMemoryRegister   = "/inference.GRPCInferenceService/SystemSharedMemoryRegister"
	MethodSystemSharedMemoryUnregister = "/inference.GRPCInferenceService/SystemSharedMemoryUnregister"
	MethodCudaSharedMemoryStatus       = "/inference.GRPCInferenceService/CudaSharedMemoryStatus"
	MethodCudaSharedMemoryRegister     = "/inference.GRPCInferenceService/CudaSharedMemoryRegister"
	MethodCudaSharedMemoryUnregister   = "/inference.GRPCInferenceService/CudaSharedMemoryUnregister"
	MethodModelInfer                   = "/inference.GRPCInferenceService/ModelInfer"
	MethodModelStreamInfer             = "/inference.GRPCInferenceService/ModelStreamInfer"
)
