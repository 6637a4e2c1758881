package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Health and metadata messages.

type ServerLiveRequest struct{}

func (*ServerLiveRequest) MarshalWire() ([]byte, error) { return nil, nil }

type ServerLiveResponse struct {
	Live bool // field 1
}

func (m *ServerLiveResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.VarintType {
			m.Live = r.varint() != 0
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

type ServerReadyRequest struct{}

func (*ServerReadyRequest) MarshalWire() ([]byte, error) { return nil, nil }

type ServerReadyResponse struct {
	Ready bool // field 1
}

func (m *ServerReadyResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.VarintType {
			m.Ready = r.varint() != 0
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

type ModelReadyRequest struct {
	Name    string // field 1
	Version string // field 2
}

func (m *ModelReadyRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	b = appendStringField(b, 2, m.Version)
	return b, nil
}

type ModelReadyResponse struct {
	Ready bool // field 1
}

func (m *ModelReadyResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.VarintType {
			m.Ready = r.varint() != 0
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

type ServerMetadataRequest struct{}

func (*ServerMetadataRequest) MarshalWire() ([]byte, error) { return nil, nil }

type ServerMetadataResponse struct {
	Name       string   // field 1
	Version    string   // field 2
	Extensions []string // field 3
}

func (m *ServerMetadataResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Name = string(r.bytes())
		case 2:
			m.Version = string(r.bytes())
		case 3:
			m.Extensions = append(m.Extensions, string(r.bytes()))
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type ModelMetadataRequest struct {
	Name    string // field 1
	Version string // field 2
}

func (m *ModelMetadataRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	b = appendStringField(b, 2, m.Version)
	return b, nil
}

// TensorMetadata describes one model input or output slot.
type TensorMetadata struct {
	Name     string  // field 1
	Datatype string  // field 2
	Shape    []int64 // field 3
}

func (t *TensorMetadata) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			t.Name = string(r.bytes())
		case 2:
			t.Datatype = string(r.bytes())
		case 3:
			t.Shape = consumeInt64s(&r, typ, t.Shape)
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type ModelMetadataResponse struct {
	Name     string            // field 1
	Versions []string          // field 2
	Platform string            // field 3
	Inputs   []*TensorMetadata // field 4
	Outputs  []*TensorMetadata // field 5
}

func (m *ModelMetadataResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Name = string(r.bytes())
		case 2:
			m.Versions = append(m.Versions, string(r.bytes()))
		case 3:
			m.Platform = string(r.bytes())
		case 4:
			in := &TensorMetadata{}
			if err := in.unmarshal(r.bytes()); err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, in)
		case 5:
			out := &TensorMetadata{}
			if err := out.unmarshal(r.bytes()); err != nil {
				return err
			}
			m.Outputs = append(m.Outputs, out)
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type ModelConfigRequest struct {
	Name    string // field 1
	Version string // field 2
}

func (m *ModelConfigRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	b = appendStringField(b, 2, m.Version)
	return b, nil
}

// ModelConfig decodes the scalar configuration fields the SDK surfaces.
// The upstream config message is much larger; unrecognized fields are
// skipped.
type ModelConfig struct {
	Name         string // field 1
	Platform     string // field 2
	MaxBatchSize int32  // field 4
}

func (c *ModelConfig) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			c.Name = string(r.bytes())
		case num == 2 && typ == protowire.BytesType:
			c.Platform = string(r.bytes())
		case num == 4 && typ == protowire.VarintType:
			c.MaxBatchSize = int32(r.varint())
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type ModelConfigResponse struct {
	Config *ModelConfig // field 1
}

func (m *ModelConfigResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.BytesType {
			m.Config = &ModelConfig{}
			if err := m.Config.unmarshal(r.bytes()); err != nil {
				return err
			}
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

// Model repository messages.

type RepositoryIndexRequest struct {
	RepositoryName string // field 1
}

func (m *RepositoryIndexRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.RepositoryName)
	return b, nil
}

type ModelIndex struct {
	Name    string // field 1
	Version string // field 2
	State   string // field 3
	Reason  string // field 4
}

func (m *ModelIndex) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Name = string(r.bytes())
		case 2:
			m.Version = string(r.bytes())
		case 3:
			m.State = string(r.bytes())
		case 4:
			m.Reason = string(r.bytes())
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type RepositoryIndexResponse struct {
	Models []*ModelIndex // field 1
}

func (m *RepositoryIndexResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.BytesType {
			idx := &ModelIndex{}
			if err := idx.unmarshal(r.bytes()); err != nil {
				return err
			}
			m.Models = append(m.Models, idx)
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

type RepositoryModelLoadRequest struct {
	ModelName string // field 1
}

func (m *RepositoryModelLoadRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.ModelName)
	return b, nil
}

type RepositoryModelLoadResponse struct{}

func (*RepositoryModelLoadResponse) UnmarshalWire([]byte) error { return nil }

type RepositoryModelUnloadRequest struct {
	ModelName string // field 1
}

func (m *RepositoryModelUnloadRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.ModelName)
	return b, nil
}

type RepositoryModelUnloadResponse struct{}

func (*RepositoryModelUnloadResponse) UnmarshalWire([]byte) error { return nil }

// System shared memory messages.

type SystemSharedMemoryStatusRequest struct {
	Name string // field 1, empty selects all regions
}

func (m *SystemSharedMemoryStatusRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	return b, nil
}

// SystemRegionStatus reports one registered system shared-memory region.
type SystemRegionStatus struct {
	Name     string // field 1
	Key      string // field 2
	Offset   uint64 // field 3
	ByteSize uint64 // field 4
}

func (s *SystemRegionStatus) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			s.Name = string(r.bytes())
		case num == 2 && typ == protowire.BytesType:
			s.Key = string(r.bytes())
		case num == 3 && typ == protowire.VarintType:
			s.Offset = r.varint()
		case num == 4 && typ == protowire.VarintType:
			s.ByteSize = r.varint()
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type SystemSharedMemoryStatusResponse struct {
	Regions map[string]*SystemRegionStatus // field 1
}

func (m *SystemSharedMemoryStatusResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.BytesType {
			if m.Regions == nil {
				m.Regions = make(map[string]*SystemRegionStatus)
			}
			if err := consumeRegionEntry(r.bytes(), m.Regions); err != nil {
				return err
			}
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

func consumeRegionEntry(data []byte, regions map[string]*SystemRegionStatus) error {
	r := reader{buf: data}
	var key string
	status := &SystemRegionStatus{}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			key = string(r.bytes())
		case num == 2 && typ == protowire.BytesType:
			if err := status.unmarshal(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return r.err
	}
	regions[key] = status
	return nil
}

type SystemSharedMemoryRegisterRequest struct {
	Name     string // field 1
	Key      string // field 2
	Offset   uint64 // field 3
	ByteSize uint64 // field 4
}

func (m *SystemSharedMemoryRegisterRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	b = appendStringField(b, 2, m.Key)
	b = appendVarintField(b, 3, m.Offset)
	b = appendVarintField(b, 4, m.ByteSize)
	return b, nil
}

type SystemSharedMemoryRegisterResponse struct{}

func (*SystemSharedMemoryRegisterResponse) UnmarshalWire([]byte) error { return nil }

type SystemSharedMemoryUnregisterRequest struct {
	Name string // field 1, empty unregisters all regions
}

func (m *SystemSharedMemoryUnregisterRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	return b, nil
}

type SystemSharedMemoryUnregisterResponse struct{}

func (*SystemSharedMemoryUnregisterResponse) UnmarshalWire([]byte) error { return nil }

// CUDA shared memory messages.

type CudaSharedMemoryStatusRequest struct {
	Name string // field 1
}

func (m *CudaSharedMemoryStatusRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	return b, nil
}

type CudaRegionStatus struct {
	Name     string // field 1
	DeviceID uint64 // field 2
	ByteSize uint64 // field 3
}

func (s *CudaRegionStatus) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			s.Name = string(r.bytes())
		case num == 2 && typ == protowire.VarintType:
			s.DeviceID = r.varint()
		case num == 3 && typ == protowire.VarintType:
			s.ByteSize = r.varint()
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

type CudaSharedMemoryStatusResponse struct {
	Regions map[string]*CudaRegionStatus // field 1
}

func (m *CudaSharedMemoryStatusResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		if num == 1 && typ == protowire.BytesType {
			if m.Regions == nil {
				m.Regions = make(map[string]*CudaRegionStatus)
			}
			if err := consumeCudaRegionEntry(r.bytes(), m.Regions); err != nil {
				return err
			}
		} else {
			r.skip(num, typ)
		}
	}
	return r.err
}

func consumeCudaRegionEntry(data []byte, regions map[string]*CudaRegionStatus) error {
	r := reader{buf: data}
	var key string
	status := &CudaRegionStatus{}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			key = string(r.bytes())
		case num == 2 && typ == protowire.BytesType:
			if err := status.unmarshal(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return r.err
	}
	regions[key] = status
	return nil
}

type CudaSharedMemoryRegisterRequest struct {
	Name      string // field 1
	RawHandle []byte // field 2, serialized cudaIPC handle
	DeviceID  int64  // field 3
	ByteSize  uint64 // field 4
}

func (m *CudaSharedMemoryRegisterRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	b = appendBytesField(b, 2, m.RawHandle)
	b = appendVarintField(b, 3, uint64(m.DeviceID))
	b = appendVarintField(b, 4, m.ByteSize)
	return b, nil
}

type CudaSharedMemoryRegisterResponse struct{}

func (*CudaSharedMemoryRegisterResponse) UnmarshalWire([]byte) error { return nil }

type CudaSharedMemoryUnregisterRequest struct {
	Name string // field 1
}

func (m *CudaSharedMemoryUnregisterRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Name)
	return b, nil
}

type CudaSharedMemoryUnregisterResponse struct{}

func (*CudaSharedMemoryUnregisterResponse) UnmarshalWire([]byte) error { return nil }
