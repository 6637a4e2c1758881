package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// InferParameter mirrors the protocol's parameter value: a oneof over bool,
// int64, and string. The zero value carries nothing and is not encoded.
type InferParameter struct {
	choice      parameterChoice
	boolValue   bool
	int64Value  int64
	stringValue string
}

type parameterChoice int

const (
	parameterNone parameterChoice = iota
	parameterBool
	parameterInt64
	parameterString
)

func BoolParameter(v bool) InferParameter {
	return InferParameter{choice: parameterBool, boolValue: v}
}

func Int64Parameter(v int64) InferParameter {
	return InferParameter{choice: parameterInt64, int64Value: v}
}

func StringParameter(v string) InferParameter {
	return InferParameter{choice: parameterString, stringValue: v}
}

func (p InferParameter) BoolValue() (bool, bool) {
	return p.boolValue, p.choice == parameterBool
}

func (p InferParameter) Int64Value() (int64, bool) {
	return p.int64Value, p.choice == parameterInt64
}

func (p InferParameter) StringValue() (string, bool) {
	return p.stringValue, p.choice == parameterString
}

// marshal writes the selected oneof member. Members are written even when
// zero-valued; oneof presence is explicit.
func (p InferParameter) marshal() []byte {
	var b []byte
	switch p.choice {
	case parameterBool:
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		if p.boolValue {
			b = protowire.AppendVarint(b, 1)
		} else {
			b = protowire.AppendVarint(b, 0)
		}
	case parameterInt64:
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.int64Value))
	case parameterString:
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, p.stringValue)
	}
	return b
}

func (p *InferParameter) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.VarintType:
			*p = BoolParameter(r.varint() != 0)
		case num == 2 && typ == protowire.VarintType:
			*p = Int64Parameter(int64(r.varint()))
		case num == 3 && typ == protowire.BytesType:
			*p = StringParameter(string(r.bytes()))
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

func consumeParameterEntry(data []byte, params map[string]InferParameter) error {
	r := reader{buf: data}
	var key string
	var value InferParameter
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			key = string(r.bytes())
		case num == 2 && typ == protowire.BytesType:
			if err := value.unmarshal(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	if r.err != nil {
		return r.err
	}
	params[key] = value
	return nil
}

// InferTensorContents carries the tensor payload. The client always sends
// raw little-endian bytes; responses may instead carry per-element
// byte_contents for BYTES tensors.
type InferTensorContents struct {
	RawContents  []byte   // field 1
	ByteContents [][]byte // field 9
}

func (c *InferTensorContents) marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, c.RawContents)
	for _, e := range c.ByteContents {
		b = protowire.AppendTag(b, 9, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	return b
}

func (c *InferTensorContents) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.BytesType:
			c.RawContents = append([]byte(nil), r.bytes()...)
		case num == 9 && typ == protowire.BytesType:
			c.ByteContents = append(c.ByteContents, append([]byte(nil), r.bytes()...))
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// InferInputTensor describes one input slot plus its payload.
type InferInputTensor struct {
	Name       string                    // field 1
	Datatype   string                    // field 2
	Shape      []int64                   // field 3
	Parameters map[string]InferParameter // field 4
	Contents   *InferTensorContents      // field 5
}

func (t *InferInputTensor) marshal() []byte {
	var b []byte
	b = appendStringField(b, 1, t.Name)
	b = appendStringField(b, 2, t.Datatype)
	b = appendPackedInt64(b, 3, t.Shape)
	b = appendParameters(b, 4, t.Parameters)
	if t.Contents != nil {
		b = appendMessageField(b, 5, t.Contents.marshal())
	}
	return b
}

func (t *InferInputTensor) unmarshal(data []byte) error {
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
		case 4:
			if t.Parameters == nil {
				t.Parameters = make(map[string]InferParameter)
			}
			if err := consumeParameterEntry(r.bytes(), t.Parameters); err != nil {
				return err
			}
		case 5:
			t.Contents = &InferTensorContents{}
			if err := t.Contents.unmarshal(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// InferRequestedOutputTensor names one requested output slot.
type InferRequestedOutputTensor struct {
	Name       string                    // field 1
	Parameters map[string]InferParameter // field 2
}

func (t *InferRequestedOutputTensor) marshal() []byte {
	var b []byte
	b = appendStringField(b, 1, t.Name)
	b = appendParameters(b, 2, t.Parameters)
	return b
}

func (t *InferRequestedOutputTensor) unmarshal(data []byte) error {
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
			if t.Parameters == nil {
				t.Parameters = make(map[string]InferParameter)
			}
			if err := consumeParameterEntry(r.bytes(), t.Parameters); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// ModelInferRequest is the ModelInfer/ModelStreamInfer request message.
type ModelInferRequest struct {
	ModelName    string                        // field 1
	ModelVersion string                        // field 2
	ID           string                        // field 3
	Parameters   map[string]InferParameter     // field 4
	Inputs       []*InferInputTensor           // field 5
	Outputs      []*InferRequestedOutputTensor // field 6
}

func (m *ModelInferRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.ModelName)
	b = appendStringField(b, 2, m.ModelVersion)
	b = appendStringField(b, 3, m.ID)
	b = appendParameters(b, 4, m.Parameters)
	for _, in := range m.Inputs {
		b = appendMessageField(b, 5, in.marshal())
	}
	for _, out := range m.Outputs {
		b = appendMessageField(b, 6, out.marshal())
	}
	return b, nil
}

func (m *ModelInferRequest) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.ModelName = string(r.bytes())
		case 2:
			m.ModelVersion = string(r.bytes())
		case 3:
			m.ID = string(r.bytes())
		case 4:
			if m.Parameters == nil {
				m.Parameters = make(map[string]InferParameter)
			}
			if err := consumeParameterEntry(r.bytes(), m.Parameters); err != nil {
				return err
			}
		case 5:
			in := &InferInputTensor{}
			if err := in.unmarshal(r.bytes()); err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, in)
		case 6:
			out := &InferRequestedOutputTensor{}
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

// InferOutputTensor is one output slot of a response.
type InferOutputTensor struct {
	Name       string                    // field 1
	Datatype   string                    // field 2
	Shape      []int64                   // field 3
	Parameters map[string]InferParameter // field 4
	Contents   *InferTensorContents      // field 5
}

func (t *InferOutputTensor) unmarshal(data []byte) error {
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
		case 4:
			if t.Parameters == nil {
				t.Parameters = make(map[string]InferParameter)
			}
			if err := consumeParameterEntry(r.bytes(), t.Parameters); err != nil {
				return err
			}
		case 5:
			t.Contents = &InferTensorContents{}
			if err := t.Contents.unmarshal(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// ModelInferResponse is the ModelInfer response message. The per-request
// statistics blob is retained raw; nothing in the client interprets it.
type ModelInferResponse struct {
	ModelName     string                    // field 1
	ModelVersion  string                    // field 2
	ID            string                    // field 3
	Parameters    map[string]InferParameter // field 4
	Outputs       []*InferOutputTensor      // field 5
	RawStatistics []byte                    // field 6, opaque
}

func (m *ModelInferResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.ModelName = string(r.bytes())
		case 2:
			m.ModelVersion = string(r.bytes())
		case 3:
			m.ID = string(r.bytes())
		case 4:
			if m.Parameters == nil {
				m.Parameters = make(map[string]InferParameter)
			}
			if err := consumeParameterEntry(r.bytes(), m.Parameters); err != nil {
				return err
			}
		case 5:
			out := &InferOutputTensor{}
			if err := out.unmarshal(r.bytes()); err != nil {
				return err
			}
			m.Outputs = append(m.Outputs, out)
		case 6:
			m.RawStatistics = append([]byte(nil), r.bytes()...)
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// StreamStatus is the per-response status on the streaming RPC.
type StreamStatus struct {
	Code    uint32 // field 1, zero means success
	Message string // field 2
}

func (s *StreamStatus) unmarshal(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch {
		case num == 1 && typ == protowire.VarintType:
			s.Code = uint32(r.varint())
		case num == 2 && typ == protowire.BytesType:
			s.Message = string(r.bytes())
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}

// ModelStreamInferResponse wraps one streamed inference response with its
// delivery status.
type ModelStreamInferResponse struct {
	Status        *StreamStatus       // field 1
	InferResponse *ModelInferResponse // field 2
}

func (m *ModelStreamInferResponse) UnmarshalWire(data []byte) error {
	r := reader{buf: data}
	for {
		num, typ, ok := r.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Status = &StreamStatus{}
			if err := m.Status.unmarshal(r.bytes()); err != nil {
				return err
			}
		case 2:
			m.InferResponse = &ModelInferResponse{}
			if err := m.InferResponse.UnmarshalWire(r.bytes()); err != nil {
				return err
			}
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}
