package codec

// DataType is the wire-level tensor datatype identifier used by the
// inference protocol.
type DataType string

const (
	TypeBool   DataType = "BOOL"
	TypeUint8  DataType = "UINT8"
	TypeUint16 DataType = "UINT16"
	TypeUint32 DataType = "UINT32"
	TypeUint64 DataType = "UINT64"
	TypeInt8   DataType = "INT8"
	TypeInt16  DataType = "INT16"
	TypeInt32  DataType = "INT32"
	TypeInt64  DataType = "INT64"
	TypeFp16   DataType = "FP16"
	TypeFp32   DataType = "FP32"
	TypeFp64   DataType = "FP64"
	TypeBytes  DataType = "BYTES"
)

// Size returns the fixed element width in bytes, or -1 for variable-length
// and unknown datatypes.
func (d DataType) Size() int {
	switch d {
	case TypeBool, TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16, TypeFp16:
		return 2
	case TypeUint32, TypeInt32, TypeFp32:
		return 4
	case TypeUint64, TypeInt64, TypeFp64:
		return 8
	default:
		return -1
	}
}

// Valid reports whether d is one of the protocol datatypes.
func (d DataType) Valid() bool {
	return d == TypeBytes || d.Size() > 0
}

// ElementCount returns the number of elements implied by shape. An empty
// shape describes a scalar tensor and counts as one element.
func ElementCount(shape []int64) int64 {
	count := int64(1)
	for _, dim := range shape {
		count *= dim
	}
	return count
}
