package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// EncodingError reports a tensor payload that does not line up with its
// declared datatype or shape.
type EncodingError struct {
	msg string
}

func (e *EncodingError) Error() string {
	return e.msg
}

func encodingErrorf(format string, args ...any) *EncodingError {
	return &EncodingError{msg: fmt.Sprintf(format, args...)}
}

// Encode serializes a typed slice into the raw wire payload for the given
// datatype. Numeric kinds are written little-endian with no conversion.
// BYTES elements are written as a 4-byte little-endian length prefix
// followed by the element bytes; both [][]byte and []string values are
// accepted. The value's element type must match the datatype.
func Encode(value any, datatype DataType) ([]byte, error) {
	switch datatype {
	case TypeBool:
		v, ok := value.([]bool)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]byte, len(v))
		for i, b := range v {
			if b {
				buf[i] = 1
			}
		}
		return buf, nil
	case TypeUint8:
		v, ok := value.([]uint8)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]byte, len(v))
		copy(buf, v)
		return buf, nil
	case TypeInt8:
		v, ok := value.([]int8)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]byte, len(v))
		for i, b := range v {
			buf[i] = byte(b)
		}
		return buf, nil
	case TypeUint16:
		v, ok := value.([]uint16)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		return encodeUint16s(v), nil
	case TypeInt16:
		v, ok := value.([]int16)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint16, len(v))
		for i, e := range v {
			buf[i] = uint16(e)
		}
		return encodeUint16s(buf), nil
	case TypeFp16:
		v, ok := value.([]float16.Float16)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint16, len(v))
		for i, e := range v {
			buf[i] = e.Bits()
		}
		return encodeUint16s(buf), nil
	case TypeUint32:
		v, ok := value.([]uint32)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		return encodeUint32s(v), nil
	case TypeInt32:
		v, ok := value.([]int32)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint32, len(v))
		for i, e := range v {
			buf[i] = uint32(e)
		}
		return encodeUint32s(buf), nil
	case TypeFp32:
		v, ok := value.([]float32)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint32, len(v))
		for i, e := range v {
			buf[i] = math.Float32bits(e)
		}
		return encodeUint32s(buf), nil
	case TypeUint64:
		v, ok := value.([]uint64)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		return encodeUint64s(v), nil
	case TypeInt64:
		v, ok := value.([]int64)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint64, len(v))
		for i, e := range v {
			buf[i] = uint64(e)
		}
		return encodeUint64s(buf), nil
	case TypeFp64:
		v, ok := value.([]float64)
		if !ok {
			return nil, typeMismatch(value, datatype)
		}
		buf := make([]uint64, len(v))
		for i, e := range v {
			buf[i] = math.Float64bits(e)
		}
		return encodeUint64s(buf), nil
	case TypeBytes:
		switch v := value.(type) {
		case [][]byte:
			return encodeByteElements(v), nil
		case []string:
			elems := make([][]byte, len(v))
			for i, s := range v {
				elems[i] = []byte(s)
			}
			return encodeByteElements(elems), nil
		default:
			return nil, typeMismatch(value, datatype)
		}
	default:
		return nil, encodingErrorf("unsupported datatype %q", datatype)
	}
}

// Decode deserializes a raw wire payload into the typed slice for the given
// datatype. The decoded element count must equal the product of the declared
// shape; an empty shape declares a single-element scalar tensor. BYTES
// payloads decode to [][]byte.
func Decode(data []byte, datatype DataType, shape []int64) (any, error) {
	if datatype == TypeBytes {
		return decodeByteElements(data, shape)
	}

	width := datatype.Size()
	if width <= 0 {
		return nil, encodingErrorf("unsupported datatype %q", datatype)
	}
	if len(data)%width != 0 {
		return nil, encodingErrorf("payload of %d bytes is not a multiple of the %d-byte %s element width", len(data), width, datatype)
	}
	count := len(data) / width
	if want := ElementCount(shape); int64(count) != want {
		return nil, encodingErrorf("payload holds %d %s elements, shape %v declares %d", count, datatype, shape, want)
	}

	switch datatype {
	case TypeBool:
		out := make([]bool, count)
		for i, b := range data {
			out[i] = b != 0
		}
		return out, nil
	case TypeUint8:
		out := make([]uint8, count)
		copy(out, data)
		return out, nil
	case TypeInt8:
		out := make([]int8, count)
		for i, b := range data {
			out[i] = int8(b)
		}
		return out, nil
	case TypeUint16:
		return decodeUint16s(data), nil
	case TypeInt16:
		raw := decodeUint16s(data)
		out := make([]int16, count)
		for i, e := range raw {
			out[i] = int16(e)
		}
		return out, nil
	case TypeFp16:
		raw := decodeUint16s(data)
		out := make([]float16.Float16, count)
		for i, e := range raw {
			out[i] = float16.Frombits(e)
		}
		return out, nil
	case TypeUint32:
		return decodeUint32s(data), nil
	case TypeInt32:
		raw := decodeUint32s(data)
		out := make([]int32, count)
		for i, e := range raw {
			out[i] = int32(e)
		}
		return out, nil
	case TypeFp32:
		raw := decodeUint32s(data)
		out := make([]float32, count)
		for i, e := range raw {
			out[i] = math.Float32frombits(e)
		}
		return out, nil
	case TypeUint64:
		return decodeUint64s(data), nil
	case TypeInt64:
		raw := decodeUint64s(data)
		out := make([]int64, count)
		for i, e := range raw {
			out[i] = int64(e)
		}
		return out, nil
	case TypeFp64:
		raw := decodeUint64s(data)
		out := make([]float64, count)
		for i, e := range raw {
			out[i] = math.Float64frombits(e)
		}
		return out, nil
	}
	return nil, encodingErrorf("unsupported datatype %q", datatype)
}

func encodeByteElements(elems [][]byte) []byte {
	size := 0
	for _, e := range elems {
		size += 4 + len(e)
	}
	buf := make([]byte, 0, size)
	var prefix [4]byte
	for _, e := range elems {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(e)))
		buf = append(buf, prefix[:]...)
		buf = append(buf, e...)
	}
	return buf
}

func decodeByteElements(data []byte, shape []int64) ([][]byte, error) {
	elems := make([][]byte, 0)
	for pos := 0; pos < len(data); {
		if pos+4 > len(data) {
			return nil, encodingErrorf("truncated length prefix at byte %d of BYTES payload", pos)
		}
		length := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+length > len(data) {
			return nil, encodingErrorf("BYTES element of %d bytes at offset %d overruns %d-byte payload", length, pos, len(data))
		}
		elem := make([]byte, length)
		copy(elem, data[pos:pos+length])
		elems = append(elems, elem)
		pos += length
	}
	if want := ElementCount(shape); int64(len(elems)) != want {
		return nil, encodingErrorf("payload holds %d BYTES elements, shape %v declares %d", len(elems), shape, want)
	}
	return elems, nil
}

func encodeUint16s(v []uint16) []byte {
	buf := make([]byte, 2*len(v))
	for i, e := range v {
		binary.LittleEndian.PutUint16(buf[2*i:], e)
	}
	return buf
}

func encodeUint32s(v []uint32) []byte {
	buf := make([]byte, 4*len(v))
	for i, e := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], e)
	}
	return buf
}

func encodeUint64s(v []uint64) []byte {
	buf := make([]byte, 8*len(v))
	for i, e := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], e)
	}
	return buf
}

func decodeUint16s(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return out
}

func decodeUint32s(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return out
}

func decodeUint64s(data []byte) []uint64 {
	out := make([]uint64, len(data)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return out
}

func typeMismatch(value any, datatype DataType) *EncodingError {
	return encodingErrorf("value of type %T does not match datatype %s", value, datatype)
}
