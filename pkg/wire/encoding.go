package wire

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendPackedInt64(b []byte, num protowire.Number, vals []int64) []byte {
	if len(vals) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// appendMessageField always emits the submessage tag, preserving presence
// for empty messages.
func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// appendParameters writes a map<string, InferParameter> field in sorted key
// order so encoded requests are deterministic.
func appendParameters(b []byte, num protowire.Number, params map[string]InferParameter) []byte {
	if len(params) == 0 {
		return b
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendStringField(entry, 1, k)
		entry = appendMessageField(entry, 2, params[k].marshal())
		b = appendMessageField(b, num, entry)
	}
	return b
}

// reader walks the fields of one encoded message. The first malformed tag or
// value latches into err and stops the walk.
type reader struct {
	buf []byte
	err error
}

func (r *reader) next() (protowire.Number, protowire.Type, bool) {
	if r.err != nil || len(r.buf) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		r.err = protowire.ParseError(n)
		return 0, 0, false
	}
	r.buf = r.buf[n:]
	return num, typ, true
}

func (r *reader) varint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		r.err = protowire.ParseError(n)
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) bytes() []byte {
	if r.err != nil {
		return nil
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		r.err = protowire.ParseError(n)
		return nil
	}
	r.buf = r.buf[n:]
	return v
}

func (r *reader) skip(num protowire.Number, typ protowire.Type) {
	if r.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(num, typ, r.buf)
	if n < 0 {
		r.err = protowire.ParseError(n)
		return
	}
	r.buf = r.buf[n:]
}

// consumeInt64s reads a repeated int64 field, accepting both packed and
// unpacked encodings.
func consumeInt64s(r *reader, typ protowire.Type, dst []int64) []int64 {
	if typ == protowire.VarintType {
		return append(dst, int64(r.varint()))
	}
	packed := reader{buf: r.bytes()}
	for len(packed.buf) > 0 && packed.err == nil {
		dst = append(dst, int64(packed.varint()))
	}
	if packed.err != nil {
		r.err = packed.err
	}
	return dst
}
