/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package chainpack

import (
	"math"

	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

// Reader decodes ChainPack-encoded bytes into rpcvalue.Value trees. It
// reads from a byte slice rather than an io.Reader so that a caller framing
// messages over a socket (see package rpc) can hand it one fully-buffered
// chunk at a time; ErrNeedMoreData means the buffer was truncated
// mid-value, not that the stream is malformed.
type Reader struct {
	data  []byte
	pos   int
	stack *wire.Stack
}

// NewReader returns a Reader over data, enforcing the default maximum
// container nesting depth.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, stack: wire.NewStack(wire.DefaultMaxDepth)}
}

// NewReaderDepth is like NewReader but with an explicit nesting bound.
func NewReaderDepth(data []byte, maxDepth int) *Reader {
	return &Reader{data: data, stack: wire.NewStack(maxDepth)}
}

// Pos returns the current read offset into the buffer.
func (r *Reader) Pos() int { return r.pos }

// Unmarshal decodes a single value (with meta-data, if present) starting at
// the current position.
func Unmarshal(data []byte) (rpcvalue.Value, error) {
	r := NewReader(data)
	v, err := r.Read()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	return v, nil
}

// Read decodes one top-level value, including any leading meta-data.
func (r *Reader) Read() (rpcvalue.Value, error) {
	meta, err := r.readMeta()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	v, err := r.readValue()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	if meta != nil && !meta.IsEmpty() {
		v = v.WithMeta(meta)
	}
	return v, nil
}

// ReadMetaOnly decodes just the leading meta-data (if any) and leaves Pos()
// positioned at the start of the body, without decoding the body itself.
// It is used by the rpc package's frame reader, which needs routing
// meta-data eagerly but defers body decoding until the message is dispatched.
func (r *Reader) ReadMetaOnly() (*rpcvalue.MetaData, error) {
	return r.readMeta()
}

func (r *Reader) peek() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	return r.data[r.pos], true
}

// readMeta decodes the meta-data prefix, if any. It is framed as up to two
// independently-terminated blocks: a MetaIMap block (numeric tags, bare VLQ
// keys) followed by a MetaSMap block (string tags, bare length-prefixed
// keys). Either block is omitted entirely when its half is empty.
func (r *Reader) readMeta() (*rpcvalue.MetaData, error) {
	b, ok := r.peek()
	if !ok {
		return nil, wire.ErrNeedMoreData
	}
	if b != typeInfoMetaSMap && b != typeInfoMetaIMap {
		return nil, nil
	}
	if err := r.stack.Push(wire.ContainerMeta); err != nil {
		return nil, err
	}
	defer r.stack.Pop()

	meta := rpcvalue.NewMetaData()

	if b, ok := r.peek(); ok && b == typeInfoMetaIMap {
		r.pos++
		for {
			if r.atTerm() {
				r.pos++
				break
			}
			key, n, needMore := decodeUIntVLQ(r.data, r.pos)
			if needMore {
				return nil, wire.ErrNeedMoreData
			}
			r.pos += n
			val, err := r.readValue()
			if err != nil {
				return nil, err
			}
			meta.SetIntTag(uint32(key), val)
		}
	}

	if b, ok := r.peek(); ok && b == typeInfoMetaSMap {
		r.pos++
		for {
			if r.atTerm() {
				r.pos++
				break
			}
			key, ok := r.readLengthPrefixed()
			if !ok {
				return nil, wire.ErrNeedMoreData
			}
			val, err := r.readValue()
			if err != nil {
				return nil, err
			}
			meta.SetStrTag(string(key), val)
		}
	}

	return meta, nil
}

func (r *Reader) atTerm() bool {
	b, ok := r.peek()
	return ok && b == typeInfoTerm
}

func (r *Reader) readValue() (rpcvalue.Value, error) {
	if r.pos >= len(r.data) {
		return rpcvalue.Invalid, wire.ErrNeedMoreData
	}
	t := r.data[r.pos]
	r.pos++

	if t < tinyIntBase {
		return rpcvalue.NewUInt(uint64(t)), nil
	}
	if t < typeInfoFalse {
		return rpcvalue.NewInt(int64(t - tinyIntBase)), nil
	}

	isArray := t&arrayFlag != 0 && t != typeInfoTerm
	baseType := t &^ arrayFlag

	if isArray {
		return r.readArray(baseType)
	}

	switch baseType {
	case typeInfoFalse:
		return rpcvalue.NewBool(false), nil
	case typeInfoTrue:
		return rpcvalue.NewBool(true), nil
	case typeInfoNull:
		return rpcvalue.Null(), nil
	}

	switch t {
	case typeInfoUInt:
		u, n, needMore := decodeUIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewUInt(u), nil
	case typeInfoInt:
		n, consumed, needMore := decodeIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += consumed
		return rpcvalue.NewInt(n), nil
	case typeInfoDouble:
		f, ok := r.readDoubleRaw()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewDouble(f), nil
	case typeInfoDecimal:
		mant, n1, needMore := decodeIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		prec, n2, needMore := decodeIntVLQ(r.data, r.pos+n1)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n1 + n2
		return rpcvalue.NewDecimalValue(rpcvalue.NewDecimal(mant, int16(prec))), nil
	case typeInfoDateTime:
		dt, n, needMore := decodeDateTime(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewDateTimeValue(dt), nil
	case typeInfoDateTimeEpoch:
		dt, n, needMore := decodeDateTimeEpoch(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewDateTimeValue(dt), nil
	case typeInfoBlob:
		b, ok := r.readLengthPrefixed()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewBlob(b), nil
	case typeInfoString:
		b, ok := r.readLengthPrefixed()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewString(string(b)), nil
	case typeInfoList:
		return r.readList()
	case typeInfoMap:
		return r.readMap()
	case typeInfoIMap:
		return r.readIMap()
	case typeInfoTerm:
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos-1), "unexpected TERM byte")
	default:
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos-1), "unknown type-info byte 0x%02x", t)
	}
}

func (r *Reader) readLengthPrefixed() ([]byte, bool) {
	length, n, needMore := decodeUIntVLQ(r.data, r.pos)
	if needMore {
		return nil, false
	}
	start := r.pos + n
	end := start + int(length)
	if end > len(r.data) {
		return nil, false
	}
	r.pos = end
	return r.data[start:end], true
}

func (r *Reader) readDoubleRaw() (float64, bool) {
	if r.pos+8 > len(r.data) {
		return 0, false
	}
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(r.data[r.pos+i]) << (8 * i)
	}
	r.pos += 8
	return math.Float64frombits(bits), true
}

func (r *Reader) readList() (rpcvalue.Value, error) {
	if err := r.stack.Push(wire.ContainerList); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	var elems []rpcvalue.Value
	for {
		if r.atTerm() {
			r.pos++
			break
		}
		v, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		elems = append(elems, v)
	}
	return rpcvalue.NewList(elems...), nil
}

func (r *Reader) readMap() (rpcvalue.Value, error) {
	if err := r.stack.Push(wire.ContainerMap); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	m := rpcvalue.NewOrderedMap[string]()
	for {
		if r.atTerm() {
			r.pos++
			break
		}
		key, ok := r.readLengthPrefixed()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		val, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		m.Set(string(key), val)
	}
	return rpcvalue.NewMap(m), nil
}

func (r *Reader) readIMap() (rpcvalue.Value, error) {
	if err := r.stack.Push(wire.ContainerIMap); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	m := rpcvalue.NewOrderedMap[uint32]()
	for {
		if r.atTerm() {
			r.pos++
			break
		}
		key, n, needMore := decodeUIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		val, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		m.Set(uint32(key), val)
	}
	return rpcvalue.NewIMap(m), nil
}

func (r *Reader) readArray(elemTypeInfo byte) (rpcvalue.Value, error) {
	elemKind, ok := typeInfoToElemKind(elemTypeInfo)
	if !ok {
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos-1), "array element type-info 0x%02x has no rpcvalue kind", elemTypeInfo)
	}
	size, n, needMore := decodeUIntVLQ(r.data, r.pos)
	if needMore {
		return rpcvalue.Invalid, wire.ErrNeedMoreData
	}
	r.pos += n

	elems := make([]rpcvalue.Value, 0, size)
	for i := uint64(0); i < size; i++ {
		v, err := r.readArrayElem(elemKind)
		if err != nil {
			return rpcvalue.Invalid, err
		}
		elems = append(elems, v)
	}
	arr, err := rpcvalue.NewArray(elemKind, elems...)
	if err != nil {
		return rpcvalue.Invalid, err
	}
	return rpcvalue.NewArrayValue(arr), nil
}

func (r *Reader) readArrayElem(kind rpcvalue.Kind) (rpcvalue.Value, error) {
	switch kind {
	case rpcvalue.KindNull:
		return rpcvalue.Null(), nil
	case rpcvalue.KindBool:
		if r.pos >= len(r.data) {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		b := r.data[r.pos] != 0
		r.pos++
		return rpcvalue.NewBool(b), nil
	case rpcvalue.KindUInt:
		u, n, needMore := decodeUIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewUInt(u), nil
	case rpcvalue.KindInt:
		i, n, needMore := decodeIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewInt(i), nil
	case rpcvalue.KindDouble:
		f, ok := r.readDoubleRaw()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewDouble(f), nil
	case rpcvalue.KindDecimal:
		mant, n1, needMore := decodeIntVLQ(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		prec, n2, needMore := decodeIntVLQ(r.data, r.pos+n1)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n1 + n2
		return rpcvalue.NewDecimalValue(rpcvalue.NewDecimal(mant, int16(prec))), nil
	case rpcvalue.KindDateTime:
		dt, n, needMore := decodeDateTime(r.data, r.pos)
		if needMore {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		r.pos += n
		return rpcvalue.NewDateTimeValue(dt), nil
	case rpcvalue.KindBlob:
		b, ok := r.readLengthPrefixed()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewBlob(b), nil
	case rpcvalue.KindString:
		b, ok := r.readLengthPrefixed()
		if !ok {
			return rpcvalue.Invalid, wire.ErrNeedMoreData
		}
		return rpcvalue.NewString(string(b)), nil
	default:
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "unsupported array element kind %s", kind)
	}
}
