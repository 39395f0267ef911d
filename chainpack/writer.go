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
	"fmt"
	"math"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// Writer serializes rpcvalue.Value trees to ChainPack's binary encoding.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with an empty output buffer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Write appends the ChainPack encoding of v, including its meta-data, if any.
func (w *Writer) Write(v rpcvalue.Value) error {
	if err := w.writeMeta(v.Meta()); err != nil {
		return err
	}
	return w.writeValue(v)
}

// Marshal is a convenience one-shot encoder.
func Marshal(v rpcvalue.Value) ([]byte, error) {
	w := NewWriter()
	if err := w.Write(v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// writeMeta emits the meta-data prefix as up to two separate, independently
// terminated typed blocks: MetaIMap first (numeric tags, bare VLQ keys),
// then MetaSMap (string tags, bare length-prefixed keys). A half that is
// nil or empty contributes no block at all.
func (w *Writer) writeMeta(m *rpcvalue.MetaData) error {
	if m.IsEmpty() {
		return nil
	}
	var err error
	if m.IMap != nil && m.IMap.Len() > 0 {
		w.buf = append(w.buf, typeInfoMetaIMap)
		m.IMap.Each(func(k uint32, v rpcvalue.Value) {
			if err != nil {
				return
			}
			w.buf = encodeUIntVLQ(w.buf, uint64(k))
			err = w.writeValue(v)
		})
		if err != nil {
			return err
		}
		w.buf = append(w.buf, typeInfoTerm)
	}
	if m.Map != nil && m.Map.Len() > 0 {
		w.buf = append(w.buf, typeInfoMetaSMap)
		m.Map.Each(func(k string, v rpcvalue.Value) {
			if err != nil {
				return
			}
			if err = w.writeString(k); err != nil {
				return
			}
			err = w.writeValue(v)
		})
		if err != nil {
			return err
		}
		w.buf = append(w.buf, typeInfoTerm)
	}
	return nil
}

func (w *Writer) writeValue(v rpcvalue.Value) error {
	switch v.Kind() {
	case rpcvalue.KindInvalid:
		return fmt.Errorf("chainpack: cannot write an invalid value")
	case rpcvalue.KindNull:
		w.buf = append(w.buf, typeInfoNull)
	case rpcvalue.KindBool:
		if v.Bool() {
			w.buf = append(w.buf, typeInfoTrue)
		} else {
			w.buf = append(w.buf, typeInfoFalse)
		}
	case rpcvalue.KindUInt:
		u := v.UInt()
		if u < tinyUIntMax {
			w.buf = append(w.buf, byte(u))
			return nil
		}
		w.buf = append(w.buf, typeInfoUInt)
		w.buf = encodeUIntVLQ(w.buf, u)
	case rpcvalue.KindInt:
		n := v.Int()
		if n >= 0 && n < maxTinyValue+1 {
			w.buf = append(w.buf, byte(tinyIntBase+n))
			return nil
		}
		w.buf = append(w.buf, typeInfoInt)
		w.buf = encodeIntVLQ(w.buf, n)
	case rpcvalue.KindDouble:
		w.buf = append(w.buf, typeInfoDouble)
		w.writeDoubleRaw(v.Double())
	case rpcvalue.KindDecimal:
		w.buf = append(w.buf, typeInfoDecimal)
		d := v.DecimalVal()
		w.buf = encodeIntVLQ(w.buf, d.Mantissa)
		w.buf = encodeIntVLQ(w.buf, int64(d.Precision))
	case rpcvalue.KindDateTime:
		w.buf = append(w.buf, typeInfoDateTime)
		w.buf = encodeDateTime(w.buf, v.DateTimeVal())
	case rpcvalue.KindBlob:
		w.buf = append(w.buf, typeInfoBlob)
		w.buf = encodeUIntVLQ(w.buf, uint64(len(v.Blob())))
		w.buf = append(w.buf, v.Blob()...)
	case rpcvalue.KindString:
		w.buf = append(w.buf, typeInfoString)
		return w.writeString(v.Str())
	case rpcvalue.KindList:
		w.buf = append(w.buf, typeInfoList)
		for _, e := range v.List() {
			if err := w.Write(e); err != nil {
				return err
			}
		}
		w.buf = append(w.buf, typeInfoTerm)
	case rpcvalue.KindMap:
		w.buf = append(w.buf, typeInfoMap)
		var err error
		v.Map().Each(func(k string, e rpcvalue.Value) {
			if err != nil {
				return
			}
			if err = w.writeString(k); err != nil {
				return
			}
			err = w.Write(e)
		})
		if err != nil {
			return err
		}
		w.buf = append(w.buf, typeInfoTerm)
	case rpcvalue.KindIMap:
		w.buf = append(w.buf, typeInfoIMap)
		var err error
		v.IMap().Each(func(k uint32, e rpcvalue.Value) {
			if err != nil {
				return
			}
			w.buf = encodeUIntVLQ(w.buf, uint64(k))
			err = w.Write(e)
		})
		if err != nil {
			return err
		}
		w.buf = append(w.buf, typeInfoTerm)
	case rpcvalue.KindArray:
		return w.writeArray(v.ArrayVal())
	default:
		return fmt.Errorf("chainpack: unsupported kind %s", v.Kind())
	}
	return nil
}

func (w *Writer) writeArray(a rpcvalue.Array) error {
	elemType, ok := elemKindToTypeInfo(a.ElemKind)
	if !ok {
		return fmt.Errorf("chainpack: array element kind %s has no type-info byte", a.ElemKind)
	}
	w.buf = append(w.buf, elemType|arrayFlag)
	w.buf = encodeUIntVLQ(w.buf, uint64(a.Len()))
	for _, e := range a.Elems {
		if err := w.writeArrayElem(e); err != nil {
			return err
		}
	}
	return nil
}

// writeArrayElem writes one element's raw payload without its own type-info
// byte, since the array header already fixed the element type.
func (w *Writer) writeArrayElem(v rpcvalue.Value) error {
	switch v.Kind() {
	case rpcvalue.KindNull:
	case rpcvalue.KindBool:
		b := byte(0)
		if v.Bool() {
			b = 1
		}
		w.buf = append(w.buf, b)
	case rpcvalue.KindUInt:
		w.buf = encodeUIntVLQ(w.buf, v.UInt())
	case rpcvalue.KindInt:
		w.buf = encodeIntVLQ(w.buf, v.Int())
	case rpcvalue.KindDouble:
		w.writeDoubleRaw(v.Double())
	case rpcvalue.KindDecimal:
		d := v.DecimalVal()
		w.buf = encodeIntVLQ(w.buf, d.Mantissa)
		w.buf = encodeIntVLQ(w.buf, int64(d.Precision))
	case rpcvalue.KindDateTime:
		w.buf = encodeDateTime(w.buf, v.DateTimeVal())
	case rpcvalue.KindBlob:
		w.buf = encodeUIntVLQ(w.buf, uint64(len(v.Blob())))
		w.buf = append(w.buf, v.Blob()...)
	case rpcvalue.KindString:
		return w.writeString(v.Str())
	default:
		return fmt.Errorf("chainpack: unsupported array element kind %s", v.Kind())
	}
	return nil
}

func (w *Writer) writeString(s string) error {
	w.buf = encodeUIntVLQ(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

func (w *Writer) writeDoubleRaw(f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		w.buf = append(w.buf, byte(bits&0xFF))
		bits >>= 8
	}
}
