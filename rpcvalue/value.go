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

package rpcvalue

import "fmt"

// Value is the dynamic, tagged variant shared by the Cpon and ChainPack
// codecs. Only the field matching Kind is meaningful; all other fields hold
// their zero value. A Value may additionally carry meta-data, independent
// of its Kind.
type Value struct {
	kind Kind

	boolVal     bool
	intVal      int64
	uintVal     uint64
	doubleVal   float64
	decimalVal  Decimal
	dateTimeVal DateTime
	blobVal     []byte
	strVal      string
	listVal     []Value
	mapVal      *OrderedMap[string]
	imapVal     *OrderedMap[uint32]
	arrayVal    Array

	meta *MetaData
}

// Invalid is the zero Value: KindInvalid, no meta-data. It is never
// serialized and stands in for "absent" the way a nil pointer would.
var Invalid = Value{}

// Null returns a Value of KindNull.
func Null() Value { return Value{kind: KindNull} }

// NewBool returns a Value of KindBool.
func NewBool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// NewInt returns a Value of KindInt.
func NewInt(i int64) Value { return Value{kind: KindInt, intVal: i} }

// NewUInt returns a Value of KindUInt.
func NewUInt(u uint64) Value { return Value{kind: KindUInt, uintVal: u} }

// NewDouble returns a Value of KindDouble.
func NewDouble(f float64) Value { return Value{kind: KindDouble, doubleVal: f} }

// NewDecimalValue returns a Value of KindDecimal.
func NewDecimalValue(d Decimal) Value { return Value{kind: KindDecimal, decimalVal: d} }

// NewDateTimeValue returns a Value of KindDateTime.
func NewDateTimeValue(d DateTime) Value { return Value{kind: KindDateTime, dateTimeVal: d} }

// NewBlob returns a Value of KindBlob. b is not copied.
func NewBlob(b []byte) Value { return Value{kind: KindBlob, blobVal: b} }

// NewString returns a Value of KindString.
func NewString(s string) Value { return Value{kind: KindString, strVal: s} }

// NewList returns a Value of KindList. elems is not copied.
func NewList(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, listVal: elems}
}

// NewMap returns a Value of KindMap wrapping m. A nil m is treated as empty.
func NewMap(m *OrderedMap[string]) Value {
	if m == nil {
		m = NewOrderedMap[string]()
	}
	return Value{kind: KindMap, mapVal: m}
}

// NewIMap returns a Value of KindIMap wrapping m. A nil m is treated as empty.
func NewIMap(m *OrderedMap[uint32]) Value {
	if m == nil {
		m = NewOrderedMap[uint32]()
	}
	return Value{kind: KindIMap, imapVal: m}
}

// NewArrayValue returns a Value of KindArray.
func NewArrayValue(a Array) Value { return Value{kind: KindArray, arrayVal: a} }

// Kind returns v's discriminant.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v carries any kind at all.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Bool returns the bool payload; false if v is not KindBool.
func (v Value) Bool() bool { return v.boolVal }

// Int returns the int64 payload; 0 if v is not KindInt.
func (v Value) Int() int64 { return v.intVal }

// UInt returns the uint64 payload; 0 if v is not KindUInt.
func (v Value) UInt() uint64 { return v.uintVal }

// Double returns the float64 payload; 0 if v is not KindDouble.
func (v Value) Double() float64 { return v.doubleVal }

// DecimalVal returns the Decimal payload.
func (v Value) DecimalVal() Decimal { return v.decimalVal }

// DateTimeVal returns the DateTime payload.
func (v Value) DateTimeVal() DateTime { return v.dateTimeVal }

// Blob returns the []byte payload; nil if v is not KindBlob.
func (v Value) Blob() []byte { return v.blobVal }

// Str returns the string payload; "" if v is not KindString.
func (v Value) Str() string { return v.strVal }

// List returns the []Value payload; nil if v is not KindList.
func (v Value) List() []Value { return v.listVal }

// Map returns the OrderedMap payload; nil if v is not KindMap.
func (v Value) Map() *OrderedMap[string] { return v.mapVal }

// IMap returns the OrderedMap payload; nil if v is not KindIMap.
func (v Value) IMap() *OrderedMap[uint32] { return v.imapVal }

// ArrayVal returns the Array payload.
func (v Value) ArrayVal() Array { return v.arrayVal }

// Meta returns v's meta-data, or nil if it carries none.
func (v Value) Meta() *MetaData { return v.meta }

// WithMeta returns a copy of v carrying m as its meta-data.
func (v Value) WithMeta(m *MetaData) Value {
	v.meta = m
	return v
}

// At returns the element at index i of a List, or the value for key in a
// Map/IMap (key must be string or uint32 as appropriate). It returns
// Invalid, false when v is not an indexable container or the index/key is
// absent.
func (v Value) At(key any) (Value, bool) {
	switch v.kind {
	case KindList:
		i, ok := key.(int)
		if !ok || i < 0 || i >= len(v.listVal) {
			return Invalid, false
		}
		return v.listVal[i], true
	case KindMap:
		k, ok := key.(string)
		if !ok || v.mapVal == nil {
			return Invalid, false
		}
		return v.mapVal.Get(k)
	case KindIMap:
		k, ok := key.(uint32)
		if !ok || v.imapVal == nil {
			return Invalid, false
		}
		return v.imapVal.Get(k)
	case KindArray:
		i, ok := key.(int)
		if !ok || i < 0 || i >= len(v.arrayVal.Elems) {
			return Invalid, false
		}
		return v.arrayVal.Elems[i], true
	default:
		return Invalid, false
	}
}

// Set stores val at index/key in a List, Map or IMap, in place. It returns
// an error if v is not one of those kinds or key has the wrong type.
func (v *Value) Set(key any, val Value) error {
	switch v.kind {
	case KindList:
		i, ok := key.(int)
		if !ok {
			return fmt.Errorf("rpcvalue: list index must be int, got %T", key)
		}
		if i < 0 || i >= len(v.listVal) {
			return fmt.Errorf("rpcvalue: list index %d out of range", i)
		}
		v.listVal[i] = val
		return nil
	case KindMap:
		k, ok := key.(string)
		if !ok {
			return fmt.Errorf("rpcvalue: map key must be string, got %T", key)
		}
		if v.mapVal == nil {
			v.mapVal = NewOrderedMap[string]()
		}
		v.mapVal.Set(k, val)
		return nil
	case KindIMap:
		k, ok := key.(uint32)
		if !ok {
			return fmt.Errorf("rpcvalue: imap key must be uint32, got %T", key)
		}
		if v.imapVal == nil {
			v.imapVal = NewOrderedMap[uint32]()
		}
		v.imapVal.Set(k, val)
		return nil
	default:
		return fmt.Errorf("rpcvalue: cannot Set on kind %s", v.kind)
	}
}

// Append appends val to a List Value in place.
func (v *Value) Append(val Value) error {
	if v.kind != KindList {
		return fmt.Errorf("rpcvalue: cannot Append to kind %s", v.kind)
	}
	v.listVal = append(v.listVal, val)
	return nil
}

// Len returns the number of elements of a List/Map/IMap/Array/Blob/String,
// or 0 for any other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.listVal)
	case KindMap:
		return v.mapVal.Len()
	case KindIMap:
		return v.imapVal.Len()
	case KindArray:
		return v.arrayVal.Len()
	case KindBlob:
		return len(v.blobVal)
	case KindString:
		return len(v.strVal)
	default:
		return 0
	}
}

// Equal reports whether v and o carry the same kind, payload and meta-data,
// recursing structurally into containers. Meta-data participates: two
// otherwise-identical values with different meta-data are not equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if !metaEqual(v.meta, o.meta) {
		return false
	}
	switch v.kind {
	case KindInvalid, KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindUInt:
		return v.uintVal == o.uintVal
	case KindDouble:
		return v.doubleVal == o.doubleVal
	case KindDecimal:
		return v.decimalVal == o.decimalVal
	case KindDateTime:
		return v.dateTimeVal.Equal(o.dateTimeVal)
	case KindBlob:
		if len(v.blobVal) != len(o.blobVal) {
			return false
		}
		for i := range v.blobVal {
			if v.blobVal[i] != o.blobVal[i] {
				return false
			}
		}
		return true
	case KindString:
		return v.strVal == o.strVal
	case KindList:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.mapVal.equal(o.mapVal)
	case KindIMap:
		return v.imapVal.equal(o.imapVal)
	case KindArray:
		return v.arrayVal.equal(o.arrayVal)
	default:
		return false
	}
}
