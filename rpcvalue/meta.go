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

// MetaData is the out-of-band IMap+Map pair any Value may carry: the IMap
// half holds well-known numeric tags (RPC message tags among them), the Map
// half holds free-form string-keyed extensions. Either half may be nil.
type MetaData struct {
	IMap *OrderedMap[uint32]
	Map  *OrderedMap[string]
}

// NewMetaData returns an empty MetaData.
func NewMetaData() *MetaData {
	return &MetaData{IMap: NewOrderedMap[uint32](), Map: NewOrderedMap[string]()}
}

// IntTag returns the value stored under the numeric tag key, if any.
func (m *MetaData) IntTag(key uint32) (Value, bool) {
	if m == nil || m.IMap == nil {
		return Invalid, false
	}
	return m.IMap.Get(key)
}

// SetIntTag stores val under the numeric tag key, creating the IMap half if
// needed.
func (m *MetaData) SetIntTag(key uint32, val Value) {
	if m.IMap == nil {
		m.IMap = NewOrderedMap[uint32]()
	}
	m.IMap.Set(key, val)
}

// StrTag returns the value stored under the string tag key, if any.
func (m *MetaData) StrTag(key string) (Value, bool) {
	if m == nil || m.Map == nil {
		return Invalid, false
	}
	return m.Map.Get(key)
}

// SetStrTag stores val under the string tag key, creating the Map half if
// needed.
func (m *MetaData) SetStrTag(key string, val Value) {
	if m.Map == nil {
		m.Map = NewOrderedMap[string]()
	}
	m.Map.Set(key, val)
}

// IsEmpty reports whether both halves are nil or empty.
func (m *MetaData) IsEmpty() bool {
	return m == nil || (m.IMap.Len() == 0 && m.Map.Len() == 0)
}

// Clone returns a deep-enough copy sharing no backing storage with m.
func (m *MetaData) Clone() *MetaData {
	if m == nil {
		return nil
	}
	return &MetaData{IMap: m.IMap.Clone(), Map: m.Map.Clone()}
}

func metaEqual(a, b *MetaData) bool {
	aEmpty, bEmpty := a.IsEmpty(), b.IsEmpty()
	if aEmpty && bEmpty {
		return true
	}
	if aEmpty != bEmpty {
		return false
	}
	return a.IMap.equal(b.IMap) && a.Map.equal(b.Map)
}
