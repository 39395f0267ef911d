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

// Package rpcvalue implements the hierarchical dynamic value model shared by
// the Cpon and ChainPack wire formats: a tagged variant over null, booleans,
// signed/unsigned integers, doubles, fixed-point decimals, timezone-aware
// datetimes, blobs, strings, lists, string- and int-keyed maps and typed
// arrays, each optionally carrying out-of-band meta-data.
package rpcvalue

// Kind discriminates the single active member of a Value.
type Kind uint8

// Kind values. KindInvalid is the zero value and marks "absent" — it is
// never serialized on the wire.
const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindUInt
	KindDouble
	KindDecimal
	KindDateTime
	KindBlob
	KindString
	KindList
	KindMap
	KindIMap
	KindArray
)

// String returns the name used in error messages and diagnostic dumps.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindDouble:
		return "Double"
	case KindDecimal:
		return "Decimal"
	case KindDateTime:
		return "DateTime"
	case KindBlob:
		return "Blob"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindIMap:
		return "IMap"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}
