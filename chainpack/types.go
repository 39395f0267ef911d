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

// Package chainpack implements the ChainPack binary wire codec: a compact
// VLQ-prefixed, type-tagged encoding of the rpcvalue data model.
package chainpack

import "github.com/silicon-heaven/shv-go/rpcvalue"

// Type-info byte values. 0x00-0x3F encode a TinyUInt directly (the byte IS
// the value), 0x40-0x7F encode a TinyInt (value = byte-0x40). The rest are
// single-byte tags, optionally OR-ed with arrayFlag when they introduce an
// Array's homogeneous element type.
const (
	typeInfoFalse         = 0x80
	typeInfoTrue          = 0x81
	typeInfoNull          = 0x82
	typeInfoUInt          = 0x83
	typeInfoInt           = 0x84
	typeInfoDouble        = 0x85
	typeInfoBlob          = 0x86
	typeInfoString        = 0x87
	typeInfoList          = 0x88
	typeInfoMap           = 0x89
	typeInfoIMap          = 0x8A
	typeInfoMetaIMap      = 0x8B
	typeInfoMetaSMap      = 0x8C
	typeInfoDecimal       = 0x8D
	typeInfoDateTimeEpoch = 0x8E // deprecated, read-only
	typeInfoDateTime      = 0x8F

	typeInfoTerm = 0xFF

	tinyUIntMax  = 0x40 // exclusive upper bound of the TinyUInt range
	tinyIntBase  = 0x40
	arrayFlag    = 0x40 // OR-ed onto a 0x80-0x8F type-info byte to mark an Array header; never collides since that range never has bit 0x40 set
	maxTinyValue = 0x3F
)

// elemKindToTypeInfo maps an Array's element Kind to the type-info byte
// used as its homogeneous element tag, per ChainPack::typeToTypeInfo.
func elemKindToTypeInfo(k rpcvalue.Kind) (byte, bool) {
	switch k {
	case rpcvalue.KindNull:
		return typeInfoNull, true
	case rpcvalue.KindUInt:
		return typeInfoUInt, true
	case rpcvalue.KindInt:
		return typeInfoInt, true
	case rpcvalue.KindDouble:
		return typeInfoDouble, true
	case rpcvalue.KindBool:
		return typeInfoTrue, true
	case rpcvalue.KindBlob:
		return typeInfoBlob, true
	case rpcvalue.KindString:
		return typeInfoString, true
	case rpcvalue.KindDateTime:
		return typeInfoDateTime, true
	case rpcvalue.KindDecimal:
		return typeInfoDecimal, true
	default:
		return 0, false
	}
}

// typeInfoToElemKind is the reverse of elemKindToTypeInfo, per
// ChainPack::typeInfoToType.
func typeInfoToElemKind(t byte) (rpcvalue.Kind, bool) {
	switch t {
	case typeInfoNull:
		return rpcvalue.KindNull, true
	case typeInfoUInt:
		return rpcvalue.KindUInt, true
	case typeInfoInt:
		return rpcvalue.KindInt, true
	case typeInfoDouble:
		return rpcvalue.KindDouble, true
	case typeInfoTrue, typeInfoFalse:
		return rpcvalue.KindBool, true
	case typeInfoBlob:
		return rpcvalue.KindBlob, true
	case typeInfoString:
		return rpcvalue.KindString, true
	case typeInfoDateTimeEpoch, typeInfoDateTime:
		return rpcvalue.KindDateTime, true
	case typeInfoDecimal:
		return rpcvalue.KindDecimal, true
	default:
		return rpcvalue.KindInvalid, false
	}
}
