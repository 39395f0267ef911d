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

// Package wire holds pieces shared by the chainpack and cpon codecs: a
// container stack with a bounded recursion depth, and the
// need-more-data/parse-error distinction both codecs use to support
// resumable decoding from partial buffers. It also defines a tagged Item
// token type; neither codec produces or consumes Items, since both readers
// decode straight into rpcvalue.Value.
package wire

import "github.com/silicon-heaven/shv-go/rpcvalue"

// ItemKind tags the single active field of an Item, mirroring the
// ccpcp_item_types enum of the reference tokenizer (CCPCP_ITEM_*).
type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemNull
	ItemBool
	ItemInt
	ItemUInt
	ItemDouble
	ItemDecimal
	ItemDateTime
	ItemString
	ItemListBegin
	ItemMapBegin
	ItemIMapBegin
	ItemMetaBegin
	ItemContainerEnd
)

// String names the ItemKind for diagnostics.
func (k ItemKind) String() string {
	switch k {
	case ItemInvalid:
		return "Invalid"
	case ItemNull:
		return "Null"
	case ItemBool:
		return "Bool"
	case ItemInt:
		return "Int"
	case ItemUInt:
		return "UInt"
	case ItemDouble:
		return "Double"
	case ItemDecimal:
		return "Decimal"
	case ItemDateTime:
		return "DateTime"
	case ItemString:
		return "String"
	case ItemListBegin:
		return "ListBegin"
	case ItemMapBegin:
		return "MapBegin"
	case ItemIMapBegin:
		return "IMapBegin"
	case ItemMetaBegin:
		return "MetaBegin"
	case ItemContainerEnd:
		return "ContainerEnd"
	default:
		return "Unknown"
	}
}

// StringChunk carries one fragment of a (possibly streamed) string literal.
// Last is true on the final fragment of the string.
type StringChunk struct {
	Bytes []byte
	Last  bool
}

// Item is one tagged token of a ChainPack or Cpon stream. Only the field
// matching Kind is populated. The chainpack and cpon readers do not emit
// Items.
type Item struct {
	Kind ItemKind

	Bool     bool
	Int      int64
	UInt     uint64
	Double   float64
	Decimal  rpcvalue.Decimal
	DateTime rpcvalue.DateTime
	String   StringChunk
}
