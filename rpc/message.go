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

// Package rpc implements the SHV RPC transport layer on top of the
// rpcvalue data model: length-prefixed framing, request/response/notify
// envelope classification, the broker login handshake, and a small
// errgroup-driven client driver.
package rpc

import "github.com/silicon-heaven/shv-go/rpcvalue"

// Meta-data tag keys, carried in a message's IMap meta-data half.
const (
	TagMetaTypeId          uint32 = 1
	TagMetaTypeNameSpaceId uint32 = 2
	TagRequestId           uint32 = 8
	TagShvPath             uint32 = 9
	TagMethod              uint32 = 10
	TagCallerIds           uint32 = 11
	TagProtocolType        uint32 = 12
	TagRevCallerIds        uint32 = 13
)

// Body IMap keys, carried in a message's top-level payload.
const (
	KeyParams     uint32 = 1
	KeyResult     uint32 = 2
	KeyError      uint32 = 3
	KeyErrorCode  uint32 = 4
	KeyErrorMsg   uint32 = 5
)

// TagNames maps the well-known meta-data tag keys to their mnemonic names,
// for Cpon's translate-ids rendering.
var TagNames = map[uint32]string{
	TagMetaTypeId:          "MetaTypeId",
	TagMetaTypeNameSpaceId: "MetaTypeNameSpaceId",
	TagRequestId:           "RequestId",
	TagShvPath:             "ShvPath",
	TagMethod:              "Method",
	TagCallerIds:           "CallerIds",
	TagProtocolType:        "ProtocolType",
	TagRevCallerIds:        "RevCallerIds",
}

// ProtocolType values, carried under TagProtocolType, mirroring the
// Rpc::ProtocolVersion enum.
const (
	ProtocolInvalid  uint64 = 0
	ProtocolChainPack uint64 = 1
	ProtocolCpon      uint64 = 2
	ProtocolJsonRpc   uint64 = 3
)

// Message wraps an rpcvalue.Value carrying RPC meta-data, and exposes the
// envelope's well-known fields without the caller having to reach into the
// meta-data IMap and body IMap by hand.
type Message struct {
	rpcvalue.Value
}

// NewMessage wraps v as a Message. v should have meta-data already set, or
// WithMeta can be called afterward; an empty meta-data Message classifies
// as neither Request, Response nor Notify.
func NewMessage(v rpcvalue.Value) Message {
	return Message{Value: v}
}

// NewRequest builds a method-call request with a fresh IMap body of Params.
func NewRequest(requestID uint64, shvPath, method string, params rpcvalue.Value) Message {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(TagRequestId, rpcvalue.NewUInt(requestID))
	meta.SetIntTag(TagMethod, rpcvalue.NewString(method))
	if shvPath != "" {
		meta.SetIntTag(TagShvPath, rpcvalue.NewString(shvPath))
	}
	body := rpcvalue.NewOrderedMap[uint32]()
	if params.IsValid() {
		body.Set(KeyParams, params)
	}
	return Message{Value: rpcvalue.NewIMap(body).WithMeta(meta)}
}

// NewNotify builds a one-way notification: a Method tag with no RequestId.
func NewNotify(shvPath, method string, params rpcvalue.Value) Message {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(TagMethod, rpcvalue.NewString(method))
	if shvPath != "" {
		meta.SetIntTag(TagShvPath, rpcvalue.NewString(shvPath))
	}
	body := rpcvalue.NewOrderedMap[uint32]()
	if params.IsValid() {
		body.Set(KeyParams, params)
	}
	return Message{Value: rpcvalue.NewIMap(body).WithMeta(meta)}
}

// NewResponse builds a successful response carrying result.
func NewResponse(requestID uint64, result rpcvalue.Value) Message {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(TagRequestId, rpcvalue.NewUInt(requestID))
	body := rpcvalue.NewOrderedMap[uint32]()
	body.Set(KeyResult, result)
	return Message{Value: rpcvalue.NewIMap(body).WithMeta(meta)}
}

// NewErrorResponse builds an error response.
func NewErrorResponse(requestID uint64, e Error) Message {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(TagRequestId, rpcvalue.NewUInt(requestID))
	body := rpcvalue.NewOrderedMap[uint32]()
	body.Set(KeyError, e.toValue())
	return Message{Value: rpcvalue.NewIMap(body).WithMeta(meta)}
}

// ForRequest builds an (initially empty) Response pre-populated with the
// request-id and caller-id stack copied from req, ready to have Result or
// Error filled in, per RpcResponse::forRequest.
func ForRequest(req Message) Message {
	meta := rpcvalue.NewMetaData()
	if id, ok := req.RequestID(); ok {
		meta.SetIntTag(TagRequestId, rpcvalue.NewUInt(id))
	}
	if v, ok := req.Meta().IntTag(TagCallerIds); ok {
		meta.SetIntTag(TagCallerIds, v)
	}
	body := rpcvalue.NewOrderedMap[uint32]()
	return Message{Value: rpcvalue.NewIMap(body).WithMeta(meta)}
}

// ensureMeta returns m's meta-data, attaching a fresh empty MetaData first
// if m currently carries none.
func (m *Message) ensureMeta() *rpcvalue.MetaData {
	meta := m.Meta()
	if meta == nil {
		meta = rpcvalue.NewMetaData()
		m.Value = m.Value.WithMeta(meta)
	}
	return meta
}

func (m Message) hasTag(tag uint32) bool {
	_, ok := m.Meta().IntTag(tag)
	return ok
}

// IsRequest reports whether m carries both a Method and a RequestId tag.
func (m Message) IsRequest() bool {
	return m.hasTag(TagMethod) && m.hasTag(TagRequestId)
}

// IsNotify reports whether m carries a Method tag but no RequestId.
func (m Message) IsNotify() bool {
	return m.hasTag(TagMethod) && !m.hasTag(TagRequestId)
}

// IsResponse reports whether m carries a RequestId but no Method.
func (m Message) IsResponse() bool {
	return m.hasTag(TagRequestId) && !m.hasTag(TagMethod)
}

// RequestID returns the RequestId tag, if present.
func (m Message) RequestID() (uint64, bool) {
	v, ok := m.Meta().IntTag(TagRequestId)
	if !ok {
		return 0, false
	}
	return v.UInt(), true
}

// Method returns the Method tag, if present.
func (m Message) Method() (string, bool) {
	v, ok := m.Meta().IntTag(TagMethod)
	if !ok {
		return "", false
	}
	return v.Str(), true
}

// ShvPath returns the ShvPath tag, or "" if absent.
func (m Message) ShvPath() string {
	v, ok := m.Meta().IntTag(TagShvPath)
	if !ok {
		return ""
	}
	return v.Str()
}

// Params returns the request/notify Params field, if present.
func (m Message) Params() (rpcvalue.Value, bool) {
	return m.Value.At(KeyParams)
}

// Result returns the response Result field, if present.
func (m Message) Result() (rpcvalue.Value, bool) {
	return m.Value.At(KeyResult)
}

// RpcError returns the response Error field parsed into an Error, if present.
func (m Message) RpcError() (Error, bool) {
	v, ok := m.Value.At(KeyError)
	if !ok {
		return Error{}, false
	}
	return errorFromValue(v), true
}

// CallerIDs returns the caller-id stack as a slice, whether it was stored
// as a single Int (one-element stack) or a List (per the push/pop
// promotion/demotion rule).
func (m Message) CallerIDs() []uint64 {
	v, ok := m.Meta().IntTag(TagCallerIds)
	if !ok {
		return nil
	}
	switch v.Kind() {
	case rpcvalue.KindList:
		ids := make([]uint64, 0, len(v.List()))
		for _, e := range v.List() {
			ids = append(ids, e.UInt())
		}
		return ids
	case rpcvalue.KindUInt:
		return []uint64{v.UInt()}
	case rpcvalue.KindInt:
		return []uint64{uint64(v.Int())}
	default:
		return nil
	}
}

// PushCallerID pushes id onto m's caller-id stack, promoting a bare Int to
// a List when a second id is pushed, matching RpcMessage::pushCallerId.
func (m *Message) PushCallerID(id uint64) {
	meta := m.ensureMeta()
	existing, ok := meta.IntTag(TagCallerIds)
	if !ok {
		meta.SetIntTag(TagCallerIds, rpcvalue.NewUInt(id))
		return
	}
	switch existing.Kind() {
	case rpcvalue.KindList:
		lst := append(existing.List(), rpcvalue.NewUInt(id))
		meta.SetIntTag(TagCallerIds, rpcvalue.NewList(lst...))
	default:
		meta.SetIntTag(TagCallerIds, rpcvalue.NewList(existing, rpcvalue.NewUInt(id)))
	}
}

// PopCallerID removes and returns the innermost caller id, demoting a
// two-element List back to a bare Int, matching RpcMessage::popCallerId.
func (m *Message) PopCallerID() (uint64, bool) {
	meta := m.ensureMeta()
	existing, ok := meta.IntTag(TagCallerIds)
	if !ok {
		return 0, false
	}
	switch existing.Kind() {
	case rpcvalue.KindList:
		lst := existing.List()
		if len(lst) == 0 {
			return 0, false
		}
		last := lst[len(lst)-1]
		rest := lst[:len(lst)-1]
		if len(rest) == 1 {
			meta.SetIntTag(TagCallerIds, rest[0])
		} else {
			meta.SetIntTag(TagCallerIds, rpcvalue.NewList(rest...))
		}
		return last.UInt(), true
	default:
		meta.IMap.Delete(TagCallerIds)
		return existing.UInt(), true
	}
}

// PushRevCallerID pushes id onto the reverse caller-id stack (TagRevCallerIds),
// creating the List if the tag is absent. Nothing in this package calls it;
// callers push reverse caller ids explicitly.
func (m *Message) PushRevCallerID(id uint64) {
	meta := m.ensureMeta()
	existing, ok := meta.IntTag(TagRevCallerIds)
	if !ok {
		meta.SetIntTag(TagRevCallerIds, rpcvalue.NewList(rpcvalue.NewUInt(id)))
		return
	}
	lst := append(existing.List(), rpcvalue.NewUInt(id))
	meta.SetIntTag(TagRevCallerIds, rpcvalue.NewList(lst...))
}
