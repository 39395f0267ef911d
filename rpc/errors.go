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

package rpc

import (
	"fmt"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// ErrorCode enumerates RpcResponse::Error::ErrorCode.
type ErrorCode uint64

const (
	NoError ErrorCode = iota
	InvalidRequest
	MethodNotFound
	InvalidParams
	InternalError
	ParseError
	SyncMethodCallTimeout
	SyncMethodCallCancelled
	MethodCallException
	Unknown
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	case ParseError:
		return "ParseError"
	case SyncMethodCallTimeout:
		return "SyncMethodCallTimeout"
	case SyncMethodCallCancelled:
		return "SyncMethodCallCancelled"
	case MethodCallException:
		return "MethodCallException"
	default:
		return "Unknown"
	}
}

// Error is a response's Error field: a code plus a human-readable message,
// mirroring RpcResponse::Error.
type Error struct {
	Code    ErrorCode
	Message string
}

// NewError builds an Error with the given code and a formatted message.
func NewError(code ErrorCode, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError builds an InternalError, matching
// RpcResponse::Error::createInternalError.
func NewInternalError(format string, args ...any) Error {
	return NewError(InternalError, format, args...)
}

// NewMethodCallExceptionError builds a MethodCallException error, matching
// RpcResponse::Error::createMethodCallExceptionError.
func NewMethodCallExceptionError(format string, args ...any) Error {
	return NewError(MethodCallException, format, args...)
}

// NewSyncMethodCallTimeoutError builds a SyncMethodCallTimeout error,
// matching RpcResponse::Error::createSyncMethodCallTimeoutError.
func NewSyncMethodCallTimeoutError(requestID uint64, timeout fmt.Stringer) Error {
	return NewError(SyncMethodCallTimeout, "method call %d timed out after %s", requestID, timeout)
}

// NewMethodNotFoundError builds a MethodNotFound error for the given
// shv path and method, a common enough case to deserve its own helper.
func NewMethodNotFoundError(shvPath, method string) Error {
	return NewError(MethodNotFound, "method %q not found on path %q", method, shvPath)
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e Error) toValue() rpcvalue.Value {
	m := rpcvalue.NewOrderedMap[uint32]()
	m.Set(KeyErrorCode, rpcvalue.NewUInt(uint64(e.Code)))
	if e.Message != "" {
		m.Set(KeyErrorMsg, rpcvalue.NewString(e.Message))
	}
	return rpcvalue.NewIMap(m)
}

func errorFromValue(v rpcvalue.Value) Error {
	if v.Kind() != rpcvalue.KindIMap {
		return Error{Code: Unknown, Message: "malformed error value"}
	}
	e := Error{}
	if code, ok := v.At(KeyErrorCode); ok {
		e.Code = ErrorCode(code.UInt())
	}
	if msg, ok := v.At(KeyErrorMsg); ok {
		e.Message = msg.Str()
	}
	return e
}
