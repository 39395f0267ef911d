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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

func Test_requestClassification(t *testing.T) {
	req := NewRequest(42, "test/device", "ping", rpcvalue.Invalid)
	assert.True(t, req.IsRequest())
	assert.False(t, req.IsNotify())
	assert.False(t, req.IsResponse())

	id, ok := req.RequestID()
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)

	method, ok := req.Method()
	require.True(t, ok)
	assert.Equal(t, "ping", method)
	assert.Equal(t, "test/device", req.ShvPath())
}

func Test_notifyClassification(t *testing.T) {
	n := NewNotify("test/device", "chng", rpcvalue.NewInt(1))
	assert.False(t, n.IsRequest())
	assert.True(t, n.IsNotify())
	assert.False(t, n.IsResponse())
	_, ok := n.RequestID()
	assert.False(t, ok)
}

func Test_responseClassification(t *testing.T) {
	resp := NewResponse(42, rpcvalue.NewInt(1))
	assert.False(t, resp.IsRequest())
	assert.False(t, resp.IsNotify())
	assert.True(t, resp.IsResponse())
	result, ok := resp.Result()
	require.True(t, ok)
	assert.Equal(t, int64(1), result.Int())
}

func Test_errorResponseRoundTrips(t *testing.T) {
	resp := NewErrorResponse(7, NewError(MethodNotFound, "no such method %s", "foo"))
	e, ok := resp.RpcError()
	require.True(t, ok)
	assert.Equal(t, MethodNotFound, e.Code)
	assert.Equal(t, "no such method foo", e.Message)
}

func Test_forRequestCopiesRequestIDAndCallerIds(t *testing.T) {
	req := NewRequest(9, "a/b", "get", rpcvalue.Invalid)
	req.PushCallerID(1)
	req.PushCallerID(2)

	resp := ForRequest(req)
	id, ok := resp.RequestID()
	require.True(t, ok)
	assert.Equal(t, uint64(9), id)
	assert.Equal(t, []uint64{1, 2}, resp.CallerIDs())
}

func Test_callerIdPushPopPromotesAndDemotes(t *testing.T) {
	msg := NewRequest(1, "", "m", rpcvalue.Invalid)
	assert.Nil(t, msg.CallerIDs())

	msg.PushCallerID(10)
	assert.Equal(t, []uint64{10}, msg.CallerIDs())

	msg.PushCallerID(20)
	assert.Equal(t, []uint64{10, 20}, msg.CallerIDs())

	id, ok := msg.PopCallerID()
	require.True(t, ok)
	assert.Equal(t, uint64(20), id)
	assert.Equal(t, []uint64{10}, msg.CallerIDs())

	id, ok = msg.PopCallerID()
	require.True(t, ok)
	assert.Equal(t, uint64(10), id)
	assert.Nil(t, msg.CallerIDs())
}

func Test_paramsOmittedWhenInvalid(t *testing.T) {
	req := NewRequest(1, "", "ls", rpcvalue.Invalid)
	_, ok := req.Params()
	assert.False(t, ok)
}
