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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

func Test_frameRoundTripChainPack(t *testing.T) {
	w := NewWriter(ProtocolChainPack)
	msg := NewRequest(42, "test/device", "ping", rpcvalue.NewString("hi"))
	require.NoError(t, w.Enqueue(msg))

	var out bytes.Buffer
	done, err := w.Flush(out.Write)
	require.NoError(t, err)
	assert.True(t, done)

	r := NewReader()
	r.Feed(out.Bytes())
	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(ProtocolChainPack), frame.Protocol)

	got, err := frame.Decode()
	require.NoError(t, err)
	assert.True(t, got.IsRequest())
	id, ok := got.RequestID()
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)
	method, _ := got.Method()
	assert.Equal(t, "ping", method)
}

func Test_frameRoundTripCpon(t *testing.T) {
	w := NewWriter(ProtocolCpon)
	msg := NewResponse(7, rpcvalue.NewInt(99))
	require.NoError(t, w.Enqueue(msg))

	var out bytes.Buffer
	_, err := w.Flush(out.Write)
	require.NoError(t, err)

	r := NewReader()
	r.Feed(out.Bytes())
	frame, err := r.Next()
	require.NoError(t, err)
	got, err := frame.Decode()
	require.NoError(t, err)
	assert.True(t, got.IsResponse())
	result, ok := got.Result()
	require.True(t, ok)
	assert.Equal(t, int64(99), result.Int())
}

func Test_readerNeedsMoreDataOnPartialFrame(t *testing.T) {
	w := NewWriter(ProtocolChainPack)
	require.NoError(t, w.Enqueue(NewNotify("a", "b", rpcvalue.Invalid)))
	var out bytes.Buffer
	_, err := w.Flush(out.Write)
	require.NoError(t, err)

	full := out.Bytes()
	r := NewReader()
	r.Feed(full[:len(full)-1])
	_, err = r.Next()
	assert.ErrorIs(t, err, wire.ErrNeedMoreData)

	r.Feed(full[len(full)-1:])
	frame, err := r.Next()
	require.NoError(t, err)
	got, err := frame.Decode()
	require.NoError(t, err)
	assert.True(t, got.IsNotify())
}

func Test_writerResumesAcrossPartialWrite(t *testing.T) {
	w := NewWriter(ProtocolChainPack)
	require.NoError(t, w.Enqueue(NewNotify("a", "b", rpcvalue.Invalid)))

	var out bytes.Buffer
	total := w.Pending()
	writeOneByte := func(p []byte) (int, error) {
		if len(p) == 0 {
			return 0, nil
		}
		return out.Write(p[:1])
	}
	for i := 0; i < total; i++ {
		done, err := w.Flush(writeOneByte)
		require.NoError(t, err)
		if i < total-1 {
			assert.False(t, done)
		}
	}
	assert.Equal(t, total, out.Len())

	r := NewReader()
	r.Feed(out.Bytes())
	frame, err := r.Next()
	require.NoError(t, err)
	got, err := frame.Decode()
	require.NoError(t, err)
	assert.True(t, got.IsNotify())
}

func Test_unknownProtocolVersionIsDropped(t *testing.T) {
	r := NewReader()
	// packet_len=1, version=9 (unknown), no body
	r.Feed([]byte{0x01, 0x09})
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrUnknownProtocol)
}
