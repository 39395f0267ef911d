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
	"context"
	"testing"

	gomock "go.uber.org/mock/gomock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// scriptedLoginResponses encodes a hello response carrying nonce, followed
// by a successful, empty login response, exactly as a broker would reply
// in sequence.
func scriptedLoginResponses(t *testing.T, nonce string) []byte {
	t.Helper()
	w := NewWriter(ProtocolChainPack)

	m := rpcvalue.NewOrderedMap[string]()
	m.Set("nonce", rpcvalue.NewString(nonce))
	require.NoError(t, w.Enqueue(NewResponse(1, rpcvalue.NewMap(m))))
	require.NoError(t, w.Enqueue(NewResponse(2, rpcvalue.Null())))

	var buf bytes.Buffer
	done, err := w.Flush(buf.Write)
	require.NoError(t, err)
	require.True(t, done)
	return buf.Bytes()
}

func Test_driverLoginCompletesHandshakeOverMockConn(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)

	script := scriptedLoginResponses(t, "abc123")
	conn.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).Times(2)
	conn.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return copy(p, script), nil
	}).Times(1)

	cfg := DefaultConfig()
	cfg.User = "admin"
	cfg.Password = "test"
	cfg.LoginType = "Sha1"

	d := NewDriver(conn, cfg, nil)
	require.NoError(t, d.Login(context.Background()))
	assert.Equal(t, StateBrokerConnected, d.State())
}

func Test_driverLoginPropagatesHelloError(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := NewMockConn(ctrl)

	w := NewWriter(ProtocolChainPack)
	require.NoError(t, w.Enqueue(NewErrorResponse(1, NewError(InvalidRequest, "bad hello"))))
	var buf bytes.Buffer
	_, err := w.Flush(buf.Write)
	require.NoError(t, err)

	conn.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).Times(1)
	conn.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return copy(p, buf.Bytes()), nil
	}).Times(1)

	d := NewDriver(conn, DefaultConfig(), nil)
	err = d.Login(context.Background())
	assert.Error(t, err)
	assert.NotEqual(t, StateBrokerConnected, d.State())
}
