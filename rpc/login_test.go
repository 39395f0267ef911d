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

func Test_hashedPasswordHashesPlaintext(t *testing.T) {
	got := HashedPassword("1234567890", "test")
	want := sha1Hex("1234567890" + sha1Hex("test"))
	assert.Equal(t, want, got)
}

func Test_hashedPasswordReusesPreHashedPassword(t *testing.T) {
	preHashed := sha1Hex("test")
	got := HashedPassword("1234567890", preHashed)
	want := sha1Hex("1234567890" + preHashed)
	assert.Equal(t, want, got)
}

func Test_serverNonceExtractedFromHelloResponse(t *testing.T) {
	m := rpcvalue.NewOrderedMap[string]()
	m.Set("nonce", rpcvalue.NewString("abc123"))
	resp := NewResponse(1, rpcvalue.NewMap(m))
	nonce, err := ServerNonce(resp)
	require.NoError(t, err)
	assert.Equal(t, "abc123", nonce)
}

func Test_serverNonceMissingIsError(t *testing.T) {
	resp := NewResponse(1, rpcvalue.NewMap(nil))
	_, err := ServerNonce(resp)
	assert.Error(t, err)
}

func Test_loginRequestCarriesHashedPassword(t *testing.T) {
	msg := LoginRequest(2, "nonce1", LoginParams{
		User:      "admin",
		Password:  "secret",
		LoginType: LoginTypeSha1,
	})
	params, ok := msg.Params()
	require.True(t, ok)
	login, ok := params.At("login")
	require.True(t, ok)
	user, ok := login.At("user")
	require.True(t, ok)
	assert.Equal(t, "admin", user.Str())

	pass, ok := login.At("password")
	require.True(t, ok)
	assert.Equal(t, HashedPassword("nonce1", "secret"), pass.Str())
}

func Test_stateStrings(t *testing.T) {
	assert.Equal(t, "Disconnected", StateDisconnected.String())
	assert.Equal(t, "BrokerConnected", StateBrokerConnected.String())
}
