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
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// State is a connection's position in the login handshake.
type State int

const (
	StateDisconnected State = iota
	StateSocketConnected
	StateHelloSent
	StateLoginSent
	StateBrokerConnected
	StatePing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateSocketConnected:
		return "SocketConnected"
	case StateHelloSent:
		return "HelloSent"
	case StateLoginSent:
		return "LoginSent"
	case StateBrokerConnected:
		return "BrokerConnected"
	case StatePing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// LoginType selects how a password is presented to the broker.
type LoginType int

const (
	LoginTypePlain LoginType = iota
	LoginTypeSha1
	LoginTypeToken
	LoginTypeNone
)

func (t LoginType) String() string {
	switch t {
	case LoginTypePlain:
		return "Plain"
	case LoginTypeSha1:
		return "Sha1"
	case LoginTypeToken:
		return "Token"
	case LoginTypeNone:
		return "None"
	default:
		return "Unknown"
	}
}

// LoginParams carries the credentials and session options sent in the
// login() method call.
type LoginParams struct {
	User      string
	Password  string
	LoginType LoginType
	Options   map[string]rpcvalue.Value
}

// sha1Hex returns the lowercase hex SHA-1 digest of s.
func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashedPassword computes the password value to embed in the login request
// for LoginTypeSha1: the password is SHA-1'd first unless it already looks
// like a 40-hex-character digest (the convention used when a password file
// stores the hash rather than the plaintext), then combined with the
// server's nonce as sha1(nonce || sha1Password).
func HashedPassword(serverNonce, password string) string {
	sha1Password := password
	if len(sha1Password) != 40 || !isHex(sha1Password) {
		sha1Password = sha1Hex(password)
	}
	return sha1Hex(serverNonce + sha1Password)
}

func isHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// HelloRequest builds the hello() call that starts the handshake.
func HelloRequest(requestID uint64) Message {
	return NewRequest(requestID, "", "hello", rpcvalue.Invalid)
}

// ServerNonce extracts the nonce field from a hello() response.
func ServerNonce(resp Message) (string, error) {
	result, ok := resp.Result()
	if !ok {
		return "", fmt.Errorf("rpc: hello response carries no result")
	}
	nonce, ok := result.At("nonce")
	if !ok {
		return "", fmt.Errorf("rpc: hello response missing nonce field")
	}
	return nonce.Str(), nil
}

// LoginRequest builds the login() call, hashing the password per params's
// LoginType against serverNonce when required.
func LoginRequest(requestID uint64, serverNonce string, params LoginParams) Message {
	login := rpcvalue.NewOrderedMap[string]()
	login.Set("user", rpcvalue.NewString(params.User))
	switch params.LoginType {
	case LoginTypeSha1:
		login.Set("password", rpcvalue.NewString(HashedPassword(serverNonce, params.Password)))
	case LoginTypeNone:
		login.Set("password", rpcvalue.NewString(""))
	default:
		login.Set("password", rpcvalue.NewString(params.Password))
	}
	login.Set("type", rpcvalue.NewString(params.LoginType.String()))

	options := rpcvalue.NewOrderedMap[string]()
	for k, v := range params.Options {
		options.Set(k, v)
	}

	body := rpcvalue.NewOrderedMap[string]()
	body.Set("login", rpcvalue.NewMap(login))
	body.Set("options", rpcvalue.NewMap(options))
	return NewRequest(requestID, "", "login", rpcvalue.NewMap(body))
}

// PingRequest builds the .broker/app ping() heartbeat call.
func PingRequest(requestID uint64) Message {
	return NewRequest(requestID, ".broker/app", "ping", rpcvalue.Invalid)
}
