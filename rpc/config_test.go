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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_defaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(ProtocolChainPack), cfg.Protocol())
}

func Test_idleWatchdogDerivedFromHeartbeat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatInterval = 30 * time.Second
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90*time.Second, cfg.IdleWatchdog)
}

func Test_invalidProtocolTypeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProtocolType = "xml"
	assert.Error(t, cfg.Validate())
}

func Test_invalidLoginTypeRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoginType = "Kerberos"
	assert.Error(t, cfg.Validate())
}

func Test_protocolTypeSelectsFrameProtocol(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProtocolType = "cpon"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(ProtocolCpon), cfg.Protocol())
}
