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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_readConfigINIOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shv.ini")
	contents := "server_host = broker.example.com\n" +
		"server_port = 3757\n" +
		"user = alice\n" +
		"protocol_type = cpon\n" +
		"heartbeat_interval = 15s\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := ReadConfigINI(path)
	require.NoError(t, err)
	assert.Equal(t, "broker.example.com", cfg.ServerHost)
	assert.Equal(t, 3757, cfg.ServerPort)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, uint64(ProtocolCpon), cfg.Protocol())
	assert.Equal(t, 3*cfg.HeartbeatInterval, cfg.IdleWatchdog)
}

func Test_readConfigINIMissingFileErrors(t *testing.T) {
	_, err := ReadConfigINI(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}
