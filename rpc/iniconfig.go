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
	"time"

	"github.com/go-ini/ini"
)

// ReadConfigINI loads Config from a flat `key = value` file in the default
// (unnamed) INI section, the shape implied by the option names in the
// login handshake's OPT_* table. It starts from DefaultConfig so a file
// only needs to override what it cares about.
func ReadConfigINI(path string) (*Config, error) {
	c := DefaultConfig()

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("rpc: reading ini config %q: %w", path, err)
	}
	sec := f.Section("")

	if k, err := sec.GetKey("server_host"); err == nil {
		c.ServerHost = k.String()
	}
	if k, err := sec.GetKey("server_port"); err == nil {
		c.ServerPort, err = k.Int()
		if err != nil {
			return nil, fmt.Errorf("rpc: ini config %q: server_port: %w", path, err)
		}
	}
	if k, err := sec.GetKey("user"); err == nil {
		c.User = k.String()
	}
	if k, err := sec.GetKey("password"); err == nil {
		c.Password = k.String()
	}
	if k, err := sec.GetKey("password_file"); err == nil {
		c.PasswordFile = k.String()
	}
	if k, err := sec.GetKey("login_type"); err == nil {
		c.LoginType = k.String()
	}
	if k, err := sec.GetKey("protocol_type"); err == nil {
		c.ProtocolType = k.String()
	}
	if k, err := sec.GetKey("heartbeat_interval"); err == nil {
		d, err := time.ParseDuration(k.String())
		if err != nil {
			return nil, fmt.Errorf("rpc: ini config %q: heartbeat_interval: %w", path, err)
		}
		c.HeartbeatInterval = d
	}
	if k, err := sec.GetKey("reconnect_interval"); err == nil {
		d, err := time.ParseDuration(k.String())
		if err != nil {
			return nil, fmt.Errorf("rpc: ini config %q: reconnect_interval: %w", path, err)
		}
		c.ReconnectInterval = d
	}
	if k, err := sec.GetKey("default_rpc_timeout"); err == nil {
		d, err := time.ParseDuration(k.String())
		if err != nil {
			return nil, fmt.Errorf("rpc: ini config %q: default_rpc_timeout: %w", path, err)
		}
		c.DefaultRPCTimeout = d
	}
	if k, err := sec.GetKey("idle_watchdog_timeout"); err == nil {
		d, err := time.ParseDuration(k.String())
		if err != nil {
			return nil, fmt.Errorf("rpc: ini config %q: idle_watchdog_timeout: %w", path, err)
		}
		c.IdleWatchdog = d
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("rpc: invalid ini config %q: %w", path, err)
	}
	return c, nil
}
