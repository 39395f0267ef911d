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
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config specifies how a client connects to and logs into a broker.
type Config struct {
	ServerHost string `yaml:"server_host"`
	ServerPort int    `yaml:"server_port"`

	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"`
	LoginType    string `yaml:"login_type"`

	ProtocolType string `yaml:"protocol_type"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	DefaultRPCTimeout time.Duration `yaml:"default_rpc_timeout"`
	IdleWatchdog      time.Duration `yaml:"idle_watchdog_timeout"`
}

// DefaultConfig returns Config populated with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerHost:        "localhost",
		ServerPort:        3755,
		LoginType:         "Sha1",
		ProtocolType:      "chainpack",
		HeartbeatInterval: 60 * time.Second,
		ReconnectInterval: 10 * time.Second,
		DefaultRPCTimeout: 5 * time.Second,
	}
}

// Validate checks Config for internal consistency and derives
// IdleWatchdog from HeartbeatInterval when it was left unset.
func (c *Config) Validate() error {
	switch strings.ToLower(c.ProtocolType) {
	case "cpon", "chainpack", "jsonrpc":
	default:
		return fmt.Errorf("protocol_type must be one of cpon, chainpack, jsonrpc, got %q", c.ProtocolType)
	}
	switch c.LoginType {
	case "Plain", "Sha1", "Token", "None":
	default:
		return fmt.Errorf("login_type must be one of Plain, Sha1, Token, None, got %q", c.LoginType)
	}
	if c.ServerPort <= 0 {
		return fmt.Errorf("server_port must be positive")
	}
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat_interval must be 0 or positive")
	}
	if c.DefaultRPCTimeout <= 0 {
		return fmt.Errorf("default_rpc_timeout must be positive")
	}
	if c.IdleWatchdog == 0 && c.HeartbeatInterval > 0 {
		c.IdleWatchdog = 3 * c.HeartbeatInterval
	}
	return nil
}

// Protocol maps ProtocolType's string form to the numeric frame protocol
// tag used by the Writer/Reader.
func (c *Config) Protocol() uint64 {
	switch strings.ToLower(c.ProtocolType) {
	case "cpon":
		return ProtocolCpon
	case "jsonrpc":
		return ProtocolJsonRpc
	default:
		return ProtocolChainPack
	}
}

// ResolvedPassword returns the password to log in with, preferring
// PasswordFile's contents (trimmed of surrounding whitespace) over the
// inline Password field when both are set.
func (c *Config) ResolvedPassword() (string, error) {
	if c.PasswordFile == "" {
		return c.Password, nil
	}
	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("rpc: reading password_file %q: %w", c.PasswordFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoginTypeValue parses LoginType into the LoginType enum used by
// LoginRequest.
func (c *Config) LoginTypeValue() LoginType {
	switch c.LoginType {
	case "Plain":
		return LoginTypePlain
	case "Token":
		return LoginTypeToken
	case "None":
		return LoginTypeNone
	default:
		return LoginTypeSha1
	}
}

// ReadConfig loads Config from a YAML file at path, starting from
// DefaultConfig and validating the result.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rpc: reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("rpc: parsing config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("rpc: invalid config %q: %w", path, err)
	}
	return c, nil
}
