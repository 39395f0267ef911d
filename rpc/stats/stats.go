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

// Package stats tracks a connection's running counters (messages sent and
// received, protocol errors, current login state) and exposes them over
// Prometheus.
package stats

import (
	"sync/atomic"
)

// Stats holds a connection's counters. The zero value is ready to use.
type Stats struct {
	messagesSent     int64
	messagesReceived int64
	bytesSent        int64
	bytesReceived    int64
	protocolErrors   int64
	reconnects       int64
	loginState       int64
	requestsPending  int64
	requestTimeouts  int64
}

// IncMessagesSent increments the sent-message counter.
func (s *Stats) IncMessagesSent() { atomic.AddInt64(&s.messagesSent, 1) }

// IncMessagesReceived increments the received-message counter.
func (s *Stats) IncMessagesReceived() { atomic.AddInt64(&s.messagesReceived, 1) }

// AddBytesSent adds n to the sent-byte counter.
func (s *Stats) AddBytesSent(n int) { atomic.AddInt64(&s.bytesSent, int64(n)) }

// AddBytesReceived adds n to the received-byte counter.
func (s *Stats) AddBytesReceived(n int) { atomic.AddInt64(&s.bytesReceived, int64(n)) }

// IncProtocolErrors increments the dropped-frame counter.
func (s *Stats) IncProtocolErrors() { atomic.AddInt64(&s.protocolErrors, 1) }

// IncReconnects increments the reconnect counter.
func (s *Stats) IncReconnects() { atomic.AddInt64(&s.reconnects, 1) }

// IncRequestTimeouts increments the synthesized-timeout counter.
func (s *Stats) IncRequestTimeouts() { atomic.AddInt64(&s.requestTimeouts, 1) }

// SetRequestsPending records the number of outstanding method calls.
func (s *Stats) SetRequestsPending(n int) { atomic.StoreInt64(&s.requestsPending, int64(n)) }

// SetLoginState atomically records the current handshake state.
func (s *Stats) SetLoginState(state int) { atomic.StoreInt64(&s.loginState, int64(state)) }

// Snapshot is a point-in-time copy of every counter, keyed the way
// PrometheusExporter expects.
type Snapshot struct {
	MessagesSent     int64
	MessagesReceived int64
	BytesSent        int64
	BytesReceived    int64
	ProtocolErrors   int64
	Reconnects       int64
	LoginState       int64
	RequestsPending  int64
	RequestTimeouts  int64
}

// Snapshot reads all counters into a Snapshot.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		MessagesSent:     atomic.LoadInt64(&s.messagesSent),
		MessagesReceived: atomic.LoadInt64(&s.messagesReceived),
		BytesSent:        atomic.LoadInt64(&s.bytesSent),
		BytesReceived:    atomic.LoadInt64(&s.bytesReceived),
		ProtocolErrors:   atomic.LoadInt64(&s.protocolErrors),
		Reconnects:       atomic.LoadInt64(&s.reconnects),
		LoginState:       atomic.LoadInt64(&s.loginState),
		RequestsPending:  atomic.LoadInt64(&s.requestsPending),
		RequestTimeouts:  atomic.LoadInt64(&s.requestTimeouts),
	}
}
