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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/silicon-heaven/shv-go/rpc/stats"
	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

// Conn is what a Driver needs from a transport: a byte stream it can read
// frames off of and write frames onto, closable on teardown. *net.TCPConn
// and *net.UnixConn both satisfy it.
type Conn interface {
	io.Reader
	io.Writer
	Close() error
}

// pendingCall is a method call awaiting its response.
type pendingCall struct {
	resp chan Message
}

// Driver owns one broker connection: the login handshake, the send queue,
// the receive buffer and the heartbeat/timeout bookkeeping. Scheduling is
// single-threaded at the call-dispatch level (Call/Notify hand off to the
// writer goroutine through a channel) per the cooperative concurrency model;
// only the transport boundary itself suspends.
type Driver struct {
	conn  Conn
	cfg   *Config
	stats *stats.Stats

	writer *Writer
	reader *Reader

	state int64 // State, accessed atomically

	nextRequestID uint64

	mu      sync.Mutex
	pending map[uint64]*pendingCall

	outbox chan Message

	// NotifyHandler, if set, is invoked (from the reader goroutine) for
	// every inbound Notify message. It must not block.
	NotifyHandler func(Message)

	// FrameHandler, if set, is invoked (from the reader goroutine) for
	// every successfully decoded inbound message, regardless of kind;
	// useful for a passive observer that wants requests and responses
	// too, not just notifications. It must not block.
	FrameHandler func(Message)
}

// NewDriver wraps conn for login and RPC exchange under cfg.
func NewDriver(conn Conn, cfg *Config, st *stats.Stats) *Driver {
	if st == nil {
		st = &stats.Stats{}
	}
	return &Driver{
		conn:    conn,
		cfg:     cfg,
		stats:   st,
		writer:  NewWriter(cfg.Protocol()),
		reader:  NewReader(),
		pending: make(map[uint64]*pendingCall),
		outbox:  make(chan Message, 16),
	}
}

func (d *Driver) setState(s State) {
	atomic.StoreInt64(&d.state, int64(s))
	d.stats.SetLoginState(int(s))
}

// State returns the driver's current handshake state.
func (d *Driver) State() State {
	return State(atomic.LoadInt64(&d.state))
}

func (d *Driver) allocRequestID() uint64 {
	return atomic.AddUint64(&d.nextRequestID, 1)
}

// Login performs the hello/login handshake synchronously and leaves the
// driver in StateBrokerConnected on success.
func (d *Driver) Login(ctx context.Context) error {
	d.setState(StateSocketConnected)

	helloID := d.allocRequestID()
	if err := d.writeAndFlush(HelloRequest(helloID)); err != nil {
		return fmt.Errorf("rpc: sending hello: %w", err)
	}
	d.setState(StateHelloSent)

	helloResp, err := d.readResponse(ctx, helloID)
	if err != nil {
		return fmt.Errorf("rpc: awaiting hello response: %w", err)
	}
	if e, ok := helloResp.RpcError(); ok {
		return fmt.Errorf("rpc: hello rejected: %w", e)
	}
	nonce, err := ServerNonce(helloResp)
	if err != nil {
		return err
	}

	password, err := d.cfg.ResolvedPassword()
	if err != nil {
		return err
	}
	loginID := d.allocRequestID()
	loginMsg := LoginRequest(loginID, nonce, LoginParams{
		User:      d.cfg.User,
		Password:  password,
		LoginType: d.cfg.LoginTypeValue(),
	})
	if err := d.writeAndFlush(loginMsg); err != nil {
		return fmt.Errorf("rpc: sending login: %w", err)
	}
	d.setState(StateLoginSent)

	loginResp, err := d.readResponse(ctx, loginID)
	if err != nil {
		return fmt.Errorf("rpc: awaiting login response: %w", err)
	}
	if e, ok := loginResp.RpcError(); ok {
		return fmt.Errorf("rpc: login rejected: %w", e)
	}

	d.setState(StateBrokerConnected)
	return nil
}

// writeAndFlush enqueues msg and flushes it to the transport immediately;
// used for the handshake, before the steady-state writer goroutine starts.
func (d *Driver) writeAndFlush(msg Message) error {
	if err := d.writer.Enqueue(msg); err != nil {
		return err
	}
	for {
		done, err := d.writer.Flush(d.conn.Write)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// readResponse blocks, reading raw frames directly off conn, until the
// response to requestID arrives; used only during the pre-goroutine
// handshake phase.
func (d *Driver) readResponse(ctx context.Context, requestID uint64) (Message, error) {
	buf := make([]byte, 4096)
	for {
		frame, err := d.reader.Next()
		if errors.Is(err, wire.ErrNeedMoreData) {
			n, rerr := d.conn.Read(buf)
			if n > 0 {
				d.reader.Feed(buf[:n])
			}
			if rerr != nil {
				return Message{}, fmt.Errorf("rpc: reading handshake response: %w", rerr)
			}
			continue
		}
		if errors.Is(err, ErrUnknownProtocol) {
			continue
		}
		if err != nil {
			return Message{}, err
		}
		msg, err := frame.Decode()
		if err != nil {
			return Message{}, err
		}
		if id, ok := msg.RequestID(); ok && id == requestID {
			return msg, nil
		}
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		default:
		}
	}
}

// Run drives the steady-state connection: concurrent read, write and
// heartbeat loops, all torn down together when ctx is cancelled, the
// transport fails, or the heartbeat watchdog trips.
func (d *Driver) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return d.readLoop(ctx) })
	eg.Go(func() error { return d.writeLoop(ctx) })
	if d.cfg.HeartbeatInterval > 0 {
		eg.Go(func() error { return d.heartbeatLoop(ctx) })
	}

	return eg.Wait()
}

func (d *Driver) readLoop(ctx context.Context) error {
	buf := make([]byte, 8192)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := d.reader.Next()
		if errors.Is(err, wire.ErrNeedMoreData) {
			n, rerr := d.conn.Read(buf)
			if n > 0 {
				d.reader.Feed(buf[:n])
				d.stats.AddBytesReceived(n)
			}
			if rerr != nil {
				return fmt.Errorf("rpc: transport read: %w", rerr)
			}
			continue
		}
		if errors.Is(err, ErrUnknownProtocol) {
			d.stats.IncProtocolErrors()
			log.Warning("rpc: dropping frame with unknown protocol version")
			continue
		}
		var parseErr *wire.ParseError
		if errors.As(err, &parseErr) {
			d.stats.IncProtocolErrors()
			log.Warningf("rpc: dropping malformed frame: %v", err)
			continue
		}
		if err != nil {
			return err
		}

		msg, err := frame.Decode()
		if err != nil {
			d.stats.IncProtocolErrors()
			log.Warningf("rpc: dropping frame with malformed body: %v", err)
			continue
		}
		d.stats.IncMessagesReceived()
		if d.FrameHandler != nil {
			d.FrameHandler(msg)
		}
		d.dispatch(msg)
	}
}

// logRpcMsg traces a message crossing the driver boundary at debug level,
// arrow-style: "<==" for inbound, "==>" for outbound, mirroring the
// original driver's logRpcMsg.
func logRpcMsg(arrow string, msg Message) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	method, _ := msg.Method()
	id, _ := msg.RequestID()
	log.Debugf("%s path=%q method=%q requestId=%d", arrow, msg.ShvPath(), method, id)
}

func (d *Driver) dispatch(msg Message) {
	logRpcMsg("<==", msg)
	if msg.IsResponse() {
		id, _ := msg.RequestID()
		d.mu.Lock()
		call, ok := d.pending[id]
		if ok {
			delete(d.pending, id)
		}
		d.stats.SetRequestsPending(len(d.pending))
		d.mu.Unlock()
		if ok {
			call.resp <- msg
		}
		return
	}
	if msg.IsNotify() && d.NotifyHandler != nil {
		d.NotifyHandler(msg)
	}
}

func (d *Driver) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-d.outbox:
			logRpcMsg("==>", msg)
			if err := d.writer.Enqueue(msg); err != nil {
				log.Errorf("rpc: encoding outgoing message: %v", err)
				continue
			}
			for {
				done, err := d.writer.Flush(d.conn.Write)
				if err != nil {
					return fmt.Errorf("rpc: transport write: %w", err)
				}
				if done {
					break
				}
			}
			d.stats.IncMessagesSent()
		}
	}
}

func (d *Driver) heartbeatLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()
	var outstanding int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if atomic.LoadInt64(&outstanding) != 0 {
				return fmt.Errorf("rpc: heartbeat timed out, ping %d never answered", outstanding)
			}
			id := d.allocRequestID()
			atomic.StoreInt64(&outstanding, int64(id))
			go func() {
				callCtx, cancel := context.WithTimeout(ctx, d.cfg.DefaultRPCTimeout)
				defer cancel()
				if _, err := d.call(callCtx, PingRequest(id), id); err != nil {
					log.Warningf("rpc: ping failed: %v", err)
					return
				}
				atomic.StoreInt64(&outstanding, 0)
			}()
		}
	}
}

// Call sends a method-call request and blocks until its response arrives,
// the default RPC timeout elapses (returning an empty Message and a locally
// built SyncMethodCallTimeout Error; no response Message is built), or ctx
// is cancelled.
func (d *Driver) Call(ctx context.Context, shvPath, method string, params rpcvalue.Value) (Message, error) {
	id := d.allocRequestID()
	msg := NewRequest(id, shvPath, method, params)
	return d.call(ctx, msg, id)
}

func (d *Driver) call(ctx context.Context, msg Message, id uint64) (Message, error) {
	call := &pendingCall{resp: make(chan Message, 1)}
	d.mu.Lock()
	d.pending[id] = call
	d.stats.SetRequestsPending(len(d.pending))
	d.mu.Unlock()

	select {
	case d.outbox <- msg:
	case <-ctx.Done():
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
		return Message{}, ctx.Err()
	}

	timeout := d.cfg.DefaultRPCTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-call.resp:
		return resp, nil
	case <-timer.C:
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
		d.stats.IncRequestTimeouts()
		return Message{}, NewSyncMethodCallTimeoutError(id, timeout)
	case <-ctx.Done():
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
		return Message{}, ctx.Err()
	}
}

// Notify enqueues a one-way notification; it does not wait for delivery.
func (d *Driver) Notify(ctx context.Context, shvPath, method string, params rpcvalue.Value) error {
	msg := NewNotify(shvPath, method, params)
	select {
	case d.outbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
