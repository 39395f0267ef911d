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
	"sync"

	"github.com/silicon-heaven/shv-go/chainpack"
	"github.com/silicon-heaven/shv-go/cpon"
	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

// Frame is a decoded-enough-to-route message: its meta-data has already
// been parsed, but Payload still holds the raw, un-decoded body bytes in
// Protocol's encoding.
type Frame struct {
	Protocol uint64
	Meta     *rpcvalue.MetaData
	Payload  []byte
}

// Decode fully decodes the frame's body and attaches Meta, returning a
// Message. It is a separate step from framing so a bridge can inspect Meta
// (for routing) without paying for a body decode it might just re-encode.
func (f Frame) Decode() (Message, error) {
	var body rpcvalue.Value
	var err error
	switch f.Protocol {
	case ProtocolChainPack:
		body, err = chainpack.Unmarshal(f.Payload)
	case ProtocolCpon:
		body, err = cpon.Unmarshal(string(f.Payload))
	default:
		return Message{}, fmt.Errorf("rpc: unsupported frame protocol %d", f.Protocol)
	}
	if err != nil {
		return Message{}, fmt.Errorf("rpc: decoding frame body: %w", err)
	}
	if f.Meta != nil && !f.Meta.IsEmpty() {
		body = body.WithMeta(f.Meta)
	}
	return Message{Value: body}, nil
}

func encodeBody(protocol uint64, msg Message) ([]byte, error) {
	plain := msg.Value.WithMeta(nil)
	switch protocol {
	case ProtocolChainPack:
		bw := chainpack.NewWriter()
		if err := bw.Write(plain); err != nil {
			return nil, fmt.Errorf("rpc: encoding frame body: %w", err)
		}
		return bw.Bytes(), nil
	case ProtocolCpon:
		s, err := cpon.Marshal(plain, cpon.WriterOptions{})
		if err != nil {
			return nil, fmt.Errorf("rpc: encoding frame body: %w", err)
		}
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("rpc: unsupported frame protocol %d", protocol)
	}
}

func encodeMeta(protocol uint64, meta *rpcvalue.MetaData) ([]byte, error) {
	if meta.IsEmpty() {
		return nil, nil
	}
	placeholder := rpcvalue.Null().WithMeta(meta)
	switch protocol {
	case ProtocolChainPack:
		w := chainpack.NewWriter()
		if err := w.Write(placeholder); err != nil {
			return nil, fmt.Errorf("rpc: encoding frame meta: %w", err)
		}
		full := w.Bytes()
		// strip the trailing Null value byte chainpack.Write appended after
		// the meta-data: re-encode the bare value to learn its length and
		// chop exactly that many bytes off the end.
		nullOnly := chainpack.NewWriter()
		if err := nullOnly.Write(rpcvalue.Null()); err != nil {
			return nil, err
		}
		return full[:len(full)-len(nullOnly.Bytes())], nil
	case ProtocolCpon:
		full, err := cpon.Marshal(placeholder, cpon.WriterOptions{})
		if err != nil {
			return nil, fmt.Errorf("rpc: encoding frame meta: %w", err)
		}
		return []byte(full[:len(full)-len("null")]), nil
	default:
		return nil, fmt.Errorf("rpc: unsupported frame protocol %d", protocol)
	}
}

// Writer serializes Messages into the length-prefixed wire format and hands
// the bytes to a transport, resuming cleanly across partial writes.
// Enqueue, Pending and Flush take the Writer's own mutex, so callers need
// no locking of their own.
type Writer struct {
	mu       sync.Mutex
	protocol uint64
	pending  []byte
	drained  int
}

// NewWriter returns a Writer that encodes frames using protocol (one of
// ProtocolChainPack, ProtocolCpon).
func NewWriter(protocol uint64) *Writer {
	return &Writer{protocol: protocol}
}

// Enqueue serializes msg and appends it to the pending output buffer. It
// does not itself write to a transport; call Flush to drain.
func (w *Writer) Enqueue(msg Message) error {
	metaBytes, err := encodeMeta(w.protocol, msg.Meta())
	if err != nil {
		return err
	}
	bodyBytes, err := encodeBody(w.protocol, msg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	packetLen := uint64(1 + len(metaBytes) + len(bodyBytes))
	w.pending = chainpack.EncodeUInt(w.pending, packetLen)
	w.pending = chainpack.EncodeUInt(w.pending, w.protocol)
	w.pending = append(w.pending, metaBytes...)
	w.pending = append(w.pending, bodyBytes...)
	return nil
}

// Pending reports how many unflushed bytes remain queued.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) - w.drained
}

// Flush makes a single attempt to hand the remaining pending bytes to
// write, recording how far it got. A transport that only accepts part of
// the bytes (a non-blocking socket returning short) just means Flush must
// be called again once the transport is writable; Flush never loops
// internally; doing so would block a caller driving it from an I/O-ready
// callback. It returns true once everything queued so far has been
// drained.
func (w *Writer) Flush(write func([]byte) (int, error)) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.drained >= len(w.pending) {
		w.pending = w.pending[:0]
		w.drained = 0
		return true, nil
	}
	n, err := write(w.pending[w.drained:])
	w.drained += n
	if err != nil {
		return false, fmt.Errorf("rpc: flushing frame writer: %w", err)
	}
	if w.drained >= len(w.pending) {
		w.pending = w.pending[:0]
		w.drained = 0
		return true, nil
	}
	return false, nil
}

// ErrUnknownProtocol is returned by Reader.Next when a frame declares a
// protocol version this implementation does not understand; the frame's
// bytes have already been consumed from the buffer, so the caller should
// simply call Next again.
var ErrUnknownProtocol = fmt.Errorf("rpc: unknown protocol version in frame header")

// Reader accumulates bytes read off a transport and yields complete Frames,
// decoding each frame's meta-data eagerly (routing needs it) while leaving
// the body undecoded until Frame.Decode is called.
type Reader struct {
	buf []byte
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Feed appends newly read bytes to the internal buffer.
func (r *Reader) Feed(p []byte) {
	r.buf = append(r.buf, p...)
}

// Next attempts to parse one complete frame from the buffered bytes. It
// returns wire.ErrNeedMoreData when the buffer holds less than one full
// frame; the caller should Feed more bytes and retry. A malformed
// length-prefix is treated the same way, since a VLQ length can itself be
// split across reads.
func (r *Reader) Next() (Frame, error) {
	length, prefixLen, needMore := chainpack.DecodeUInt(r.buf, 0)
	if needMore {
		return Frame{}, wire.ErrNeedMoreData
	}
	total := prefixLen + int(length)
	if len(r.buf) < total {
		return Frame{}, wire.ErrNeedMoreData
	}

	rest := r.buf[prefixLen:total]
	version, versionLen, needMore := chainpack.DecodeUInt(rest, 0)
	if needMore {
		// A full frame is buffered but its version VLQ didn't fit; that
		// can only happen if packetLen under-counted. Drop it.
		r.consume(total)
		return Frame{}, wire.NewParseError(0, "frame version VLQ exceeds declared packet length")
	}
	body := rest[versionLen:]

	switch version {
	case ProtocolChainPack:
		cr := chainpack.NewReader(body)
		meta, err := cr.ReadMetaOnly()
		if err != nil {
			r.consume(total)
			return Frame{}, fmt.Errorf("rpc: decoding frame meta: %w", err)
		}
		payload := body[cr.Pos():]
		r.consume(total)
		return Frame{Protocol: version, Meta: meta, Payload: payload}, nil
	case ProtocolCpon:
		cr := cpon.NewReader(string(body))
		meta, err := cr.ReadMetaOnly()
		if err != nil {
			r.consume(total)
			return Frame{}, fmt.Errorf("rpc: decoding frame meta: %w", err)
		}
		payload := body[cr.Pos():]
		r.consume(total)
		return Frame{Protocol: version, Meta: meta, Payload: payload}, nil
	default:
		r.consume(total)
		return Frame{}, ErrUnknownProtocol
	}
}

func (r *Reader) consume(n int) {
	remaining := len(r.buf) - n
	copy(r.buf, r.buf[n:])
	r.buf = r.buf[:remaining]
}
