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

// Package cpon implements Cpon, the human-readable text counterpart to
// ChainPack: a JSON-like notation with comments, typed literals (decimal,
// datetime, blob) and an explicit meta-data prefix.
package cpon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

// WriterOptions controls Cpon text rendering.
type WriterOptions struct {
	// TranslateIDs renders well-known numeric meta-data tags (RequestId,
	// ShvPath, Method, ...) using their mnemonic names instead of bare
	// integers, when a translation table is supplied via TagNames.
	TranslateIDs bool
	// HexBlob renders Blob values as x".." hex literals. When false,
	// blobs are rendered as b"" byte-string literals with escapes.
	HexBlob bool
	// Indent, when non-empty, is repeated per nesting level to pretty
	// print containers; when empty, output is maximally compact.
	Indent string
	// JSONFormat restricts output to valid JSON: no comments, no IMap/
	// Decimal/DateTime/Blob literal syntax (IMap keys become strings,
	// Decimal/DateTime become strings, Blob becomes a hex string).
	JSONFormat bool

	TagNames map[uint32]string
}

// Writer serializes rpcvalue.Value trees to Cpon text.
type Writer struct {
	opts  WriterOptions
	sb    strings.Builder
	depth int
}

// NewWriter returns a Writer with the given options.
func NewWriter(opts WriterOptions) *Writer {
	return &Writer{opts: opts}
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Marshal is a convenience one-shot encoder.
func Marshal(v rpcvalue.Value, opts WriterOptions) (string, error) {
	w := NewWriter(opts)
	if err := w.Write(v); err != nil {
		return "", err
	}
	return w.String(), nil
}

// Write appends the Cpon encoding of v, including its meta-data.
func (w *Writer) Write(v rpcvalue.Value) error {
	if !w.opts.JSONFormat {
		if err := w.writeMeta(v.Meta()); err != nil {
			return err
		}
	}
	return w.writeValue(v)
}

func (w *Writer) newline() {
	if w.opts.Indent == "" {
		return
	}
	w.sb.WriteByte('\n')
	for i := 0; i < w.depth; i++ {
		w.sb.WriteString(w.opts.Indent)
	}
}

func (w *Writer) writeMeta(m *rpcvalue.MetaData) error {
	if m.IsEmpty() {
		return nil
	}
	w.sb.WriteByte('<')
	first := true
	var err error
	emit := func(keyStr string, v rpcvalue.Value) {
		if err != nil {
			return
		}
		if !first {
			w.sb.WriteByte(',')
		}
		first = false
		w.sb.WriteString(keyStr)
		w.sb.WriteByte(':')
		err = w.writeValue(v)
	}
	if m.IMap != nil {
		m.IMap.Each(func(k uint32, v rpcvalue.Value) {
			name := ""
			if w.opts.TranslateIDs {
				name = w.opts.TagNames[k]
			}
			if name != "" {
				emit(name, v)
			} else {
				emit(strconv.FormatUint(uint64(k), 10), v)
			}
		})
	}
	if err != nil {
		return err
	}
	if m.Map != nil {
		m.Map.Each(func(k string, v rpcvalue.Value) {
			emit(quoteString(k), v)
		})
	}
	if err != nil {
		return err
	}
	w.sb.WriteByte('>')
	return nil
}

func (w *Writer) writeValue(v rpcvalue.Value) error {
	switch v.Kind() {
	case rpcvalue.KindInvalid:
		return fmt.Errorf("cpon: cannot write an invalid value")
	case rpcvalue.KindNull:
		w.sb.WriteString("null")
	case rpcvalue.KindBool:
		if v.Bool() {
			w.sb.WriteString("true")
		} else {
			w.sb.WriteString("false")
		}
	case rpcvalue.KindUInt:
		w.sb.WriteString(strconv.FormatUint(v.UInt(), 10))
		if !w.opts.JSONFormat {
			w.sb.WriteByte('u')
		}
	case rpcvalue.KindInt:
		w.sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case rpcvalue.KindDouble:
		w.writeDouble(v.Double())
	case rpcvalue.KindDecimal:
		if w.opts.JSONFormat {
			w.sb.WriteByte('"')
			w.sb.WriteString(formatDecimal(v.DecimalVal()))
			w.sb.WriteByte('"')
		} else {
			w.sb.WriteString(formatDecimal(v.DecimalVal()))
		}
	case rpcvalue.KindDateTime:
		w.writeDateTime(v.DateTimeVal())
	case rpcvalue.KindBlob:
		w.writeBlob(v.Blob())
	case rpcvalue.KindString:
		w.sb.WriteString(quoteString(v.Str()))
	case rpcvalue.KindList:
		return w.writeList(v.List())
	case rpcvalue.KindMap:
		return w.writeMap(v.Map())
	case rpcvalue.KindIMap:
		return w.writeIMap(v.IMap())
	case rpcvalue.KindArray:
		return w.writeArray(v.ArrayVal())
	default:
		return fmt.Errorf("cpon: unsupported kind %s", v.Kind())
	}
	return nil
}

func (w *Writer) writeDouble(f float64) {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	w.sb.WriteString(s)
	if !strings.ContainsAny(s, ".eE") {
		w.sb.WriteString(".0")
	}
}

func (w *Writer) writeDateTime(dt rpcvalue.DateTime) {
	s := formatDateTime(dt)
	if w.opts.JSONFormat {
		w.sb.WriteByte('"')
		w.sb.WriteString(s)
		w.sb.WriteByte('"')
		return
	}
	w.sb.WriteString(`d"`)
	w.sb.WriteString(s)
	w.sb.WriteByte('"')
}

func (w *Writer) writeBlob(b []byte) {
	if w.opts.JSONFormat || w.opts.HexBlob {
		if w.opts.JSONFormat {
			w.sb.WriteByte('"')
		} else {
			w.sb.WriteString(`x"`)
		}
		const hexDigits = "0123456789abcdef"
		for _, c := range b {
			w.sb.WriteByte(hexDigits[c>>4])
			w.sb.WriteByte(hexDigits[c&0xF])
		}
		w.sb.WriteByte('"')
		return
	}
	w.sb.WriteString(`b"`)
	w.sb.WriteString(escapeBytes(b))
	w.sb.WriteByte('"')
}

func (w *Writer) writeList(elems []rpcvalue.Value) error {
	w.sb.WriteByte('[')
	w.depth++
	for i, e := range elems {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.newline()
		if err := w.Write(e); err != nil {
			return err
		}
	}
	w.depth--
	if len(elems) > 0 {
		w.newline()
	}
	w.sb.WriteByte(']')
	return nil
}

func (w *Writer) writeArray(a rpcvalue.Array) error {
	w.sb.WriteByte('a')
	return w.writeList(a.Elems)
}

func (w *Writer) writeMap(m *rpcvalue.OrderedMap[string]) error {
	w.sb.WriteByte('{')
	w.depth++
	i := 0
	var err error
	m.Each(func(k string, v rpcvalue.Value) {
		if err != nil {
			return
		}
		if i > 0 {
			w.sb.WriteByte(',')
		}
		i++
		w.newline()
		w.sb.WriteString(quoteString(k))
		w.sb.WriteByte(':')
		err = w.Write(v)
	})
	w.depth--
	if err != nil {
		return err
	}
	if m.Len() > 0 {
		w.newline()
	}
	w.sb.WriteByte('}')
	return nil
}

func (w *Writer) writeIMap(m *rpcvalue.OrderedMap[uint32]) error {
	if w.opts.JSONFormat {
		w.sb.WriteByte('{')
	} else {
		w.sb.WriteString("i{")
	}
	w.depth++
	i := 0
	var err error
	m.Each(func(k uint32, v rpcvalue.Value) {
		if err != nil {
			return
		}
		if i > 0 {
			w.sb.WriteByte(',')
		}
		i++
		w.newline()
		if w.opts.JSONFormat {
			w.sb.WriteByte('"')
			w.sb.WriteString(strconv.FormatUint(uint64(k), 10))
			w.sb.WriteByte('"')
		} else {
			w.sb.WriteString(strconv.FormatUint(uint64(k), 10))
		}
		w.sb.WriteByte(':')
		err = w.Write(v)
	})
	w.depth--
	if err != nil {
		return err
	}
	if m.Len() > 0 {
		w.newline()
	}
	w.sb.WriteByte('}')
	return nil
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func escapeBytes(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
