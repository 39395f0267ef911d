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

package cpon

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

// Reader parses Cpon text into rpcvalue.Value trees. Unlike the chainpack
// Reader it works over a complete, already-buffered string rather than
// supporting incremental resumption — Cpon messages are framed the same
// way as ChainPack ones at the rpc layer, so partial buffers are handled
// there, not token-by-token here.
type Reader struct {
	src   string
	pos   int
	stack *wire.Stack
}

// NewReader returns a Reader over src with the default nesting bound.
func NewReader(src string) *Reader {
	return &Reader{src: src, stack: wire.NewStack(wire.DefaultMaxDepth)}
}

// Unmarshal decodes a single Cpon value from src.
func Unmarshal(src string) (rpcvalue.Value, error) {
	r := NewReader(src)
	v, err := r.Read()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	r.skipWhitespace()
	if r.pos != len(r.src) {
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "trailing garbage after value")
	}
	return v, nil
}

// Read decodes one value, including an optional leading meta-data prefix.
func (r *Reader) Read() (rpcvalue.Value, error) {
	r.skipWhitespace()
	var meta *rpcvalue.MetaData
	if r.peekByte() == '<' {
		m, err := r.readMeta()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		meta = m
		r.skipWhitespace()
	}
	v, err := r.readValue()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	if meta != nil && !meta.IsEmpty() {
		v = v.WithMeta(meta)
	}
	return v, nil
}

// Pos returns the current read offset into src.
func (r *Reader) Pos() int { return r.pos }

// ReadMetaOnly decodes just a leading meta-data prefix, if present, leaving
// Pos() at the start of the value, for callers (the rpc package's frame
// reader) that need routing meta-data without decoding the body.
func (r *Reader) ReadMetaOnly() (*rpcvalue.MetaData, error) {
	r.skipWhitespace()
	if r.peekByte() != '<' {
		return nil, nil
	}
	return r.readMeta()
}

func (r *Reader) eof() bool { return r.pos >= len(r.src) }

func (r *Reader) peekByte() byte {
	if r.eof() {
		return 0
	}
	return r.src[r.pos]
}

func (r *Reader) skipWhitespace() {
	for !r.eof() {
		c := r.src[r.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			r.pos++
		case c == '/' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '/':
			for !r.eof() && r.src[r.pos] != '\n' {
				r.pos++
			}
		case c == '/' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '*':
			r.pos += 2
			for {
				if r.pos+1 >= len(r.src) {
					r.pos = len(r.src)
					return
				}
				if r.src[r.pos] == '*' && r.src[r.pos+1] == '/' {
					r.pos += 2
					break
				}
				r.pos++
			}
		default:
			return
		}
	}
}

func (r *Reader) readMeta() (*rpcvalue.MetaData, error) {
	r.pos++ // '<'
	if err := r.stack.Push(wire.ContainerMeta); err != nil {
		return nil, err
	}
	defer r.stack.Pop()

	meta := rpcvalue.NewMetaData()
	r.skipWhitespace()
	for r.peekByte() != '>' {
		key, err := r.readValue()
		if err != nil {
			return nil, err
		}
		r.skipWhitespace()
		if r.peekByte() != ':' {
			return nil, wire.NewParseError(int64(r.pos), "expected ':' in meta-data")
		}
		r.pos++
		r.skipWhitespace()
		val, err := r.readValue()
		if err != nil {
			return nil, err
		}
		if key.Kind() == rpcvalue.KindString {
			meta.SetStrTag(key.Str(), val)
		} else if key.Kind() == rpcvalue.KindInt {
			meta.SetIntTag(uint32(key.Int()), val)
		} else {
			meta.SetIntTag(uint32(key.UInt()), val)
		}
		r.skipWhitespace()
		if r.peekByte() == ',' {
			r.pos++
			r.skipWhitespace()
		}
	}
	r.pos++ // '>'
	return meta, nil
}

func (r *Reader) readValue() (rpcvalue.Value, error) {
	r.skipWhitespace()
	if r.eof() {
		return rpcvalue.Invalid, wire.ErrNeedMoreData
	}
	c := r.src[r.pos]
	switch {
	case c == 'n' && strings.HasPrefix(r.src[r.pos:], "null"):
		r.pos += 4
		return rpcvalue.Null(), nil
	case c == 't' && strings.HasPrefix(r.src[r.pos:], "true"):
		r.pos += 4
		return rpcvalue.NewBool(true), nil
	case c == 'f' && strings.HasPrefix(r.src[r.pos:], "false"):
		r.pos += 5
		return rpcvalue.NewBool(false), nil
	case c == 'd' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '"':
		return r.readDateTime()
	case c == '"':
		return r.readStringValue()
	case c == 'x' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '"':
		return r.readHexBlob()
	case c == 'b' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '"':
		return r.readByteStringBlob()
	case c == 'i' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '{':
		return r.readIMap()
	case c == 'a' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '[':
		return r.readArray()
	case c == '[':
		return r.readList()
	case c == '{':
		return r.readMap()
	case c == '-' || (c >= '0' && c <= '9'):
		return r.readNumber()
	default:
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "unexpected character %q", c)
	}
}

func (r *Reader) readNumber() (rpcvalue.Value, error) {
	start := r.pos
	if r.peekByte() == '-' {
		r.pos++
	}
	for !r.eof() && r.src[r.pos] >= '0' && r.src[r.pos] <= '9' {
		r.pos++
	}
	hasDot, hasExp := false, false
	if !r.eof() && r.src[r.pos] == '.' {
		hasDot = true
		r.pos++
		for !r.eof() && r.src[r.pos] >= '0' && r.src[r.pos] <= '9' {
			r.pos++
		}
	}
	if !r.eof() && (r.src[r.pos] == 'e' || r.src[r.pos] == 'E') {
		hasExp = true
		r.pos++
		if !r.eof() && (r.src[r.pos] == '+' || r.src[r.pos] == '-') {
			r.pos++
		}
		for !r.eof() && r.src[r.pos] >= '0' && r.src[r.pos] <= '9' {
			r.pos++
		}
	}
	numText := r.src[start:r.pos]

	if !r.eof() && r.src[r.pos] == 'u' {
		r.pos++
		u, err := strconv.ParseUint(numText, 10, 64)
		if err != nil {
			return rpcvalue.Invalid, wire.NewParseError(int64(start), "malformed uint %q", numText)
		}
		return rpcvalue.NewUInt(u), nil
	}
	if !r.eof() && r.src[r.pos] == 'n' {
		r.pos++
		d, err := parseDecimal(numText)
		if err != nil {
			return rpcvalue.Invalid, wire.NewParseError(int64(start), "%s", err.Error())
		}
		return rpcvalue.NewDecimalValue(d), nil
	}
	if hasDot || hasExp {
		f, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			return rpcvalue.Invalid, wire.NewParseError(int64(start), "malformed double %q", numText)
		}
		return rpcvalue.NewDouble(f), nil
	}
	i, err := strconv.ParseInt(numText, 10, 64)
	if err != nil {
		return rpcvalue.Invalid, wire.NewParseError(int64(start), "malformed int %q", numText)
	}
	return rpcvalue.NewInt(i), nil
}

func (r *Reader) readStringValue() (rpcvalue.Value, error) {
	s, err := r.readQuotedString('"')
	if err != nil {
		return rpcvalue.Invalid, err
	}
	return rpcvalue.NewString(s), nil
}

// readQuotedString reads a "..." literal with escapes, starting at the
// opening quote, per the comment-and-escape grammar shared with string
// keys: \n \r \t \b \\ \0 \" and \uXXXX (with surrogate pairs).
func (r *Reader) readQuotedString(quote byte) (string, error) {
	if r.peekByte() != quote {
		return "", wire.NewParseError(int64(r.pos), "expected opening quote")
	}
	r.pos++
	var sb strings.Builder
	for {
		if r.eof() {
			return "", wire.ErrNeedMoreData
		}
		c := r.src[r.pos]
		if c == quote {
			r.pos++
			return sb.String(), nil
		}
		if c == '\\' {
			r.pos++
			if r.eof() {
				return "", wire.ErrNeedMoreData
			}
			esc := r.src[r.pos]
			r.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			case 'u':
				if r.pos+4 > len(r.src) {
					return "", wire.ErrNeedMoreData
				}
				hex := r.src[r.pos : r.pos+4]
				r.pos += 4
				cp, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return "", wire.NewParseError(int64(r.pos), "malformed \\u escape")
				}
				ru := rune(cp)
				if utf16.IsSurrogate(ru) && r.pos+6 <= len(r.src) && r.src[r.pos] == '\\' && r.src[r.pos+1] == 'u' {
					hex2 := r.src[r.pos+2 : r.pos+6]
					cp2, err := strconv.ParseUint(hex2, 16, 32)
					if err == nil {
						dec := utf16.DecodeRune(ru, rune(cp2))
						if dec != utf8.RuneError {
							r.pos += 6
							sb.WriteRune(dec)
							continue
						}
					}
				}
				sb.WriteRune(ru)
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(c)
		r.pos++
	}
}

func (r *Reader) readDateTime() (rpcvalue.Value, error) {
	r.pos++ // 'd'
	body, err := r.readQuotedString('"')
	if err != nil {
		return rpcvalue.Invalid, err
	}
	dt, err := parseDateTime(body)
	if err != nil {
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "%s", err.Error())
	}
	return rpcvalue.NewDateTimeValue(dt), nil
}

func (r *Reader) readHexBlob() (rpcvalue.Value, error) {
	r.pos++ // 'x'
	body, err := r.readQuotedString('"')
	if err != nil {
		return rpcvalue.Invalid, err
	}
	if len(body)%2 != 0 {
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "odd-length hex blob")
	}
	b := make([]byte, len(body)/2)
	for i := 0; i < len(b); i++ {
		v, err := strconv.ParseUint(body[2*i:2*i+2], 16, 8)
		if err != nil {
			return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "malformed hex byte")
		}
		b[i] = byte(v)
	}
	return rpcvalue.NewBlob(b), nil
}

func (r *Reader) readByteStringBlob() (rpcvalue.Value, error) {
	r.pos++ // 'b'
	s, err := r.readQuotedString('"')
	if err != nil {
		return rpcvalue.Invalid, err
	}
	return rpcvalue.NewBlob([]byte(s)), nil
}

func (r *Reader) readList() (rpcvalue.Value, error) {
	r.pos++ // '['
	if err := r.stack.Push(wire.ContainerList); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	var elems []rpcvalue.Value
	r.skipWhitespace()
	for r.peekByte() != ']' {
		v, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		elems = append(elems, v)
		r.skipWhitespace()
		if r.peekByte() == ',' {
			r.pos++
			r.skipWhitespace()
		}
	}
	r.pos++ // ']'
	return rpcvalue.NewList(elems...), nil
}

func (r *Reader) readArray() (rpcvalue.Value, error) {
	r.pos++ // 'a'
	listVal, err := r.readList()
	if err != nil {
		return rpcvalue.Invalid, err
	}
	elems := listVal.List()
	elemKind := rpcvalue.KindNull
	if len(elems) > 0 {
		elemKind = elems[0].Kind()
	}
	arr, err := rpcvalue.NewArray(elemKind, elems...)
	if err != nil {
		return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "%s", err.Error())
	}
	return rpcvalue.NewArrayValue(arr), nil
}

func (r *Reader) readMap() (rpcvalue.Value, error) {
	r.pos++ // '{'
	if err := r.stack.Push(wire.ContainerMap); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	m := rpcvalue.NewOrderedMap[string]()
	r.skipWhitespace()
	for r.peekByte() != '}' {
		key, err := r.readStringValue()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		r.skipWhitespace()
		if r.peekByte() != ':' {
			return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "expected ':' in map")
		}
		r.pos++
		r.skipWhitespace()
		val, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		m.Set(key.Str(), val)
		r.skipWhitespace()
		if r.peekByte() == ',' {
			r.pos++
			r.skipWhitespace()
		}
	}
	r.pos++ // '}'
	return rpcvalue.NewMap(m), nil
}

func (r *Reader) readIMap() (rpcvalue.Value, error) {
	r.pos += 2 // 'i{'
	if err := r.stack.Push(wire.ContainerIMap); err != nil {
		return rpcvalue.Invalid, err
	}
	defer r.stack.Pop()

	m := rpcvalue.NewOrderedMap[uint32]()
	r.skipWhitespace()
	for r.peekByte() != '}' {
		key, err := r.readNumber()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		r.skipWhitespace()
		if r.peekByte() != ':' {
			return rpcvalue.Invalid, wire.NewParseError(int64(r.pos), "expected ':' in imap")
		}
		r.pos++
		r.skipWhitespace()
		val, err := r.Read()
		if err != nil {
			return rpcvalue.Invalid, err
		}
		if key.Kind() == rpcvalue.KindInt {
			m.Set(uint32(key.Int()), val)
		} else {
			m.Set(uint32(key.UInt()), val)
		}
		r.skipWhitespace()
		if r.peekByte() == ',' {
			r.pos++
			r.skipWhitespace()
		}
	}
	r.pos++ // '}'
	return rpcvalue.NewIMap(m), nil
}
