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

package wire

import (
	"errors"
	"fmt"
)

// ErrNeedMoreData signals that the reader ran out of buffered input before
// finishing the current item, and should be retried once more bytes are
// available. Callers distinguish this from ParseError, which is never
// resolved by feeding more bytes.
var ErrNeedMoreData = errors.New("wire: need more data")

// ParseError reports a malformed stream with the byte offset it was
// detected at, mirroring ChainPackReader::ParseException's "at pos: N"
// suffix.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wire: parse error at offset %d: %s", e.Offset, e.Msg)
}

// NewParseError builds a ParseError at the given offset.
func NewParseError(offset int64, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
