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

package chainpack

import "github.com/silicon-heaven/shv-go/rpcvalue"

// encodeDateTime packs a DateTime relative to rpcvalue.ShvEpochMsec: bit 0
// signals a present timezone offset, bit 1 signals the value is in whole
// seconds (no sub-second remainder), followed by the offset in quarter
// hours (when present) and the remaining milliseconds, all as one signed
// VLQ integer.
func encodeDateTime(buf []byte, dt rpcvalue.DateTime) []byte {
	msecs := dt.Msec - rpcvalue.ShvEpochMsec
	offset := dt.TZQuarterHours
	if !dt.IsValid() {
		offset = 0
	}
	hasOffset := offset != 0
	ms := msecs % 1000
	if ms == 0 {
		msecs /= 1000
	}
	if hasOffset {
		msecs <<= 7
		msecs |= int64(offset) & 0x7F
	}
	msecs <<= 2
	if hasOffset {
		msecs |= 1
	}
	if ms == 0 {
		msecs |= 2
	}
	return encodeIntVLQ(buf, msecs)
}

// decodeDateTime is the inverse of encodeDateTime.
func decodeDateTime(data []byte, offset int) (rpcvalue.DateTime, int, bool) {
	d, n, needMore := decodeIntVLQ(data, offset)
	if needMore {
		return rpcvalue.DateTime{}, 0, true
	}
	hasTZOffset := d&1 != 0
	hasNotMsec := d&2 != 0
	d >>= 2
	var tz int8
	if hasTZOffset {
		tz = int8(d & 0x7F)
		tz = (tz << 1) >> 1 // sign-extend the 7-bit field
		d >>= 7
	}
	if hasNotMsec {
		d *= 1000
	}
	d += rpcvalue.ShvEpochMsec
	return rpcvalue.DateTime{Msec: d, TZQuarterHours: tz}, n, false
}

// decodeDateTimeEpoch reads the deprecated DateTimeEpoch representation: a
// plain signed VLQ of absolute Unix milliseconds, no timezone.
func decodeDateTimeEpoch(data []byte, offset int) (rpcvalue.DateTime, int, bool) {
	msec, n, needMore := decodeIntVLQ(data, offset)
	if needMore {
		return rpcvalue.DateTime{}, 0, true
	}
	return rpcvalue.DateTime{Msec: msec}, n, false
}
