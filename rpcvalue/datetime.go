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

package rpcvalue

import "time"

// ShvEpochMsec is the SHV epoch (2018-02-02T00:00:00 UTC) in Unix
// milliseconds, used as the zero point for ChainPack's packed DateTime
// representation.
const ShvEpochMsec int64 = 1517529600000

// TZInvalid marks a DateTime with no usable timezone offset.
const TZInvalid int8 = -64

// DateTime is a point in time plus a UTC offset expressed in quarter hours,
// matching libshv's RpcValue::DateTime bitfield layout.
type DateTime struct {
	Msec           int64
	TZQuarterHours int8
}

// NewDateTime builds a DateTime from milliseconds since the Unix epoch and a
// UTC offset in minutes. offsetMinutes must be a multiple of 15; it is
// truncated otherwise.
func NewDateTime(unixMsec int64, offsetMinutes int) DateTime {
	return DateTime{Msec: unixMsec, TZQuarterHours: int8(offsetMinutes / 15)}
}

// IsValid reports whether the timezone field carries a usable offset.
func (d DateTime) IsValid() bool {
	return d.TZQuarterHours != TZInvalid
}

// UTCOffsetMinutes returns the timezone offset in minutes, or 0 if invalid.
func (d DateTime) UTCOffsetMinutes() int {
	if !d.IsValid() {
		return 0
	}
	return int(d.TZQuarterHours) * 15
}

// Time converts the DateTime to a time.Time in its own fixed-offset zone.
func (d DateTime) Time() time.Time {
	offsetSec := d.UTCOffsetMinutes() * 60
	loc := time.FixedZone("", offsetSec)
	return time.UnixMilli(d.Msec).In(loc)
}

// DateTimeFromTime builds a DateTime from a time.Time, taking its zone's
// offset at that instant and truncating it toward zero to a whole number of
// quarter hours.
func DateTimeFromTime(t time.Time) DateTime {
	_, offsetSec := t.Zone()
	return NewDateTime(t.UnixMilli(), offsetSec/60)
}

// Equal compares two DateTime values the way the C++ original does:
// only Msec participates, and two invalid datetimes are never compared by
// timezone.
func (d DateTime) Equal(o DateTime) bool {
	return d.Msec == o.Msec
}
